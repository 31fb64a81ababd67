package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabasePath   string `json:"databasePath" yaml:"database_path" validate:"required"`
	ListenAddr     string `json:"listenAddr" yaml:"listen_addr" validate:"required"`
	LogLevel       string `json:"logLevel" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	LogFormat      string `json:"logFormat" yaml:"log_format" validate:"omitempty,oneof=console json"`
	MaxUploadMB    int    `json:"maxUploadMB" yaml:"max_upload_mb" validate:"min=1,max=1024"`
	PrivilegedRole string `json:"privilegedRole" yaml:"privileged_role" validate:"required"`
}

// DefaultConfigPath は設定ファイルの既定パスです。
const DefaultConfigPath = "./salesperf_config.json"

// envPrefix は設定を上書きする環境変数の接頭辞です。
const envPrefix = "SALESPERF_"

var (
	cfg      = Default()
	mu       sync.RWMutex
	validate = validator.New()
)

// Default は初期設定を返します。
func Default() Config {
	return Config{
		DatabasePath:   "./salesperf.db?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate",
		ListenAddr:     ":8080",
		LogLevel:       "info",
		LogFormat:      "console",
		MaxUploadMB:    32,
		PrivilegedRole: "admin",
	}
}

// LoadConfig は設定ファイル(.json / .yaml)を読み込み、.env と環境変数で上書きします。
// ファイルが存在しない場合は既定値を使います。
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	loaded := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := unmarshal(path, data, &loaded); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	// .env は任意
	_ = godotenv.Load()
	applyEnv(&loaded)
	fillDefaults(&loaded)

	if err := validate.Struct(loaded); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return loaded, nil
}

// SaveConfig は設定を検証してファイルに書き込みます。
func SaveConfig(path string, newCfg Config) error {
	if path == "" {
		path = DefaultConfigPath
	}
	fillDefaults(&newCfg)
	if err := validate.Struct(newCfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(newCfg)
	} else {
		data, err = json.MarshalIndent(newCfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	mu.Lock()
	cfg = newCfg
	mu.Unlock()
	return nil
}

// GetConfig は最後に読み込んだ設定を返します。
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func unmarshal(path string, data []byte, out *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, out)
	}
	return json.Unmarshal(data, out)
}

func applyEnv(c *Config) {
	if v := env("DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := env("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := env("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := env("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxUploadMB = n
		}
	}
	if v := env("PRIVILEGED_ROLE"); v != "" {
		c.PrivilegedRole = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func fillDefaults(c *Config) {
	d := Default()
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = d.MaxUploadMB
	}
	if c.PrivilegedRole == "" {
		c.PrivilegedRole = d.PrivilegedRole
	}
}

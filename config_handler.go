package main

import (
	"encoding/json"
	"net/http"

	"salesperf/config"
	"salesperf/ingest"
	"salesperf/logger"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// configView は設定のうち画面に出してよい項目です。
type configView struct {
	ListenAddr     string `json:"listenAddr"`
	LogLevel       string `json:"logLevel"`
	LogFormat      string `json:"logFormat"`
	MaxUploadMB    int    `json:"maxUploadMB"`
	PrivilegedRole string `json:"privilegedRole"`
}

// GetConfigHandler は現在の設定を返します。データベースのパスは返しません。
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(viewOf(config.GetConfig()))
	}
}

func viewOf(cfg config.Config) configView {
	return configView{
		ListenAddr:     cfg.ListenAddr,
		LogLevel:       cfg.LogLevel,
		LogFormat:      cfg.LogFormat,
		MaxUploadMB:    cfg.MaxUploadMB,
		PrivilegedRole: cfg.PrivilegedRole,
	}
}

// SaveConfigHandler は送られた項目だけを現在の設定に上書きして保存します。
// データベースのパスは変更できません。反映には再起動が必要です。
func SaveConfigHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := config.GetConfig()
		if actor := ingest.ActorFromContext(r.Context()); actor != nil && actor.Role != current.PrivilegedRole {
			writeJSONError(w, "設定を変更する権限がありません。", http.StatusForbidden)
			return
		}

		view := viewOf(current)
		if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
			writeJSONError(w, "リクエストが不正です。", http.StatusBadRequest)
			return
		}

		next := current
		next.ListenAddr = view.ListenAddr
		next.LogLevel = view.LogLevel
		next.LogFormat = view.LogFormat
		next.MaxUploadMB = view.MaxUploadMB
		next.PrivilegedRole = view.PrivilegedRole

		if err := config.SaveConfig(path, next); err != nil {
			logger.Named("config").Warn().Err(err).Msg("Error saving config")
			writeJSONError(w, "設定の保存に失敗しました: "+err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "設定を保存しました。再起動後に反映されます。"})
	}
}

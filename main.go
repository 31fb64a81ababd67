package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"salesperf/config"
	"salesperf/ingest"
	"salesperf/loader"
	"salesperf/logger"
	"salesperf/model"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "salesperf",
		Short: "POS売上明細の取込とMNP判定",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "設定ファイルのパス (.json / .yaml)")

	rootCmd.AddCommand(newServeCmd(&configPath), newImportCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup は設定・ロガー・データベースを準備します。
func setup(configPath string) (config.Config, *sqlx.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: os.Stderr})
	log := logger.Named("main")

	log.Info().Msg("Connecting to database...")
	dbConn, err := loader.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return cfg, nil, err
	}
	if err := loader.InitDatabase(dbConn); err != nil {
		dbConn.Close()
		return cfg, nil, fmt.Errorf("database initialization failed: %w", err)
	}
	log.Info().Msg("Database initialization complete.")
	return cfg, dbConn, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTPサーバーを起動します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dbConn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			log := logger.Named("main")

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           NewRouter(dbConn, cfg, *configPath),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.ListenAddr).Msg("Starting server")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server start error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newImportCmd(configPath *string) *cobra.Command {
	var role, store string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "売上明細CSVを取り込み、結果をJSONで出力します",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			cfg, dbConn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			var actor *model.Actor
			if role != "" {
				actor = &model.Actor{Role: role, StoreCode: store}
			}

			report, err := ingest.NewImporter(dbConn, cfg.PrivilegedRole).Import(cmd.Context(), data, actor)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "取込を行う利用者のロール (未指定なら全店舗)")
	cmd.Flags().StringVar(&store, "store", "", "利用者の所属店舗コード")
	return cmd
}

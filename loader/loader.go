package loader

import (
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"salesperf/logger"
)

//go:embed schema.sql
var schemaSQL string

// OpenDatabase は SQLite データベースを開きます。
func OpenDatabase(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// InitDatabase はデータベーススキーマを適用します。何度実行しても同じ結果になります。
func InitDatabase(db *sqlx.DB) error {
	log := logger.Named("loader")
	log.Info().Msg("Applying database schema...")
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	log.Info().Msg("Schema applied successfully.")
	return nil
}

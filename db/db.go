package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the sqlite connection with the app's typed queries.
type DB struct {
	*sql.DB
	logger *log.Logger
}

func Open(path string, logger *log.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("database ready", "path", path)
	return &DB{DB: sqlDB, logger: logger}, nil
}

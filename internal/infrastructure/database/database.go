package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Pool defaults applied when the corresponding Config field is zero. The bot
// is a low-fanout service; a small pool is plenty.
const (
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 15
	defaultConnMaxLifetime = 30 * time.Minute
)

// Config controls the PostgreSQL connection pool.
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens a GORM handle against PostgreSQL, creating the target
// database first when it does not exist yet. Table names come from the
// entities' TableName methods, so no naming strategy is configured here.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}

	if err := createDatabaseIfMissing(cfg.DSN); err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	tunePool(sqlDB, cfg)

	return db, nil
}

func tunePool(sqlDB *sql.DB, cfg Config) {
	idle, open, lifetime := poolSettings(cfg)
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(lifetime)
}

func poolSettings(cfg Config) (idle, open int, lifetime time.Duration) {
	idle, open, lifetime = cfg.MaxIdleConns, cfg.MaxOpenConns, cfg.ConnMaxLifetime
	if idle <= 0 {
		idle = defaultMaxIdleConns
	}
	if open <= 0 {
		open = defaultMaxOpenConns
	}
	if lifetime <= 0 {
		lifetime = defaultConnMaxLifetime
	}
	return idle, open, lifetime
}

// createDatabaseIfMissing connects to the maintenance database and issues a
// CREATE DATABASE when the DSN's target does not exist. DSNs that are not in
// URL form are left alone; gorm.Open will surface any real problem.
func createDatabaseIfMissing(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil
	}

	target := strings.TrimPrefix(u.Path, "/")
	if target == "" || target == "postgres" {
		return nil
	}

	admin := *u
	admin.Path = "/postgres"

	conn, err := sql.Open("postgres", admin.String())
	if err != nil {
		return err
	}
	defer conn.Close()

	var exists bool
	err = conn.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", target).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case exists:
		return nil
	}

	_, err = conn.Exec("CREATE DATABASE " + quoteIdentifier(target))
	return err
}

func quoteIdentifier(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Package datastore opens gorm databases holding multilingual columns and queries or migrates
// those columns.
package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrorIsNoRows validate if supplied error is because of record missing in DB.
func ErrorIsNoRows(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows)
}

// Open connects to dsn. postgres:// URLs and key=value DSNs go through a traced pgx pool;
// sqlite://path, file: URIs and :memory: open SQLite.
func Open(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	poolOpts := &Options{
		PreferSimpleProtocol:   true,
		SkipDefaultTransaction: true,
	}

	for _, opt := range opts {
		opt(poolOpts)
	}

	var (
		dialector gorm.Dialector
		err       error
	)
	if path, ok := sqlitePath(dsn); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector, err = postgresDialector(ctx, dsn, poolOpts)
		if err != nil {
			return nil, err
		}
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 datastoreLogger(ctx, poolOpts.TraceConfig),
		SkipDefaultTransaction: poolOpts.SkipDefaultTransaction,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	if poolOpts.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(poolOpts.MaxOpen)
	}
	if poolOpts.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(poolOpts.MaxIdle)
	}
	if poolOpts.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(poolOpts.MaxLifetime)
	}

	return gormDB, nil
}

// Close releases the connections of db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func postgresDialector(ctx context.Context, dsn string, poolOpts *Options) (gorm.Dialector, error) {
	cleanedPostgresqlDSN, err := cleanPostgresDSN(dsn)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(cleanedPostgresqlDSN)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	if poolOpts.MaxOpen > 0 {
		cfg.MaxConns = int32(min(poolOpts.MaxOpen, 1<<30)) //nolint:gosec //bounded above
	}

	pgxPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	err = otelpgx.RecordStats(pgxPool)
	if err != nil {
		return nil, fmt.Errorf("unable to record database stats: %w", err)
	}

	return postgres.New(postgres.Config{
		Conn:                 stdlib.OpenDBFromPool(pgxPool),
		PreferSimpleProtocol: poolOpts.PreferSimpleProtocol,
	}), nil
}

// sqlitePath returns the SQLite file of dsn when dsn names one.
func sqlitePath(dsn string) (string, bool) {
	trimmed := strings.TrimSpace(dsn)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		return trimmed[len("sqlite://"):], true
	case strings.HasPrefix(lower, "sqlite:"):
		return trimmed[len("sqlite:"):], true
	case strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return trimmed, true
	default:
		return "", false
	}
}

// cleanPostgresDSN checks if the input is already a DSN, otherwise converts a PostgreSQL URL to DSN.
func cleanPostgresDSN(pgString string) (string, error) {
	trimmed := strings.TrimSpace(pgString)
	lower := strings.ToLower(trimmed)
	if strings.Contains(trimmed, "=") && !strings.HasPrefix(lower, "postgres://") &&
		!strings.HasPrefix(lower, "postgresql://") {
		return trimmed, nil
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}

	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid scheme: %s", u.Scheme)
	}

	user := ""
	password := ""
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	dbname := strings.TrimPrefix(u.Path, "/")

	dsn := []string{
		"host=" + host,
		"port=" + port,
		"user=" + user,
		"password=" + password,
		"dbname=" + dbname,
	}
	for k, vals := range u.Query() {
		for _, v := range vals {
			dsn = append(dsn, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(dsn, " "), nil
}

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/joseph-ayodele/invoice-ledger/internal/common"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type Config struct {
	DSN             string // sqlite://path/to/file.db, sqlite://:memory:, postgres://...
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is a gorm handle plus the dialect it was opened with.
type DB struct {
	Gorm    *gorm.DB
	Dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Open connects to SQLite or Postgres by DSN scheme. Postgres goes through a pgx pool
// handed to gorm as its connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	scheme, rest, ok := strings.Cut(cfg.DSN, "://")
	if !ok {
		return nil, common.NewAppError("DB_CONFIG", "dsn must have a scheme", common.ErrInvalidInput)
	}
	switch scheme {
	case "sqlite", "sqlite3", "file":
		return openSQLite(rest, logger)
	case "postgres", "postgresql":
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, common.NewAppError("DB_CONFIG", fmt.Sprintf("unsupported scheme %q", scheme), common.ErrInvalidInput)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
}

func openSQLite(path string, logger *slog.Logger) (*DB, error) {
	logger.Info("opening sqlite archive", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
	}
	// a second connection to :memory: would see an empty database
	sqlDB.SetMaxOpenConns(1)
	return &DB{Gorm: gdb, Dialect: DialectSQLite, logger: logger}, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to postgres archive")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse dsn", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-ledger"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gormConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: gorm: %v", common.ErrDatabase, err)
	}

	logger.Info("successfully connected to database")
	return &DB{Gorm: gdb, Dialect: DialectPostgres, pool: pool, logger: logger}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	if sqlDB, err := d.Gorm.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			d.logger.Error("failed to close database", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the database with a bounded timeout.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-stock-opname/pkg/apperror"
	"go-stock-opname/pkg/config"
	"go-stock-opname/pkg/logger"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client owns the single process-wide connection handle. After Close every
// call to DB fails with apperror.ErrStoreClosed.
type Client struct {
	mu     sync.RWMutex
	conn   *gorm.DB
	closed bool
}

// Open connects using the configured dialector and applies the pool limits.
func Open(cfg config.DBConfig, log zerolog.Logger) (*Client, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormlogger.New(
		logger.GormWriter{Logger: log},
		gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLog,
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindIO, err, "open database")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindIO, err, "get sql handle")
	}
	// Satu koneksi saja untuk seluruh proses
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)

	log.Info().Str("driver", cfg.Driver).Msg("database connection established")
	return &Client{conn: conn}, nil
}

// New wraps an already opened gorm connection.
func New(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	case config.DriverPostgres:
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000"
}

// DB returns the context-bound connection, or ErrStoreClosed once closed.
func (c *Client) DB(ctx context.Context) (*gorm.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.conn == nil {
		return nil, apperror.ErrStoreClosed
	}
	if ctx == nil {
		return c.conn, nil
	}
	return c.conn.WithContext(ctx), nil
}

func (c *Client) Ping(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.Wrap(apperror.KindIO, err, "get sql handle")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.Wrap(apperror.KindIO, err, "ping database")
	}
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close releases the handle. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	sqlDB, err := c.conn.DB()
	if err != nil {
		return apperror.Wrap(apperror.KindIO, err, "get sql handle")
	}
	if err := sqlDB.Close(); err != nil {
		return apperror.Wrap(apperror.KindIO, err, "close database")
	}
	return nil
}

// Migrate creates the given tables when absent. Safe to call on every start.
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return apperror.Wrap(apperror.KindIO, err, "ensure schema")
	}
	return nil
}

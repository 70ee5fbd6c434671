package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"festivaltickets/internal/shared/config"
	"festivaltickets/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	pingTimeout   = 5 * time.Second
	slowThreshold = 200 * time.Millisecond
)

// DB holds the PostgreSQL and Redis handles shared by every service. The
// Redis client also carries seat holds, archive jobs and rate limit windows.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client

	log *logger.Logger
}

// InitDB connects to PostgreSQL and Redis, retrying while the containers
// come up, and applies the schema.
func InitDB(cfg *config.Config, log *logger.Logger) (*DB, error) {
	log = log.WithComponent("database")
	ctx := context.Background()

	var pg *gorm.DB
	err := withRetry(ctx, log, "postgres", cfg.Database.ConnectAttempts, cfg.Database.ConnectBackoff, func(ctx context.Context) error {
		var err error
		pg, err = openPostgreSQL(ctx, cfg, log)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := MigrateConstraints(pg); err != nil {
		return nil, fmt.Errorf("failed to apply constraints: %w", err)
	}

	rdb := redis.NewClient(redisOptions(cfg.Redis))
	err = withRetry(ctx, log, "redis", cfg.Database.ConnectAttempts, cfg.Database.ConnectBackoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	log.Info("Databases ready",
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Int("redis_pool_size", cfg.Redis.PoolSize),
	)
	return &DB{PostgreSQL: pg, Redis: rdb, log: log}, nil
}

func openPostgreSQL(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:                                   newGormLogger(log, cfg.IsDevelopment()),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// withRetry runs connect up to attempts times, doubling the pause after each
// failure. The last error is returned.
func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, backoff time.Duration, connect func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = connect(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.WithError(err).Warn("Connection attempt failed",
			slog.String("backend", name),
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", backoff),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", name, attempts, err)
}

// gormWriter routes gorm's printf-style output into the application logger.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug(fmt.Sprintf(format, args...))
}

func newGormLogger(log *logger.Logger, verbose bool) gormlogger.Interface {
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{log: log.WithComponent("gorm")}, gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Close closes both connections, reporting every failure.
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close PostgreSQL: %w", err))
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close Redis: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if db.log != nil {
		db.log.Info("Database connections closed")
	}
	return nil
}

// HealthCheck pings both backends
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err != nil {
			return fmt.Errorf("PostgreSQL health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("PostgreSQL ping failed: %w", err)
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func (db *DB) GetRedisClient() *redis.Client {
	return db.Redis
}

func (db *DB) GetPostgreSQL() *gorm.DB {
	return db.PostgreSQL
}

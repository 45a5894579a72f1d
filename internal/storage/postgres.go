package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"pricecompare-bot/internal/config"
	"pricecompare-bot/pkg/redis"
)

var ErrStatisticsDisabled = errors.New("statistics are disabled")

const (
	statsCacheKey = "comparison_stats"
	statsCacheTTL = 10 * time.Minute
)

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

var _ Recorder = (*PostgresStorage)(nil)

// Connect opens a Postgres connection pool, retrying with exponential backoff.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := conn.PingContext(ctx); err != nil {
				conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect after retries: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// NewPostgresStorage connects to Postgres and applies pending migrations.
// redisClient is optional and only used to cache statistics.
func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	db, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := RunMigrations(ctx, db.DB, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func (s *PostgresStorage) RecordComparison(ctx context.Context, event ComparisonEvent) error {
	const query = `
		INSERT INTO comparison_events (
			id, chat_id, unit_kind, scale_mode, row_count,
			valid_rows, cheapest_rows, source, created_at
		) VALUES (
			:id, :chat_id, :unit_kind, :scale_mode, :row_count,
			:valid_rows, :cheapest_rows, :source, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to record comparison: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, statsCacheKey); err != nil {
			s.logger.Warn("Failed to invalidate statistics cache", zap.Error(err))
		}
	}
	return nil
}

func (s *PostgresStorage) Statistics(ctx context.Context) (*Statistics, error) {
	if cached, ok := s.cachedStatistics(ctx); ok {
		return cached, nil
	}

	stats := &Statistics{ByUnit: make(map[string]int)}

	err := s.db.GetContext(ctx, stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE) AS today,
			COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '7 days') AS week,
			COUNT(*) FILTER (WHERE cheapest_rows > 1) AS ties,
			COALESCE(AVG(row_count), 0) AS avg_rows,
			COALESCE(AVG(valid_rows), 0) AS avg_valid_rows
		FROM comparison_events
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_kind, COUNT(*)
		FROM comparison_events
		GROUP BY unit_kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var unit string
		var count int
		if err := rows.Scan(&unit, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unit count: %w", err)
		}
		stats.ByUnit[unit] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unit counts: %w", err)
	}

	s.cacheStatistics(ctx, stats)
	return stats, nil
}

func (s *PostgresStorage) cachedStatistics(ctx context.Context) (*Statistics, bool) {
	if s.redis == nil {
		return nil, false
	}

	var cached Statistics
	err := s.redis.LoadJSON(ctx, statsCacheKey, &cached)
	if err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			s.logger.Warn("Failed to read cached statistics", zap.Error(err))
		}
		return nil, false
	}
	return &cached, true
}

// cacheStatistics is best effort: a failed write only costs a query later.
func (s *PostgresStorage) cacheStatistics(ctx context.Context, stats *Statistics) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.Warn("Failed to encode statistics for cache", zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, statsCacheKey, data, statsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache statistics", zap.Error(err))
	}
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

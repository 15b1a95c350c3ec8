package postgres

import (
	"context"
	"errors"
	"time"

	"composite-client/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// Connect returns a live *pgxpool.Pool for dsn.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("database url is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pgxpool.Connect(ctx, dsn)
}

// ObservePool exports pool statistics every interval until ctx is done.
func ObservePool(ctx context.Context, pool *pgxpool.Pool, interval time.Duration, logger *zerolog.Logger) {
	l := logger.With().Str("component", "PoolStats").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st := pool.Stat()
		metrics.SetDBPoolConnections(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		l.Trace().Int32("total", st.TotalConns()).Int32("idle", st.IdleConns()).Msg("pool stats")
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

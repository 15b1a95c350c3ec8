package main

import (
	"context"
	"flag"
	"time"

	"composite-client/internal/config"
	pg "composite-client/internal/infra/db/postgres"
	"composite-client/internal/infra/logging"
	"composite-client/internal/infra/redis"
)

// e2e-setup resets the shared state of an end-to-end environment: the job
// history table and any leftover share card session locks.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info().Msg("--- Starting E2E Environment Setup ---")

	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pool.Close()

		logger.Info().Msg("[1/2] Migrating and wiping share card history...")
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		if err := pg.Truncate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("truncate")
		}
	} else {
		logger.Info().Msg("[1/2] No database configured, skipping")
	}

	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()

		logger.Info().Msg("[2/2] Clearing share card session locks...")
		n, err := redis.NewSessionLocker(client, cfg.Poll.LockTTL, logger).Clear(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("clear locks")
		}
		logger.Info().Int("removed", n).Msg("session locks cleared")
	} else {
		logger.Info().Msg("[2/2] No redis configured, skipping")
	}

	logger.Info().Msg("--- E2E Environment Setup Complete ---")
}

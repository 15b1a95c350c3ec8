package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"
	pg "composite-client/internal/infra/db/postgres"
	"composite-client/internal/infra/logging"

	"github.com/jackc/pgx/v4"
)

// seed records timed-out share card jobs so that `composite watch` has work to
// pick up. Each argument is movie:job.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Log, false)
	if cfg.Database.URL == "" {
		logger.Fatal().Msg("database.url is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	var jobs []*model.ShareCardJob
	for _, arg := range flag.Args() {
		movieID, jobID, ok := strings.Cut(arg, ":")
		if !ok || movieID == "" || jobID == "" {
			logger.Warn().Str("arg", arg).Msg("expected movie:job, skipping")
			continue
		}
		job := model.NewShareCardJob(model.JobHandle{MovieID: model.ID(movieID), JobID: model.ID(jobID)})
		job.Apply(model.TimedOut(model.JobStatusProcessing, cfg.Poll.MaxAttempts), nil)
		jobs = append(jobs, job)
	}

	// all or nothing
	repo := pg.NewShareCardJobRepo(pool)
	err = pg.NewTxManager(pool).WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for _, j := range jobs {
			if err := repo.Save(ctx, tx, j); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("seed jobs")
	}
	logger.Info().Int("count", len(jobs)).Msg("seeded timed-out jobs")
}

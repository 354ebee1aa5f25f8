package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketplace-service/internal/notify"
	"marketplace-service/internal/repository/postgresql"
	"marketplace-service/internal/service"
	"marketplace-service/internal/worker"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued push notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.log.Sync()
			return rt.runWorker(cmd.Context())
		},
	}
}

func (rt *runtime) runWorker(ctx context.Context) error {
	cfg, log := rt.cfg, rt.log

	pool, err := rt.postgres(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := rt.redis(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	awsCfg, err := notify.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return err
	}

	queue := service.NewRedisPriorityQueue(rdb, cfg.Queue.KeyPrefix)

	// Reaper: возвращает зависшие в processing id обратно в очередь
	go worker.Reap(ctx, queue, cfg.Queue.ReapInterval, cfg.Queue.VisibilityTimeout, cfg.Queue.ReapBatch, log)

	processor := worker.NewProcessor(
		postgresql.NewNotificationRepository(pool),
		postgresql.NewUserRepository(pool),
		notify.NewPusher(notify.NewSNSClient(awsCfg)),
		log,
	)
	workers := worker.NewPool(queue, processor, cfg.Queue.Workers, cfg.Queue.ClaimTimeout, log)

	log.Info("worker started",
		zap.Int("workers", cfg.Queue.Workers),
		zap.String("redis_addr", cfg.Redis.Address),
		zap.String("queue_prefix", cfg.Queue.KeyPrefix),
		zap.String("postgres_dsn", redactDSN(cfg.Postgres.GetDSN())),
	)
	workers.Run(ctx)
	log.Info("worker stopped")
	return nil
}

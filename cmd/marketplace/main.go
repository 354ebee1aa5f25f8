// cmd/marketplace/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketplace-service/internal/config"
	"marketplace-service/internal/logger"
	"marketplace-service/internal/repository/postgresql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "Freelance marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newAPICmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return root
}

// runtime holds what every subcommand needs.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
}

func setup() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: logger.New(cfg.Logging.Level, cfg.Logging.Format)}, nil
}

func (rt *runtime) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := rt.cfg.Postgres.GetDSN()
	pool, err := postgresql.NewPool(ctx, dsn, rt.cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("pg %s: %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func (rt *runtime) redis(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     rt.cfg.Redis.Address,
		Password: rt.cfg.Redis.Password,
		DB:       rt.cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rdb, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			pool, err := rt.postgres(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgresql.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			rt.log.Info("schema applied")
			return nil
		},
	}
}

func redactDSN(dsn string) string {
	// user:pass@ -> user:****@, DSN без пароля не трогаем
	re := regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)
	return re.ReplaceAllString(dsn, `://$1:****@`)
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return id, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/notify"
	"marketplace-service/internal/payment"
	"marketplace-service/internal/repository/postgresql"
	"marketplace-service/internal/service"
	httptransport "marketplace-service/internal/transport/http"
)

func newAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.log.Sync()
			return rt.serveAPI(cmd.Context())
		},
	}
}

func (rt *runtime) serveAPI(ctx context.Context) error {
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

	// repositories
	users := postgresql.NewUserRepository(pool)
	jobs := postgresql.NewJobRepository(pool)
	proposals := postgresql.NewProposalRepository(pool)
	invites := postgresql.NewInviteRepository(pool)
	engagements := postgresql.NewHiredFreelancerRepository(pool)
	submissions := postgresql.NewSubmissionRepository(pool)
	payments := postgresql.NewPaymentRepository(pool)
	messages := postgresql.NewMessageRepository(pool)
	reviews := postgresql.NewReviewRepository(pool)
	taxonomy := postgresql.NewTaxonomyRepository(pool)

	// DI
	queue := service.NewRedisPriorityQueue(rdb, cfg.Queue.KeyPrefix)
	presence := service.NewRedisPresence(rdb, "presence", cfg.Auth.PresenceTTL)
	notifications := service.NewNotificationService(postgresql.NewNotificationRepository(pool), queue, log)
	mailer := notify.NewMailer(notify.NewSESClient(awsCfg), cfg.AWS.SESSender)
	gateway := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.SecretKey, cfg.Payment.PublishableKey, cfg.Payment.Currency, cfg.Payment.Timeout)

	h := httptransport.NewHandler(httptransport.Services{
		Jobs:          service.NewJobService(jobs, payments, gateway, notifications, log),
		Listing:       service.NewListingService(jobs, proposals, invites, engagements, users, reviews, taxonomy),
		Proposals:     service.NewProposalService(proposals, jobs, notifications, log),
		Invites:       service.NewInviteService(invites, jobs, users, engagements, mailer, notifications, cfg.App.FrontendURL, log),
		Lifecycle:     service.NewLifecycleService(jobs, engagements, submissions, notifications, log),
		Messages:      service.NewMessageService(messages, users, presence, notifications, log),
		Reviews:       service.NewReviewService(reviews, users, jobs, notifications, log),
		Payments:      service.NewPaymentService(payments),
		Profiles:      service.NewProfileService(postgresql.NewProfileRepository(pool), users, taxonomy, log),
		Notifications: notifications,
	}, log)
	authn := httptransport.NewAuthenticator(auth.NewTokenManager(cfg.Auth.JWTSecret), users, presence, log)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httptransport.Routes(h, authn, log),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api started", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("api stopped")
	return nil
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			id, err := parseUUID(userID)
			if err != nil {
				return err
			}
			tok, err := auth.NewTokenManager(rt.cfg.Auth.JWTSecret).Issue(id, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&role, "role", "", "client or freelancer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

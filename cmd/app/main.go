package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"spotvibe/internal/config"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
	"spotvibe/internal/infra/adapters/momo"
	"spotvibe/internal/infra/api"
	"spotvibe/internal/infra/api/apiv1"
	pg "spotvibe/internal/infra/db/postgres"
	"spotvibe/internal/infra/logging"
	"spotvibe/internal/infra/metrics"
	red "spotvibe/internal/infra/redis"
	"spotvibe/internal/infra/sched"
	"spotvibe/internal/infra/security"
	"spotvibe/internal/infra/web"
	"spotvibe/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()
	txm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool, encSvc)
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	momoRepo := pg.NewMomoTransactionRepo(pool)
	commissionRepo := pg.NewCommissionRepo(pool)
	refundRepo := pg.NewRefundRepo(pool)
	eventRepo := pg.NewEventRepo(pool)
	ticketRepo := pg.NewTicketRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)

	// ---- MoMo gateways ----
	gateways := map[model.PaymentMethod]adapter.MomoGateway{}
	if cfg.Runtime.Dev {
		gateways[model.PaymentMethodMTN] = momo.NewNoopGateway(model.OperatorMTN)
		gateways[model.PaymentMethodMoov] = momo.NewNoopGateway(model.OperatorMoov)
		logger.Warn().Msg("dev mode: using noop momo gateways")
	} else {
		mtn, err := momo.NewMTNGateway(cfg.Payment.MTN)
		if err != nil {
			logger.Fatal().Err(err).Msg("mtn gateway")
		}
		moov, err := momo.NewMoovGateway(cfg.Payment.Moov)
		if err != nil {
			logger.Fatal().Err(err).Msg("moov gateway")
		}
		gateways[model.PaymentMethodMTN] = mtn
		gateways[model.PaymentMethodMoov] = moov
	}

	defaultRate, err := decimal.NewFromString(cfg.Payment.CommissionRate)
	if err != nil {
		logger.Fatal().Err(err).Str("rate", cfg.Payment.CommissionRate).Msg("payment.commission_rate")
	}
	subRate, err := decimal.NewFromString(cfg.Payment.SubscriptionCommission)
	if err != nil {
		logger.Fatal().Err(err).Str("rate", cfg.Payment.SubscriptionCommission).Msg("payment.subscription_commission")
	}

	// ---- Use cases ----
	notifUC := usecase.NewNotificationUseCase(notifRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, momoRepo, gateways, txm, cfg.Payment.ExpiryTTL, logger)
	subUC := usecase.NewSubscriptionUseCase(planRepo, subRepo, paymentUC, notifUC, txm, defaultRate, cfg.Subscription.FreeEventsPerMonth, logger)
	eventUC := usecase.NewEventUseCase(eventRepo, ticketRepo, subUC, paymentUC, notifUC, txm, cfg.Subscription.FreeEventsPerMonth, logger)
	refundUC := usecase.NewRefundUseCase(refundRepo, payRepo, notifUC, txm, logger)
	webhookUC := usecase.NewWebhookUseCase(payRepo, momoRepo, commissionRepo, ticketRepo, eventRepo, subUC, eventUC, notifUC, subUC, subRate, locker, txm, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, payRepo, subRepo, commissionRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, logger)

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Public API ----
	v1 := apiv1.NewServer(apiv1.Deps{
		Payments:      paymentUC,
		Webhooks:      webhookUC,
		Subscriptions: subUC,
		Events:        eventUC,
		Refunds:       refundUC,
		Notifications: notifUC,
		Users:         userUC,
		WebhookKeys: map[model.MomoOperator]string{
			model.OperatorMTN:  cfg.Payment.MTN.WebhookKey,
			model.OperatorMoov: cfg.Payment.Moov.WebhookKey,
		},
	}, logger)
	apiServer := api.NewServer(v1, api.Options{
		Port:      cfg.API.Port,
		JWTSecret: []byte(cfg.Security.JWTSecret),
		Limiter:   rateLimiter,
	}, logger)
	go func() {
		if err := apiServer.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("api server stopped")
			cancel()
		}
	}()

	// ---- Admin + metrics ----
	adminMux := http.NewServeMux()
	adminSrv := web.NewServer(statsUC, refundUC, eventUC, paymentUC, cfg.Security.AdminAPIKey, logger)
	adminSrv.RegisterRoutes(adminMux)
	adminMux.Handle("/metrics", promhttp.Handler())
	adminServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           adminMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", adminServer.Addr).Msg("Starting admin server")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server stopped")
			cancel()
		}
	}()

	// ---- Background workers ----
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, subUC, logger)
	sweeper := sched.NewPaymentSweeper(cfg.Scheduler.SweepInterval, paymentUC, eventUC, logger)
	escalator := sched.NewEscalationWorker(cfg.Scheduler.EscalationInterval, 90*24*time.Hour, notifUC, logger)
	reconciler := sched.NewPaymentReconciler(cfg.Scheduler.ReconcileInterval, payRepo, paymentUC, logger)
	go func() { _ = expiry.Run(ctx) }()
	go func() { _ = sweeper.Run(ctx) }()
	go func() { _ = escalator.Run(ctx) }()
	go func() { _ = reconciler.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	_ = adminServer.Shutdown(shutCtx)
}

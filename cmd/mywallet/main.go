package main

import (
	"os"
	"time"

	"mywallet/internal/backend"
	"mywallet/internal/cli"
	"mywallet/internal/config"
	apphttp "mywallet/internal/http"
	"mywallet/internal/log"
	"mywallet/internal/notify"
	"mywallet/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger)

	store, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}

	var hub *notify.Hub
	if cfg.HasSink(config.SinkWebsocket) {
		hub = notify.NewHub(logger)
	}

	pub, err := factory.CreatePublisher(ctx, bcfg, hub)
	if err != nil {
		cli.Cleanup(logger, store.Cleanup)
		return err
	}

	cleanups := []func() error{store.Cleanup, pub.Cleanup}
	if hub != nil {
		cleanups = append(cleanups, hub.Close)
	}
	defer cli.Cleanup(logger, cleanups...)

	trigger := services.NewBudgetAlertTrigger(store.Store, store.Store, pub.Publisher, services.AlertConfig{
		ExpenseTransactionTypeID: cfg.AlertExpenseTypeID,
		PublishTimeout:           cfg.AlertPublishTimeout,
	}, time.Now, logger)

	opts := apphttp.Options{
		Queries:        services.NewQueryService(store.Store, time.Now, logger),
		Writes:         services.NewWriteService(store.Store, store.Store, store.Categories, trigger, logger),
		Alerts:         pub.Publisher,
		Logger:         logger,
		WriteRateLimit: cfg.WriteRateLimit,
		TrustedProxies: cfg.TrustedProxies,
	}
	if hub != nil {
		opts.Hub = hub
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, opts)
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	logger.Info("Starting mywallet server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sinks", cfg.AlertSinks,
		"write_rate_limit", cfg.WriteRateLimit)

	return cli.RunServer(ctx, logger, srv, cfg.ShutdownTimeout)
}

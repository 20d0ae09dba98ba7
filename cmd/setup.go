package cmd

import (
	"context"
	"errors"
	"fmt"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AvaProtocol/avax-workflow/core/chainio"
	appconfig "github.com/AvaProtocol/avax-workflow/core/config"
	"github.com/AvaProtocol/avax-workflow/core/services"
	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/metrics"
	"github.com/AvaProtocol/avax-workflow/storage"
)

// runtime holds the engine and everything that has to be released when the
// command ends
type runtime struct {
	config   *appconfig.Config
	engine   *taskengine.Engine
	registry *prometheus.Registry
	db       storage.Storage
	logger   sdklogging.Logger

	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func loadConfig() (*appconfig.Config, error) {
	cfg, err := appconfig.NewConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openHistory(cfg *appconfig.Config) (storage.Storage, *taskengine.History, error) {
	db, err := storage.NewWithPath(cfg.DbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open run history at %s: %w", cfg.DbPath, err)
	}
	return db, taskengine.NewHistory(db), nil
}

// newRuntime connects every port the configuration allows. Optional services
// without credentials stay unset; nodes using them fail with
// ExternalCallFailed instead of aborting the whole run.
func newRuntime(ctx context.Context, cfg *appconfig.Config) (*runtime, error) {
	r := &runtime{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		logger:   cfg.Logger,
	}

	ports, err := r.buildPorts(ctx)
	if err != nil {
		r.Close()
		return nil, err
	}

	db, history, err := openHistory(cfg)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.db = db
	r.closers = append(r.closers, func() {
		if err := db.Close(); err != nil {
			r.logger.Error("cannot close run history", "error", err)
		}
	})

	r.engine = taskengine.New(ports,
		taskengine.WithLogger(cfg.Logger),
		taskengine.WithSink(taskengine.NewLoggerSink(cfg.Logger)),
		taskengine.WithHistory(history),
		taskengine.WithMetrics(metrics.NewWorkflowMetrics(r.registry)),
		taskengine.WithExpectedChainID(cfg.ChainID),
		taskengine.WithExplorerURL(cfg.ExplorerURL),
	)

	return r, nil
}

func (r *runtime) buildPorts(ctx context.Context) (taskengine.Ports, error) {
	cfg := r.config
	ports := taskengine.Ports{
		HTTP: services.NewHTTPRelay(cfg.HTTPTimeout, cfg.Logger),
	}

	if !cfg.HasSigner() {
		r.logger.Warn("no private key configured, runs will stop at the account check")
	}
	chain, err := chainio.Dial(ctx, chainio.Config{
		RPCURL:     cfg.EthRpcUrl,
		PrivateKey: cfg.PrivateKey,
		ChainID:    cfg.ChainID,
	}, cfg.Logger)
	if err != nil {
		return ports, err
	}
	r.closers = append(r.closers, chain.Close)
	ports.Chain = chain

	ai, err := services.NewAICompleter(cfg.AI, cfg.Logger)
	switch {
	case err == nil:
		ports.AI = ai
	case errors.Is(err, services.ErrMissingAPIKey):
		r.logger.Warn("ai nodes are disabled", "provider", cfg.AI.Provider, "reason", err)
	default:
		return ports, err
	}

	messenger, err := services.NewWhatsAppMessenger(cfg.WhatsApp, cfg.Logger)
	switch {
	case err == nil:
		ports.Messenger = messenger
	case errors.Is(err, services.ErrWhatsAppNotConfigured):
		r.logger.Warn("whatsApp nodes are disabled", "reason", err)
	default:
		return ports, err
	}

	prices, err := services.NewPriceFeed(cfg.Prices, cfg.Logger)
	if err != nil {
		return ports, err
	}
	r.closers = append(r.closers, func() { prices.Close() })
	ports.Prices = prices

	return ports, nil
}

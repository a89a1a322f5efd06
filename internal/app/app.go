// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/audit"
	"github.com/JakeFAU/indieauth-client-discovery/internal/config"
	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
	collyfetcher "github.com/JakeFAU/indieauth-client-discovery/internal/fetcher/colly"
	"github.com/JakeFAU/indieauth-client-discovery/internal/metrics"
	"github.com/JakeFAU/indieauth-client-discovery/internal/microformats"
	"github.com/JakeFAU/indieauth-client-discovery/internal/policy/ratelimit"
	"github.com/JakeFAU/indieauth-client-discovery/internal/publisher/pubsub"
	"github.com/JakeFAU/indieauth-client-discovery/internal/storage/postgres"
)

// AuditStore is an audit.Store that owns a connection pool.
type AuditStore interface {
	audit.Store
	EnsureSchema(ctx context.Context) error
	Close()
}

// EventPublisher is an audit.Publisher that owns a client connection.
type EventPublisher interface {
	audit.Publisher
	Close() error
}

// Option overrides a service NewApp would otherwise build from configuration.
type Option func(*options)

type options struct {
	fetcher   discovery.Fetcher
	store     AuditStore
	publisher EventPublisher
}

// WithFetcher replaces the colly fetcher.
func WithFetcher(f discovery.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithAuditStore replaces the Postgres audit store.
func WithAuditStore(s AuditStore) Option {
	return func(o *options) { o.store = s }
}

// WithPublisher replaces the Pub/Sub publisher.
func WithPublisher(p EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// App holds the shared, long-lived services. It is built once per process by the CLI and
// handed explicitly to the commands that need it.
type App struct {
	logger     *zap.Logger
	discoverer *discovery.Discoverer
	recorder   *audit.Recorder
	store      AuditStore
	publisher  EventPublisher
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Discoverer returns the discovery service.
func (a *App) Discoverer() *discovery.Discoverer {
	return a.discoverer
}

// Recorder returns the audit recorder. It fans out to whichever sinks are configured.
func (a *App) Recorder() *audit.Recorder {
	return a.recorder
}

// NewApp builds the services described by cfg. Postgres is used when db.dsn is set and
// Pub/Sub when pubsub.topic_name is set; either may be replaced with an Option.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	metrics.Init()

	if o.fetcher == nil {
		fetchCfg := collyfetcher.Config{
			UserAgent:              cfg.Discovery.UserAgent,
			Timeout:                cfg.FetchTimeout(),
			MaxRedirects:           cfg.Discovery.MaxRedirects,
			MaxBodyBytes:           cfg.Discovery.MaxBodyBytes,
			RejectPrivateAddresses: cfg.Discovery.RejectPrivateAddresses,
		}
		if limiter := ratelimit.New(ratelimit.Config{
			PerHostRPS:   cfg.Discovery.PerHostRPS,
			PerHostBurst: cfg.Discovery.PerHostBurst,
		}); limiter.Enabled() {
			fetchCfg.Limiter = limiter
		}
		o.fetcher = collyfetcher.New(fetchCfg, logger.Named("fetcher"))
	}

	a := &App{
		logger:     logger,
		discoverer: discovery.New(o.fetcher, microformats.NewParser(), logger.Named("discovery")),
		store:      o.store,
		publisher:  o.publisher,
	}

	if a.store == nil && cfg.DB.DSN != "" {
		logger.Info("Connecting to PostgreSQL audit store", zap.String("table", cfg.DB.Table))
		store, err := postgres.NewAuditStore(ctx, postgres.AuditStoreConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: int32(cfg.DB.MaxConns), //nolint:gosec // validated small pool size
		})
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		a.store = store
	}
	if a.store != nil {
		if err := a.store.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("prepare audit store: %w", err)
		}
	}

	if a.publisher == nil && cfg.PubSub.TopicName != "" {
		logger.Info("Connecting to Pub/Sub", zap.String("topic", cfg.PubSub.TopicName))
		pub, err := pubsub.Connect(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init publisher: %w", err)
		}
		a.publisher = pub
	}

	recOpts := audit.Options{Topic: cfg.PubSub.TopicName, Logger: logger.Named("audit")}
	if a.store != nil {
		recOpts.Store = a.store
	}
	if a.publisher != nil {
		recOpts.Publisher = a.publisher
	}
	a.recorder = audit.NewRecorder(recOpts)

	logger.Info("Application services initialized",
		zap.Bool("audit_store", a.store != nil),
		zap.Bool("publisher", a.publisher != nil),
	)
	return a, nil
}

// Close releases the audit sinks. It is safe to call more than once.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Error closing publisher", zap.Error(err))
		}
		a.publisher = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

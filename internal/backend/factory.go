package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mywallet/internal/amqp"
	"mywallet/internal/cache"
	"mywallet/internal/config"
	"mywallet/internal/core"
	"mywallet/internal/log"
	"mywallet/internal/notify"
	"mywallet/internal/storage"
	"mywallet/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	return f.withLookupCache(res), nil
}

// cachedStore answers user lookups from the cache.
type cachedStore struct {
	Store
	users *cache.UserLookup
}

func (s cachedStore) FindByEmail(ctx context.Context, email string) (core.Identity, bool, error) {
	return s.users.FindByEmail(ctx, email)
}

// withLookupCache puts LRU caches in front of the user and category lookups.
func (f *DefaultFactory) withLookupCache(res *BackendResult) *BackendResult {
	users := cache.NewUserLookup(res.Store, cache.DefaultLookupSize, cache.DefaultLookupTTL)
	categories := cache.NewCategoryLookup(res.Categories, cache.DefaultLookupSize, cache.DefaultLookupTTL)

	mgr := cache.NewManager(f.logger)
	mgr.Register(users)
	mgr.Register(categories)
	mgr.StartCleanup(time.Minute)

	inner := res.Cleanup
	return &BackendResult{
		Store:      cachedStore{Store: res.Store, users: users},
		Categories: categories,
		Cleanup: func() error {
			err := mgr.Stop()
			if inner != nil {
				err = errors.Join(err, inner())
			}
			return err
		},
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	for _, email := range config.SeedUsers {
		if _, err := repo.EnsureUser(ctx, email, usernameOf(email)); err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed user %s: %w", email, err)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"seed_users", len(config.SeedUsers))

	return &BackendResult{
		Store:      repo,
		Categories: repo.Categories(),
		Cleanup:    repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.New(core.DefaultCategories)
	for _, email := range config.SeedUsers {
		store.AddUser(email, usernameOf(email))
	}

	f.logger.Info("Initialized memory backend", "seed_users", len(config.SeedUsers))

	return &BackendResult{
		Store:      store,
		Categories: store.Categories(),
		Cleanup:    nil, // No cleanup needed for memory backend
	}, nil
}

// CreatePublisher implements Factory.CreatePublisher. A sink that cannot be
// initialised is skipped with a warning; alerts are best effort.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, cfg Config, hub *notify.Hub) (*PublisherResult, error) {
	var (
		sinks    []notify.Sink
		closers  []func() error
		unknowns []string
	)

	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, notify.Sink{Name: name, Publisher: notify.NewLogPublisher(f.logger)})

		case config.SinkAMQP:
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
			if err != nil {
				f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without it",
					log.FieldSink, name, log.FieldError, err)
				continue
			}
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			sinks = append(sinks, notify.Sink{Name: name, Publisher: client})
			closers = append(closers, client.Close)

		case config.SinkWebsocket:
			if hub == nil {
				f.logger.WarnContext(ctx, "Websocket sink configured without a hub, skipping", log.FieldSink, name)
				continue
			}
			sinks = append(sinks, notify.Sink{Name: name, Publisher: hub})

		default:
			unknowns = append(unknowns, name)
		}
	}
	if len(unknowns) > 0 {
		for _, c := range closers {
			_ = c()
		}
		return nil, fmt.Errorf("unknown alert sinks: %s", strings.Join(unknowns, ", "))
	}

	fanout := notify.NewFanout(sinks...)
	f.logger.InfoContext(ctx, "Alert sinks ready", "sinks", fanout.Names())

	return &PublisherResult{
		Publisher: fanout,
		Cleanup: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// usernameOf derives a display name from the local part of an address.
func usernameOf(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

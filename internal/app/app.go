// Package app assembles the travel circle service from its configuration.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safetrip/travel-circle/internal/candidate"
	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/companion"
	"github.com/safetrip/travel-circle/internal/config"
	"github.com/safetrip/travel-circle/internal/httpapi"
	"github.com/safetrip/travel-circle/internal/messaging"
	"github.com/safetrip/travel-circle/internal/ratelimit"
	"github.com/safetrip/travel-circle/internal/store"
	"github.com/safetrip/travel-circle/internal/store/boltstore"
	"github.com/safetrip/travel-circle/internal/store/pgstore"
	"github.com/safetrip/travel-circle/internal/store/redisstore"
	"github.com/safetrip/travel-circle/internal/tribe"
)

// App holds the wired services and the resources they share.
type App struct {
	Backend    store.Backend
	Companions *companion.Service
	Circles    *circle.Service
	Tribes     *tribe.Service
	Handler    *httpapi.Server

	closers []func() error
}

// New connects to every configured dependency and builds the services.
// On error, anything already opened is closed again.
func New(ctx context.Context, cfg config.Config) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("app: connect redis at %s: %w", cfg.RedisAddr, err)
		}
	}

	a.Backend, err = openBackend(ctx, cfg, rdb)
	if err != nil {
		return nil, err
	}
	// The redis backend shares rdb, whose Close is registered above.
	if cfg.StoreBackend != config.BackendRedis {
		a.closers = append(a.closers, a.Backend.Close)
	}

	var provider candidate.Provider = candidate.NewStaticProvider(candidate.Fixtures())
	if cfg.CandidateSource == config.SourceRedis {
		provider = candidate.NewRedisProvider(rdb)
	}

	var publisher messaging.Publisher = messaging.Nop{}
	if cfg.NATS.Enabled() {
		nc, natsErr := messaging.NewNATSClient(cfg.NATS)
		if natsErr != nil {
			return nil, fmt.Errorf("app: connect nats: %w", natsErr)
		}
		publisher = nc
		a.closers = append(a.closers, func() error { nc.Close(); return nil })
	}

	var opts []companion.Option
	if cfg.SameDestination {
		opts = append(opts, companion.WithSameDestinationOnly())
	}
	a.Companions = companion.NewService(provider, a.Backend, publisher,
		companion.User{ID: cfg.UserID, Name: cfg.UserName}, opts...)
	a.Circles = circle.NewService(a.Backend, publisher)
	a.Tribes = tribe.NewService(a.Backend, publisher, tribe.Member{ID: cfg.UserID, Name: cfg.UserName})

	apiOpts := httpapi.Options{CORSOrigins: cfg.CORSOrigins}
	if cfg.RateLimit {
		apiOpts.Limiter = ratelimit.NewLimiter(rdb)
	}
	a.Handler = httpapi.NewServer(a.Companions, a.Circles, a.Tribes, apiOpts)
	return a, nil
}

func openBackend(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Printf("[app] using in-memory store; records are lost on exit")
		return store.NewMemoryBackend(), nil
	case config.BackendBolt:
		return boltstore.Open(cfg.BoltPath)
	case config.BackendRedis:
		return redisstore.New(rdb), nil
	case config.BackendPostgres:
		return pgstore.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[app] close: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}

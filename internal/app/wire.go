package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/quiverx/internal/blob/s3"
	"github.com/alanyoungcy/quiverx/internal/cache/memory"
	"github.com/alanyoungcy/quiverx/internal/cache/redis"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/metrics"
	"github.com/alanyoungcy/quiverx/internal/notify"
	"github.com/alanyoungcy/quiverx/internal/server/handler"
	"github.com/alanyoungcy/quiverx/internal/source"
	"github.com/alanyoungcy/quiverx/internal/store/postgres"
)

// Dependencies bundles everything the commands need. It is built by Wire
// and torn down by the returned cleanup function.
type Dependencies struct {
	// Source is the fully decorated dataset source.
	Source domain.DataSource
	// Breaker is set when Source is a remote source behind a circuit breaker.
	Breaker *source.Guarded
	// Cache is set when a read-through snapshot cache fronts Source.
	Cache *source.Cached

	// Store is the Postgres dataset store, set when Postgres is wired.
	Store domain.DatasetStore

	SnapshotCache domain.SnapshotCache
	RateLimiter   domain.RateLimiter
	LockManager   domain.LockManager
	SignalBus     domain.SignalBus
	// Events is the replayable refresh log; the bus backs it.
	Events domain.EventStream

	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader

	Notifier *notify.Notifier
	Metrics  *metrics.Registry

	// Health holds one check per external dependency.
	Health map[string]handler.HealthCheck
}

// Requirements forces optional infrastructure on regardless of config,
// e.g. seed always needs Postgres.
type Requirements struct {
	Postgres bool
	S3       bool
}

// Wire constructs concrete implementations from cfg.
func Wire(ctx context.Context, cfg *config.Config, req Requirements, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{
		Metrics: metrics.New(),
		Health:  make(map[string]handler.HealthCheck),
	}

	// --- PostgreSQL ---
	if cfg.UsesPostgres() || req.Postgres {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Supabase.DSN,
			Host:     cfg.Supabase.Host,
			Port:     cfg.Supabase.Port,
			Database: cfg.Supabase.Database,
			User:     cfg.Supabase.User,
			Password: cfg.Supabase.Password,
			SSLMode:  cfg.Supabase.SSLMode,
			MaxConns: cfg.Supabase.PoolMaxConns,
			MinConns: cfg.Supabase.PoolMinConns,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pgClient.Close)

		if cfg.Supabase.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}
		deps.Store = postgres.NewDatasetStore(pgClient.Pool())
		deps.Health["postgres"] = pgClient.Ping
	}

	// --- Redis, or in-process stand-ins ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SnapshotCache = redis.NewSnapshotCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.LockManager = redis.NewLockManager(redisClient)
		bus := redis.NewSignalBus(redisClient)
		deps.SignalBus, deps.Events = bus, bus
		deps.Health["redis"] = redisClient.Ping
	} else {
		logger.InfoContext(ctx, "redis not configured, using in-process cache, limiter, lock and bus")
		deps.SnapshotCache = memory.NewSnapshotCache()
		deps.RateLimiter = memory.NewRateLimiter()
		deps.LockManager = memory.NewLockManager()
		bus := memory.NewBus()
		deps.SignalBus, deps.Events = bus, bus
	}

	// --- S3 blob storage ---
	if cfg.UsesS3() || req.S3 {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: s3: %w", err))
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client, int64(cfg.S3.PartSizeMB)<<20)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.Health["s3"] = s3Client.Health
	}

	// --- Dataset source ---
	if err := wireSource(cfg, deps, logger); err != nil {
		return fail(err)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// wireSource picks the base source for cfg.Source.Kind and decorates it:
// remote sources get a circuit breaker and an optional snapshot cache, and
// every source reports loads to metrics.
func wireSource(cfg *config.Config, deps *Dependencies, logger *slog.Logger) error {
	var (
		base   domain.DataSource
		remote bool
	)
	switch cfg.Source.Kind {
	case config.SourceStatic:
		base = source.NewSample()
	case config.SourceFile:
		base = source.NewFile(cfg.Source.Path)
	case config.SourcePostgres:
		if deps.Store == nil {
			return fmt.Errorf("wire: source postgres: database not wired")
		}
		base, remote = deps.Store, true
	case config.SourceS3:
		if deps.BlobReader == nil {
			return fmt.Errorf("wire: source s3: object storage not wired")
		}
		ds := s3blob.NewDatasetSource(deps.BlobReader, cfg.Source.Key)
		deps.Health["dataset_object"] = ds.Check
		base, remote = ds, true
	default:
		return fmt.Errorf("wire: unknown source kind %q", cfg.Source.Kind)
	}

	src := base
	if remote {
		bc := source.DefaultBreakerConfig()
		if cfg.Source.BreakerFailures > 0 {
			bc.ConsecutiveFails = uint32(cfg.Source.BreakerFailures)
		}
		if cfg.Source.BreakerTimeout.Duration > 0 {
			bc.Timeout = cfg.Source.BreakerTimeout.Duration
		}
		deps.Breaker = source.NewGuarded(src, bc, logger)
		src = deps.Breaker

		if cfg.Source.CacheTTL.Duration > 0 {
			deps.Cache = source.NewCached(src, deps.SnapshotCache, cfg.Source.CacheTTL.Duration, logger)
			src = deps.Cache
		}
	}

	deps.Source = source.NewObserved(src, deps.Metrics)
	deps.Health["source"] = func(ctx context.Context) error {
		_, err := deps.Source.Load(ctx)
		return err
	}
	return nil
}

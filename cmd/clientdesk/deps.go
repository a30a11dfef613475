package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/clientdesk/clientdesk/internal/api/handler"
	"github.com/clientdesk/clientdesk/internal/core/ports"
	"github.com/clientdesk/clientdesk/internal/infrastructure/config"
	"github.com/clientdesk/clientdesk/internal/infrastructure/db/memory"
	"github.com/clientdesk/clientdesk/internal/infrastructure/db/mongo"
	"github.com/clientdesk/clientdesk/internal/infrastructure/db/postgres"
	"github.com/clientdesk/clientdesk/internal/infrastructure/db/redis"
)

// Migrator is the subset of postgres.Migrator the CLI drives.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Close() error
}

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// ConfigLoader reads configuration.
	// Default: config.Load
	ConfigLoader func(ctx context.Context) (*config.Config, error)

	// MigratorFactory opens a schema migrator for a database URL.
	// Default: postgres.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)
}

func (d *Deps) loadConfig(ctx context.Context) (*config.Config, error) {
	if d.ConfigLoader != nil {
		return d.ConfigLoader(ctx)
	}
	return config.Load(ctx)
}

func (d *Deps) newMigrator(databaseURL string) (Migrator, error) {
	if d.MigratorFactory != nil {
		return d.MigratorFactory(databaseURL)
	}
	return postgres.NewMigrator(databaseURL)
}

// stores bundles the persistence adapters selected by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	clients  ports.ClientRepository
	denylist ports.TokenDenylist

	// health holds one readiness check per external dependency.
	health  map[string]handler.Pinger
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects the configured store driver and session denylist. The
// caller must Close the result.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{health: map[string]handler.Pinger{}}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.wirePostgres(pool, cfg.Postgres.QueryTimeout)

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to mongodb").Wrap(err)
		}
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			s.Close()
			return nil, err
		}
		s.wireMongo(client, db, cfg.Mongo.QueryTimeout)

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		s.users = memory.NewAccountStore()
		s.roles = memory.NewRoleStore()
		s.clients = memory.NewClientStore()

	default:
		return nil, oops.Code("CONFIG_INVALID").With("driver", cfg.StoreDriver).Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.Redis.Addr == "" {
		s.denylist = memory.NewDenylist()
		return s, nil
	}

	client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		s.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.Redis.Addr).Wrap(err)
	}
	s.closers = append(s.closers, func() { _ = client.Close() })
	s.wireRedis(client)

	return s, nil
}

func (s *stores) wirePostgres(pool *pgxpool.Pool, timeout time.Duration) {
	s.users = postgres.NewAccountRepository(pool, timeout)
	s.roles = postgres.NewRoleRepository(pool, timeout)
	s.clients = postgres.NewClientRepository(pool, timeout)
	s.health["postgres"] = pool.Ping
}

func (s *stores) wireMongo(client *mongodriver.Client, db *mongodriver.Database, timeout time.Duration) {
	s.users = mongo.NewAccountRepository(db, timeout)
	s.roles = mongo.NewRoleRepository(db, timeout)
	s.clients = mongo.NewClientRepository(db, timeout)
	s.health["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
}

func (s *stores) wireRedis(client *goredis.Client) {
	s.denylist = redis.NewDenylist(client)
	s.health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/teecraft/storefront/internal/data/db"
	"github.com/teecraft/storefront/internal/platform/gcp"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/realtime/bus"
	"github.com/teecraft/storefront/internal/snapshot"
)

type Clients struct {
	DB        *db.Service
	Snapshots snapshot.Store
	AuthBus   bus.Bus
	Images    gcp.ImageStore
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	database, err := db.Open(log, cfg.DB.ToDB())
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(database.DB()); err != nil {
			_ = database.Close()
			return Clients{}, fmt.Errorf("automigrate: %w", err)
		}
	}

	store, err := openSnapshotStore(cfg)
	if err != nil {
		_ = database.Close()
		return Clients{}, fmt.Errorf("init snapshot store: %w", err)
	}

	var authBus bus.Bus
	if cfg.RedisAddr != "" {
		authBus, err = bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			_ = store.Close()
			_ = database.Close()
			return Clients{}, fmt.Errorf("init redis auth bus: %w", err)
		}
	} else {
		authBus = bus.NewMemoryBus(log)
	}

	imageCfg, err := cfg.ImageStore()
	if err != nil {
		_ = authBus.Close()
		_ = store.Close()
		_ = database.Close()
		return Clients{}, err
	}
	images, err := gcp.NewImageStore(ctx, log, imageCfg)
	if err != nil {
		_ = authBus.Close()
		_ = store.Close()
		_ = database.Close()
		return Clients{}, fmt.Errorf("init image store: %w", err)
	}

	log.Info("Clients ready", "db_driver", database.Driver(), "snapshot_mode", cfg.SnapshotMode, "redis_bus", cfg.RedisAddr != "")
	return Clients{DB: database, Snapshots: store, AuthBus: authBus, Images: images}, nil
}

func openSnapshotStore(cfg Config) (snapshot.Store, error) {
	switch cfg.SnapshotMode {
	case snapshot.ModeRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return snapshot.NewRedisStore(rdb, "storefront:snapshot:", cfg.SnapshotTTL), nil
	case snapshot.ModeMemory:
		return snapshot.NewMemoryStore(), nil
	default:
		return snapshot.NewBoltStore(cfg.SnapshotPath)
	}
}

func (c Clients) Close(log *logger.Logger) {
	if c.AuthBus != nil {
		if err := c.AuthBus.Close(); err != nil {
			log.Warn("Failed to close auth bus", "error", err)
		}
	}
	if c.Snapshots != nil {
		if err := c.Snapshots.Close(); err != nil {
			log.Warn("Failed to close snapshot store", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn("Failed to close database", "error", err)
		}
	}
}

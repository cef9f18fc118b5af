package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/devketanpro/eafoods-preorder/internal/config"
	"github.com/devketanpro/eafoods-preorder/internal/httpapi"
	"github.com/devketanpro/eafoods-preorder/internal/seed"
	"github.com/devketanpro/eafoods-preorder/internal/service"
	"github.com/devketanpro/eafoods-preorder/internal/store"
	"github.com/devketanpro/eafoods-preorder/internal/store/memstore"
	"github.com/devketanpro/eafoods-preorder/internal/store/pgstore"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pg.Close()
		st = pg
		logger.Info("using postgres store")
	} else {
		st = memstore.New()
		logger.Info("DATABASE_URL not set, using in-memory store")
	}

	if cfg.Seed {
		created, err := seed.Run(ctx, st, time.Now())
		if err != nil {
			logger.Fatal("seeding failed", zap.Error(err))
		}
		logger.Info("catalog seeded", zap.Int("products_created", created))
	}

	svc := service.NewPreOrderService(st)
	srv := httpapi.New(svc, logger)

	logger.Info("pre-order API listening", zap.String("port", cfg.Port))
	if err := srv.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

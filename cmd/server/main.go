package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Shopcore/internal/auth"
	"Shopcore/internal/config"
	"Shopcore/internal/server"
	"Shopcore/pkg/kit"
)

func main() {
	cfg := config.Load()

	log := kit.NewLogger("shopcore", cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	users, err := buildUserStore(cfg)
	if err != nil {
		log.Fatal("user store init failed", zap.Error(err))
	}

	h := server.NewHandler(server.Deps{
		Log:      log,
		Cfg:      cfg,
		Users:    users,
		Registry: prometheus.NewRegistry(),
	})

	if err := kit.RunHTTPServer(cfg.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildUserStore(cfg config.Config) (auth.UserStore, error) {
	if cfg.AuthBackend != "postgres" {
		return auth.NewMemStore(), nil
	}

	db, err := auth.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := auth.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, err
	}

	return auth.NewPostgresStore(db), nil
}

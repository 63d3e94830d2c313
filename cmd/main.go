package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"SieveAPI/internal/config"
	"SieveAPI/internal/db"
	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
	"SieveAPI/internal/resolver"
	"SieveAPI/internal/router"

	"github.com/Masterminds/squirrel"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)
	cfg := config.LoadConfig()

	ctx := context.Background()

	if cfg.Migrations.RunOnStart {
		if err := db.RunMigrations(cfg.PostgresDSN, cfg.Migrations.Dir); err != nil {
			logger.Error("migrations_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		logger.Info("migrations_applied", nil)
	}

	if err := db.InitPostgres(ctx, cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()
	logger.Info("postgres_connected", nil)

	db.InitRedis(cfg.Cache.RedisAddr)
	if err := db.PingRedis(ctx); err != nil {
		// cache is optional; run without it
		logger.Warn("redis_unavailable", map[string]any{"error": err.Error()})
	}
	resolver.SetCacheTTL(cfg.Cache.TTL)

	// Registry init is fail-fast: a conflicting declaration must never make
	// it to request traffic.
	if err := query.InitRegistry(cfg.ResourcesDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("registry_initialized", map[string]any{"resources": len(query.Registry)})

	// Backend meaning of the people.search manual filter: one token matched
	// against name and email.
	resolver.RegisterManualFilter("people", "search", func(raw string) squirrel.Sqlizer {
		pattern := "%" + raw + "%"
		return squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		}
	})

	router.InitRoutes(cfg)

	logger.Info("server_start", map[string]any{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/hyeon/floe/internal/api"
	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/config"
	"github.com/hyeon/floe/internal/db"
	"github.com/hyeon/floe/internal/engine"
	"github.com/hyeon/floe/internal/modules"
	"github.com/hyeon/floe/internal/provider"
	"github.com/hyeon/floe/internal/repository"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("floe v0.1.0")
	fmt.Println("Usage: floe serve")
}

func serve() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	providers := buildProviders(cfg)
	registry := modules.DefaultRegistry(providers, cfg.Files.Dir)
	eng := engine.New(catalog.Default(), registry, engine.WithTimeout(cfg.Engine.Timeout()))

	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		slog.Error("storage error", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := api.NewServer(repo, catalog.Default(), eng)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting floe server", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// buildProviders registers one client per configured provider. Unknown types
// are logged and skipped so a typo in config does not take the server down.
func buildProviders(cfg *config.Config) *provider.Registry {
	reg := provider.NewRegistry()
	for name, pc := range cfg.Providers {
		switch pc.Type {
		case "openai":
			var opts []provider.OpenAIOption
			if pc.URL != "" {
				opts = append(opts, provider.WithOpenAIBaseURL(pc.URL))
			}
			client := provider.NewOpenAIClient(pc.APIKey, opts...)
			reg.RegisterText(client)
			reg.RegisterImage(client)
			slog.Info("registered provider", "name", name, "type", pc.Type)
		case "anthropic":
			var opts []provider.AnthropicOption
			if pc.URL != "" {
				opts = append(opts, provider.WithAnthropicBaseURL(pc.URL))
			}
			reg.RegisterText(provider.NewAnthropicClient(pc.APIKey, opts...))
			slog.Info("registered provider", "name", name, "type", pc.Type)
		default:
			slog.Warn("unknown provider type, skipping", "name", name, "type", pc.Type)
		}
	}
	return reg
}

// buildRepository selects PostgreSQL-backed storage when a database URL is
// configured, plain in-memory storage otherwise.
func buildRepository(cfg *config.Config) (repository.WorkflowRepository, func(), error) {
	mem := repository.NewMemoryWorkflowRepository()
	if cfg.Database.URL == "" {
		slog.Info("no database configured, using in-memory workflow store")
		return mem, func() {}, nil
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("connected to postgres")
	return repository.NewPersistentWorkflowRepository(mem, database), func() { database.Close() }, nil
}

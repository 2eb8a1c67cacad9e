// Package app assembles the services shared by the api and worker binaries.
package app

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/config"
	"github.com/suPer8Hu/pawtrip/internal/db"
	"github.com/suPer8Hu/pawtrip/internal/places"
	"github.com/suPer8Hu/pawtrip/internal/store/redisstore"
	"github.com/suPer8Hu/pawtrip/internal/tools"
	"gorm.io/gorm"
)

// App holds the wired dependencies. Close releases what Build opened.
type App struct {
	DB       *gorm.DB
	Repo     *chat.Repo
	Registry *ai.Registry
	Tools    *tools.Dispatcher

	closers []func() error
}

// SetupLogger installs a JSON slog handler as the default logger.
func SetupLogger(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l})))
}

// Build opens the database, registers the model providers and wires the
// place search tools with the configured cache.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}

	a := &App{DB: gdb, Repo: chat.NewRepo(gdb), Registry: ai.NewRegistry()}
	ai.RegisterDefaults(a.Registry, ProviderSettings(cfg))

	searcher := a.searcher(ctx, cfg)
	if a.Tools, err = tools.NewDefaultDispatcher(searcher); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewService builds the turn pipeline on top of the app's dependencies.
func (a *App) NewService(cfg config.Config, pub chat.TripPublisher) *chat.Service {
	return chat.NewService(chat.NewStore(a.Repo), a.Repo, a.Registry, a.Tools, chat.Options{
		Provider:          cfg.AIProvider,
		Model:             cfg.AIModel,
		ContextWindowSize: cfg.ChatContextWindowSize,
		Publisher:         pub,
	})
}

func (a *App) searcher(ctx context.Context, cfg config.Config) places.Searcher {
	client := places.NewTextSearchClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesTimeout)
	switch cfg.PlacesCache {
	case "none":
		return client
	case "redis":
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			slog.Warn("redis unavailable, places cache degrades to misses", "err", err, "addr", cfg.RedisAddr)
		}
		a.closers = append(a.closers, rs.Close)
		return places.NewCachedSearcher(client, rs, cfg.PlacesCacheTTL)
	default:
		return places.NewCachedSearcher(client, places.NewMemoryCache(cfg.PlacesCacheTTL), cfg.PlacesCacheTTL)
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func ProviderSettings(cfg config.Config) ai.Settings {
	return ai.Settings{
		OllamaBaseURL:     cfg.OllamaBaseURL,
		OllamaModel:       cfg.OllamaModel,
		OpenRouterBaseURL: cfg.OpenRouterBaseURL,
		OpenRouterAPIKey:  cfg.OpenRouterAPIKey,
		OpenRouterModel:   cfg.OpenRouterModel,
		OpenRouterSiteURL: cfg.OpenRouterSiteURL,
		OpenRouterAppName: cfg.OpenRouterAppName,
		GeminiAPIKey:      cfg.GeminiAPIKey,
		GeminiModel:       cfg.GeminiModel,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OpenAIModel:       cfg.OpenAIModel,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
	}
}

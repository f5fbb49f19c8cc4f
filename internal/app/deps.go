package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"quotation-service/internal/cache"
	"quotation-service/internal/config"
	"quotation-service/internal/draft"
	"quotation-service/internal/llm"
	"quotation-service/internal/logger"
	"quotation-service/internal/notify"
	"quotation-service/internal/pdf"
)

// Deps bundles common runtime dependencies for the service.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	LLM      llm.Client
	Cache    cache.Cache
	Notifier notify.Notifier
	Composer *draft.Composer
	PDF      pdf.Generator
}

// Build loads env, config, and shared components. Every provider is
// selected here, once; request handlers only see the interfaces.
func Build() (Deps, error) {
	// Best effort: a missing .env file just means the environment is
	// already populated.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	draftCache, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	ttl := time.Duration(cfg.DraftCacheTTL) * time.Second
	return Deps{
		Config:   cfg,
		Log:      log,
		LLM:      llmClient,
		Cache:    draftCache,
		Notifier: notifier,
		Composer: draft.NewComposer(llmClient, draftCache, ttl, log),
		PDF:      pdf.NewGenerator(),
	}, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			// Without credentials the service still starts; drafts come
			// from the deterministic template path.
			log.Warn("OPENAI_API_KEY not set; running with stub LLM provider")
			return llm.NewStub(), nil
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	case "stub":
		log.Info("using stub LLM client")
		return llm.NewStub(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		log.Info("using Redis draft cache", "addr", cfg.RedisAddr)
		return c, nil
	case "none":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, none)", cfg.CacheProvider)
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger) (notify.Notifier, error) {
	switch cfg.NotifyProvider {
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when NOTIFY_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS notifier")
		return notify.NewNATS(log, nc), nil
	case "none":
		return notify.NewNoOpNotifier(), nil
	default:
		return nil, fmt.Errorf("invalid NOTIFY_PROVIDER: %s (valid options: nats, none)", cfg.NotifyProvider)
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paperlens/originality/internal/config"
	"github.com/paperlens/originality/internal/core/classify"
	"github.com/paperlens/originality/internal/core/normalize"
	"github.com/paperlens/originality/internal/core/ports"
	"github.com/paperlens/originality/internal/core/similarity"
	"github.com/paperlens/originality/internal/core/usecase"
	"github.com/paperlens/originality/internal/infrastructure/cache/redis"
	"github.com/paperlens/originality/internal/infrastructure/embedding/cohere"
	"github.com/paperlens/originality/internal/infrastructure/embedding/ollama"
	"github.com/paperlens/originality/internal/infrastructure/gateway"
	"github.com/paperlens/originality/internal/infrastructure/providers"
	"github.com/paperlens/originality/internal/infrastructure/queue/nats"
	"github.com/paperlens/originality/internal/infrastructure/repository/postgres"
	"github.com/paperlens/originality/internal/observability/metrics"
)

const serviceName = "originality-worker"

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.ScanMetrics

	Queue   *nats.Queue
	Store   ports.ResultStore
	ScanUC  ports.ScanService
	DraftUC ports.DraftComparator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewScanRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	cache, err := redis.NewCache(redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSRequestSubject, cfg.NATSCompletedSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rules, err := config.LoadRules(cfg.ScanRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load scan rules: %w", err)
	}

	norm := normalize.New(normalizeRules(rules))
	scanMetrics := metrics.NewScanMetrics(serviceName)

	embedder, reranker, err := buildSemanticBackends(cfg, logger)
	if err != nil {
		return nil, err
	}

	scorer := similarity.New(norm, embedder, reranker, scorerConfig(rules), logger)
	strategy := buildStrategy(cfg, norm, scorer, logger)
	classifier := classify.New(norm, classifierConfig(rules))

	sourceGateway := gateway.NewMulti(
		buildProviders(cfg),
		gateway.Config{
			CallInterval:     time.Duration(cfg.GatewayCallIntervalMS) * time.Millisecond,
			MaxSentenceRunes: cfg.GatewayMaxSentenceRunes,
		},
		logger,
		func(provider, outcome string) {
			scanMetrics.RecordProviderCall(serviceName, provider, outcome)
		},
	)

	scanUC := usecase.NewScanUseCase(repo, sourceGateway, strategy, classifier, norm, cache, usecase.ScanConfig{
		RetentionFloor:  cfg.RetentionFloor,
		SentenceTimeout: time.Duration(cfg.SentenceTimeoutSeconds) * time.Second,
		LockTTL:         time.Duration(cfg.LockTTLSeconds) * time.Second,
		DuplicateWait:   time.Duration(cfg.DuplicateWaitSeconds) * time.Second,
	}, logger)
	draftUC := usecase.NewDraftCompareUseCase(norm, cfg.FingerprintWindowSize)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: scanMetrics,
		Queue:   queue,
		Store:   repo,
		ScanUC:  scanUC,
		DraftUC: draftUC,

		closeFn: func() {
			queue.Close()
			_ = cache.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// buildSemanticBackends selects the embedding backend and, when enabled, the
// cross-encoder reranker. Both are optional: with neither configured the
// scorer renormalizes over the surface signals alone.
func buildSemanticBackends(cfg config.Config, logger *slog.Logger) (ports.EmbeddingProvider, ports.Reranker, error) {
	var embedder ports.EmbeddingProvider
	var cohereClient *cohere.Client

	switch cfg.EmbeddingBackend {
	case "ollama":
		embedder = ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel)
	case "cohere":
		client, err := cohere.New(cohere.Config{
			APIKey:      cfg.CohereAPIKey,
			EmbedModel:  cfg.CohereEmbedModel,
			RerankModel: cfg.CohereRerankModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init cohere backend: %w", err)
		}
		cohereClient = client
		embedder = client
	case "none":
		logger.Warn("semantic scoring disabled, surface signals only")
	default:
		return nil, nil, fmt.Errorf("unknown embedding backend: %q", cfg.EmbeddingBackend)
	}

	if !cfg.RerankEnabled {
		return embedder, nil, nil
	}
	if cohereClient == nil {
		client, err := cohere.New(cohere.Config{
			APIKey:      cfg.CohereAPIKey,
			EmbedModel:  cfg.CohereEmbedModel,
			RerankModel: cfg.CohereRerankModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init reranker: %w", err)
		}
		cohereClient = client
	}
	return embedder, cohereClient, nil
}

// buildStrategy maps SCORING_STRATEGY onto a scoring mode: "ensemble" runs
// every signal over every provider, any other value names a single provider
// scored on surface signals only.
func buildStrategy(cfg config.Config, norm *normalize.Normalizer, scorer *similarity.Scorer, logger *slog.Logger) usecase.ScoringStrategy {
	if cfg.ScoringStrategy == "" || cfg.ScoringStrategy == "ensemble" {
		return usecase.NewEnsembleStrategy(scorer)
	}
	surfaceScorer := similarity.New(norm, nil, nil, similarity.Config{}, logger)
	return usecase.NewSingleProviderStrategy(surfaceScorer, cfg.ScoringStrategy)
}

func buildProviders(cfg config.Config) []ports.SourceProvider {
	return []ports.SourceProvider{
		providers.NewCrossRef(cfg.CrossrefMailto),
		providers.NewSemanticScholar(cfg.SemanticScholarAPIKey),
		providers.NewSerper(cfg.SerperAPIKey),
	}
}

func normalizeRules(rules *config.ScanRules) normalize.Rules {
	return normalize.Rules{
		StopWords:        rules.StopWords,
		AcademicPhrases:  rules.AcademicPhrases,
		MinSentenceChars: rules.MinSentenceChars,
	}
}

func scorerConfig(rules *config.ScanRules) similarity.Config {
	cfg := similarity.Config{ShortCircuit: rules.ShortCircuit}
	if rules.HasWeights() {
		cfg.Weights = similarity.Weights{
			Lexical:    rules.Weights.Lexical,
			Semantic:   rules.Weights.Semantic,
			Structural: rules.Weights.Structural,
			Jaccard:    rules.Weights.Jaccard,
			Rerank:     rules.Weights.Rerank,
		}
	}
	return cfg
}

func classifierConfig(rules *config.ScanRules) classify.Config {
	cfg := classify.DefaultConfig()
	if rules.MinWords > 0 {
		cfg.MinWords = rules.MinWords
	}
	if rules.Thresholds.AuthoritativeHigh > 0 {
		cfg.AuthoritativeHigh = rules.Thresholds.AuthoritativeHigh
	}
	if rules.Thresholds.AuthoritativeLow > 0 {
		cfg.AuthoritativeLow = rules.Thresholds.AuthoritativeLow
	}
	if rules.Thresholds.WebHigh > 0 {
		cfg.WebHigh = rules.Thresholds.WebHigh
	}
	if rules.Thresholds.WebLow > 0 {
		cfg.WebLow = rules.Thresholds.WebLow
	}
	return cfg
}

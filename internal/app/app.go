package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsVerifier/internal/api"
	"NewsVerifier/internal/config"
	"NewsVerifier/internal/generator"
	"NewsVerifier/internal/imaging"
	"NewsVerifier/internal/infrastructure/cache"
	"NewsVerifier/internal/infrastructure/encyclopedia"
	"NewsVerifier/internal/infrastructure/llm"
	"NewsVerifier/internal/infrastructure/newsapi"
	"NewsVerifier/internal/infrastructure/parser"
	"NewsVerifier/internal/infrastructure/scheduler"
	"NewsVerifier/internal/infrastructure/storage"
	"NewsVerifier/internal/infrastructure/synthetic"
	"NewsVerifier/internal/infrastructure/telegram"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/random"
	"NewsVerifier/internal/retrieval"
	"NewsVerifier/internal/scanner"
	"NewsVerifier/internal/search"
	"NewsVerifier/internal/strategist"
	"NewsVerifier/internal/timeline"
	"NewsVerifier/internal/usecase"
	"NewsVerifier/internal/verifier"
	"NewsVerifier/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	Store      *storage.SQLRepository
	Pipeline   *usecase.Pipeline
	Verifier   *verifier.Verifier
	Images     *imaging.Analyzer
	Timeline   *timeline.Builder
	Strategist *strategist.Service

	pool      *worker.Pool
	scheduler *usecase.Scheduler
	cache     *cache.RedisCache
}

// New builds every component from cfg. Only the store is mandatory; every
// other collaborator degrades when its backend is absent.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rnd := random.New(cfg.Random.Seed)

	searcher := search.NewGateway(search.NewPool(cfg.Search.Endpoints), search.Options{
		Timeout:           cfg.Search.Timeout,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		Burst:             cfg.Search.Burst,
	}, baseLogger.With("component", "search"))

	a := &Application{cfg: cfg, logger: baseLogger, Store: store}

	var contextCache ports.ContextCache
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			baseLogger.Warn("context cache disabled", "error", err)
		} else {
			a.cache = rc
			contextCache = rc
		}
	}

	retriever := retrieval.New(retrieval.Deps{
		Encyclopedia: encyclopedia.NewWikipediaClient(cfg.Encyclopedia.Endpoint, cfg.Encyclopedia.Timeout),
		Searcher:     searcher,
		Cache:        contextCache,
		CacheTTL:     cfg.Cache.TTL,
		Logger:       baseLogger.With("component", "retrieval"),
	})

	gen := generator.New(
		llm.NewOpenAIBackend(cfg.Primary),
		llm.NewCohereBackend(cfg.Secondary),
		baseLogger.With("component", "generator"),
	)
	if _, tier, ok := gen.Select(); ok {
		baseLogger.Info("generative backend selected", "tier", tier)
	} else {
		baseLogger.Warn("no generative backend configured, using synthetic fallbacks")
	}

	a.Verifier = verifier.New(verifier.Deps{
		Retriever: retriever,
		Generator: gen,
		Random:    rnd,
		Logger:    baseLogger.With("component", "verifier"),
	})
	a.Images = imaging.New(imaging.Deps{
		Timeout:   cfg.Imaging.Timeout,
		MaxBytes:  cfg.Imaging.MaxBytes,
		MaxPixels: cfg.Imaging.MaxPixels,
		Matches:   imaging.NewSearchMatchCounter(searcher),
		Random:    rnd,
		Logger:    baseLogger.With("component", "imaging"),
	})
	a.Strategist = strategist.New(strategist.Deps{
		Generator: gen,
		Random:    rnd,
		Logger:    baseLogger.With("component", "strategist"),
	})
	a.Timeline = timeline.New(timeline.Deps{
		Searcher:  searcher,
		Generator: gen,
		Logger:    baseLogger.With("component", "timeline"),
	})

	registry := scanner.NewRegistry(parser.NewRSSScanner(nil), parser.NewHTMLScanner(nil))
	providers := []ports.ArticleProvider{
		parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source")),
		newsapi.NewClient(cfg.NewsAPI),
		synthetic.NewGenerator(rnd, nil),
	}

	var notifier ports.Notifier
	tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	if tg.Configured() {
		notifier = tg
	}

	a.pool = worker.New(cfg.Ingestion.Workers, cfg.Ingestion.QueueSize, baseLogger.With("component", "worker"))
	a.pool.Start()

	a.Pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Providers:         providers,
		Articles:          store,
		Evidence:          store,
		Images:            a.Images,
		Verifier:          a.Verifier,
		Strategist:        a.Strategist,
		Notifier:          notifier,
		Runner:            a.pool,
		ArticlesPerSector: cfg.Ingestion.ArticlesPerSector,
		Logger:            baseLogger.With("component", "pipeline"),
	})

	return a, nil
}

// Serve runs the scheduler and the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), true)
	a.scheduler = usecase.NewScheduler(driver, a.Pipeline, a.cfg.Scheduler.Sectors, a.logger.With("component", "scheduler"))
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	router := api.NewRouter(api.Deps{
		Ingestor:   a.Pipeline,
		Verifier:   a.Verifier,
		Images:     a.Images,
		Timeline:   a.Timeline,
		Summarizer: a.Strategist,
		Articles:   a.Store,
		Evidence:   a.Store,
		Logger:     a.logger.With("component", "api"),
	})
	srv := &http.Server{
		Addr:              a.cfg.API.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", a.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve api: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close stops the scheduler, drains background work and releases stores.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if a.pool != nil {
		if err := a.pool.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain workers: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

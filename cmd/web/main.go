package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/extract"
	"spinwheel/internal/extract/gpt"
	"spinwheel/internal/extract/spark"
	"spinwheel/internal/handlers"
	"spinwheel/internal/history"
	"spinwheel/internal/render"
	"spinwheel/internal/session"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(cfg, sugar); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openHistory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	provider, err := newProvider(cfg, log)
	if err != nil {
		return err
	}
	extractor := extract.NewService(provider, cfg.Wheel.Extract.SystemPrompt, log)

	style, err := render.NewStyle(cfg.Wheel.Render.Palette)
	if err != nil {
		return err
	}
	renderer := render.Renderer{Style: style, FontPath: cfg.FontPath}

	store := session.NewStore(cfg.Wheel, repo, log)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	homeHandler := handlers.NewHomeHandler(store, cfg, log)
	wheelHandler := handlers.NewWheelHandler(store, renderer, extractor, cfg, log)
	analyzeHandler := handlers.NewAnalyzeHandler(extractor, cfg, log)
	assetsHandler := handlers.NewAssetsHandler(staticFS, cfg.Wheel.Offline)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout + cfg.AnalyzeTimeout))
		homeHandler.RegisterRoutes(r)
		wheelHandler.RegisterRoutes(r)
		analyzeHandler.RegisterRoutes(r)
		assetsHandler.RegisterRoutes(r)
	})
	wheelHandler.RegisterStreamRoutes(r)

	go sweepSessions(ctx, store, cfg, log)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", "http://localhost"+cfg.Addr(), "extractor", cfg.Extractor, "locale", cfg.Wheel.Locale)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Dev {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

func newProvider(cfg *config.Config, log *zap.SugaredLogger) (extract.Provider, error) {
	ex := cfg.Wheel.Extract
	switch cfg.Extractor {
	case config.ExtractorSpark:
		if !cfg.Spark.Configured() {
			log.Warnw("spark credentials missing, using stub extractor")
			return extract.Stub{}, nil
		}
		client, err := spark.New(spark.Config{
			URL:         cfg.Spark.URL,
			AppID:       cfg.Spark.AppID,
			APIKey:      cfg.Spark.APIKey,
			APISecret:   cfg.Spark.APISecret,
			Domain:      cfg.Spark.Domain,
			Temperature: ex.Temperature,
			TopK:        ex.TopK,
			MaxTokens:   ex.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ExtractorOpenAI:
		return gpt.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, ex.Temperature), nil
	default:
		return extract.Stub{}, nil
	}
}

func openHistory(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (history.Repository, func(), error) {
	if cfg.PGDSN == "" {
		log.Infow("spin history in memory")
		return history.NewMemory(cfg.HistoryLimit), func() {}, nil
	}
	dbc, err := history.Connect(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	repo, err := history.NewPostgres(dbc)
	if err != nil {
		dbc.Close()
		return nil, nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		dbc.Close()
		return nil, nil, err
	}
	log.Infow("spin history in postgres")
	return repo, dbc.Close, nil
}

func sweepSessions(ctx context.Context, store *session.Store, cfg *config.Config, log *zap.SugaredLogger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.Sweep(now.UTC(), cfg.SessionTTL)
			log.Debugw("session sweep", "live", store.Len())
		}
	}
}

//go:embed static/*
var embeddedStatic embed.FS

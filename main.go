package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/api"
	"github.com/debemdeboas/ghostwriter/internal/config"
	"github.com/debemdeboas/ghostwriter/internal/db"
	"github.com/debemdeboas/ghostwriter/internal/flows"
	"github.com/debemdeboas/ghostwriter/internal/kv"
	"github.com/debemdeboas/ghostwriter/internal/llm"
	"github.com/debemdeboas/ghostwriter/internal/logger"
	"github.com/debemdeboas/ghostwriter/internal/render"
	"github.com/debemdeboas/ghostwriter/internal/routes"
	"github.com/debemdeboas/ghostwriter/internal/sse"
	"github.com/debemdeboas/ghostwriter/internal/store"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	configPath := os.Getenv("GHOSTWRITER_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func setLoggers(log zerolog.Logger) {
	config.SetLogger(logger.Component(log, "config"))
	db.SetLogger(logger.Component(log, "db"))
	kv.SetLogger(logger.Component(log, "kv"))
	llm.SetLogger(logger.Component(log, "llm"))
	flows.SetLogger(logger.Component(log, "flows"))
	render.SetLogger(logger.Component(log, "render"))
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	loc, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Site.Timezone, err)
	}

	backend, closeStorage, err := kv.Open(ctx, kv.OptionsFromConfig(cfg.Storage))
	if err != nil {
		return fmt.Errorf("error opening storage: %w", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Error().Err(err).Msg("Error closing storage")
		}
	}()

	st := store.New(backend, store.WithLogger(logger.Component(log, "store")))
	st.Init()

	var gen flows.Generator = llm.Unavailable{}
	gemini, err := llm.NewGemini(ctx, llm.Options{
		APIKey:      cfg.LLM.APIKey,
		TextModel:   cfg.LLM.TextModel,
		ImageModel:  cfg.LLM.ImageModel,
		Temperature: float32(cfg.LLM.Temperature),
	})
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn().Msg("GEMINI_API_KEY is not set, AI features are disabled")
	case err != nil:
		return err
	default:
		gen = gemini
	}

	handler := api.New(st, flows.New(gen), sse.NewSSEClients(), api.Options{
		Renderer:    cfg.Render.Renderer,
		SyntaxTheme: cfg.Render.SyntaxTheme,
		Location:    loc,
		Logger:      logger.Component(log, "api"),
	})
	st.SetChangeNotifier(handler.NotifyChange)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc(routes.RobotsPath, serveRobots)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("site", cfg.Site.Name).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: /"))
}

func withMiddleware(mux *http.ServeMux) http.Handler {
	secured := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})
	return cacheIt(secured)
}

// cacheIt makes API responses revalidate on every request. The syntax
// stylesheet only changes with the theme, which is part of its URL or
// cookie.
func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		if r.URL.Path == "/syntax.css" {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")

		h(w, r)
	}
}

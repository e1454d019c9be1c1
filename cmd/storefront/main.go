package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
	"github.com/vasiliy-maslov/tg-storefront/internal/client"
	"github.com/vasiliy-maslov/tg-storefront/internal/config"
	storefrontHttp "github.com/vasiliy-maslov/tg-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/tg-storefront/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to the .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	log.Info().Msg("Storefront gateway starting...")
	log.Debug().Str("api_url", cfg.API.URL).Dur("api_timeout", cfg.API.Timeout).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := trace.InitTracer(ctx, cfg.App.Name, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	api := client.New(cfg.API.URL, client.WithHeaders(cfg.API.Headers))

	cartSvc := cart.NewService(api, cfg.API.Timeout)
	checkoutSvc := checkout.NewService(api, api, cartSvc, cfg.API.Timeout)
	catalogSvc := catalog.NewService(api, catalog.Options{
		HiddenCityIDs:         cfg.Catalog.HiddenCityIDs,
		CityScopedCategoryIDs: cfg.Catalog.CityScopedCategoryIDs,
		Timeout:               cfg.API.Timeout,
	})

	router := storefrontHttp.NewRouter(
		storefrontHttp.NewCatalogHandler(catalogSvc),
		storefrontHttp.NewCartHandler(cartSvc, catalogSvc),
		storefrontHttp.NewCheckoutHandler(checkoutSvc, cartSvc),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2*cfg.API.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.App.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

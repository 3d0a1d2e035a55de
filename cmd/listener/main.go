package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"energy-analysis/internal/config"
	"energy-analysis/internal/listener"
	"energy-analysis/internal/pipeline"
	"energy-analysis/internal/pricing"
	"energy-analysis/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config")
	port := flag.String("port", "", "Listen port (default 8080, or LISTENER_PORT)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *port == "" {
		*port = os.Getenv("LISTENER_PORT")
	}
	if *port == "" {
		*port = "8080"
	}

	if os.Getenv("LISTENER_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewMinioSource(cfg.ObjectStore)
	if err != nil {
		log.Error("failed to connect to object store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var prices pipeline.PriceFetcher
	if cfg.FetchPrice {
		prices = pricing.NewClient("", cfg.Workers, log)
	}

	var sink pipeline.Sink
	if cfg.Database.DatabasePath != "" {
		s, err := storage.NewSQLiteSink(cfg.Database.DatabasePath)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer s.Close()
		sink = s
	}

	pipe := pipeline.New(cfg, prices, sink, log)
	srv := listener.New(cfg, pipe, store, log)
	defer srv.Wait()

	handler := cors.Default().Handler(srv.Router())
	addr := fmt.Sprintf(":%s", *port)
	log.Info("starting bucket-notification listener", "addr", addr, "bucket", cfg.ObjectStore.Bucket)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

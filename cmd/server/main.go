package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Clark-Hu/notflix/internal/auth"
	"github.com/Clark-Hu/notflix/internal/backend"
	"github.com/Clark-Hu/notflix/internal/config"
	"github.com/Clark-Hu/notflix/internal/events"
	httpserver "github.com/Clark-Hu/notflix/internal/http"
	"github.com/Clark-Hu/notflix/internal/metrics"
	"github.com/Clark-Hu/notflix/internal/rating"
	"github.com/Clark-Hu/notflix/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[notflix-api] ", log.LstdFlags|log.Lshortfile)

	be, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer be.Close()

	if cfg.SeedPath != "" {
		if _, err := seed.File(ctx, be.Movies, cfg.SeedPath, logger); err != nil {
			log.Fatalf("seed movies: %v", err)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, logger)
		if err != nil {
			log.Fatalf("init event publisher: %v", err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("init token service: %v", err)
	}

	recorder := metrics.New()
	recorder.ObservePool(be.PoolStats)

	engine := rating.NewEngine(be.Movies, rating.Options{
		Logger:    logger,
		Publisher: publisher,
		Metrics:   recorder,
	})
	gate := auth.NewGate(tokens, auth.GateOptions{
		APIPath: cfg.APIPath,
		Logger:  logger,
		Metrics: recorder,
	})

	server := httpserver.New(cfg, httpserver.Deps{
		Movies:  be.Movies,
		Users:   be.Users,
		Ratings: engine,
		Tokens:  tokens,
		Hasher:  auth.NewHasher(),
		Gate:    gate,
		Health:  be.Health,
		Metrics: recorder,
	}, logger)

	logger.Printf("REST API listening on :%s%s", cfg.Port, cfg.APIPath)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("server error: %v", err)
	}
	logger.Printf("REST API stopped")
}

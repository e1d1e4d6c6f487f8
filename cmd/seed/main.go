package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Clark-Hu/notflix/internal/backend"
	"github.com/Clark-Hu/notflix/internal/config"
	"github.com/Clark-Hu/notflix/internal/seed"
)

func main() {
	data := flag.String("data", "data/movies.json", "path to the movie catalogue")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "[notflix-seed] ", log.LstdFlags)

	if cfg.StoreDriver == config.DriverMemory {
		logger.Printf("STORE_DRIVER=memory: movies are discarded on exit, set SEED_PATH on the server instead")
	}

	be, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer be.Close()

	if _, err := seed.File(ctx, be.Movies, *data, logger); err != nil {
		logger.Printf("seed failed: %v", err)
		be.Close()
		os.Exit(1)
	}
}

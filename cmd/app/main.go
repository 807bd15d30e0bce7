package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"GasCurve/internal/di"
	"GasCurve/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	ingestPath := flag.String("ingest", "", "CSV history file to load into the observation store, then exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s series=%s source=%s", cfg.Environment, cfg.Data.Series, cfg.Data.Source)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if *ingestPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := app.Ingest(ctx, *ingestPath)
		if err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		log.Printf("ingested %d observations from %s", n, *ingestPath)
		return
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

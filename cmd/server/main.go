package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"trashvision/internal/api"
	"trashvision/internal/classifier"
	"trashvision/internal/config"
	"trashvision/internal/queue"
	"trashvision/internal/redis"
	"trashvision/internal/storage"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidatePrediction(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	cv := classifier.NewCustomVision(cfg.Prediction.Endpoint, cfg.Prediction.ProjectID, cfg.Prediction.Timeout)
	resolver := classifier.NewResolver(cv, classifier.Candidates(cfg.Prediction), cfg.Prediction.PublishedName)

	opts := api.Options{StaticDir: cfg.Server.StaticDir}

	if cfg.Storage.DSN != "" {
		repo, err := storage.NewPostgres(cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("failed to connect to storage: %v", err)
		}
		defer repo.Close()
		opts.Repo = repo
	}

	if cfg.Cache.Addr != "" {
		cache, err := redis.New(cfg.Cache.Addr, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer cache.Close()
		opts.Cache = cache
	}

	if len(cfg.Queue.Brokers) > 0 {
		publisher, err := queue.NewKafka(cfg.Queue.Brokers, cfg.Queue.Topic)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		defer publisher.Close()
		opts.Publisher = publisher
	}

	server := api.NewServer(resolver, cfg.Prediction.ConfidenceFloor, opts)

	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	server.Shutdown()
}

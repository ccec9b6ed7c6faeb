package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/trigger-engine/internal/config"
	"github.com/jwebster45206/trigger-engine/internal/logger"
	"github.com/jwebster45206/trigger-engine/internal/services/events"
	"github.com/jwebster45206/trigger-engine/internal/services/queue"
	"github.com/jwebster45206/trigger-engine/internal/storage"
	"github.com/jwebster45206/trigger-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Trigger Engine Worker",
		"environment", cfg.Environment,
		"poll_interval", cfg.PollInterval)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.ScenarioDir(), cfg.GameTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	store.SetTriggerCapacity(cfg.TriggerCapacity)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	queueClient, err := queue.NewClient(storageCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	eventQueue := queue.NewEventQueue(queueClient, log)
	log.Info("Queue service initialized successfully")

	broadcaster := events.NewBroadcaster(queueClient.Redis(), log)
	processor := worker.NewProcessor(store, broadcaster, log)
	w := worker.New(eventQueue, processor, queueClient.Redis(), log, os.Getenv("WORKER_ID"), cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Worker started, waiting for events...")
	if err := w.Run(ctx); err != nil {
		log.Error("Worker error", "error", err)
	}
	log.Info("Worker exited")
}

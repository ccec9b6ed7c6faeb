// Command test-enqueue pushes events straight onto a game's Redis queue,
// bypassing the API. Useful for exercising the worker on its own.
//
//	test-enqueue -game <id> -kind destroy -object hq
//	test-enqueue -game <id> -kind tick -ticks 5 -repeat 10
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/trigger-engine/internal/config"
	"github.com/jwebster45206/trigger-engine/internal/logger"
	"github.com/jwebster45206/trigger-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/trigger-engine/pkg/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	gameFlag := flag.String("game", "", "game id to queue events for (required)")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis URL")
	kind := flag.String("kind", string(queuePkg.KindTick), "event kind")
	object := flag.String("object", "", "object id for capture/discover/attack/destroy")
	cell := flag.Int("cell", 0, "cell index for enter_cell")
	house := flag.String("house", "", "acting house; defaults to the player")
	value := flag.Int("value", 0, "credits, or building type for build")
	ticks := flag.Int("ticks", 1, "tick count for tick")
	repeat := flag.Int("repeat", 1, "number of copies to queue")
	flag.Parse()

	gameID, err := uuid.Parse(*gameFlag)
	if err != nil {
		log.Fatalf("Invalid -game %q: %v", *gameFlag, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.SetFlags(0)
	slogger := logger.Setup(cfg)
	client, err := queue.NewClient(ctx, *redisURL, slogger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() {
		_ = client.Close()
	}()
	events := queue.NewEventQueue(client, slogger)

	for range max(*repeat, 1) {
		ev := queuePkg.NewEvent(gameID, queuePkg.EventKind(*kind))
		ev.Object = *object
		ev.Cell = *cell
		ev.House = *house
		ev.Value = *value
		ev.Ticks = *ticks
		if err := events.Enqueue(ctx, ev); err != nil {
			log.Fatal("Failed to enqueue event:", err)
		}
		fmt.Printf("✅ Enqueued %s event: %s\n", ev.Kind, ev.EventID)
	}

	depth, err := events.Depth(ctx, gameID)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}
	fmt.Printf("📊 Queue depth for %s: %d\n", gameID, depth)
}

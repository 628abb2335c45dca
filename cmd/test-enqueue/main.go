package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

// test-enqueue pushes significant events into a running session's inbox.
//
//	go run ./cmd/test-enqueue -session <uuid> whiteboard_read keypad_solved
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	redisAddr := flag.String("redis", cfg.RedisURL, "Redis address")
	sessionFlag := flag.String("session", cfg.SessionID, "session ID to deliver events to")
	flag.Parse()

	if *sessionFlag == "" || flag.NArg() == 0 {
		log.Fatal("usage: test-enqueue -session <uuid> <event> [event...]")
	}
	sessionID, err := uuid.Parse(*sessionFlag)
	if err != nil {
		log.Fatal("Invalid session ID:", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	fmt.Println("Connected to Redis successfully!")

	inbox := queue.NewEventQueue(client, logger.Setup(cfg))
	for _, event := range flag.Args() {
		req := queuePkg.NewEventRequest(sessionID, event, queuePkg.SourceTool)
		if err := inbox.Enqueue(ctx, req); err != nil {
			log.Fatal("Failed to enqueue event:", err)
		}
		fmt.Printf("✅ Enqueued %s: %s\n", event, req.RequestID)
	}

	depth, err := inbox.Depth(ctx, sessionID)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}
	fmt.Printf("\n📊 Inbox depth for %s: %d\n", sessionID, depth)
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuserp/internal/catalog"
	"campuserp/internal/config"
	"campuserp/internal/queue"
	"campuserp/internal/store"
	"campuserp/internal/summary"
)

// Worker consumes attendance-saved messages and refreshes the cached
// per-student attendance summaries.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campuserp:attendance")
	}

	cache := summary.NewCache(redisClient.Client, catalog.NewRepository(db.Client))

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "attendance_saved" {
			continue
		}

		var saved queue.AttendanceSaved
		if err := json.Unmarshal(msg.Body, &saved); err != nil {
			log.Printf("bad attendance_saved payload: %v", err)
			continue
		}

		log.Printf("refreshing summaries for %d students (date %s)", len(saved.StudentIDs), saved.Date)
		for _, studentID := range saved.StudentIDs {
			if err := cache.Refresh(ctx, studentID); err != nil {
				log.Printf("summary refresh failed for student %d: %v", studentID, err)
			}
		}

		time.Sleep(10 * time.Millisecond) // Small delay between batches
	}

	log.Println("worker stopped")
}

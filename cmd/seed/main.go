package main

import (
	"context"
	"log"
	"os"
	"time"

	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

func strPtr(s string) *string { return &s }

// seeds a handful of tasks for local development
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	repo := repository.NewTaskRepository(pool)
	now := time.Now().UTC()

	samples := []*domain.Task{
		{Title: "Pay rent", Description: strPtr("Transfer before the first of the month"), Status: domain.StatusPending, DueDate: now.AddDate(0, 0, 3)},
		{Title: "Write weekly report", Status: domain.StatusInProgress, DueDate: now.AddDate(0, 0, 1)},
		{Title: "Book dentist appointment", Status: domain.StatusPending, DueDate: now.AddDate(0, 0, 14)},
		{Title: "Renew passport", Description: strPtr("Check photo requirements first"), Status: domain.StatusCompleted, DueDate: now.AddDate(0, -1, 0)},
	}

	for _, t := range samples {
		if err := repo.Insert(ctx, t); err != nil {
			log.Fatalf("insert %q failed: %v", t.Title, err)
		}
		log.Printf("created task id=%d title=%q status=%s\n", t.ID, t.Title, t.Status)
	}

	items, total, err := repo.List(ctx, domain.TaskQuery{Sort: "due_date", Order: "asc", Limit: 10})
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	log.Printf("store now holds %d tasks, first page has %d\n", total, len(items))
}

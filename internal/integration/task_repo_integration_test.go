package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Runs only against a real database: set DATABASE_URL to enable.
func TestTaskRepository_CRUDAndList(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	// marker keeps this run's rows distinguishable from existing data
	marker := fmt.Sprintf("it-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = db.Exec(ctx, `DELETE FROM tasks WHERE title LIKE $1`, marker+"%")
	})

	repo := repository.NewTaskRepository(db)
	due := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	var created []*domain.Task
	for i := 0; i < 3; i++ {
		task := &domain.Task{
			Title:   fmt.Sprintf("%s task %d", marker, i),
			Status:  domain.StatusPending,
			DueDate: due.AddDate(0, 0, i),
		}
		if err := repo.Insert(ctx, task); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if task.ID == 0 || task.CreatedAt.IsZero() {
			t.Fatalf("insert %d: server fields not assigned: %+v", i, task)
		}
		created = append(created, task)
	}

	got, err := repo.GetByID(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != created[0].Title || !got.DueDate.Equal(created[0].DueDate) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, created[0])
	}

	// partial update: status only
	status := domain.StatusCompleted
	updated, err := repo.Update(ctx, created[0].ID, domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.Title != created[0].Title {
		t.Fatalf("partial update wrong: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at not bumped: %v / %v", updated.UpdatedAt, updated.CreatedAt)
	}

	// filtered listing with total
	items, total, err := repo.List(ctx, domain.TaskQuery{
		Title: marker,
		Sort:  "due_date",
		Order: "asc",
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("list: total=%d len=%d; want 3/2", total, len(items))
	}
	if items[0].DueDate.After(items[1].DueDate) {
		t.Fatal("list not ascending by due date")
	}

	// status filter
	_, total, err = repo.List(ctx, domain.TaskQuery{
		Title:    marker,
		Statuses: []domain.TaskStatus{domain.StatusCompleted},
		Sort:     "id",
		Order:    "asc",
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if total != 1 {
		t.Fatalf("status filter total=%d; want 1", total)
	}

	// delete and not-found behavior
	if err := repo.Delete(ctx, created[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, created[1].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, created[1].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get deleted: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, created[1].ID, domain.TaskPatch{Status: &status}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update deleted: expected ErrNotFound, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

func newTestService() *TaskService {
	return NewTaskService(repository.NewMemoryStore())
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func mustCreate(t *testing.T, s *TaskService, title, due string) *domain.Task {
	t.Helper()
	task, err := s.Create(context.Background(), CreateTaskInput{
		Title:   title,
		DueDate: strPtr(due),
	})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func TestCreate_AssignsIDAndDefaults(t *testing.T) {
	s := newTestService()

	task := mustCreate(t, s, "Pay rent", "2025-01-01T09:00:00Z")
	if task.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if task.Status != domain.StatusPending {
		t.Fatalf("expected default status pending, got %s", task.Status)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Fatal("expected server-assigned timestamps")
	}
	want := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if !task.DueDate.Equal(want) {
		t.Fatalf("due date = %v; want %v", task.DueDate, want)
	}

	second := mustCreate(t, s, "Second", "2025-01-02T09:00:00Z")
	if second.ID == task.ID {
		t.Fatalf("ids must be unique, both %d", task.ID)
	}
}

func TestCreate_TrimsTitle(t *testing.T) {
	s := newTestService()

	task := mustCreate(t, s, "  Pay rent  ", "2025-01-01T09:00:00Z")
	if task.Title != "Pay rent" {
		t.Fatalf("title = %q; want trimmed", task.Title)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := newTestService()

	due := strPtr("2025-01-01T09:00:00Z")
	cases := []struct {
		name  string
		in    CreateTaskInput
		field string
	}{
		{"missing title", CreateTaskInput{DueDate: due}, "title"},
		{"whitespace title", CreateTaskInput{Title: "   ", DueDate: due}, "title"},
		{"title too long", CreateTaskInput{Title: strings.Repeat("x", 201), DueDate: due}, "title"},
		{"missing due date", CreateTaskInput{Title: "A"}, "due_date"},
		{"malformed due date", CreateTaskInput{Title: "A", DueDate: strPtr("tomorrow")}, "due_date"},
		{"bad status", CreateTaskInput{Title: "A", DueDate: due, Status: strPtr("done")}, "status"},
		{"long description", CreateTaskInput{Title: "A", DueDate: due, Description: strPtr(strings.Repeat("x", 10001))}, "description"},
	}

	for _, tc := range cases {
		_, err := s.Create(context.Background(), tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if _, ok := ve.Fields[tc.field]; !ok {
			t.Fatalf("%s: expected field %q in %v", tc.name, tc.field, ve.Fields)
		}
	}
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created, err := s.Create(ctx, CreateTaskInput{
		Title:       "Pay rent",
		Description: strPtr("before the first"),
		DueDate:     strPtr("2025-01-01T09:00:00Z"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := s.Update(ctx, created.ID, UpdateTaskInput{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status = %s; want completed", updated.Status)
	}
	if updated.Title != created.Title {
		t.Fatalf("title changed: %q -> %q", created.Title, updated.Title)
	}
	if updated.Description == nil || *updated.Description != *created.Description {
		t.Fatal("description changed by status-only update")
	}
	if !updated.DueDate.Equal(created.DueDate) {
		t.Fatal("due date changed by status-only update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at must be immutable")
	}
}

func TestUpdate_ValidatesSuppliedFields(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created := mustCreate(t, s, "Pay rent", "2025-01-01T09:00:00Z")

	cases := []struct {
		name  string
		in    UpdateTaskInput
		field string
	}{
		{"empty title", UpdateTaskInput{Title: strPtr("  ")}, "title"},
		{"bad status", UpdateTaskInput{Status: strPtr("cancelled")}, "status"},
		{"bad due date", UpdateTaskInput{DueDate: strPtr("not-a-date")}, "due_date"},
	}

	for _, tc := range cases {
		_, err := s.Update(ctx, created.ID, tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if _, ok := ve.Fields[tc.field]; !ok {
			t.Fatalf("%s: expected field %q in %v", tc.name, tc.field, ve.Fields)
		}
	}

	// invalid update must not have touched the row
	task, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Title != "Pay rent" || task.Status != domain.StatusPending {
		t.Fatalf("task mutated by rejected update: %+v", task)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestService()

	_, err := s.Update(context.Background(), 9999, UpdateTaskInput{Status: strPtr("completed")})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Idempotence(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	created := mustCreate(t, s, "Pay rent", "2025-01-01T09:00:00Z")
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, created.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("repeat delete %d: expected ErrNotFound, got %v", i, err)
		}
	}
}

func TestList_DefaultSortIsDueDateAscending(t *testing.T) {
	s := newTestService()

	mustCreate(t, s, "Later", "2025-03-01T09:00:00Z")
	mustCreate(t, s, "Soonest", "2025-01-01T09:00:00Z")
	mustCreate(t, s, "Middle", "2025-02-01T09:00:00Z")

	items, total, err := s.List(context.Background(), ListTasksInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total=%d len=%d; want 3/3", total, len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].DueDate.Before(items[i-1].DueDate) {
			t.Fatalf("items not ascending by due date at %d", i)
		}
	}
}

func TestList_DescendingReversesOrder(t *testing.T) {
	s := newTestService()

	for i := 1; i <= 4; i++ {
		mustCreate(t, s, fmt.Sprintf("Task %d", i), fmt.Sprintf("2025-01-0%dT09:00:00Z", i))
	}

	asc, _, err := s.List(context.Background(), ListTasksInput{Order: "asc"})
	if err != nil {
		t.Fatalf("list asc: %v", err)
	}
	desc, _, err := s.List(context.Background(), ListTasksInput{Order: "desc"})
	if err != nil {
		t.Fatalf("list desc: %v", err)
	}
	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("desc is not the reverse of asc at %d", i)
		}
	}
}

func TestList_StatusFilter(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	t1 := mustCreate(t, s, "A", "2025-01-01T09:00:00Z")
	mustCreate(t, s, "B", "2025-01-02T09:00:00Z")
	if _, err := s.Update(ctx, t1.ID, UpdateTaskInput{Status: strPtr("completed")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, total, err := s.List(ctx, ListTasksInput{StatusFilter: true, Statuses: []string{"completed"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != t1.ID {
		t.Fatalf("completed filter returned total=%d items=%d", total, len(items))
	}

	// filter present but naming no statuses matches nothing
	items, total, err = s.List(ctx, ListTasksInput{StatusFilter: true})
	if err != nil {
		t.Fatalf("list empty set: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("empty status set: total=%d items=%d; want 0/0", total, len(items))
	}

	// no filter at all returns everything
	_, total, err = s.List(ctx, ListTasksInput{})
	if err != nil {
		t.Fatalf("list no filter: %v", err)
	}
	if total != 2 {
		t.Fatalf("no filter total=%d; want 2", total)
	}
}

func TestList_TitleContainsIsCaseInsensitive(t *testing.T) {
	s := newTestService()

	mustCreate(t, s, "Pay Rent", "2025-01-01T09:00:00Z")
	mustCreate(t, s, "Buy groceries", "2025-01-02T09:00:00Z")

	items, total, err := s.List(context.Background(), ListTasksInput{TitleQuery: "rent"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Title != "Pay Rent" {
		t.Fatalf("title filter: total=%d items=%d", total, len(items))
	}
}

func TestList_Pagination(t *testing.T) {
	s := newTestService()

	for i := 0; i < 35; i++ {
		mustCreate(t, s, fmt.Sprintf("Task %02d", i), "2025-01-01T09:00:00Z")
	}

	items, total, err := s.List(context.Background(), ListTasksInput{Limit: intPtr(30)})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if total != 35 || len(items) != 30 {
		t.Fatalf("page 1: total=%d len=%d; want 35/30", total, len(items))
	}

	items, total, err = s.List(context.Background(), ListTasksInput{Limit: intPtr(30), Offset: intPtr(30)})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 35 || len(items) != 5 {
		t.Fatalf("page 2: total=%d len=%d; want 35/5", total, len(items))
	}
}

func TestList_LimitClampedToMax(t *testing.T) {
	s := newTestService()

	for i := 0; i < MaxPageSize+5; i++ {
		mustCreate(t, s, fmt.Sprintf("Task %03d", i), "2025-01-01T09:00:00Z")
	}

	items, total, err := s.List(context.Background(), ListTasksInput{Limit: intPtr(MaxPageSize + 100)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != int64(MaxPageSize+5) {
		t.Fatalf("total=%d; want %d", total, MaxPageSize+5)
	}
	if len(items) != MaxPageSize {
		t.Fatalf("len=%d; want clamp to %d", len(items), MaxPageSize)
	}
}

func TestList_Validation(t *testing.T) {
	s := newTestService()

	badID := int64(0)
	cases := []struct {
		name  string
		in    ListTasksInput
		field string
	}{
		{"unknown sort", ListTasksInput{Sort: "priority"}, "sort"},
		{"bad order", ListTasksInput{Order: "sideways"}, "order"},
		{"zero limit", ListTasksInput{Limit: intPtr(0)}, "limit"},
		{"negative offset", ListTasksInput{Offset: intPtr(-1)}, "offset"},
		{"non-positive id", ListTasksInput{ID: &badID}, "id"},
		{"bad status value", ListTasksInput{StatusFilter: true, Statuses: []string{"bogus"}}, "status"},
	}

	for _, tc := range cases {
		_, _, err := s.List(context.Background(), tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if _, ok := ve.Fields[tc.field]; !ok {
			t.Fatalf("%s: expected field %q in %v", tc.name, tc.field, ve.Fields)
		}
	}
}

func TestList_SortByEveryWhitelistedField(t *testing.T) {
	s := newTestService()

	mustCreate(t, s, "B", "2025-02-01T09:00:00Z")
	mustCreate(t, s, "A", "2025-01-01T09:00:00Z")

	for field := range sortFields {
		if _, _, err := s.List(context.Background(), ListTasksInput{Sort: field}); err != nil {
			t.Fatalf("sort by %s: %v", field, err)
		}
	}
}

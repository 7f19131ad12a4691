package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxTitleLen       = 200
	MaxDescriptionLen = 10000
)

// validation messages, keyed per field in ValidationError.Fields
const (
	msgTitleEmpty   = "must not be empty"
	msgTitleTooLong = "must be at most 200 characters"
	msgDescTooLong  = "must be at most 10000 characters"
	msgBadStatus    = "must be one of pending, in_progress, completed"
	msgBadDueDate   = "must be an RFC 3339 timestamp"
	msgDueRequired  = "is required"
)

// TaskStore is the persistence contract the service talks to.
// repository.TaskRepository (Postgres) and repository.MemoryStore implement it.
type TaskStore interface {
	Insert(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, id int64, p domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, int64, error)
}

// ValidationError reports invalid input with a message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var sortFields = map[string]bool{
	"id":         true,
	"title":      true,
	"status":     true,
	"due_date":   true,
	"created_at": true,
	"updated_at": true,
}

type TaskService struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// CreateTaskInput is the wire-level create payload before validation.
// DueDate arrives as a string so a malformed timestamp surfaces as a
// field error instead of a generic decode failure.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
}

// Create validates the input and persists a new task.
// Status defaults to pending when omitted.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	fields := map[string]string{}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields["title"] = msgTitleEmpty
	} else if utf8.RuneCountInString(title) > MaxTitleLen {
		fields["title"] = msgTitleTooLong
	}

	if in.Description != nil && utf8.RuneCountInString(*in.Description) > MaxDescriptionLen {
		fields["description"] = msgDescTooLong
	}

	var due time.Time
	if in.DueDate == nil || *in.DueDate == "" {
		fields["due_date"] = msgDueRequired
	} else {
		parsed, err := time.Parse(time.RFC3339, *in.DueDate)
		if err != nil {
			fields["due_date"] = msgBadDueDate
		} else {
			due = parsed.UTC()
		}
	}

	status := domain.StatusPending
	if in.Status != nil {
		status = domain.TaskStatus(*in.Status)
		if !domain.ValidStatus(status) {
			fields["status"] = msgBadStatus
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	t := &domain.Task{
		Title:       title,
		Description: in.Description,
		Status:      status,
		DueDate:     due,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateTaskInput is a partial update payload. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
}

// Update validates every supplied field under the create rules and applies
// the resulting patch. Omitted fields keep their stored values.
func (s *TaskService) Update(ctx context.Context, id int64, in UpdateTaskInput) (*domain.Task, error) {
	fields := map[string]string{}
	var patch domain.TaskPatch

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			fields["title"] = msgTitleEmpty
		} else if utf8.RuneCountInString(title) > MaxTitleLen {
			fields["title"] = msgTitleTooLong
		} else {
			patch.Title = &title
		}
	}

	if in.Description != nil {
		if utf8.RuneCountInString(*in.Description) > MaxDescriptionLen {
			fields["description"] = msgDescTooLong
		} else {
			patch.Description = in.Description
		}
	}

	if in.Status != nil {
		status := domain.TaskStatus(*in.Status)
		if !domain.ValidStatus(status) {
			fields["status"] = msgBadStatus
		} else {
			patch.Status = &status
		}
	}

	if in.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *in.DueDate)
		if err != nil {
			fields["due_date"] = msgBadDueDate
		} else {
			due := parsed.UTC()
			patch.DueDate = &due
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.store.Update(ctx, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// ListTasksInput carries raw listing parameters. StatusFilter distinguishes
// "status parameter absent" from "present with no usable values".
type ListTasksInput struct {
	ID           *int64
	TitleQuery   string
	Statuses     []string
	StatusFilter bool
	Sort         string
	Order        string
	Limit        *int
	Offset       *int
}

// List validates filters, applies defaults and returns the page plus the
// total count of tasks matching the filters.
func (s *TaskService) List(ctx context.Context, in ListTasksInput) ([]*domain.Task, int64, error) {
	fields := map[string]string{}

	if in.ID != nil && *in.ID < 1 {
		fields["id"] = "must be a positive integer"
	}

	statuses := make([]domain.TaskStatus, 0, len(in.Statuses))
	for _, raw := range in.Statuses {
		st := domain.TaskStatus(raw)
		if !domain.ValidStatus(st) {
			fields["status"] = msgBadStatus
			break
		}
		statuses = append(statuses, st)
	}

	sortField := in.Sort
	if sortField == "" {
		sortField = "due_date"
	}
	if !sortFields[sortField] {
		fields["sort"] = "must be one of id, title, status, due_date, created_at, updated_at"
	}

	order := in.Order
	if order == "" {
		order = "asc"
	}
	if order != "asc" && order != "desc" {
		fields["order"] = "must be asc or desc"
	}

	limit := DefaultPageSize
	if in.Limit != nil {
		limit = *in.Limit
		if limit < 1 {
			fields["limit"] = "must be a positive integer"
		} else if limit > MaxPageSize {
			limit = MaxPageSize
		}
	}

	offset := 0
	if in.Offset != nil {
		offset = *in.Offset
		if offset < 0 {
			fields["offset"] = "must not be negative"
		}
	}

	if len(fields) > 0 {
		return nil, 0, &ValidationError{Fields: fields}
	}

	// a status filter that names no statuses matches nothing
	if in.StatusFilter && len(statuses) == 0 {
		return []*domain.Task{}, 0, nil
	}

	q := domain.TaskQuery{
		ID:     in.ID,
		Title:  strings.TrimSpace(in.TitleQuery),
		Sort:   sortField,
		Order:  order,
		Limit:  limit,
		Offset: offset,
	}
	if in.StatusFilter {
		q.Statuses = statuses
	}

	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return items, total, nil
}

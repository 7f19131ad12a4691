package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/internal/domain"
)

// MemoryStore keeps tasks in process memory. It backs the server when
// DATABASE_URL is unset and the service/handler unit tests.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, tasks: make(map[int64]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}

func (s *MemoryStore) Insert(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.ID = s.nextID
	s.nextID++
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, p domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	t.UpdatedAt = time.Now().UTC()

	return cloneTask(t), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*domain.Task
	for _, t := range s.tasks {
		if q.ID != nil && t.ID != *q.ID {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Title)) {
			continue
		}
		if q.Statuses != nil && !statusIn(t.Status, q.Statuses) {
			continue
		}
		matched = append(matched, cloneTask(t))
	}

	desc := q.Order == "desc"
	sort.Slice(matched, func(i, j int) bool {
		if desc {
			return taskLess(matched[j], matched[i], q.Sort)
		}
		return taskLess(matched[i], matched[j], q.Sort)
	})

	total := int64(len(matched))

	start := q.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]*domain.Task, 0, end-start)
	items = append(items, matched[start:end]...)
	return items, total, nil
}

func statusIn(s domain.TaskStatus, set []domain.TaskStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// taskLess orders by the given sort field with id as tie-break,
// matching the ORDER BY used by the Postgres store.
func taskLess(a, b *domain.Task, field string) bool {
	switch field {
	case "id":
		return a.ID < b.ID
	case "title":
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case "status":
		if a.Status != b.Status {
			return a.Status < b.Status
		}
	case "created_at":
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case "updated_at":
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	default: // due_date
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
	}
	return a.ID < b.ID
}

package domain

import "time"

// TaskStatus - workflow state of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ValidStatus reports whether s is one of the three defined statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task - persisted work item
type Task struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      TaskStatus `db:"status" json:"status"`
	DueDate     time.Time  `db:"due_date" json:"due_date"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskPatch carries the fields of a partial update. Nil means "leave unchanged".
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	DueDate     *time.Time
}

// TaskQuery describes a filtered, sorted, paginated listing.
// Statuses == nil means no status filter; an empty non-nil slice means
// the filter is present but matches nothing.
type TaskQuery struct {
	ID       *int64
	Title    string
	Statuses []TaskStatus
	Sort     string
	Order    string
	Limit    int
	Offset   int
}

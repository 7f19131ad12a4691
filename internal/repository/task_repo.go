package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

const taskColumns = "id, title, description, status, due_date, created_at, updated_at"

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert persists a new task and fills the server-assigned fields.
func (r *TaskRepository) Insert(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, due_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.Status, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

// Update applies only the fields set in the patch and bumps updated_at.
func (r *TaskRepository) Update(ctx context.Context, id int64, p domain.TaskPatch) (*domain.Task, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.DueDate != nil {
		add("due_date", *p.DueDate)
	}
	set = append(set, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), taskColumns)

	return scanTask(r.db.QueryRow(ctx, query, args...))
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of matching tasks plus the total count of rows
// matching the filters regardless of the page window. q.Sort and q.Order
// must already be validated against the service whitelist.
func (r *TaskRepository) List(ctx context.Context, q domain.TaskQuery) ([]*domain.Task, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if q.ID != nil {
		args = append(args, *q.ID)
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	if q.Title != "" {
		args = append(args, "%"+q.Title+"%")
		where = append(where, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if q.Statuses != nil {
		ss := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			ss[i] = string(s)
		}
		args = append(args, ss)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM tasks"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if q.Order == "desc" {
		dir = "DESC"
	}
	// secondary id ordering keeps pages stable when the sort column has ties
	query := fmt.Sprintf("SELECT %s FROM tasks%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		taskColumns, cond, q.Sort, dir, dir, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.Task, 0, q.Limit)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &t)
	}
	return items, total, rows.Err()
}

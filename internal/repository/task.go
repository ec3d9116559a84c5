package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskpro/internal/models"
	"taskpro/internal/status"
)

// ErrTaskNotFound is returned when no task matched both the id and the
// owner. A row owned by someone else reports the same error, so a caller
// cannot probe whether a given id exists.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError rejects a request body before any storage call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TaskPatch carries a partial update. Nil fields are left unchanged; an
// empty title/description or an invalid status is ignored the same way.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskRepository owns all reads and writes of the tasks table. Every
// operation takes the owner id as its first argument; there is no way to
// reach a row without it.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = "id, user_id, title, description, status, created_at, updated_at"

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var desc sql.NullString
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &desc, &task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if desc.Valid {
		task.Description = &desc.String
	}
	return task, nil
}

// List returns the owner's tasks, newest first. An unknown statusFilter
// means no filter; no rows means an empty slice, not an error.
func (r *TaskRepository) List(ownerID, statusFilter string) ([]models.Task, error) {
	var rows *sql.Rows
	var err error

	if status.IsValid(statusFilter) {
		rows, err = r.db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id ASC",
			ownerID, statusFilter,
		)
	} else {
		rows, err = r.db.Query(
			"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id ASC",
			ownerID,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create inserts a task for ownerID and returns the stored row. The title
// must be non-empty after trimming; anything other than a known status is
// stored as the default.
func (r *TaskRepository) Create(ownerID, title string, description *string, st string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !status.IsValid(st) {
		st = string(status.Default)
	}

	row := r.db.QueryRow(
		"INSERT INTO tasks (user_id, title, description, status) VALUES ($1, $2, $3, $4) RETURNING "+taskColumns,
		ownerID, title, description, st,
	)
	return scanTask(row)
}

// Update applies patch to the row matching both taskID and ownerID and
// returns the updated row. It always bumps updated_at. A missing or
// foreign row reports ErrTaskNotFound.
func (r *TaskRepository) Update(ownerID string, taskID int, patch TaskPatch) (models.Task, error) {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if patch.Status != nil && !status.IsValid(*patch.Status) {
		patch.Status = nil
	}

	row := r.db.QueryRow(`
		UPDATE tasks
		SET title = COALESCE(NULLIF($1, ''), title),
			description = COALESCE(NULLIF($2, ''), description),
			status = COALESCE(NULLIF($3, ''), status),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND user_id = $5
		RETURNING `+taskColumns,
		patch.Title, patch.Description, patch.Status, taskID, ownerID,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, err
}

// Delete removes the row matching both taskID and ownerID. Deleting a row
// that is already gone, or that belongs to someone else, reports
// ErrTaskNotFound.
func (r *TaskRepository) Delete(ownerID string, taskID int) error {
	res, err := r.db.Exec("DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"taskpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) models.User {
	t.Helper()
	users := NewUserRepository(testDB)
	unique := fmt.Sprintf("%s_%d", t.Name(), time.Now().UnixNano())
	user, err := users.UpsertFromOAuth(OAuthProfile{
		Provider:          "github",
		ProviderAccountID: unique,
		Name:              "Test User",
		Email:             unique + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func TestCreateTaskDefaults(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	task, err := repo.Create(user.ID, "Buy milk", nil, "")
	require.NoError(t, err)
	assert.Greater(t, task.ID, 0)
	assert.Equal(t, user.ID, task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Description)
	assert.Equal(t, "pending", task.Status)
	assert.False(t, task.CreatedAt.IsZero())

	// invalid status also falls back to the default
	task, err = repo.Create(user.ID, "Walk dog", nil, "urgent")
	require.NoError(t, err)
	assert.Equal(t, "pending", task.Status)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := repo.Create(user.ID, title, nil, "pending")
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr), "title %q should fail validation", title)
	}
}

func TestListEmpty(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	tasks, err := repo.List(user.ID, "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Len(t, tasks, 0)
}

func TestListStatusFilter(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	_, err := repo.Create(user.ID, "Pending task", nil, "pending")
	require.NoError(t, err)
	done, err := repo.Create(user.ID, "Done task", nil, "completed")
	require.NoError(t, err)

	tasks, err := repo.List(user.ID, "completed")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)

	// an unknown filter value means no filter at all
	tasks, err = repo.List(user.ID, "urgent")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestListOrdering(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	a, err := repo.Create(user.ID, "a", nil, "")
	require.NoError(t, err)
	b, err := repo.Create(user.ID, "b", nil, "")
	require.NoError(t, err)
	c, err := repo.Create(user.ID, "c", nil, "")
	require.NoError(t, err)

	// a and b share an instant, c is older
	_, err = testDB.Exec("UPDATE tasks SET created_at = NOW() WHERE id IN ($1, $2)", a.ID, b.ID)
	require.NoError(t, err)
	_, err = testDB.Exec("UPDATE tasks SET created_at = NOW() - interval '1 hour' WHERE id = $1", c.ID)
	require.NoError(t, err)

	tasks, err := repo.List(user.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	// newest first; equal instants tie-break by id ascending
	assert.Equal(t, []int{a.ID, b.ID, c.ID}, []int{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestOwnershipIsolation(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	alice := newTestUser(t)
	mallory := newTestUser(t)

	task, err := repo.Create(alice.ID, "Private task", nil, "")
	require.NoError(t, err)

	tasks, err := repo.List(mallory.ID, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 0)

	newTitle := "hijacked"
	_, err = repo.Update(mallory.ID, task.ID, TaskPatch{Title: &newTitle})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = repo.Delete(mallory.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// the row is untouched
	tasks, err = repo.List(alice.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Private task", tasks[0].Title)
}

func TestUpdatePartialPatch(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	desc := "original description"
	task, err := repo.Create(user.ID, "Write report", &desc, "")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	st := "completed"
	updated, err := repo.Update(user.ID, task.ID, TaskPatch{Status: &st})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original description", *updated.Description)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt), "updated_at must be bumped")
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	task, err := repo.Create(user.ID, "Stable task", nil, "")
	require.NoError(t, err)

	updated, err := repo.Update(user.ID, task.ID, TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Status, updated.Status)
}

func TestUpdateIgnoresEmptyAndInvalidFields(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	task, err := repo.Create(user.ID, "Keep me", nil, "")
	require.NoError(t, err)

	empty := "   "
	bad := "urgent"
	updated, err := repo.Update(user.ID, task.ID, TaskPatch{Title: &empty, Status: &bad})
	require.NoError(t, err)
	assert.Equal(t, "Keep me", updated.Title)
	assert.Equal(t, "pending", updated.Status)
}

func TestUpdateMissingTask(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	st := "completed"
	_, err := repo.Update(user.ID, 999999, TaskPatch{Status: &st})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteIsStrictOnSecondCall(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	user := newTestUser(t)

	task, err := repo.Create(user.ID, "Delete me", nil, "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(user.ID, task.ID))
	assert.ErrorIs(t, repo.Delete(user.ID, task.ID), ErrTaskNotFound)
}

// The end-to-end ownership scenario: A creates, B sees nothing, A
// completes the task.
func TestTwoUserScenario(t *testing.T) {
	requireDB(t)
	repo := NewTaskRepository(testDB)
	userA := newTestUser(t)
	userB := newTestUser(t)

	task, err := repo.Create(userA.ID, "Write report", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "pending", task.Status)

	tasksB, err := repo.List(userB.ID, "")
	require.NoError(t, err)
	assert.Len(t, tasksB, 0)

	st := "completed"
	_, err = repo.Update(userA.ID, task.ID, TaskPatch{Status: &st})
	require.NoError(t, err)

	tasksA, err := repo.List(userA.ID, "")
	require.NoError(t, err)
	require.Len(t, tasksA, 1)
	assert.Equal(t, "completed", tasksA[0].Status)
	assert.Equal(t, "Write report", tasksA[0].Title)
}

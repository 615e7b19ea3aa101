package sqlstore

import (
	"context"
	"testing"
	"time"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
	"todo-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return New(db)
}

func seedUser(t *testing.T, s *Store, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedTask(t *testing.T, s *Store, title string, owner *models.User, at time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:     title,
		Priority:  models.PriorityMedium,
		OwnerID:   &owner.ID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func TestCreateUser_NormalisesAndRejectsDuplicates(t *testing.T) {
	s := newStore(t)
	u := seedUser(t, s, "  Alice@Example.COM ", models.RoleUser)
	require.NotZero(t, u.ID)
	require.Equal(t, "alice@example.com", u.Email)

	dup := &models.User{Email: "alice@example.com", PasswordHash: "x"}
	err := s.CreateUser(context.Background(), dup)
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)

	got, err := s.GetUserByEmail(context.Background(), "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, models.RoleUser, got.Role)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newStore(t)
	var nf *apperrors.NotFoundError

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorAs(t, err, &nf)
	_, err = s.GetUserByID(context.Background(), 42)
	require.ErrorAs(t, err, &nf)
}

func TestTasks_CRUD(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com", models.RoleUser)

	task := seedTask(t, s, "Buy milk", alice, time.Now().UTC())
	require.NotZero(t, task.ID)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Buy milk", got.Title)
	require.Equal(t, alice.ID, *got.OwnerID)

	updated, err := s.UpdateTask(ctx, task.ID, func(t *models.Task) error {
		t.Completed = true
		t.Categories = models.CleanCategories([]string{"home"})
		other := uint(999)
		t.OwnerID = &other
		return nil
	})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Equal(t, alice.ID, *updated.OwnerID)

	got, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, got.Completed)
	require.Equal(t, []string{"home"}, []string(got.Categories))

	removed, err := s.DeleteTask(ctx, task.ID, nil)
	require.NoError(t, err)
	require.Equal(t, task.ID, removed.ID)

	_, err = s.GetTask(ctx, task.ID)
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateTask_CheckFailureRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com", models.RoleUser)
	task := seedTask(t, s, "a", alice, time.Now())

	_, err := s.UpdateTask(ctx, task.ID, func(t *models.Task) error {
		t.Title = "changed"
		return apperrors.Forbidden("nope")
	})
	var fe *apperrors.ForbiddenError
	require.ErrorAs(t, err, &fe)

	_, err = s.DeleteTask(ctx, task.ID, func(*models.Task) error { return apperrors.Forbidden("nope") })
	require.ErrorAs(t, err, &fe)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "a", got.Title)
}

func TestListTasks_ScopeOrderAndOwnerEmail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com", models.RoleUser)
	bob := seedUser(t, s, "bob@example.com", models.RoleUser)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTask(t, s, "alice old", alice, base)
	seedTask(t, s, "bob", bob, base.Add(time.Minute))
	seedTask(t, s, "alice new", alice, base.Add(2*time.Minute))

	all, err := s.ListTasks(ctx, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "alice new", all[0].Title)
	require.Equal(t, "bob@example.com", all[1].OwnerEmail)

	mine, err := s.ListTasks(ctx, models.TaskFilter{OwnerID: &alice.ID, Ascending: true})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "alice old", mine[0].Title)

	found, err := s.ListTasks(ctx, models.TaskFilter{Query: "BOB"})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestListTasks_Overdue(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com", models.RoleUser)

	past, future := "2020-01-01", "2999-01-01"
	late := seedTask(t, s, "late", alice, time.Now())
	_, err := s.UpdateTask(ctx, late.ID, func(t *models.Task) error { t.Deadline = &past; return nil })
	require.NoError(t, err)
	fine := seedTask(t, s, "fine", alice, time.Now())
	_, err = s.UpdateTask(ctx, fine.ID, func(t *models.Task) error { t.Deadline = &future; return nil })
	require.NoError(t, err)

	overdue, err := s.ListTasks(ctx, models.TaskFilter{Status: models.StatusOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, "late", overdue[0].Title)
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com", models.RoleUser)
	bob := seedUser(t, s, "bob@example.com", models.RoleUser)
	seedTask(t, s, "a1", alice, time.Now())
	seedTask(t, s, "a2", alice, time.Now())
	seedTask(t, s, "b1", bob, time.Now())

	require.NoError(t, s.DeleteUser(ctx, alice.ID))

	tasks, err := s.ListTasks(ctx, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "b1", tasks[0].Title)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, s.DeleteUser(ctx, alice.ID), &nf)
}

func TestForeignKeyEnforced(t *testing.T) {
	s := newStore(t)
	ghost := uint(404)
	task := &models.Task{Title: "orphan", OwnerID: &ghost, Priority: models.PriorityLow, CreatedAt: time.Now()}

	err := s.CreateTask(context.Background(), task)
	var se *apperrors.StoreError
	require.ErrorAs(t, err, &se)
}

func TestListUsersAndSetRole(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a@example.com", models.RoleUser)
	seedUser(t, s, "b@example.com", models.RoleUser)

	require.NoError(t, s.SetRole(ctx, a.ID, models.RoleAdmin))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, models.RoleAdmin, users[0].Role)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, s.SetRole(ctx, 99, models.RoleAdmin), &nf)
	require.NoError(t, s.Ping(ctx))
}

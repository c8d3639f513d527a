package mentorship_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	store       *mock.Store
	accounts    *mentorship.Accounts
	requests    *mentorship.Requests
	directory   *mentorship.Directory
	coordinator *mentorship.Coordinator
	learnings   *mentorship.Learnings

	admin    mentorship.Principal
	employee mentorship.Principal
	other    mentorship.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := mock.NewStore()
	opts := mentorship.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	f := &fixture{
		store:       store,
		accounts:    mentorship.NewAccounts(store, opts).WithHashCost(bcrypt.MinCost),
		requests:    mentorship.NewRequests(store, opts),
		directory:   mentorship.NewDirectory(store, opts),
		coordinator: mentorship.NewCoordinator(store, store, store, opts),
		learnings:   mentorship.NewLearnings(store, store, opts),
	}
	f.admin = f.user(t, "admin@example.com", models.RoleAdmin)
	f.employee = f.user(t, "u1@example.com", models.RoleEmployee)
	f.other = f.user(t, "u2@example.com", models.RoleEmployee)
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.Role) mentorship.Principal {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), mentorship.RegisterInput{
		Name: email, Email: email, Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return mentorship.Principal{UserID: u.ID, Role: u.Role}
}

// mentor stores a mentor with the given starting workload.
func (f *fixture) mentor(t *testing.T, name string, workload int) *models.Mentor {
	t.Helper()
	m := &models.Mentor{Name: name, JobTitle: "Engineer", Email: name + "@example.com", Workload: workload}
	require.NoError(t, f.store.CreateMentor(context.Background(), m))
	return m
}

func (f *fixture) request(t *testing.T, p mentorship.Principal, topic string) *models.TrainingRequest {
	t.Helper()
	tr, err := f.requests.Create(context.Background(), p, topic, "I want to learn "+topic)
	require.NoError(t, err)
	return tr
}

// engagement files a request for the employee and assigns it to a fresh mentor.
func (f *fixture) engagement(t *testing.T) (*models.LearningProcess, *models.Mentor) {
	t.Helper()
	m := f.mentor(t, "mentor", 0)
	tr := f.request(t, f.employee, "Go concurrency")
	lp, err := f.coordinator.Assign(context.Background(), f.admin, tr.ID, m.ID)
	require.NoError(t, err)
	return lp, m
}

func requireKind(t *testing.T, err error, kind mentorship.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, mentorship.KindOf(err), "error: %v", err)
}

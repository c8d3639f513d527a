package mentorship_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

func TestCoordinator_AssignScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.mentor(t, "mentorM", 4)
	tr := f.request(t, f.employee, "Go concurrency")
	require.Equal(t, models.RequestPending, tr.Status)

	lp, err := f.coordinator.Assign(ctx, f.admin, tr.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LearningActive, lp.Status)
	assert.Equal(t, tr.ID, lp.RequestID)
	assert.Equal(t, tr.Topic, lp.Topic)
	assert.Equal(t, f.employee.UserID, lp.UserID)
	assert.Equal(t, m.ID, lp.MentorID)
	assert.Empty(t, lp.Plan)

	got, err := f.requests.Get(ctx, f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)

	gm, err := f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gm.Workload)

	// second assign of the same request
	_, err = f.coordinator.Assign(ctx, f.admin, tr.ID, m.ID)
	requireKind(t, err, mentorship.KindInvalidTransition)

	// a different pending request against the now-full mentor
	next := f.request(t, f.other, "Kubernetes")
	_, err = f.coordinator.Assign(ctx, f.admin, next.ID, m.ID)
	requireKind(t, err, mentorship.KindCapacityExceeded)

	// capacity failure leaves state unchanged
	still, err := f.requests.Get(ctx, f.admin, next.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, still.Status)
	gm, err = f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gm.Workload)

	// exactly one learning per approved request, none for the pending one
	all, err := f.learnings.ListAll(ctx, f.admin, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, tr.ID, all[0].RequestID)
}

func TestCoordinator_AssignFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.mentor(t, "m", 0)
	tr := f.request(t, f.employee, "t")

	tests := []struct {
		name      string
		p         mentorship.Principal
		req, ment string
		kind      mentorship.Kind
	}{
		{"employee caller", f.employee, tr.ID, m.ID, mentorship.KindForbidden},
		{"missing ids", f.admin, "", m.ID, mentorship.KindValidation},
		{"unknown request", f.admin, "missing", m.ID, mentorship.KindNotFound},
		{"unknown mentor", f.admin, tr.ID, "missing", mentorship.KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.coordinator.Assign(ctx, tc.p, tc.req, tc.ment)
			requireKind(t, err, tc.kind)
		})
	}

	assert.Equal(t, 0, f.store.Calls("Assign"), "no write may be attempted when the precheck fails")
}

func TestCoordinator_RetriesLockConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.mentor(t, "m", 0)
	tr := f.request(t, f.employee, "t")

	f.store.Fail("Assign", repository.ErrConflict, repository.ErrConflict)
	lp, err := f.coordinator.Assign(ctx, f.admin, tr.ID, m.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, lp.ID)
	assert.Equal(t, 3, f.store.Calls("Assign"))
}

func TestCoordinator_GivesUpWithConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.mentor(t, "m", 0)
	tr := f.request(t, f.employee, "t")

	f.store.Fail("Assign", repository.ErrConflict, repository.ErrConflict, repository.ErrConflict)
	_, err := f.coordinator.Assign(ctx, f.admin, tr.ID, m.ID)
	requireKind(t, err, mentorship.KindConflict)

	// nothing was applied
	got, err := f.requests.Get(ctx, f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, got.Status)
}

func TestCoordinator_ConcurrentSameRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m1 := f.mentor(t, "m1", 0)
	m2 := f.mentor(t, "m2", 0)
	tr := f.request(t, f.employee, "t")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, m := range []*models.Mentor{m1, m2} {
		wg.Add(1)
		go func(i int, mentorID string) {
			defer wg.Done()
			_, errs[i] = f.coordinator.Assign(ctx, f.admin, tr.ID, mentorID)
		}(i, m.ID)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		requireKind(t, err, mentorship.KindInvalidTransition)
	}
	assert.Equal(t, 1, wins)

	g1, _ := f.directory.Get(ctx, m1.ID)
	g2, _ := f.directory.Get(ctx, m2.ID)
	assert.Equal(t, 1, g1.Workload+g2.Workload, "exactly one mentor charged")
}

func TestCoordinator_ConcurrentLastSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.mentor(t, "m", 4)
	a := f.request(t, f.employee, "a")
	b := f.request(t, f.other, "b")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, requestID string) {
			defer wg.Done()
			_, errs[i] = f.coordinator.Assign(ctx, f.admin, requestID, m.ID)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		requireKind(t, err, mentorship.KindCapacityExceeded)
	}
	assert.Equal(t, 1, wins)

	gm, err := f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gm.Workload)
}

func TestCoordinator_ConfiguredCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coord := mentorship.NewCoordinator(f.store, f.store, f.store, mentorship.Options{MaxWorkload: 1})

	m := f.mentor(t, "m", 0)
	a := f.request(t, f.employee, "a")
	b := f.request(t, f.employee, "b")

	_, err := coord.Assign(ctx, f.admin, a.ID, m.ID)
	require.NoError(t, err)
	_, err = coord.Assign(ctx, f.admin, b.ID, m.ID)
	requireKind(t, err, mentorship.KindCapacityExceeded)
}

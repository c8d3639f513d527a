package mentorship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

func TestLearnings_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, m := f.engagement(t)

	got, err := f.learnings.Get(ctx, f.employee, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, lp.ID, got.ID)

	_, err = f.learnings.Get(ctx, f.admin, lp.ID)
	require.NoError(t, err)

	_, err = f.learnings.Get(ctx, f.other, lp.ID)
	requireKind(t, err, mentorship.KindForbidden)

	_, err = f.learnings.Get(ctx, f.employee, "missing")
	requireKind(t, err, mentorship.KindNotFound)

	mine, err := f.learnings.ListForUser(ctx, f.employee, f.employee.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.learnings.ListForUser(ctx, f.other, f.employee.UserID)
	requireKind(t, err, mentorship.KindForbidden)

	_, err = f.learnings.ListAll(ctx, f.employee, "")
	requireKind(t, err, mentorship.KindForbidden)

	byMentor, err := f.learnings.ListAll(ctx, f.admin, m.ID)
	require.NoError(t, err)
	assert.Len(t, byMentor, 1)
	none, err := f.learnings.ListAll(ctx, f.admin, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)

	// admins read but do not edit
	_, err = f.learnings.AddPlanItem(ctx, f.admin, lp.ID, "x")
	requireKind(t, err, mentorship.KindForbidden)
	_, err = f.learnings.UpdateNotes(ctx, f.admin, lp.ID, "x")
	requireKind(t, err, mentorship.KindForbidden)
	_, err = f.learnings.Complete(ctx, f.other, lp.ID, models.Feedback{Rating: 5})
	requireKind(t, err, mentorship.KindForbidden)
}

func TestLearnings_PlanRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, _ := f.engagement(t)

	withA, err := f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "  read the Go memory model ")
	require.NoError(t, err)
	withB, err := f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "build a worker pool")
	require.NoError(t, err)
	require.Len(t, withB.Plan, 2)

	a, b := withB.Plan[0], withB.Plan[1]
	assert.Equal(t, withA.Plan[0].ID, a.ID)
	assert.Equal(t, "read the Go memory model", a.Text)
	assert.False(t, a.Completed)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := f.learnings.Get(ctx, f.employee, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, withB.Plan, got.Plan)

	toggled, err := f.learnings.TogglePlanItem(ctx, f.employee, lp.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Plan[0].Completed)
	assert.Equal(t, b, toggled.Plan[1], "siblings untouched")

	pr, err := f.learnings.Progress(ctx, f.employee, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Progress{Completed: 1, Total: 2, Percent: 50}, pr)

	toggled, err = f.learnings.TogglePlanItem(ctx, f.employee, lp.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Plan[0].Completed)

	edited, err := f.learnings.EditPlanItem(ctx, f.employee, lp.ID, b.ID, "build a bounded worker pool", true)
	require.NoError(t, err)
	assert.Equal(t, "build a bounded worker pool", edited.Plan[1].Text)
	assert.True(t, edited.Plan[1].Completed)

	removed, err := f.learnings.RemovePlanItem(ctx, f.employee, lp.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, removed.Plan, 1)
	assert.Equal(t, b.ID, removed.Plan[0].ID)

	_, err = f.learnings.TogglePlanItem(ctx, f.employee, lp.ID, a.ID)
	requireKind(t, err, mentorship.KindNotFound)
	_, err = f.learnings.RemovePlanItem(ctx, f.employee, lp.ID, "nope")
	requireKind(t, err, mentorship.KindNotFound)
	_, err = f.learnings.EditPlanItem(ctx, f.employee, lp.ID, "nope", "x", false)
	requireKind(t, err, mentorship.KindNotFound)

	_, err = f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "   ")
	requireKind(t, err, mentorship.KindValidation)
}

func TestLearnings_ReplacePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, _ := f.engagement(t)

	replaced, err := f.learnings.ReplacePlan(ctx, f.employee, lp.ID, []models.PlanItem{
		{ID: "keep", Text: "kept item", Completed: true},
		{Text: "fresh item"},
	})
	require.NoError(t, err)
	require.Len(t, replaced.Plan, 2)
	assert.Equal(t, "keep", replaced.Plan[0].ID)
	assert.True(t, replaced.Plan[0].Completed)
	assert.NotEmpty(t, replaced.Plan[1].ID)

	_, err = f.learnings.ReplacePlan(ctx, f.employee, lp.ID, []models.PlanItem{{ID: "d", Text: "a"}, {ID: "d", Text: "b"}})
	requireKind(t, err, mentorship.KindValidation)

	_, err = f.learnings.ReplacePlan(ctx, f.employee, lp.ID, []models.PlanItem{{Text: ""}})
	requireKind(t, err, mentorship.KindValidation)

	emptied, err := f.learnings.ReplacePlan(ctx, f.employee, lp.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, emptied.Plan)
}

func TestLearnings_CompleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.mentor(t, "mentorM", 4)
	tr := f.request(t, f.employee, "Go concurrency")
	lp, err := f.coordinator.Assign(ctx, f.admin, tr.ID, m.ID)
	require.NoError(t, err)
	_, err = f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "item")
	require.NoError(t, err)

	_, err = f.learnings.Complete(ctx, f.employee, lp.ID, models.Feedback{Rating: 6, Comment: "great"})
	requireKind(t, err, mentorship.KindValidation)
	_, err = f.learnings.Complete(ctx, f.employee, lp.ID, models.Feedback{Rating: 0})
	requireKind(t, err, mentorship.KindValidation)

	done, err := f.learnings.Complete(ctx, f.employee, lp.ID, models.Feedback{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, models.LearningCompleted, done.Status)
	require.NotNil(t, done.EndDate)
	require.NotNil(t, done.Feedback)
	assert.Equal(t, models.Feedback{Rating: 5, Comment: "great"}, *done.Feedback)

	gm, err := f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, gm.Workload)

	// second completion is rejected and feedback stays as first recorded
	_, err = f.learnings.Complete(ctx, f.employee, lp.ID, models.Feedback{Rating: 1, Comment: "changed my mind"})
	requireKind(t, err, mentorship.KindInvalidTransition)
	got, err := f.learnings.Get(ctx, f.employee, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Feedback.Rating)
	gm, err = f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, gm.Workload)

	// plan frozen, notes still editable
	_, err = f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "late item")
	requireKind(t, err, mentorship.KindInvalidTransition)
	_, err = f.learnings.TogglePlanItem(ctx, f.employee, lp.ID, got.Plan[0].ID)
	requireKind(t, err, mentorship.KindInvalidTransition)
	_, err = f.learnings.RemovePlanItem(ctx, f.employee, lp.ID, got.Plan[0].ID)
	requireKind(t, err, mentorship.KindInvalidTransition)
	_, err = f.learnings.ReplacePlan(ctx, f.employee, lp.ID, nil)
	requireKind(t, err, mentorship.KindInvalidTransition)

	noted, err := f.learnings.UpdateNotes(ctx, f.employee, lp.ID, "retrospective")
	require.NoError(t, err)
	require.NotNil(t, noted.Notes)
	assert.Equal(t, "retrospective", *noted.Notes)
}

func TestLearnings_CompleteRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, _ := f.engagement(t)

	f.store.Fail("Complete", repository.ErrStale)
	_, err := f.learnings.Complete(ctx, f.employee, lp.ID, models.Feedback{Rating: 4})
	requireKind(t, err, mentorship.KindInvalidTransition)
}

func TestLearnings_PlanWriteRetriesStaleVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, _ := f.engagement(t)

	f.store.Fail("UpdatePlan", repository.ErrStale)
	got, err := f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "item")
	require.NoError(t, err)
	assert.Len(t, got.Plan, 1)
	assert.Equal(t, 2, f.store.Calls("UpdatePlan"))

	f.store.Fail("UpdatePlan", repository.ErrStale, repository.ErrStale, repository.ErrStale)
	_, err = f.learnings.AddPlanItem(ctx, f.employee, lp.ID, "never stored")
	requireKind(t, err, mentorship.KindConflict)
}

func TestLearnings_NotesLastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lp, _ := f.engagement(t)

	_, err := f.learnings.UpdateNotes(ctx, f.employee, lp.ID, "first")
	require.NoError(t, err)
	_, err = f.learnings.UpdateNotes(ctx, f.employee, lp.ID, "second")
	require.NoError(t, err)

	got, err := f.learnings.Get(ctx, f.employee, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", *got.Notes)

	_, err = f.learnings.UpdateNotes(ctx, f.employee, "missing", "x")
	requireKind(t, err, mentorship.KindNotFound)
}

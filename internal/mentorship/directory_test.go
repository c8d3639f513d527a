package mentorship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/mentorship/internal/mentorship"
)

func TestDirectory_Onboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tg := " @anna "

	in := mentorship.MentorInput{
		Name:       "Anna",
		JobTitle:   "Staff Engineer",
		Experience: "Go services",
		Email:      "Anna@Example.com",
		Telegram:   &tg,
	}

	_, err := f.directory.Onboard(ctx, f.employee, in)
	requireKind(t, err, mentorship.KindForbidden)

	m, err := f.directory.Onboard(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Workload)
	assert.Equal(t, "anna@example.com", m.Email)
	require.NotNil(t, m.Telegram)
	assert.Equal(t, "@anna", *m.Telegram)

	got, err := f.directory.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)

	_, err = f.directory.Get(ctx, "missing")
	requireKind(t, err, mentorship.KindNotFound)

	bad := in
	bad.Email = "not-an-email"
	_, err = f.directory.Onboard(ctx, f.admin, bad)
	requireKind(t, err, mentorship.KindValidation)

	bad = in
	bad.Name = " "
	_, err = f.directory.Onboard(ctx, f.admin, bad)
	requireKind(t, err, mentorship.KindValidation)
}

func TestDirectory_ListAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mentor(t, "busy", 5)
	f.mentor(t, "free", 4)

	all, err := f.directory.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	avail, err := f.directory.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "free", avail[0].Name)
}

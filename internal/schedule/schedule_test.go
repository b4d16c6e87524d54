package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlagarde/colloscope/internal/roster"
)

func week(t *testing.T, start string) roster.Week {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", start, time.Local)
	require.NoError(t, err)
	return roster.Week{Start: roster.Date{Time: d}}
}

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	return &roster.Roster{
		ID:   1,
		Name: "MP2I",
		SlotTypes: []roster.SlotType{
			{Subject: "Maths", Teacher: "M. Bernard", Room: "B12", Weekday: time.Tuesday, Hour: 17, Minute: 0},
			{Subject: "Physique", Teacher: "Mme Roche", Room: "A3", Weekday: time.Thursday, Hour: 18, Minute: 30},
		},
		// Two consecutive Monday-starting weeks.
		Weeks: []roster.Week{week(t, "2024-01-08"), week(t, "2024-01-15")},
		Groups: []roster.Group{
			{Students: []string{"Jean Dupont"}, Assignments: []int{0, 1}},
			{Students: []string{"Marc Durand"}, Assignments: []int{-1, 0}},
		},
	}
}

func TestUpcoming(t *testing.T) {
	r := testRoster(t)
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.Local) // Monday noon, week 0

	events, err := Upcoming(r, 0, now, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Maths", events[0].Subject)
	assert.Equal(t, time.Date(2024, 1, 9, 17, 0, 0, 0, time.Local), events[0].Start)
	assert.Equal(t, "demain", events[0].When)

	assert.Equal(t, "Physique", events[1].Subject)
	assert.Equal(t, time.Date(2024, 1, 18, 18, 30, 0, 0, time.Local), events[1].Start)
	assert.Equal(t, "dans 10 jours", events[1].When)
}

func TestUpcomingSkipsPastAndFreeWeeks(t *testing.T) {
	r := testRoster(t)
	// Wednesday of week 0: group 0's Maths colle is already over and
	// group 1 has no colle at all in week 0.
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	events, err := Upcoming(r, 0, now, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Physique", events[0].Subject)

	events, err = Upcoming(r, 1, now, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Maths", events[0].Subject)
	assert.Equal(t, time.Date(2024, 1, 16, 17, 0, 0, 0, time.Local), events[0].Start)
}

func TestUpcomingLimit(t *testing.T) {
	r := testRoster(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	events, err := Upcoming(r, 0, now, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Maths", events[0].Subject)
}

func TestUpcomingGroupOutOfRange(t *testing.T) {
	r := testRoster(t)
	_, err := Upcoming(r, 5, time.Now(), 0)
	require.Error(t, err)
}

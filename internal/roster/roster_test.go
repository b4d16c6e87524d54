package roster

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateEntityID(t *testing.T) {
	tests := []struct {
		rosterID int64
		c        Candidate
		want     int64
	}{
		{1, Candidate{Group: 0, Student: 0}, 1_000_000},
		{1, Candidate{Group: 2, Student: 14}, 1_002_014},
		{42, Candidate{Group: 999, Student: 999}, 42_999_999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.EntityID(tt.rosterID))
	}
}

func TestNameOf(t *testing.T) {
	r := &Roster{
		Groups: []Group{
			{Students: []string{"Jean Dupont", "Émilie Lefèvre"}},
			{Students: []string{"Marc Durand"}},
		},
	}

	name, ok := NameOf(r, Candidate{Group: 0, Student: 1})
	require.True(t, ok)
	assert.Equal(t, "Émilie Lefèvre", name)

	_, ok = NameOf(r, Candidate{Group: 0, Student: 2})
	assert.False(t, ok)
	_, ok = NameOf(r, Candidate{Group: 2, Student: 0})
	assert.False(t, ok)
	_, ok = NameOf(r, Candidate{Group: -1, Student: 0})
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := &Roster{
		ID:   1,
		Name: "MP2I",
		SlotTypes: []SlotType{
			{Subject: "Maths", Teacher: "M. Bernard", Weekday: time.Monday, Hour: 17, Minute: 0},
		},
		Weeks: []Week{{}, {}},
		Groups: []Group{
			{Students: []string{"Jean Dupont"}, Assignments: []int{0, -1}},
		},
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*Roster)
		field  string
	}{
		{"missing id", func(r *Roster) { r.ID = 0 }, "id"},
		{"missing name", func(r *Roster) { r.Name = "  " }, "name"},
		{"no groups", func(r *Roster) { r.Groups = nil }, "groups"},
		{"empty student name", func(r *Roster) { r.Groups[0].Students[0] = "" }, "groups[0].students[0]"},
		{"slot index out of range", func(r *Roster) { r.Groups[0].Assignments[0] = 5 }, "groups[0].assignments[0]"},
		{"slot index below -1", func(r *Roster) { r.Groups[0].Assignments[1] = -2 }, "groups[0].assignments[1]"},
		{"missing subject", func(r *Roster) { r.SlotTypes[0].Subject = "" }, "slotTypes[0].subject"},
		{"invalid hour", func(r *Roster) { r.SlotTypes[0].Hour = 24 }, "slotTypes[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Roster
			data, err := json.Marshal(valid)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, &r))
			tt.mutate(&r)

			err = Validate(&r)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	w := Week{Start: Date{time.Date(2024, 1, 8, 0, 0, 0, 0, time.Local)}}
	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-01-08"}`, string(data))

	var back Week
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Start.Equal(w.Start.Time))
}

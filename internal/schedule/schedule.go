// Package schedule computes a group's upcoming colles from the
// roster's week and slot-assignment tables and renders each start
// time as a relative French phrase.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/mlagarde/colloscope/internal/reltime"
	"github.com/mlagarde/colloscope/internal/roster"
)

// Event is one scheduled colle for a group.
type Event struct {
	Week    int       `json:"week"`
	Subject string    `json:"subject"`
	Teacher string    `json:"teacher"`
	Room    string    `json:"room"`
	Start   time.Time `json:"start"`
	When    string    `json:"when"`
}

// Upcoming returns the group's colles starting at or after now,
// soonest first, capped at limit (limit <= 0 means no cap). The When
// phrase is rendered relative to now.
func Upcoming(r *roster.Roster, groupIdx int, now time.Time, limit int) ([]Event, error) {
	if groupIdx < 0 || groupIdx >= len(r.Groups) {
		return nil, fmt.Errorf("group %d out of range for roster %d", groupIdx, r.ID)
	}
	g := r.Groups[groupIdx]

	events := make([]Event, 0, len(g.Assignments))
	for week, slotIdx := range g.Assignments {
		if slotIdx < 0 || week >= len(r.Weeks) {
			continue
		}
		if slotIdx >= len(r.SlotTypes) {
			continue
		}
		slot := r.SlotTypes[slotIdx]
		start := slotStart(r.Weeks[week], slot)
		if start.Before(now) {
			continue
		}
		events = append(events, Event{
			Week:    week,
			Subject: slot.Subject,
			Teacher: slot.Teacher,
			Room:    slot.Room,
			Start:   start,
			When:    reltime.Format(now, start),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// slotStart places the slot's weekday and start time within the given
// week. The week start is the reference day; the slot falls on the
// first matching weekday at or after it.
func slotStart(w roster.Week, slot roster.SlotType) time.Time {
	base := w.Start.Time
	offset := (int(slot.Weekday) - int(base.Weekday()) + 7) % 7
	day := base.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, slot.Minute, 0, 0, base.Location())
}

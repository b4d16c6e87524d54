// Package roster defines the colloscope data model: a class roster of
// groups and students, the colle slot table, and the per-week slot
// assignments. The JSON shape of Roster is the contract satisfied by
// imported roster documents and by the rosters table.
package roster

import (
	"fmt"
	"time"
)

// Roster is one class's colloscope for a term.
type Roster struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	SlotTypes []SlotType `json:"slotTypes"`
	Weeks     []Week     `json:"weeks"`
	Groups    []Group    `json:"groups"`
}

// Group holds an ordered list of student names and, per week, the
// index of the colle slot assigned to the group (-1 when the group
// has no colle that week).
type Group struct {
	Students    []string `json:"students"`
	Assignments []int    `json:"assignments"`
}

// SlotType describes one recurring colle slot: subject, examiner,
// room, and its fixed weekday and start time.
type SlotType struct {
	Subject string       `json:"subject"`
	Teacher string       `json:"teacher"`
	Room    string       `json:"room"`
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
	Minute  int          `json:"minute"`
}

// Week marks the first day of one colle week.
type Week struct {
	Start Date `json:"start"`
}

// Date is a calendar day serialized as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	t, err := time.ParseInLocation(dateLayout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("parsing date %s: %w", s, err)
	}
	d.Time = t
	return nil
}

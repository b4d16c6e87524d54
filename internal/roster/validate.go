package roster

import (
	"fmt"
	"strings"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Validate checks a roster document before import: a positive id, a
// non-empty name, at least one group, non-empty student names,
// indices under the entity-id bound, and every week assignment either
// -1 or a valid slot-type index of matching length with the week
// list.
func Validate(r *Roster) error {
	errs := make(map[string]string)

	if r.ID <= 0 {
		errs["id"] = "id must be positive"
	}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if len(r.Groups) == 0 {
		errs["groups"] = "at least one group is required"
	}
	if len(r.Groups) > maxPerAxis {
		errs["groups"] = fmt.Sprintf("at most %d groups are supported", maxPerAxis)
	}
	for gi, g := range r.Groups {
		if len(g.Students) > maxPerAxis {
			errs[fmt.Sprintf("groups[%d].students", gi)] = fmt.Sprintf("at most %d students per group are supported", maxPerAxis)
		}
		for si, name := range g.Students {
			if strings.TrimSpace(name) == "" {
				errs[fmt.Sprintf("groups[%d].students[%d]", gi, si)] = "student name must not be empty"
			}
		}
		if len(g.Assignments) > len(r.Weeks) {
			errs[fmt.Sprintf("groups[%d].assignments", gi)] = "more assignments than weeks"
		}
		for wi, slot := range g.Assignments {
			if slot < -1 || slot >= len(r.SlotTypes) {
				errs[fmt.Sprintf("groups[%d].assignments[%d]", gi, wi)] = fmt.Sprintf("slot index %d out of range", slot)
			}
		}
	}
	for i, st := range r.SlotTypes {
		if strings.TrimSpace(st.Subject) == "" {
			errs[fmt.Sprintf("slotTypes[%d].subject", i)] = "subject is required"
		}
		if st.Hour < 0 || st.Hour > 23 || st.Minute < 0 || st.Minute > 59 {
			errs[fmt.Sprintf("slotTypes[%d]", i)] = "invalid start time"
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

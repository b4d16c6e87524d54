package roster

// maxPerAxis bounds group and student indices so that entity ids stay
// collision-free. Rosters never approach it in practice; it is a
// documented constraint, not a runtime check.
const maxPerAxis = 1000

// Candidate identifies one roster entry by position: group index,
// then student index within the group. It is a plain value; the
// roster it refers to is passed explicitly wherever a name or
// schedule is needed.
type Candidate struct {
	Group   int `json:"group"`
	Student int `json:"student"`
}

// EntityID derives the stable numeric id of the candidate within the
// given roster. Both indices must be below maxPerAxis for ids to be
// unique.
func (c Candidate) EntityID(rosterID int64) int64 {
	return rosterID*1_000_000 + int64(c.Group)*1_000 + int64(c.Student)
}

// NameOf returns the student name a candidate points at, or false
// when the candidate is out of range for the roster.
func NameOf(r *Roster, c Candidate) (string, bool) {
	if c.Group < 0 || c.Group >= len(r.Groups) {
		return "", false
	}
	g := r.Groups[c.Group]
	if c.Student < 0 || c.Student >= len(g.Students) {
		return "", false
	}
	return g.Students[c.Student], true
}

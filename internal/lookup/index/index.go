// Package index builds the precomputed search index scanned by the
// resolver: one entry of normalized name tokens per student.
package index

import (
	"github.com/mlagarde/colloscope/internal/lookup/tokenizer"
	"github.com/mlagarde/colloscope/internal/roster"
)

// Entry is one student's normalized token sequence together with the
// candidate position it resolves to. Entries are never mutated after
// Build returns.
type Entry struct {
	Tokens  []string
	Group   int
	Student int
}

// Index is the read-only collection of entries for one roster, in
// group-then-student order. Once built and published it is safe to
// share across any number of concurrent resolve calls.
type Index struct {
	rosterID int64
	entries  []Entry
}

// Build tokenizes every student name across every group and returns
// the finished index.
func Build(r *roster.Roster) *Index {
	entries := make([]Entry, 0, countStudents(r))
	for gi, g := range r.Groups {
		for si, name := range g.Students {
			entries = append(entries, Entry{
				Tokens:  tokenizer.Tokenize(name),
				Group:   gi,
				Student: si,
			})
		}
	}
	return &Index{rosterID: r.ID, entries: entries}
}

// RosterID returns the id of the roster the index was built from.
func (idx *Index) RosterID() int64 {
	return idx.rosterID
}

// Entries exposes the ordered entry sequence for linear scanning.
// Callers must not modify the returned slice or its contents.
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// Len returns the number of indexed students.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func countStudents(r *roster.Roster) int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Students)
	}
	return n
}

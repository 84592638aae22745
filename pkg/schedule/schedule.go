// Package schedule holds the work-schedule data model and the pure
// operations over it: person resolution, date-range filtering, and
// calendar projection. Nothing in this package touches the network
// or disk; persistence lives in pkg/store.
package schedule

import (
	"strings"
	"unicode"
)

// DateLayout is the ISO date format used for every schedule key.
// ISO dates sort lexically in chronological order, which the range
// filter relies on.
const DateLayout = "2006-01-02"

// Entry is a single date's work record for one person.
type Entry struct {
	// Date always equals the key the entry is stored under.
	Date     string `json:"date"`
	WorkType string `json:"workType"`
	Content  string `json:"content"`
}

// Person is a named owner of per-date schedule entries.
type Person struct {
	Name     string           `json:"name"`
	Schedule map[string]Entry `json:"schedule"`
}

// Dataset is the full set of people and their schedule entries.
// The Dates slice is an informational index carried through from the
// canonical document; the Schedule maps are authoritative.
type Dataset struct {
	Dates []string `json:"dates"`
	Users []Person `json:"users"`
}

// Set upserts an entry at the given date, keeping the entry's Date
// field in sync with its key.
func (p *Person) Set(date, workType, content string) {
	if p.Schedule == nil {
		p.Schedule = make(map[string]Entry)
	}
	p.Schedule[date] = Entry{Date: date, WorkType: workType, Content: content}
}

// Clear removes the entry at the given date. Clearing an absent date
// is a no-op.
func (p *Person) Clear(date string) {
	delete(p.Schedule, date)
}

// AddPerson appends a new person with an empty schedule and returns it.
func (d *Dataset) AddPerson(name string) *Person {
	d.Users = append(d.Users, Person{
		Name:     name,
		Schedule: make(map[string]Entry),
	})
	return &d.Users[len(d.Users)-1]
}

// Normalize case-folds a display name and strips all whitespace so
// "Tanaka Yuki" and " tanakayuki " compare equal.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

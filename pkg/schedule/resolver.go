package schedule

import "strings"

// Resolver matches a requested display name against the people in a
// dataset. Matching is a best-effort heuristic, not identity
// resolution: exact normalized match wins, then the first person whose
// normalized name contains the request as a substring. When several
// substring candidates exist the first in dataset order is returned;
// the ambiguity is by design.
type Resolver struct {
	defaultName string
}

// NewResolver creates a resolver that substitutes defaultName when the
// requested name is empty.
func NewResolver(defaultName string) *Resolver {
	return &Resolver{defaultName: defaultName}
}

// DefaultName returns the identity substituted for empty requests.
func (r *Resolver) DefaultName() string {
	return r.defaultName
}

// Resolve returns the matching person, or (nil, false) when nobody
// matches. A miss is a valid outcome, not an error.
func (r *Resolver) Resolve(d *Dataset, name string) (*Person, bool) {
	if name == "" {
		name = r.defaultName
	}
	want := Normalize(name)
	if want == "" {
		return nil, false
	}

	for i := range d.Users {
		if Normalize(d.Users[i].Name) == want {
			return &d.Users[i], true
		}
	}
	for i := range d.Users {
		if containsFold(d.Users[i].Name, want) {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// ResolveOrCreate resolves the name, appending a new person when no
// match exists. The second return reports whether a record was created.
func (r *Resolver) ResolveOrCreate(d *Dataset, name string) (*Person, bool) {
	if name == "" {
		name = r.defaultName
	}
	if p, ok := r.Resolve(d, name); ok {
		return p, false
	}
	return d.AddPerson(name), true
}

// containsFold reports whether the normalized form of name contains
// the already-normalized needle.
func containsFold(name, needle string) bool {
	return needle != "" && strings.Contains(Normalize(name), needle)
}

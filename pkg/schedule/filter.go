package schedule

import "sort"

// Filter selects entries from a person's schedule without mutating it.
//
// Precedence mirrors the tool-call arguments: a single date wins over a
// range, a range wins over "everything". Results are always in
// ascending date order; ISO keys make lexical comparison chronological.
func Filter(p *Person, date, start, end string) []Entry {
	if p == nil || len(p.Schedule) == 0 {
		return nil
	}

	if date != "" {
		if e, ok := p.Schedule[date]; ok {
			return []Entry{e}
		}
		return nil
	}

	keys := make([]string, 0, len(p.Schedule))
	for k := range p.Schedule {
		if start != "" && end != "" {
			if k < start || k > end {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, p.Schedule[k])
	}
	return entries
}

package entity

import "strings"

// Condition requires Field's value to contain Substring (case-sensitive)
type Condition struct {
	Field     string
	Substring string
}

// FilterPredicate is a conjunction of substring conditions. The empty
// predicate matches every record.
type FilterPredicate []Condition

// NewFilterPredicate builds a predicate from field/substring pairs and drops
// pairs whose substring is empty, the way a blank search box is ignored.
func NewFilterPredicate(pairs map[string]string, order []string) FilterPredicate {
	var p FilterPredicate
	for _, field := range order {
		if sub := pairs[field]; sub != "" {
			p = append(p, Condition{Field: field, Substring: sub})
		}
	}
	return p
}

// Matches reports whether the record satisfies every condition
func (p FilterPredicate) Matches(r Record) bool {
	for _, c := range p {
		v, ok := r.Get(c.Field)
		if !ok || !strings.Contains(v, c.Substring) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the predicate has no conditions
func (p FilterPredicate) IsEmpty() bool {
	return len(p) == 0
}

// FormDraft holds pending create input keyed by field name
type FormDraft map[string]string

// Clone returns an independent copy
func (d FormDraft) Clone() FormDraft {
	out := make(FormDraft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether every field of the draft is blank
func (d FormDraft) IsEmpty() bool {
	for _, v := range d {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// KeyField is one component of an entity key, in declared order
type KeyField struct {
	Name  string
	Value string
}

// internal/domain/entity/record.go
package entity

import (
	"sort"
	"strings"
)

// Field is one named scalar value of a Record
type Field struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Record is an ordered mapping of field names to values. It represents one
// remote entity instance.
type Record struct {
	fields []Field
}

// NewRecord builds a record from fields in the given order. A repeated
// name overwrites the earlier value and keeps its position.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r = r.With(f.Name, f.Value)
	}
	return r
}

// RecordFromMap builds a record ordered by the given field order first and
// then by name for any remaining fields.
func RecordFromMap(values map[string]string, order []string) Record {
	var r Record
	seen := make(map[string]bool, len(values))
	for _, name := range order {
		if v, ok := values[name]; ok {
			r.fields = append(r.fields, Field{Name: name, Value: v})
			seen[name] = true
		}
	}

	var rest []string
	for name := range values {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		r.fields = append(r.fields, Field{Name: name, Value: values[name]})
	}
	return r
}

// Get returns the value of the named field
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// With returns a copy of the record with the field set
func (r Record) With(name, value string) Record {
	out := Record{fields: make([]Field, len(r.fields), len(r.fields)+1)}
	copy(out.fields, r.fields)
	for i := range out.fields {
		if out.fields[i].Name == name {
			out.fields[i].Value = value
			return out
		}
	}
	out.fields = append(out.fields, Field{Name: name, Value: value})
	return out
}

// Fields returns a copy of the fields in order
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in order
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the record as an unordered map
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Len returns the number of fields
func (r Record) Len() int {
	return len(r.fields)
}

// Equal reports whether both records hold the same fields in the same order
func (r Record) Equal(other Record) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

func (r Record) String() string {
	parts := make([]string, len(r.fields))
	for i, f := range r.fields {
		parts[i] = f.Name + "=" + f.Value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Collection is an ordered, fully materialized sequence of records
type Collection []Record

// Clone returns a shallow copy; records are immutable values
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Equal reports element-wise equality
func (c Collection) Equal(other Collection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

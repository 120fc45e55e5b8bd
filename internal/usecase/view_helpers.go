package usecase

import (
	"fmt"
	"strings"

	"flightdesk-service/internal/domain/entity"
)

// ApplyFilter returns the records of c matching p, in their original order.
// c is never modified.
func ApplyFilter(c entity.Collection, p entity.FilterPredicate) entity.Collection {
	out, _ := applyFilterIndexed(c, p)
	return out
}

func applyFilterIndexed(c entity.Collection, p entity.FilterPredicate) (entity.Collection, []int) {
	out := make(entity.Collection, 0, len(c))
	idx := make([]int, 0, len(c))
	for i, r := range c {
		if p.Matches(r) {
			out = append(out, r)
			idx = append(idx, i)
		}
	}
	return out, idx
}

// BuildCreateRecord validates draft against the view's required fields and
// orders it by the view's create fields
func BuildCreateRecord(view entity.ViewDefinition, draft entity.FormDraft) (entity.Record, error) {
	if draft.IsEmpty() {
		return entity.Record{}, fmt.Errorf("draft is empty: %w", entity.ErrMissingField)
	}

	var missing []string
	for _, name := range view.RequiredFields {
		if strings.TrimSpace(draft[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return entity.Record{}, fmt.Errorf("%s: %w", strings.Join(missing, ", "), entity.ErrMissingField)
	}

	return entity.RecordFromMap(draft, view.CreateFields), nil
}

func sameKey(a, b []entity.KeyField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package match

import (
	"strings"
	"time"
)

// Field names a sortable or filterable match attribute.
type Field string

const (
	FieldOwner     Field = "owner"
	FieldSport     Field = "sport"
	FieldMatchDate Field = "matchDate"
	FieldMatchTime Field = "matchTime"
)

const (
	DefaultSortBy    = string(FieldMatchDate)
	DefaultDirection = "desc"
)

// Constraint is an exact-match predicate on one field.
type Constraint struct {
	Field Field
	Value any
}

// Filter is a conjunction of constraints. No constraints matches everything.
type Filter struct {
	Constraints []Constraint
}

type OrderTerm struct {
	Field Field
	Desc  bool
}

type Ordering struct {
	Terms []OrderTerm
}

// BuildFilter drops blank values. Owner is compared lowercased and sport uppercased.
func BuildFilter(owner, sport string, matchDate *time.Time) Filter {
	var filter Filter

	if v := strings.ToLower(strings.TrimSpace(owner)); v != "" {
		filter.Constraints = append(filter.Constraints, Constraint{Field: FieldOwner, Value: v})
	}
	if v := strings.ToUpper(strings.TrimSpace(sport)); v != "" {
		filter.Constraints = append(filter.Constraints, Constraint{Field: FieldSport, Value: v})
	}
	if matchDate != nil && !matchDate.IsZero() {
		filter.Constraints = append(filter.Constraints, Constraint{Field: FieldMatchDate, Value: DateOf(*matchDate)})
	}

	return filter
}

// BuildOrdering reports false when sortBy is unknown; the ordering then falls back to matchDate descending.
func BuildOrdering(sortBy, direction string) (Ordering, bool) {
	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")

	var fields []Field
	switch strings.TrimSpace(sortBy) {
	case string(FieldOwner):
		fields = []Field{FieldOwner, FieldMatchDate}
	case string(FieldSport):
		fields = []Field{FieldSport, FieldMatchDate}
	case string(FieldMatchDate):
		fields = []Field{FieldMatchDate, FieldMatchTime}
	default:
		return Ordering{Terms: []OrderTerm{{Field: FieldMatchDate, Desc: true}}}, false
	}

	terms := make([]OrderTerm, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, OrderTerm{Field: f, Desc: desc})
	}
	return Ordering{Terms: terms}, true
}

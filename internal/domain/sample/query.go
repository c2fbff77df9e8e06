package sample

import (
	"strings"
	"time"
)

// FilterAll is the sentinel categorical filter value that matches every sample.
const FilterAll = "All"

// Query is a conjunction of optional predicates. Zero values disable a
// predicate.
type Query struct {
	// Text matches case-insensitively against name, ID, species, genus and family.
	Text string
	// Kingdom and ProjectType match exactly; "" and "All" match everything.
	Kingdom     string
	ProjectType string
	// DateFrom and DateTo bound CollectionDate inclusively (YYYY-MM-DD).
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// Filter returns the samples satisfying every predicate of q, in their
// original order.
func Filter(samples []Sample, q Query) ([]Sample, error) {
	from, to, err := q.dateBounds()
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(q.Text)

	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if text != "" && !strings.Contains(searchText(s), text) {
			continue
		}
		if !categoryMatches(q.Kingdom, string(s.Kingdom)) {
			continue
		}
		if !categoryMatches(q.ProjectType, string(s.ProjectType)) {
			continue
		}
		if !dateInRange(s.CollectionDate, from, to) {
			continue
		}
		out = append(out, s)
	}
	return paginate(out, q.Offset, q.Limit), nil
}

func (q Query) dateBounds() (*time.Time, *time.Time, error) {
	var violations []FieldError
	parse := func(field, value string) *time.Time {
		if value == "" {
			return nil
		}
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			violations = append(violations, FieldError{Field: field, Reason: ReasonWrongType})
			return nil
		}
		return &t
	}
	from := parse("dateFrom", strings.TrimSpace(q.DateFrom))
	to := parse("dateTo", strings.TrimSpace(q.DateTo))
	if len(violations) > 0 {
		return nil, nil, &ValidationError{Violations: violations}
	}
	return from, to, nil
}

func searchText(s Sample) string {
	return strings.ToLower(strings.Join([]string{s.SampleName, s.SampleID, s.Species, s.Genus, s.Family}, " "))
}

func categoryMatches(filter, value string) bool {
	if filter == "" || filter == FilterAll {
		return true
	}
	return filter == value
}

func dateInRange(value string, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return false
	}
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func paginate(samples []Sample, offset, limit int) []Sample {
	if offset > 0 {
		if offset >= len(samples) {
			return []Sample{}
		}
		samples = samples[offset:]
	}
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return samples
}

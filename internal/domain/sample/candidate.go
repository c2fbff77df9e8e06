package sample

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field aliases used by records written before the schema was fixed.
var legacyAliases = map[string][]string{
	"sampleName":     {"name"},
	"collectionDate": {"date", "dateAcquired"},
}

// CandidateFromFields normalises a loosely typed record (decoded JSON, form
// values) into a Candidate. Numeric strings are accepted for numbers and a
// legacy "lat, lng" location string is split into coordinates. Values of the
// wrong shape are reported as WrongType and left absent.
func CandidateFromFields(fields map[string]any) (Candidate, []FieldError) {
	var c Candidate
	var violations []FieldError
	wrongType := func(field string) {
		violations = append(violations, FieldError{Field: field, Reason: ReasonWrongType})
	}

	stringField := func(field string, dst *string) {
		v, name, ok := lookup(fields, field)
		if !ok {
			return
		}
		s, ok := v.(string)
		if !ok {
			wrongType(name)
			return
		}
		*dst = s
	}
	intField := func(field string, dst **int) {
		v, name, ok := lookup(fields, field)
		if !ok {
			return
		}
		n, ok := toInt(v)
		if !ok {
			wrongType(name)
			return
		}
		if n != nil {
			*dst = n
		}
	}
	floatField := func(field string, dst **float64) {
		v, name, ok := lookup(fields, field)
		if !ok {
			return
		}
		f, ok := toFloat(v)
		if !ok {
			wrongType(name)
			return
		}
		if f != nil {
			*dst = f
		}
	}

	stringField("sampleName", &c.SampleName)
	stringField("species", &c.Species)
	stringField("genus", &c.Genus)
	stringField("family", &c.Family)
	stringField("kingdom", &c.Kingdom)
	stringField("projectType", &c.ProjectType)
	intField("projectNumber", &c.ProjectNumber)
	intField("sampleNumber", &c.SampleNumber)
	stringField("collectionDate", &c.CollectionDate)
	floatField("latitude", &c.Latitude)
	floatField("longitude", &c.Longitude)
	stringField("samplePhoto", &c.SamplePhoto)
	stringField("semPhoto", &c.SEMPhoto)
	stringField("isolatedPhoto", &c.IsolatedPhoto)

	if c.Latitude == nil && c.Longitude == nil {
		if v, ok := fields["location"]; ok && v != nil {
			lat, lng, ok := parseLocation(v)
			if !ok {
				wrongType("location")
			} else if lat != nil {
				c.Latitude, c.Longitude = lat, lng
			}
		}
	}

	return c, violations
}

// HasField reports whether fields carries field under its own name or a
// legacy alias. A nil value counts as present.
func HasField(fields map[string]any, field string) bool {
	if _, ok := fields[field]; ok {
		return true
	}
	for _, alias := range legacyAliases[field] {
		if _, ok := fields[alias]; ok {
			return true
		}
	}
	return false
}

// lookup returns the value stored under field or one of its legacy aliases.
// Nil values count as absent.
func lookup(fields map[string]any, field string) (any, string, bool) {
	if v, ok := fields[field]; ok && v != nil {
		return v, field, true
	}
	for _, alias := range legacyAliases[field] {
		if v, ok := fields[alias]; ok && v != nil {
			return v, alias, true
		}
	}
	return nil, field, false
}

// toInt converts v to an integer. A nil result with ok=true means the value
// was an empty string and is treated as absent.
func toInt(v any) (*int, bool) {
	switch n := v.(type) {
	case int:
		return intPtr(n), true
	case int64:
		return intPtr(int(n)), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= -math.MinInt {
			return nil, false
		}
		return intPtr(int(n)), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, false
		}
		return intPtr(int(i)), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, true
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		return intPtr(i), true
	default:
		return nil, false
	}
}

func toFloat(v any) (*float64, bool) {
	switch n := v.(type) {
	case float64:
		return floatPtr(n), true
	case int:
		return floatPtr(float64(n)), true
	case int64:
		return floatPtr(float64(n)), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return floatPtr(f), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return floatPtr(f), true
	default:
		return nil, false
	}
}

func parseLocation(v any) (*float64, *float64, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, nil, false
	}
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), "N/A") {
		return nil, nil, true
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, nil, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return nil, nil, false
	}
	return floatPtr(lat), floatPtr(lng), true
}

package sample

import (
	"math"
	"strings"
	"time"
)

// Validate checks a candidate against the sample schema and returns the
// normalised record without an ID. Strings are trimmed and an absent
// collection date defaults to the date of now. ID inputs may be absent here;
// GenerateID reports them.
func Validate(c Candidate, now time.Time) (Sample, error) {
	var violations []FieldError
	reject := func(field string, reason Reason) {
		violations = append(violations, FieldError{Field: field, Reason: reason})
	}

	s := Sample{
		SampleName:    strings.TrimSpace(c.SampleName),
		Species:       strings.TrimSpace(c.Species),
		Genus:         strings.TrimSpace(c.Genus),
		Family:        strings.TrimSpace(c.Family),
		Kingdom:       Kingdom(strings.TrimSpace(c.Kingdom)),
		ProjectType:   ProjectType(strings.TrimSpace(c.ProjectType)),
		SamplePhoto:   strings.TrimSpace(c.SamplePhoto),
		SEMPhoto:      strings.TrimSpace(c.SEMPhoto),
		IsolatedPhoto: strings.TrimSpace(c.IsolatedPhoto),
	}

	if s.SampleName == "" {
		reject("sampleName", ReasonMissing)
	}
	if s.Kingdom != "" && !s.Kingdom.Valid() {
		reject("kingdom", ReasonOutOfEnum)
	}
	if s.ProjectType != "" && !s.ProjectType.Valid() {
		reject("projectType", ReasonOutOfEnum)
	}
	if c.ProjectNumber != nil {
		if *c.ProjectNumber <= 0 {
			reject("projectNumber", ReasonOutOfRange)
		} else {
			s.ProjectNumber = *c.ProjectNumber
		}
	}
	if c.SampleNumber != nil {
		if *c.SampleNumber <= 0 {
			reject("sampleNumber", ReasonOutOfRange)
		} else {
			s.SampleNumber = *c.SampleNumber
		}
	}

	date := strings.TrimSpace(c.CollectionDate)
	if date == "" {
		s.CollectionDate = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		reject("collectionDate", ReasonWrongType)
	} else {
		s.CollectionDate = date
	}

	switch {
	case c.Latitude == nil && c.Longitude == nil:
	case c.Latitude == nil:
		reject("latitude", ReasonMissing)
	case c.Longitude == nil:
		reject("longitude", ReasonMissing)
	default:
		lat, lng := *c.Latitude, *c.Longitude
		ok := true
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			reject("latitude", ReasonOutOfRange)
			ok = false
		}
		if math.IsNaN(lng) || lng < -180 || lng > 180 {
			reject("longitude", ReasonOutOfRange)
			ok = false
		}
		if ok {
			s.Latitude, s.Longitude = floatPtr(lat), floatPtr(lng)
		}
	}

	if len(violations) > 0 {
		return Sample{}, &ValidationError{Violations: violations}
	}
	return s, nil
}

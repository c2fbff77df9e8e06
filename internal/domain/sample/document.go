package sample

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// encodeDocument serialises the ordered collection. An empty collection is "[]".
func encodeDocument(samples []Sample) ([]byte, error) {
	if samples == nil {
		samples = []Sample{}
	}
	return json.Marshal(samples)
}

// decodeDocument parses a persisted collection. Documents written by this
// package decode strictly; anything else is imported record by record as a
// legacy document. The returned notes describe records that were dropped or
// altered during a legacy import.
func decodeDocument(data []byte) ([]Sample, []string, error) {
	if samples, ok := decodeStrict(data); ok {
		return samples, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, err
	}
	if raw == nil && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil, errors.New("document is not an array")
	}
	samples, notes := importLegacy(raw)
	return samples, notes, nil
}

func decodeStrict(data []byte) ([]Sample, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var samples []Sample
	if err := dec.Decode(&samples); err != nil {
		return nil, false
	}
	if samples == nil {
		return nil, false
	}
	for _, s := range samples {
		if s.SampleID == "" {
			return nil, false
		}
	}
	return samples, true
}

// importLegacy converts loosely shaped records. IDs are re-derived where the
// key fields are complete; otherwise a stored sampleID or legacy id is kept.
// Records without any usable ID are dropped.
func importLegacy(raw []map[string]any) ([]Sample, []string) {
	var notes []string
	samples := make([]Sample, 0, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, fields := range raw {
		c, violations := CandidateFromFields(fields)
		for _, v := range violations {
			notes = append(notes, fmt.Sprintf("record %d: dropped %s", i, v))
		}
		s, dropped := salvage(c)
		for _, v := range dropped {
			notes = append(notes, fmt.Sprintf("record %d: dropped %s", i, v))
		}

		id, err := GenerateID(s.IDInputs())
		if err != nil {
			id = firstString(fields, "sampleID", "id")
		}
		if id == "" {
			notes = append(notes, fmt.Sprintf("record %d: no usable id, skipped", i))
			continue
		}
		if taken[id] {
			renamed := disambiguate(id, func(candidate string) bool { return taken[candidate] })
			notes = append(notes, fmt.Sprintf("record %d: duplicate id %s renamed to %s", i, id, renamed))
			id = renamed
		}
		taken[id] = true
		s.SampleID = id

		if ts := firstString(fields, "lastUpdated"); ts != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				s.LastUpdated = parsed.UTC()
			}
		}
		samples = append(samples, s)
	}
	return samples, notes
}

// salvage validates c leniently: fields that violate the schema are cleared
// instead of rejecting the record. The collection date is kept verbatim.
func salvage(c Candidate) (Sample, []FieldError) {
	name := strings.TrimSpace(c.SampleName)
	date := strings.TrimSpace(c.CollectionDate)
	if name == "" {
		c.SampleName = "-"
	}
	c.CollectionDate = ""
	if c.Kingdom == "Monera" {
		c.Kingdom = string(KingdomUndecided)
	}

	var dropped []FieldError
	for range 4 {
		s, err := Validate(c, time.Time{})
		if err == nil {
			s.SampleName = name
			s.CollectionDate = date
			return s, dropped
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return Sample{SampleName: name, CollectionDate: date}, dropped
		}
		for _, v := range verr.Violations {
			dropped = append(dropped, v)
			clearField(&c, v.Field)
		}
	}
	return Sample{SampleName: name, CollectionDate: date}, dropped
}

func clearField(c *Candidate, field string) {
	switch field {
	case "kingdom":
		c.Kingdom = ""
	case "projectType":
		c.ProjectType = ""
	case "projectNumber":
		c.ProjectNumber = nil
	case "sampleNumber":
		c.SampleNumber = nil
	case "latitude", "longitude":
		c.Latitude, c.Longitude = nil, nil
	case "sampleName":
		c.SampleName = "-"
	}
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}


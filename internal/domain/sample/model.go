package sample

import "time"

// Kingdom is the taxonomic kingdom of a sample.
type Kingdom string

const (
	KingdomAnimalia  Kingdom = "Animalia"
	KingdomPlantae   Kingdom = "Plantae"
	KingdomFungi     Kingdom = "Fungi"
	KingdomProtista  Kingdom = "Protista"
	KingdomArchaea   Kingdom = "Archaea"
	KingdomBacteria  Kingdom = "Bacteria"
	KingdomChromista Kingdom = "Chromista"
	KingdomUndecided Kingdom = "Undecided"
)

// Kingdoms lists every accepted kingdom in display order.
var Kingdoms = []Kingdom{
	KingdomAnimalia,
	KingdomPlantae,
	KingdomFungi,
	KingdomProtista,
	KingdomArchaea,
	KingdomBacteria,
	KingdomChromista,
	KingdomUndecided,
}

// Valid reports whether k is one of the accepted kingdoms.
func (k Kingdom) Valid() bool {
	for _, known := range Kingdoms {
		if k == known {
			return true
		}
	}
	return false
}

// ProjectType is the administrative project grouping of a sample.
type ProjectType string

const (
	ProjectTypeA ProjectType = "A"
	ProjectTypeB ProjectType = "B"
)

// Valid reports whether t is a known project type.
func (t ProjectType) Valid() bool {
	return t == ProjectTypeA || t == ProjectTypeB
}

// DateLayout is the calendar date format of CollectionDate.
const DateLayout = "2006-01-02"

// Sample is a specimen record. Its JSON form is also the element shape of the
// persisted document.
type Sample struct {
	SampleID       string      `json:"sampleID"`
	SampleName     string      `json:"sampleName"`
	Species        string      `json:"species,omitempty"`
	Genus          string      `json:"genus,omitempty"`
	Family         string      `json:"family,omitempty"`
	Kingdom        Kingdom     `json:"kingdom,omitempty"`
	ProjectType    ProjectType `json:"projectType"`
	ProjectNumber  int         `json:"projectNumber"`
	SampleNumber   int         `json:"sampleNumber"`
	CollectionDate string      `json:"collectionDate"`
	Latitude       *float64    `json:"latitude,omitempty"`
	Longitude      *float64    `json:"longitude,omitempty"`
	SamplePhoto    string      `json:"samplePhoto,omitempty"`
	SEMPhoto       string      `json:"semPhoto,omitempty"`
	IsolatedPhoto  string      `json:"isolatedPhoto,omitempty"`
	LastUpdated    time.Time   `json:"lastUpdated"`
}

// IDInputs returns the fields the sample ID is derived from.
func (s Sample) IDInputs() IDInputs {
	return IDInputs{
		ProjectType:      s.ProjectType,
		ProjectNumber:    s.ProjectNumber,
		SampleNumber:     s.SampleNumber,
		HasSEMPhoto:      s.SEMPhoto != "",
		HasIsolatedPhoto: s.IsolatedPhoto != "",
	}
}

// Candidate is an unvalidated sample as supplied by a form or import.
// Empty strings and nil pointers mean the field is absent.
type Candidate struct {
	SampleName     string
	Species        string
	Genus          string
	Family         string
	Kingdom        string
	ProjectType    string
	ProjectNumber  *int
	SampleNumber   *int
	CollectionDate string
	Latitude       *float64
	Longitude      *float64
	SamplePhoto    string
	SEMPhoto       string
	IsolatedPhoto  string
}

// CandidateOf converts a stored sample back into candidate form.
func CandidateOf(s Sample) Candidate {
	c := Candidate{
		SampleName:     s.SampleName,
		Species:        s.Species,
		Genus:          s.Genus,
		Family:         s.Family,
		Kingdom:        string(s.Kingdom),
		ProjectType:    string(s.ProjectType),
		CollectionDate: s.CollectionDate,
		SamplePhoto:    s.SamplePhoto,
		SEMPhoto:       s.SEMPhoto,
		IsolatedPhoto:  s.IsolatedPhoto,
	}
	if s.ProjectNumber != 0 {
		c.ProjectNumber = intPtr(s.ProjectNumber)
	}
	if s.SampleNumber != 0 {
		c.SampleNumber = intPtr(s.SampleNumber)
	}
	if s.Latitude != nil {
		c.Latitude = floatPtr(*s.Latitude)
	}
	if s.Longitude != nil {
		c.Longitude = floatPtr(*s.Longitude)
	}
	return c
}

// Patch is a partial update. Nil fields leave the stored value untouched; a
// pointer to the empty string clears an optional field.
type Patch struct {
	SampleName     *string
	Species        *string
	Genus          *string
	Family         *string
	Kingdom        *string
	ProjectType    *string
	ProjectNumber  *int
	SampleNumber   *int
	CollectionDate *string
	Latitude       *float64
	Longitude      *float64
	ClearLocation  bool
	SamplePhoto    *string
	SEMPhoto       *string
	IsolatedPhoto  *string
}

// Apply merges the patch onto c field by field.
func (p Patch) Apply(c Candidate) Candidate {
	setString(&c.SampleName, p.SampleName)
	setString(&c.Species, p.Species)
	setString(&c.Genus, p.Genus)
	setString(&c.Family, p.Family)
	setString(&c.Kingdom, p.Kingdom)
	setString(&c.ProjectType, p.ProjectType)
	setString(&c.CollectionDate, p.CollectionDate)
	setString(&c.SamplePhoto, p.SamplePhoto)
	setString(&c.SEMPhoto, p.SEMPhoto)
	setString(&c.IsolatedPhoto, p.IsolatedPhoto)
	if p.ProjectNumber != nil {
		c.ProjectNumber = intPtr(*p.ProjectNumber)
	}
	if p.SampleNumber != nil {
		c.SampleNumber = intPtr(*p.SampleNumber)
	}
	if p.ClearLocation {
		c.Latitude, c.Longitude = nil, nil
	}
	if p.Latitude != nil {
		c.Latitude = floatPtr(*p.Latitude)
	}
	if p.Longitude != nil {
		c.Longitude = floatPtr(*p.Longitude)
	}
	return c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// clone returns a copy that shares no pointers with s.
func (s Sample) clone() Sample {
	if s.Latitude != nil {
		s.Latitude = floatPtr(*s.Latitude)
	}
	if s.Longitude != nil {
		s.Longitude = floatPtr(*s.Longitude)
	}
	return s
}

func cloneAll(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = s.clone()
	}
	return out
}

package sample

import (
	"strconv"
	"strings"
)

const (
	suffixSEM = "SEM"
	suffixISO = "ISO"
)

// IDInputs are the fields a sample ID is derived from. Zero values mean absent.
type IDInputs struct {
	ProjectType      ProjectType
	ProjectNumber    int
	SampleNumber     int
	HasSEMPhoto      bool
	HasIsolatedPhoto bool
}

// GenerateID derives the sample ID, e.g. "A12-3", "A12-3-SEM" or
// "B1-1-SEM-ISO". The SEM suffix always precedes ISO.
func GenerateID(in IDInputs) (string, error) {
	var missing []string
	if in.ProjectType == "" {
		missing = append(missing, "projectType")
	}
	if in.ProjectNumber == 0 {
		missing = append(missing, "projectNumber")
	}
	if in.SampleNumber == 0 {
		missing = append(missing, "sampleNumber")
	}
	if len(missing) > 0 {
		return "", &IdentifierError{Missing: missing}
	}

	var b strings.Builder
	b.WriteString(string(in.ProjectType))
	b.WriteString(strconv.Itoa(in.ProjectNumber))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(in.SampleNumber))

	var suffixes []string
	if in.HasSEMPhoto {
		suffixes = append(suffixes, suffixSEM)
	}
	if in.HasIsolatedPhoto {
		suffixes = append(suffixes, suffixISO)
	}
	if len(suffixes) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(suffixes, "-"))
	}
	return b.String(), nil
}

// disambiguate appends the smallest numeric token >= 2 that makes id unused.
func disambiguate(id string, taken func(string) bool) string {
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

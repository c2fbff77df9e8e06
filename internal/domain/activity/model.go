package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeSampleCreated     ActivityType = "sample_created"
	TypeSampleUpdated     ActivityType = "sample_updated"
	TypeSampleRenamed     ActivityType = "sample_renamed"
	TypeDocumentRecovered ActivityType = "document_recovered"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           string       `json:"id"`
	SampleID     *string      `json:"sample_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

// RenameDetails is the Details payload of a TypeSampleRenamed entry.
type RenameDetails struct {
	PreviousID string `json:"previous_id"`
	NewID      string `json:"new_id"`
}

package mcp

import (
	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
)

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	ReadOnly    bool           `json:"-"`
}

type ValidateSampleParams struct {
	Sample map[string]any `json:"sample"`
}

type CreateSampleParams struct {
	Sample map[string]any `json:"sample"`
}

type UpdateSampleParams struct {
	SampleID string         `json:"sample_id"`
	Changes  map[string]any `json:"changes"`
}

type GetSampleParams struct {
	SampleID string `json:"sample_id"`
}

type SearchSamplesParams struct {
	Text        string `json:"text,omitempty"`
	Kingdom     string `json:"kingdom,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
	DateFrom    string `json:"dateFrom,omitempty"`
	DateTo      string `json:"dateTo,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

type RecentSamplesParams struct {
	N int `json:"n,omitempty"`
}

type GetRecentActivityParams struct {
	SampleID string `json:"sample_id,omitempty"`
	Type     string `json:"type,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

type ValidateSampleResponse struct {
	Valid           bool                `json:"valid"`
	Sample          *sample.Sample      `json:"sample,omitempty"`
	ProposedID      string              `json:"proposed_id,omitempty"`
	MissingIDInputs []string            `json:"missing_id_inputs,omitempty"`
	Violations      []sample.FieldError `json:"violations,omitempty"`
}

type SampleListResponse struct {
	Samples []sample.Sample `json:"samples"`
	Count   int             `json:"count"`
}

type ReloadResponse struct {
	Count int `json:"count"`
}

type ActivityEntryResponse struct {
	ID        string                `json:"id"`
	Timestamp string                `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	SampleID  string                `json:"sample_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}

type ActivityListResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}

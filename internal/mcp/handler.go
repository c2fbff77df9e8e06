package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
)

const defaultRecentCount = 5

// SampleService defines sample operations needed by MCP.
type SampleService interface {
	List(ctx context.Context) ([]sample.Sample, error)
	Get(ctx context.Context, id string) (sample.Sample, error)
	Create(ctx context.Context, c sample.Candidate) (sample.Sample, error)
	Update(ctx context.Context, id string, patch sample.Patch) (sample.Sample, error)
	Load(ctx context.Context) error
	Validate(c sample.Candidate) (sample.Sample, error)
	Search(ctx context.Context, q sample.Query) ([]sample.Sample, error)
	LatestRegistered(ctx context.Context, n int) ([]sample.Sample, error)
	LatestEdited(ctx context.Context, n int) ([]sample.Sample, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	samples  SampleService
	activity ActivityService
}

// NewHandler creates a new MCP handler. activitySvc may be nil.
func NewHandler(samples SampleService, activitySvc ActivityService) *Handler {
	return &Handler{
		samples:  samples,
		activity: activitySvc,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "validate_sample":
		var req ValidateSampleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.validate(req.Sample), nil
	case "create_sample":
		var req CreateSampleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		c, violations := sample.CandidateFromFields(req.Sample)
		if len(violations) > 0 {
			return nil, mapError(&sample.ValidationError{Violations: violations})
		}
		created, err := h.samples.Create(ctx, c)
		if err != nil {
			return nil, mapError(err)
		}
		return created, nil
	case "update_sample":
		var req UpdateSampleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.SampleID == "" {
			return nil, mapError(fmt.Errorf("%w: sample_id is required", ErrInvalidParams))
		}
		patch, violations := patchFromFields(req.Changes)
		if len(violations) > 0 {
			return nil, mapError(&sample.ValidationError{Violations: violations})
		}
		updated, err := h.samples.Update(ctx, req.SampleID, patch)
		if err != nil {
			return nil, mapError(err)
		}
		return updated, nil
	case "get_sample":
		var req GetSampleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		found, err := h.samples.Get(ctx, req.SampleID)
		if err != nil {
			return nil, mapError(err)
		}
		return found, nil
	case "list_samples":
		all, err := h.samples.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return listResponse(all), nil
	case "search_samples":
		var req SearchSamplesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		found, err := h.samples.Search(ctx, sample.Query{
			Text:        req.Text,
			Kingdom:     req.Kingdom,
			ProjectType: req.ProjectType,
			DateFrom:    req.DateFrom,
			DateTo:      req.DateTo,
			Limit:       req.Limit,
			Offset:      req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return listResponse(found), nil
	case "latest_registered", "latest_edited":
		var req RecentSamplesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		n := req.N
		if n <= 0 {
			n = defaultRecentCount
		}
		view := h.samples.LatestRegistered
		if method == "latest_edited" {
			view = h.samples.LatestEdited
		}
		recent, err := view(ctx, n)
		if err != nil {
			return nil, mapError(err)
		}
		return listResponse(recent), nil
	case "reload_samples":
		if err := h.samples.Load(ctx); err != nil {
			return nil, mapError(err)
		}
		all, err := h.samples.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return ReloadResponse{Count: len(all)}, nil
	case "get_recent_activity":
		if h.activity == nil {
			return ActivityListResponse{Entries: []ActivityEntryResponse{}}, nil
		}
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{Limit: req.Limit, Offset: req.Offset}
		if req.SampleID != "" {
			opts.SampleID = &req.SampleID
		}
		if req.Type != "" {
			t := activity.ActivityType(req.Type)
			opts.ActivityType = &t
		}
		entries, err := h.activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				ID:        entry.ID,
				Timestamp: entry.CreatedAt.UTC().Format(time.RFC3339),
				Type:      entry.ActivityType,
				SampleID:  stringValue(entry.SampleID),
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return ActivityListResponse{Entries: resp}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) validate(fields map[string]any) ValidateSampleResponse {
	c, violations := sample.CandidateFromFields(fields)
	if len(violations) > 0 {
		return ValidateSampleResponse{Violations: violations}
	}
	normalised, err := h.samples.Validate(c)
	var verr *sample.ValidationError
	if errors.As(err, &verr) {
		return ValidateSampleResponse{Violations: verr.Violations}
	}

	resp := ValidateSampleResponse{Valid: true, Sample: &normalised}
	id, err := sample.GenerateID(normalised.IDInputs())
	var idErr *sample.IdentifierError
	if errors.As(err, &idErr) {
		resp.MissingIDInputs = idErr.Missing
	} else {
		resp.ProposedID = id
		normalised.SampleID = id
	}
	return resp
}

// patchFromFields builds a patch from the keys present in fields. A null or
// empty value clears an optional field; null coordinates clear the location.
func patchFromFields(fields map[string]any) (sample.Patch, []sample.FieldError) {
	c, violations := sample.CandidateFromFields(fields)
	has := func(key string) bool {
		return sample.HasField(fields, key)
	}
	str := func(key, value string) *string {
		if !has(key) {
			return nil
		}
		return &value
	}

	p := sample.Patch{
		SampleName:     str("sampleName", c.SampleName),
		Species:        str("species", c.Species),
		Genus:          str("genus", c.Genus),
		Family:         str("family", c.Family),
		Kingdom:        str("kingdom", c.Kingdom),
		ProjectType:    str("projectType", c.ProjectType),
		CollectionDate: str("collectionDate", c.CollectionDate),
		SamplePhoto:    str("samplePhoto", c.SamplePhoto),
		SEMPhoto:       str("semPhoto", c.SEMPhoto),
		IsolatedPhoto:  str("isolatedPhoto", c.IsolatedPhoto),
		ProjectNumber:  c.ProjectNumber,
		SampleNumber:   c.SampleNumber,
	}
	if has("latitude") || has("longitude") || has("location") {
		if c.Latitude == nil && c.Longitude == nil {
			p.ClearLocation = true
		}
		p.Latitude, p.Longitude = c.Latitude, c.Longitude
	}
	return p, violations
}

func listResponse(samples []sample.Sample) SampleListResponse {
	if samples == nil {
		samples = []sample.Sample{}
	}
	return SampleListResponse{Samples: samples, Count: len(samples)}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}
	return nil
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}

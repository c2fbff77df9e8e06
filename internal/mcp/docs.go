package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `merobase is the specimen register of a microbiology lab. Every sample has an ID derived from its project and photos.

Core concepts:
- Sample: one specimen record (name, taxonomy, project, collection date, location, photo references).
- Sample ID: <projectType><projectNumber>-<sampleNumber>, plus -SEM when a SEM photo exists and -ISO when an isolated photo exists (SEM before ISO), e.g. A12-3-SEM-ISO.
- IDs are derived, never chosen. Changing projectType, projectNumber, sampleNumber or adding/removing the SEM or isolated photo renames the sample; the old ID stops resolving.

Default workflow:
1) Browse: list_samples / search_samples / latest_registered / latest_edited.
2) Check before writing: validate_sample shows the normalised sample, the ID it would get, and every violation at once.
3) Write: create_sample / update_sample. Use the ID returned by update_sample from then on.
4) If a write returns CONFLICT, another writer changed the document: call reload_samples, then retry.
5) Audit: get_recent_activity lists creations, updates, renames and document recoveries.

Docs:
- merobase://docs/index
- merobase://docs/schema
- merobase://docs/search
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "merobase://docs/index",
		Name:        "docs_index",
		Title:       "merobase docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# merobase docs

## Tools
| Tool | Purpose |
|---|---|
| validate_sample | Dry-run the schema check and ID derivation |
| create_sample | Register a sample |
| update_sample | Change fields; may rename the sample |
| get_sample | One sample by ID |
| list_samples | All samples in registration order |
| search_samples | Text, kingdom, project type, date range |
| latest_registered | Newest registrations first |
| latest_edited | Most recently edited first |
| reload_samples | Re-read the persisted document |
| get_recent_activity | Audit trail |

## Read next
- merobase://docs/schema for field rules and error codes
- merobase://docs/search for filter semantics
`,
	},
	{
		URI:         "merobase://docs/schema",
		Name:        "docs_schema",
		Title:       "Sample schema",
		Description: "Field rules, ID derivation and error codes.",
		Content: `# Sample schema

| Field | Rule |
|---|---|
| sampleName | required, trimmed |
| species, genus, family | optional text |
| kingdom | Animalia, Plantae, Fungi, Protista, Archaea, Bacteria, Chromista or Undecided |
| projectType | A or B |
| projectNumber, sampleNumber | positive integers |
| collectionDate | YYYY-MM-DD; defaults to today |
| latitude, longitude | both or neither; [-90, 90] and [-180, 180] |
| samplePhoto, semPhoto, isolatedPhoto | optional references |

projectType, projectNumber and sampleNumber are needed to derive an ID.
Create fails without them; validate_sample reports them as missing_id_inputs.

## Violations
Each violation names a field and a reason: Missing, WrongType, OutOfEnum, OutOfRange.
All violations are reported together.

## Error codes
- VALIDATION_FAILED: details lists the violations
- ID_INPUTS_MISSING: details lists the missing ID inputs
- SAMPLE_NOT_FOUND: the ID does not exist (it may have been renamed)
- DUPLICATE_ID: another sample already has the derived ID
- CONFLICT: the stored document changed; reload_samples and retry
`,
	},
	{
		URI:         "merobase://docs/search",
		Name:        "docs_search",
		Title:       "Search semantics",
		Description: "How search_samples combines filters and paginates.",
		Content: `# search_samples

All supplied filters must match.

- text: case-insensitive substring of sampleName, sampleID, species, genus or family
- kingdom / projectType: exact match; empty or "All" disables the filter
- dateFrom / dateTo: inclusive YYYY-MM-DD bounds on collectionDate; samples whose
  date cannot be parsed never match a date filter
- limit / offset: applied after filtering

Results keep registration order. Use latest_registered or latest_edited for recency.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

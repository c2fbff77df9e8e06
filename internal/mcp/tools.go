package mcp

// sampleFieldsSchema describes a sample as supplied by a client. Numbers may
// also be sent as numeric strings.
func sampleFieldsSchema() map[string]any {
	str := func(description string) map[string]any {
		return map[string]any{"type": "string", "description": description}
	}
	num := func(description string) map[string]any {
		return map[string]any{"type": []string{"number", "string", "null"}, "description": description}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sampleName": str("Display name (required on create)"),
			"species":    str("Species"),
			"genus":      str("Genus"),
			"family":     str("Family"),
			"kingdom": map[string]any{
				"type":        "string",
				"description": "Taxonomic kingdom",
				"enum":        []string{"Animalia", "Plantae", "Fungi", "Protista", "Archaea", "Bacteria", "Chromista", "Undecided", ""},
			},
			"projectType": map[string]any{
				"type":        "string",
				"description": "Project type, part of the sample ID",
				"enum":        []string{"A", "B"},
			},
			"projectNumber":  num("Positive project number, part of the sample ID"),
			"sampleNumber":   num("Positive sample number, part of the sample ID"),
			"collectionDate": str("Collection date YYYY-MM-DD (defaults to today)"),
			"latitude":       num("Latitude in [-90, 90]; give together with longitude"),
			"longitude":      num("Longitude in [-180, 180]; give together with latitude"),
			"location":       str(`Legacy "lat, lng" string, used when latitude/longitude are absent`),
			"samplePhoto":    str("Sample photo reference"),
			"semPhoto":       str("SEM photo reference; adds -SEM to the ID"),
			"isolatedPhoto":  str("Isolated photo reference; adds -ISO to the ID"),
		},
	}
}

func recentSchema(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"n": map[string]any{
				"type":        "integer",
				"description": description,
			},
		},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Schema
		{
			Name:        "validate_sample",
			Description: "Check a sample against the schema without saving it; returns the normalised sample, the ID it would get, or every violation",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sample": sampleFieldsSchema(),
				},
				"required": []string{"sample"},
			},
		},

		// Writes
		{
			Name:        "create_sample",
			Description: "Register a new sample; its ID is derived from projectType, projectNumber, sampleNumber and the SEM/isolated photos",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sample": sampleFieldsSchema(),
				},
				"required": []string{"sample"},
			},
		},
		{
			Name:        "update_sample",
			Description: "Change fields of a sample. Only keys present in changes are applied; null clears optional fields. The ID is re-derived and the old ID disappears when ID inputs change",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sample_id": map[string]any{
						"type":        "string",
						"description": "Current sample ID",
					},
					"changes": sampleFieldsSchema(),
				},
				"required": []string{"sample_id", "changes"},
			},
		},
		{
			Name:        "reload_samples",
			Description: "Discard the in-memory collection and read the persisted document again",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Reads
		{
			Name:        "get_sample",
			Description: "Get one sample by ID",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sample_id": map[string]any{
						"type":        "string",
						"description": "Sample ID, e.g. A12-3-SEM",
					},
				},
				"required": []string{"sample_id"},
			},
		},
		{
			Name:        "list_samples",
			Description: "List every sample in registration order",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "search_samples",
			Description: "Filter samples by free text, kingdom, project type and collection date range; all given filters must match",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "Case-insensitive substring of name, ID, species, genus or family",
					},
					"kingdom": map[string]any{
						"type":        "string",
						"description": `Exact kingdom; "All" or empty matches everything`,
					},
					"projectType": map[string]any{
						"type":        "string",
						"description": `Exact project type; "All" or empty matches everything`,
					},
					"dateFrom": map[string]any{
						"type":        "string",
						"description": "Inclusive lower bound YYYY-MM-DD",
					},
					"dateTo": map[string]any{
						"type":        "string",
						"description": "Inclusive upper bound YYYY-MM-DD",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
		{
			Name:        "latest_registered",
			Description: "The most recently registered samples, newest first",
			ReadOnly:    true,
			InputSchema: recentSchema("Number of samples (default 5)"),
		},
		{
			Name:        "latest_edited",
			Description: "The most recently edited samples, newest first",
			ReadOnly:    true,
			InputSchema: recentSchema("Number of samples (default 5)"),
		},
		{
			Name:        "get_recent_activity",
			Description: "Recent sample activity (created, updated, renamed, recovered), newest first",
			ReadOnly:    true,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sample_id": map[string]any{
						"type":        "string",
						"description": "Only entries for this sample ID",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Only entries of this type",
						"enum":        []string{"sample_created", "sample_updated", "sample_renamed", "document_recovered"},
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of entries",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
	}
}

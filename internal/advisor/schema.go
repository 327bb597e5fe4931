package advisor

import "github.com/lalo8115/proyecto-vuelos/internal/llm"

// AdvisorySchema constrains the LLM output to a summary and a few tips.
var AdvisorySchema = &llm.Schema{
	Name:        "delay-advisory",
	Description: "Short advice for a traveler given a predicted flight delay risk",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the risk in plain language",
			},
			"tips": map[string]any{
				"type":        "array",
				"description": "Concrete things the traveler can do",
				"items":       map[string]any{"type": "string"},
				"maxItems":    3,
			},
		},
		"required":             []any{"summary", "tips"},
		"additionalProperties": false,
	},
}

package llm

import "sort"

// modelAliases maps friendly names to vendor model IDs, per provider.
var modelAliases = map[string]map[string]string{
	"anthropic": {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	"openai": {
		"gpt-4o":       "gpt-4o",
		"gpt-4o-mini":  "gpt-4o-mini",
		"gpt-4.1-mini": "gpt-4.1-mini",
	},
	"gemini": {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

// resolveModel maps a friendly name to a model ID. Unknown names are
// passed through so raw IDs work.
func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// ModelCost holds USD pricing per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// Pricing from models.dev.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5-20250929": {3, 15},
	"gpt-4o":                     {2.5, 10},
	"gpt-4o-mini":                {0.15, 0.6},
	"gpt-4.1-mini":               {0.4, 1.6},
	"gemini-2.5-flash":           {0.3, 2.5},
	"gemini-2.5-pro":             {1.25, 10},
	"gemini-2.0-flash":           {0.1, 0.4},
}

// ModelInfo describes one known alias.
type ModelInfo struct {
	Provider string
	Alias    string
	ID       string
	Cost     *ModelCost
}

// KnownModels lists every alias, sorted by provider then alias.
func KnownModels() []ModelInfo {
	var out []ModelInfo
	for provider, aliases := range modelAliases {
		for alias, id := range aliases {
			out = append(out, ModelInfo{Provider: provider, Alias: alias, ID: id, Cost: LookupCost(id)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Alias < out[j].Alias
	})
	return out
}

package generator

import (
	"strings"

	"github.com/yourorg/specgen/pkg/types"
)

// ModelPricing holds published per-1K-token rates in USD.
type ModelPricing struct {
	InputCostPer1K  float64
	OutputCostPer1K float64
}

// Published list prices. The figures are informational: cost is displayed
// after a run and recorded in history, never enforced.
var modelPricing = map[string]ModelPricing{
	"gpt-4o-mini":   {InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
	"gpt-4o":        {InputCostPer1K: 0.0025, OutputCostPer1K: 0.01},
	"gpt-4.1-mini":  {InputCostPer1K: 0.0004, OutputCostPer1K: 0.0016},
	"gpt-4.1":       {InputCostPer1K: 0.002, OutputCostPer1K: 0.008},
	"gpt-4-turbo":   {InputCostPer1K: 0.01, OutputCostPer1K: 0.03},
	"gpt-3.5-turbo": {InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015},
}

var defaultPricing = ModelPricing{InputCostPer1K: 0.002, OutputCostPer1K: 0.002}

// PricingFor resolves rates for a model: exact match first, then longest
// known prefix (covers dated snapshots like gpt-4o-mini-2024-07-18), then a
// conservative default.
func PricingFor(model string) ModelPricing {
	m := strings.ToLower(strings.TrimSpace(model))
	if p, ok := modelPricing[m]; ok {
		return p
	}
	var best string
	for name := range modelPricing {
		if strings.HasPrefix(m, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return modelPricing[best]
	}
	return defaultPricing
}

// EstimateCost prices one request's token usage in USD.
func EstimateCost(model string, usage types.Usage) float64 {
	p := PricingFor(model)
	return float64(usage.PromptTokens)/1000*p.InputCostPer1K + float64(usage.CompletionTokens)/1000*p.OutputCostPer1K
}

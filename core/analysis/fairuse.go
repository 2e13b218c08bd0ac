package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const fairUseInstructions = `FAIR USE ANALYSIS (transformative content assessment).
Evaluate the transformativeness of the content as a 0-100 score. Assess commentary,
criticism and educational value; assess transformation, not intent. Break down the four
fair use factors (purpose_and_character, nature_of_work, amount_used, market_effect),
each with a 0-10 score and reasoning. Be explicit about risk boundaries and finish with
actionable legal-safety guidance, not a legal disclaimer.`

const fairUseSchema = `{
  "score": 90,
  "reasoning": "string",
  "assessment": "string",
  "fair_use_factors_breakdown": {
    "purpose_and_character": {"score": 9, "reasoning": "string"},
    "nature_of_work":        {"score": 8, "reasoning": "string"},
    "amount_used":           {"score": 7, "reasoning": "string"},
    "market_effect":         {"score": 9, "reasoning": "string"}
  },
  "recommendation_for_legal_safety": "string"
}`

// NewFairUseAdapter builds the fair_use capability adapter
func NewFairUseAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleFairUse,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, fairUseInstructions, fairUseSchema)
		},
		validate: validateFairUse,
	}
}

func validateFairUse(data []byte) (interface{}, error) {
	var result models.FairUseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("fair_use payload is not valid JSON: %w", err)
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("fair_use score %v out of range", result.Score)
	}
	for _, name := range models.FairUseFactorNames {
		if _, ok := result.FactorsBreakdown[name]; !ok {
			return nil, fmt.Errorf("fair_use payload missing factor %q", name)
		}
	}
	if result.LegalSafetyRecommendation == "" {
		return nil, fmt.Errorf("fair_use payload missing recommendation_for_legal_safety")
	}
	return &result, nil
}

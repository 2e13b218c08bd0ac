package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const ctrInstructions = `PREDICTIVE CTR ANALYSIS (thumbnail and title saliency).
Estimate the channel's overall click-through potential as a score (0-10), compare it to the
industry average, and identify what is working and what is missing in titles/thumbnails.
Scores must reflect title and thumbnail psychology. Highlight concrete weaknesses (length,
clarity, emotion, promise) and give 4-6 specific recommendations plus an estimated potential
increase and psychological triggers to boost engagement. Assume the creator wants maximum
clicks without misleading viewers.`

const ctrSchema = `{
  "score": 5.5,
  "reasoning": "string",
  "comparison_to_industry_average": "string",
  "what_is_working_or_missing": {"working": "string", "missing": "string"},
  "recommendations": ["string"],
  "potential_increase": "30-50%",
  "psychological_triggers_to_boost_engagement": ["string"]
}`

// NewCTRAnalysisAdapter builds the ctr_analysis capability adapter
func NewCTRAnalysisAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleCTRAnalysis,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, ctrInstructions, ctrSchema)
		},
		validate: validateCTRAnalysis,
	}
}

func validateCTRAnalysis(data []byte) (interface{}, error) {
	var result models.CTRAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ctr_analysis payload is not valid JSON: %w", err)
	}
	if result.Score < 0 || result.Score > 10 {
		return nil, fmt.Errorf("ctr_analysis score %v out of range", result.Score)
	}
	if result.Reasoning == "" {
		return nil, fmt.Errorf("ctr_analysis payload missing reasoning")
	}
	if len(result.Recommendations) == 0 {
		return nil, fmt.Errorf("ctr_analysis payload has no recommendations")
	}
	return &result, nil
}

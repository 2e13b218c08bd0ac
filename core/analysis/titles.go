package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const titleInstructions = `SEMANTIC TITLE ENGINE (headline generation).
For EACH video provide: the original title exactly as it appears, 2-4 specific problems with it,
and 3 alternative titles, each with a CTR potential rating (0-10) and an explanation of the
psychology that makes it work (curiosity gap, power words, emotional triggers).
Also provide an overall assessment of the channel's title strategy and 3-5 growth tips.
Titles must be platform-native YouTube style. Avoid clickbait without payoff.
Make alternatives drastically different from the originals.`

const titleSchema = `{
  "channel_analysis": {"overall_assessment": "string"},
  "suggestions": [{
    "original_title": "string",
    "current_issues": ["string"],
    "alternative_titles": [{"new_suggested_title": "string", "ctr_potential_rating": 8, "why_it_s_effective": "string"}]
  }],
  "growth_tips": ["string"]
}`

// NewTitleEngineAdapter builds the title_engine capability adapter
func NewTitleEngineAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleTitleEngine,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, titleInstructions, titleSchema)
		},
		validate: validateTitleEngine,
	}
}

func validateTitleEngine(data []byte) (interface{}, error) {
	var result models.TitleEngineResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("title_engine payload is not valid JSON: %w", err)
	}
	if len(result.Suggestions) == 0 {
		return nil, fmt.Errorf("title_engine payload has no suggestions")
	}
	for i, s := range result.Suggestions {
		if s.OriginalTitle == "" {
			return nil, fmt.Errorf("title_engine suggestion %d missing original_title", i)
		}
		if len(s.AlternativeTitles) == 0 {
			return nil, fmt.Errorf("title_engine suggestion %d has no alternative_titles", i)
		}
		for j, alt := range s.AlternativeTitles {
			if alt.NewSuggestedTitle == "" {
				return nil, fmt.Errorf("title_engine suggestion %d alternative %d missing new_suggested_title", i, j)
			}
			if alt.CTRPotentialRating < 0 || alt.CTRPotentialRating > 10 {
				return nil, fmt.Errorf("title_engine suggestion %d alternative %d rating %v out of range", i, j, alt.CTRPotentialRating)
			}
		}
	}
	return &result, nil
}

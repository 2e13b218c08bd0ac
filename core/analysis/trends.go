package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const trendInstructions = `TREND INTELLIGENCE (48-hour early trend detection).
Identify 3-5 trending topics related to this channel's niche; for each give a name, growth
percentage and relevance rating (0-10) with reasoning. Provide 3-5 predictions for the next
24-72 hours and 3-5 actionable next-video ideas aligned with emerging trends. Focus on
EARLY signals, not obvious trends everyone already covers.`

const trendSchema = `{
  "trending_topics": [{"name": "string", "growth_percentage": "12%", "relevance_rating": 9, "reasoning": "string"}],
  "predictions": ["string"],
  "actionable_content_ideas": ["string"]
}`

// NewTrendIntelligenceAdapter builds the trend_intelligence capability adapter
func NewTrendIntelligenceAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleTrendIntelligence,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, trendInstructions, trendSchema)
		},
		validate: validateTrendIntelligence,
	}
}

func validateTrendIntelligence(data []byte) (interface{}, error) {
	var result models.TrendIntelligenceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("trend_intelligence payload is not valid JSON: %w", err)
	}
	if len(result.TrendingTopics) == 0 {
		return nil, fmt.Errorf("trend_intelligence payload has no trending_topics")
	}
	for i, topic := range result.TrendingTopics {
		if topic.Name == "" {
			return nil, fmt.Errorf("trend_intelligence topic %d missing name", i)
		}
		if topic.RelevanceRating < 0 || topic.RelevanceRating > 10 {
			return nil, fmt.Errorf("trend_intelligence topic %d rating %v out of range", i, topic.RelevanceRating)
		}
	}
	return &result, nil
}

package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const platformInstructions = `MULTI-PLATFORM MASTERY (cross-platform algorithm alignment).
Analyze how this content would perform on youtube (long-form), x_twitter (short threads,
viral hooks) and linkedin (professional thought leadership). For EACH platform provide a
score (0-10), a strategy specific to that platform's algorithm, and concrete optimization
tips. Do NOT repeat the same advice across platforms; respect platform-native behavior
(scroll speed, hook time) and suggest adaptations, not reposting.`

const platformSchema = `{
  "platforms": {
    "youtube":   {"score": 9, "reasoning": "string", "strategy": "string", "optimization_tips": ["string"]},
    "x_twitter": {"score": 6, "reasoning": "string", "strategy": "string", "optimization_tips": ["string"]},
    "linkedin":  {"score": 7, "reasoning": "string", "strategy": "string", "optimization_tips": ["string"]}
  }
}`

// platformNames are required keys of a multi_platform payload
var platformNames = []string{"youtube", "x_twitter", "linkedin"}

// NewMultiPlatformAdapter builds the multi_platform capability adapter
func NewMultiPlatformAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleMultiPlatform,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, platformInstructions, platformSchema)
		},
		validate: validateMultiPlatform,
	}
}

func validateMultiPlatform(data []byte) (interface{}, error) {
	var result models.MultiPlatformResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("multi_platform payload is not valid JSON: %w", err)
	}
	for _, name := range platformNames {
		p, ok := result.Platforms[name]
		if !ok {
			return nil, fmt.Errorf("multi_platform payload missing platform %q", name)
		}
		if p.Score < 0 || p.Score > 10 {
			return nil, fmt.Errorf("multi_platform %s score %v out of range", name, p.Score)
		}
		if p.Strategy == "" {
			return nil, fmt.Errorf("multi_platform %s missing strategy", name)
		}
	}
	return &result, nil
}

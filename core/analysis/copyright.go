package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

const copyrightInstructions = `COPYRIGHT PROTECTION (Content ID pre-upload scan).
Flag ONLY actual copyright issues: background music from copyrighted sources, clips from
other creators' videos, copyrighted images/logos/graphics, brand names used commercially.
Do NOT flag educational content, original commentary, tutorials, or technical terms.
Be conservative and risk-aware; flag borderline risks and assume automated Content ID
systems rather than manual review. Provide a risk level (LOW, MEDIUM or HIGH - most
educational content is LOW), the list of flags, a brief assessment, and safe
creator-friendly alternatives if risks were found.`

const copyrightSchema = `{
  "risk_level": "LOW",
  "flags": ["string"],
  "assessment": "string",
  "recommendations": ["string"]
}`

// NewCopyrightScanAdapter builds the copyright_scan capability adapter
func NewCopyrightScanAdapter(client InferenceClient, settings config.ModuleSettings) Adapter {
	return &moduleAdapter{
		kind:     models.ModuleCopyrightScan,
		client:   client,
		settings: settings,
		prompt: func(ch *models.ChannelContext) string {
			return modulePrompt(ch, copyrightInstructions, copyrightSchema)
		},
		validate: validateCopyrightScan,
	}
}

func validateCopyrightScan(data []byte) (interface{}, error) {
	var result models.CopyrightScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("copyright_scan payload is not valid JSON: %w", err)
	}
	switch result.RiskLevel {
	case "LOW", "MEDIUM", "HIGH":
	default:
		return nil, fmt.Errorf("copyright_scan risk_level %q is not LOW/MEDIUM/HIGH", result.RiskLevel)
	}
	if result.Assessment == "" {
		return nil, fmt.Errorf("copyright_scan payload missing assessment")
	}
	return &result, nil
}

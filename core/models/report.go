package models

// Typed module payloads. Field names follow the snake_case schema the
// inference provider is instructed to emit; adapters validate these shapes
// before a payload is accepted into a slot.

// TitleEngineResult is the payload of the title_engine module
type TitleEngineResult struct {
	ChannelAnalysis struct {
		OverallAssessment string `json:"overall_assessment"`
	} `json:"channel_analysis"`
	Suggestions []TitleSuggestion `json:"suggestions"`
	GrowthTips  []string          `json:"growth_tips"`
}

// TitleSuggestion carries alternatives for one existing video title
type TitleSuggestion struct {
	OriginalTitle     string             `json:"original_title"`
	CurrentIssues     []string           `json:"current_issues"`
	AlternativeTitles []AlternativeTitle `json:"alternative_titles"`
}

// AlternativeTitle is one ranked replacement title
type AlternativeTitle struct {
	NewSuggestedTitle  string  `json:"new_suggested_title"`
	CTRPotentialRating float64 `json:"ctr_potential_rating"`
	WhyItsEffective    string  `json:"why_it_s_effective"`
}

// CTRAnalysisResult is the payload of the ctr_analysis module
type CTRAnalysisResult struct {
	Score                       float64 `json:"score"`
	Reasoning                   string  `json:"reasoning"`
	ComparisonToIndustryAverage string  `json:"comparison_to_industry_average"`
	WhatIsWorkingOrMissing      struct {
		Working string `json:"working"`
		Missing string `json:"missing"`
	} `json:"what_is_working_or_missing"`
	Recommendations       []string `json:"recommendations"`
	PotentialIncrease     string   `json:"potential_increase"`
	PsychologicalTriggers []string `json:"psychological_triggers_to_boost_engagement"`
}

// MultiPlatformResult is the payload of the multi_platform module
type MultiPlatformResult struct {
	Platforms map[string]PlatformStrategy `json:"platforms"`
}

// PlatformStrategy scores and advises one distribution platform
type PlatformStrategy struct {
	Score            float64  `json:"score"`
	Reasoning        string   `json:"reasoning"`
	Strategy         string   `json:"strategy"`
	OptimizationTips []string `json:"optimization_tips"`
}

// CopyrightScanResult is the payload of the copyright_scan module
type CopyrightScanResult struct {
	RiskLevel       string   `json:"risk_level"` // LOW | MEDIUM | HIGH
	Flags           []string `json:"flags"`
	Assessment      string   `json:"assessment"`
	Recommendations []string `json:"recommendations"`
}

// FairUseResult is the payload of the fair_use module
type FairUseResult struct {
	Score                     float64                  `json:"score"`
	Reasoning                 string                   `json:"reasoning"`
	Assessment                string                   `json:"assessment"`
	FactorsBreakdown          map[string]FairUseFactor `json:"fair_use_factors_breakdown"`
	LegalSafetyRecommendation string                   `json:"recommendation_for_legal_safety"`
}

// FairUseFactor scores one statutory fair-use factor
type FairUseFactor struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// FairUseFactorNames are the four factors every fair_use payload must cover
var FairUseFactorNames = []string{
	"purpose_and_character",
	"nature_of_work",
	"amount_used",
	"market_effect",
}

// TrendIntelligenceResult is the payload of the trend_intelligence module
type TrendIntelligenceResult struct {
	TrendingTopics         []TrendingTopic `json:"trending_topics"`
	Predictions            []string        `json:"predictions"`
	ActionableContentIdeas []string        `json:"actionable_content_ideas"`
}

// TrendingTopic is one early-signal topic with confidence
type TrendingTopic struct {
	Name             string  `json:"name"`
	GrowthPercentage string  `json:"growth_percentage"`
	RelevanceRating  float64 `json:"relevance_rating"`
	Reasoning        string  `json:"reasoning"`
}

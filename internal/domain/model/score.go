package model

// Domain names a professional domain of the taxonomy.
type Domain string

// DomainUnknown is returned when no domain reaches the classification threshold.
const DomainUnknown Domain = "unknown"

// Label is the recommendation label of an analysis.
type Label string

// Recommendation labels.
const (
	LabelExcellent          Label = "EXCELLENT MATCH"
	LabelGood               Label = "GOOD MATCH"
	LabelModerate           Label = "MODERATE MATCH"
	LabelWeak               Label = "WEAK MATCH"
	LabelPoor               Label = "POOR MATCH"
	LabelProceedWithCaution Label = "PROCEED WITH CAUTION"
	LabelNotRecommended     Label = "NOT RECOMMENDED"
)

// Labels lists every label from best to worst.
var Labels = []Label{
	LabelExcellent, LabelGood, LabelModerate, LabelWeak, LabelPoor, LabelProceedWithCaution, LabelNotRecommended,
}

// ComprehensiveScore is the result of scoring one candidate against one job.
// All component scores are in [0,100].
type ComprehensiveScore struct {
	OverallScore float64 `json:"overall_score"`
	Confidence   int     `json:"confidence"`

	DomainRelevance        float64 `json:"domain_relevance"`
	SkillsMatch            float64 `json:"skills_match"`
	ExperienceRelevance    float64 `json:"experience_relevance"`
	ExperienceQuantity     float64 `json:"experience_quantity"`
	ExperienceRelevanceRaw float64 `json:"experience_title_relevance"`
	CareerProgression      float64 `json:"career_progression"`
	TechnicalDepth         float64 `json:"technical_depth"`
	EducationMatch         float64 `json:"education_match"`

	JobDomain        Domain   `json:"job_domain"`
	CandidateDomains []Domain `json:"candidate_domains"`

	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`
	SkillGaps      []string `json:"skill_gaps"`
	RelatedMatches []string `json:"related_matches"`

	RedFlags       []string `json:"red_flags"`
	RedFlagRules   []string `json:"red_flag_rules"`
	Label          Label    `json:"label"`
	Recommendation string   `json:"recommendation"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
}

// EnhancedScores are the digital-media specific sub-scores, each in [0,100].
type EnhancedScores struct {
	SEOExpertise        float64             `json:"seo_expertise"`
	MartechProficiency  float64             `json:"martech_proficiency"`
	AnalyticsCapability float64             `json:"analytics_capability"`
	IndustryAlignment   float64             `json:"industry_alignment"`
	RemoteLeadership    float64             `json:"remote_leadership"`
	ExecutiveReadiness  float64             `json:"executive_readiness"`
	PlatformLeadership  float64             `json:"platform_leadership"`
	SalesMarketing      float64             `json:"sales_marketing_integration"`
	DetectedKeywords    map[string][]string `json:"detected_keywords"`
	DetectedIndustries  []string            `json:"detected_industries"`
	ExecutiveIndicators []string            `json:"executive_indicators"`
	DigitalMediaOverall float64             `json:"digital_media_overall"`
}

// Package process names the steps of a CV analysis and turns step outcomes
// into human-readable explanations for progress updates.
package process

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/okian/cvscreen/internal/domain/model"
)

// Step is one stage of an analysis.
type Step string

// Analysis steps.
const (
	StepCVParsing                Step = "cv_parsing"
	StepJobParsing               Step = "job_parsing"
	StepSkillExtraction          Step = "skill_extraction"
	StepExperienceAnalysis       Step = "experience_analysis"
	StepEducationEvaluation      Step = "education_evaluation"
	StepSEOSEMDetection          Step = "seo_sem_detection"
	StepMartechAnalysis          Step = "martech_analysis"
	StepAnalyticsAssessment      Step = "analytics_assessment"
	StepIndustryMatching         Step = "industry_matching"
	StepLeadershipEvaluation     Step = "leadership_evaluation"
	StepRemoteCapability         Step = "remote_capability"
	StepExecutiveReadiness       Step = "executive_readiness"
	StepScoreCalculation         Step = "score_calculation"
	StepRecommendationGeneration Step = "recommendation_generation"
	StepFinalReview              Step = "final_review"
	StepReportGeneration         Step = "report_generation"
)

// Steps lists every step in pipeline order.
var Steps = []Step{
	StepCVParsing, StepJobParsing, StepSkillExtraction, StepExperienceAnalysis, StepEducationEvaluation,
	StepSEOSEMDetection, StepMartechAnalysis, StepAnalyticsAssessment, StepIndustryMatching,
	StepLeadershipEvaluation, StepRemoteCapability, StepExecutiveReadiness, StepScoreCalculation,
	StepRecommendationGeneration, StepFinalReview, StepReportGeneration,
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	for _, x := range Steps {
		if x == s {
			return true
		}
	}
	return false
}

// Title turns "cv_parsing" into "Cv Parsing".
func (s Step) Title() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Status is the state of a step in a progress update.
type Status string

// Step statuses.
const (
	StatusStarted              Status = "started"
	StatusInProgress           Status = "in_progress"
	StatusCompleted            Status = "completed"
	StatusFailed               Status = "failed"
	StatusInterventionRequired Status = "intervention_required"
)

// Context is what a step reports about its outcome.
type Context struct {
	Step       Step
	Confidence float64 // 0..1
	Elapsed    time.Duration

	Detected []string // items found by the step (skills, keywords)
	Missing  []string
	Matches  int
	Required int

	WordCount int
	Sections  []string

	TotalYears    float64
	RelevantYears float64
	Roles         []model.Experience

	Overall    float64
	Components map[string]float64
}

// Explanation is the human-readable account of a step.
type Explanation struct {
	StepName       string         `json:"step_name"`
	Headline       string         `json:"headline"`
	Detailed       string         `json:"explanation"`
	ConfidenceText string         `json:"confidence"`
	Evidence       []string       `json:"evidence"`
	Suggestions    []string       `json:"suggestions"`
	Technical      map[string]any `json:"technical,omitempty"`
}

// Confidence thresholds.
const (
	confidenceHigh   = 0.8
	confidenceMedium = 0.6
	confidenceLow    = 0.4
)

// Explain describes a step outcome.
func Explain(c Context) Explanation {
	switch c.Step {
	case StepCVParsing:
		return explainCVParsing(c)
	case StepJobParsing:
		return explainJobParsing(c)
	case StepSkillExtraction:
		return explainSkills(c)
	case StepExperienceAnalysis:
		return explainExperience(c)
	case StepSEOSEMDetection:
		return explainSEO(c)
	case StepScoreCalculation:
		return explainScores(c)
	case StepRecommendationGeneration:
		return explainRecommendations(c)
	default:
		return explainGeneric(c)
	}
}

// ConfidenceText words a 0..1 confidence for a subject such as "skill matching".
func ConfidenceText(confidence float64, subject string) string {
	pct := fmt.Sprintf("%.0f%%", confidence*100)
	switch {
	case confidence >= confidenceHigh:
		return fmt.Sprintf("High confidence (%s) in this %s based on clear evidence in the CV.", pct, subject)
	case confidence >= confidenceMedium:
		return fmt.Sprintf("Moderate confidence (%s) in this %s. Some indicators are present but not comprehensive.", pct, subject)
	case confidence >= confidenceLow:
		return fmt.Sprintf("Low confidence (%s) in this %s. Limited evidence was found.", pct, subject)
	default:
		return fmt.Sprintf("Very low confidence (%s) in this %s. Minimal evidence available.", pct, subject)
	}
}

func explainCVParsing(c Context) Explanation {
	detailed := fmt.Sprintf("Reading the CV to understand its structure. It contains approximately %d words", c.WordCount)
	if len(c.Sections) > 0 {
		detailed += fmt.Sprintf(" organized into %d sections: %s.", len(c.Sections), strings.Join(c.Sections, ", "))
	} else {
		detailed += "."
	}
	var evidence []string
	if len(c.Sections) > 0 {
		evidence = append(evidence, fmt.Sprintf("Found %d distinct sections", len(c.Sections)))
		evidence = append(evidence, bullets(c.Sections, 5)...)
	}
	return Explanation{
		StepName:       "CV Parsing",
		Headline:       "Analyzing CV structure",
		Detailed:       detailed,
		ConfidenceText: ConfidenceText(c.Confidence, "CV parsing"),
		Evidence:       evidence,
		Technical:      map[string]any{"word_count": c.WordCount, "sections": c.Sections},
	}
}

// explainJobParsing expects Detected to hold the required skills and
// TotalYears the minimum experience the posting asks for.
func explainJobParsing(c Context) Explanation {
	detailed := fmt.Sprintf("Reading the job description. It lists %d required skills", len(c.Detected))
	if c.TotalYears > 0 {
		detailed += fmt.Sprintf(" and asks for at least %.1f years of experience.", c.TotalYears)
	} else {
		detailed += " and states no minimum experience."
	}
	var evidence []string
	if len(c.Detected) > 0 {
		evidence = append(evidence, "Required skills:")
		evidence = append(evidence, bullets(c.Detected, 10)...)
	}
	return Explanation{
		StepName:       "Job Parsing",
		Headline:       "Understanding the job requirements",
		Detailed:       detailed,
		ConfidenceText: ConfidenceText(c.Confidence, "requirement extraction"),
		Evidence:       evidence,
		Technical:      map[string]any{"required_skills": len(c.Detected), "min_experience_years": c.TotalYears},
	}
}

// explainRecommendations expects Detected to hold the label followed by the
// recommendation text.
func explainRecommendations(c Context) Explanation {
	return Explanation{
		StepName:       "Recommendation Generation",
		Headline:       "Preparing the hiring recommendation",
		Detailed:       fmt.Sprintf("Turning the scores into a hiring recommendation. Overall match score: %.1f%%.", c.Overall),
		ConfidenceText: ConfidenceText(c.Confidence, "recommendation"),
		Evidence:       first(c.Detected, 1),
		Suggestions:    c.Detected[min(1, len(c.Detected)):],
		Technical:      map[string]any{"overall_score": c.Overall},
	}
}

func explainSkills(c Context) Explanation {
	var evidence, suggestions []string
	if len(c.Detected) > 0 {
		evidence = append(evidence, fmt.Sprintf("Detected %d skills:", len(c.Detected)))
		evidence = append(evidence, bullets(c.Detected, 10)...)
	}
	if len(c.Missing) > 0 {
		suggestions = append(suggestions, "Missing skills: "+strings.Join(first(c.Missing, 5), ", "))
	}
	pct := 0.0
	if c.Required > 0 {
		pct = float64(c.Matches) / float64(c.Required) * 100
	}
	return Explanation{
		StepName: "Skill Extraction",
		Headline: "Identifying technical skills",
		Detailed: fmt.Sprintf("Scanning the CV for skills and competencies. Found %d skills, with %d matching the job requirements.",
			len(c.Detected), c.Matches),
		ConfidenceText: ConfidenceText(c.Confidence, "skill matching"),
		Evidence:       evidence,
		Suggestions:    suggestions,
		Technical:      map[string]any{"total_skills": len(c.Detected), "matching_skills": c.Matches, "match_percentage": pct},
	}
}

func explainExperience(c Context) Explanation {
	var evidence []string
	if len(c.Roles) > 0 {
		evidence = append(evidence, fmt.Sprintf("Analyzed %d professional roles:", len(c.Roles)))
		for _, r := range c.Roles[:min(3, len(c.Roles))] {
			evidence = append(evidence, fmt.Sprintf("- %s at %s (%d months)", orUnknown(r.Title), orUnknown(r.Company), r.DurationMonths))
		}
	}
	return Explanation{
		StepName: "Experience Analysis",
		Headline: "Evaluating professional experience",
		Detailed: fmt.Sprintf("Analyzing the work history. Total experience: %.1f years across %d roles. Relevant experience for this position: %.1f years.",
			c.TotalYears, len(c.Roles), c.RelevantYears),
		ConfidenceText: ConfidenceText(c.Confidence, "experience relevance"),
		Evidence:       evidence,
		Technical:      map[string]any{"total_years": c.TotalYears, "relevant_years": c.RelevantYears, "role_count": len(c.Roles)},
	}
}

func explainSEO(c Context) Explanation {
	detailed := "Looking for evidence of SEO and SEM expertise."
	var evidence []string
	if len(c.Detected) > 0 {
		detailed += fmt.Sprintf(" Found %d relevant SEO/SEM indicators.", len(c.Detected))
		evidence = append(evidence, "SEO/SEM keywords detected:")
		evidence = append(evidence, bullets(c.Detected, 5)...)
	}
	return Explanation{
		StepName:       "SEO/SEM Analysis",
		Headline:       "Analyzing SEO/SEM expertise",
		Detailed:       detailed,
		ConfidenceText: ConfidenceText(c.Confidence, "SEO/SEM expertise"),
		Evidence:       evidence,
		Technical:      map[string]any{"keyword_count": len(c.Detected)},
	}
}

func explainScores(c Context) Explanation {
	detailed := fmt.Sprintf("Combining all analysis results. Overall match score: %.1f%%.", c.Overall)
	names := make([]string, 0, len(c.Components))
	for name := range c.Components {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c.Components[names[i]] != c.Components[names[j]] {
			return c.Components[names[i]] > c.Components[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 0 {
		detailed += fmt.Sprintf(" Strongest area: %s (%.1f%%).", names[0], c.Components[names[0]])
		if len(names) > 1 {
			last := names[len(names)-1]
			detailed += fmt.Sprintf(" Area for improvement: %s (%.1f%%).", last, c.Components[last])
		}
	}
	evidence := make([]string, len(names))
	for i, name := range names {
		evidence[i] = fmt.Sprintf("%s: %.1f%%", name, c.Components[name])
	}
	return Explanation{
		StepName:       "Score Calculation",
		Headline:       "Calculating match scores",
		Detailed:       detailed,
		ConfidenceText: ConfidenceText(c.Confidence, "scoring accuracy"),
		Evidence:       evidence,
		Technical:      map[string]any{"overall_score": c.Overall, "component_scores": c.Components},
	}
}

func explainGeneric(c Context) Explanation {
	name := strings.ReplaceAll(string(c.Step), "_", " ")
	return Explanation{
		StepName:       c.Step.Title(),
		Headline:       "Processing " + name,
		Detailed:       fmt.Sprintf("Analyzing %s with %.0f%% confidence.", name, c.Confidence*100),
		ConfidenceText: ConfidenceText(c.Confidence, "analysis"),
		Evidence:       []string{fmt.Sprintf("Processed in %.2f seconds", c.Elapsed.Seconds())},
	}
}

func bullets(items []string, limit int) []string {
	items = first(items, limit)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = "- " + it
	}
	return out
}

func first(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

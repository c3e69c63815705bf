// Package engine runs the full CV-versus-job scoring pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/cvscreen/internal/domain/classify"
	"github.com/okian/cvscreen/internal/domain/experience"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	"github.com/okian/cvscreen/internal/domain/redflags"
	"github.com/okian/cvscreen/internal/domain/skills"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

// Strength and concern cut-offs.
const (
	experiencedYears     = 5
	strongSkillMatches   = 3
	diverseRoles         = 3
	missingSkillsConcern = 2
	lowSkillsConcern     = 60
)

// Observer receives the outcome of each pipeline step.
type Observer func(ctx context.Context, pc process.Context)

// Engine scores candidates against jobs. It is safe for concurrent use.
type Engine struct {
	tax      *taxonomy.Taxonomy
	cls      *classify.Classifier
	th       Thresholds
	observer Observer
	validate *validator.Validate
}

// New creates an Engine with the built-in taxonomy and default thresholds.
func New(opts ...Option) *Engine {
	e := &Engine{
		tax:      taxonomy.Default(),
		th:       DefaultThresholds(),
		observer: func(context.Context, process.Context) {},
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cls = classify.New(e.tax, e.th.Classify)
	return e
}

// Taxonomy returns the taxonomy the engine scores with.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy { return e.tax }

// Thresholds returns the effective thresholds.
func (e *Engine) Thresholds() Thresholds { return e.th }

// Analyze scores cv against job. It is deterministic for equal inputs.
func (e *Engine) Analyze(ctx context.Context, cv model.Candidate, job model.JobRequirements) (model.ComprehensiveScore, error) {
	if err := ctx.Err(); err != nil {
		return model.ComprehensiveScore{}, err
	}
	if err := e.check(cv, job); err != nil {
		return model.ComprehensiveScore{}, err
	}

	cv.Skills = model.NormalizeSkills(cv.Skills)
	cv.SetExperience(cv.Experience)
	job.RequiredSkills = model.NormalizeSkills(job.RequiredSkills)
	job.PreferredSkills = model.NormalizeSkills(job.PreferredSkills)

	start := time.Now()
	step := func(pc process.Context) {
		pc.Elapsed = time.Since(start)
		e.observer(ctx, pc)
	}

	jobDomain := e.cls.ClassifyJob(job)
	candidateDomains := e.cls.ClassifyCandidate(cv)
	relevance := e.cls.DomainRelevance(cv, job, jobDomain, candidateDomains)
	step(process.Context{
		Step:       process.StepIndustryMatching,
		Confidence: relevance / 100,
		Detected:   domainNames(candidateDomains),
	})

	sk := skills.Match(e.tax, cv.Skills, job.RequiredSkills, job.PreferredSkills)
	step(process.Context{
		Step:       process.StepSkillExtraction,
		Confidence: sk.Score / 100,
		Detected:   cv.Skills,
		Missing:    sk.Missing,
		Matches:    len(sk.RequiredMatches),
		Required:   len(job.RequiredSkills),
	})

	exp := experience.Analyze(e.cls, cv, job, jobDomain)
	depth := experience.TechnicalDepth(e.tax, cv)
	step(process.Context{
		Step:          process.StepExperienceAnalysis,
		Confidence:    exp.Combined / 100,
		TotalYears:    cv.TotalExperienceYears(),
		RelevantYears: e.relevantYears(cv, jobDomain),
		Roles:         cv.Experience,
	})

	education := skills.EducationMatch(job.EducationRequirements, degrees(cv))
	step(process.Context{
		Step:       process.StepEducationEvaluation,
		Confidence: education / 100,
	})

	flags := redflags.Detect(e.tax, e.th.RedFlags, redflags.Input{
		JobDomain:          jobDomain,
		CandidateDomains:   candidateDomains,
		RequiredCount:      len(job.RequiredSkills),
		MissingCount:       len(sk.Missing),
		Years:              cv.TotalExperienceYears(),
		MinYears:           job.MinExperienceYears,
		Roles:              len(cv.Experience),
		AverageTenureYears: exp.AverageTenureYears,
	})
	messages := redflags.Messages(flags)
	step(process.Context{
		Step:       process.StepFinalReview,
		Confidence: 1 - float64(len(flags))/4,
		Detected:   messages,
	})

	comp := Compose(ComposeInput{
		DomainRelevance: relevance,
		SkillsMatch:     sk.Score,
		Experience:      exp.Combined,
		TechnicalDepth:  depth,
		RedFlags:        messages,
		PenaltyPerFlag:  e.th.PenaltyPerFlag,
	})

	score := model.ComprehensiveScore{
		OverallScore:           comp.Overall,
		Confidence:             comp.Confidence,
		DomainRelevance:        round1(relevance),
		SkillsMatch:            round1(sk.Score),
		ExperienceRelevance:    round1(exp.Combined),
		ExperienceQuantity:     round1(exp.Quantity),
		ExperienceRelevanceRaw: round1(exp.Relevance),
		CareerProgression:      round1(exp.Progression),
		TechnicalDepth:         round1(depth),
		EducationMatch:         round1(education),
		JobDomain:              jobDomain,
		CandidateDomains:       candidateDomains,
		MatchedSkills:          sk.Matched,
		MissingSkills:          sk.Missing,
		SkillGaps:              sk.Gaps,
		RelatedMatches:         sk.Related,
		RedFlags:               messages,
		RedFlagRules:           rules(flags),
		Label:                  comp.Label,
		Recommendation:         comp.Recommendation,
		Strengths:              strengths(cv, sk),
		Concerns:               concerns(sk, messages),
	}

	step(process.Context{
		Step:       process.StepScoreCalculation,
		Confidence: float64(comp.Confidence) / 10,
		Overall:    comp.Overall,
		Components: map[string]float64{
			"Domain Relevance":     score.DomainRelevance,
			"Skills Match":         score.SkillsMatch,
			"Experience Relevance": score.ExperienceRelevance,
			"Technical Depth":      score.TechnicalDepth,
		},
	})
	step(process.Context{
		Step:       process.StepRecommendationGeneration,
		Confidence: float64(comp.Confidence) / 10,
		Overall:    comp.Overall,
		Detected:   []string{string(comp.Label), comp.Recommendation},
	})

	return score, nil
}

func (e *Engine) check(cv model.Candidate, job model.JobRequirements) error {
	if err := e.validate.Struct(cv); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	if err := e.validate.Struct(job); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, v := range verrs {
		parts[i] = fmt.Sprintf("validation error: %s - %s", v.Namespace(), v.Tag())
	}
	return strings.Join(parts, "; ")
}

// relevantYears sums the roles classified into the job's domain.
func (e *Engine) relevantYears(cv model.Candidate, jobDomain model.Domain) float64 {
	if jobDomain == model.DomainUnknown {
		return 0
	}
	months := 0
	for _, exp := range cv.Experience {
		for _, d := range e.cls.ClassifyExperience(exp) {
			if d == jobDomain {
				months += exp.DurationMonths
				break
			}
		}
	}
	return round1(float64(months) / 12)
}

func strengths(cv model.Candidate, sk skills.Result) []string {
	out := []string{}
	if years := cv.TotalExperienceYears(); years >= experiencedYears {
		out = append(out, fmt.Sprintf("Experienced professional (%g years)", years))
	}
	if len(sk.Matched) > strongSkillMatches {
		out = append(out, fmt.Sprintf("Strong skills match (%d matched skills)", len(sk.Matched)))
	}
	if len(cv.Experience) >= diverseRoles {
		out = append(out, "Diverse experience across multiple roles")
	}
	return out
}

func concerns(sk skills.Result, flags []string) []string {
	out := []string{}
	if len(sk.Missing) > missingSkillsConcern {
		out = append(out, fmt.Sprintf("Missing %d required skills", len(sk.Missing)))
	}
	if sk.Score < lowSkillsConcern {
		out = append(out, "Low skills alignment with job requirements")
	}
	return append(out, flags...)
}

func degrees(cv model.Candidate) []string {
	out := make([]string, 0, len(cv.Education))
	for _, ed := range cv.Education {
		out = append(out, ed.Degree)
	}
	return out
}

func domainNames(ds []model.Domain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

func rules(flags []redflags.Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f.Rule
	}
	return out
}

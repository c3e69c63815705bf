package engine

import (
	"fmt"
	"math"

	"github.com/okian/cvscreen/internal/domain/model"
)

// Component weights of the overall score.
const (
	domainWeight     = 0.35
	skillsWeight     = 0.30
	experienceWeight = 0.20
	technicalWeight  = 0.15
)

const baseConfidence = 8

// ComposeInput are the component scores the composer blends.
type ComposeInput struct {
	DomainRelevance float64
	SkillsMatch     float64
	Experience      float64 // combined experience score
	TechnicalDepth  float64
	RedFlags        []string
	PenaltyPerFlag  float64
}

// Composition is the composer's verdict.
type Composition struct {
	Overall        float64
	Confidence     int
	Cap            float64
	Label          model.Label
	Recommendation string
}

// DomainCap is the ceiling the domain relevance puts on the overall score.
func DomainCap(domainRelevance float64) float64 {
	switch {
	case domainRelevance < 30:
		return 40
	case domainRelevance < 50:
		return 70
	default:
		return 100
	}
}

// Compose blends the components into the overall score, confidence and label.
func Compose(in ComposeInput) Composition {
	limit := DomainCap(in.DomainRelevance)
	base := domainWeight*in.DomainRelevance +
		skillsWeight*in.SkillsMatch +
		experienceWeight*in.Experience +
		technicalWeight*in.TechnicalDepth
	penalized := base - in.PenaltyPerFlag*float64(len(in.RedFlags))
	overall := round1(math.Max(0, math.Min(limit, penalized)))

	label, text := recommend(overall, in.RedFlags)
	return Composition{
		Overall:        overall,
		Confidence:     confidence(in.DomainRelevance, in.SkillsMatch, len(in.RedFlags)),
		Cap:            limit,
		Label:          label,
		Recommendation: text,
	}
}

func confidence(domain, skills float64, flags int) int {
	c := baseConfidence
	switch {
	case domain < 50:
		c -= 2
	case domain < 70:
		c--
	}
	switch {
	case skills < 50:
		c -= 2
	case skills < 70:
		c--
	}
	c -= flags
	return max(1, min(10, c))
}

func recommend(overall float64, flags []string) (model.Label, string) {
	if len(flags) > 0 && overall < 30 {
		return model.LabelNotRecommended, fmt.Sprintf(
			"NOT RECOMMENDED - Major misalignment detected. %d critical issues including: %s", len(flags), flags[0])
	}
	if len(flags) > 0 && overall < 50 {
		return model.LabelProceedWithCaution, fmt.Sprintf(
			"PROCEED WITH CAUTION - %d concerns identified. Consider only if role requirements are flexible.", len(flags))
	}
	switch {
	case overall >= 85:
		return model.LabelExcellent, "EXCELLENT MATCH - Strong alignment across all criteria. Recommend immediate interview."
	case overall >= 75:
		return model.LabelGood, "GOOD MATCH - Solid candidate with minor gaps. Recommend interview."
	case overall >= 65:
		return model.LabelModerate, "MODERATE MATCH - Some gaps present. Consider for interview if pool is limited."
	case overall >= 50:
		return model.LabelWeak, "WEAK MATCH - Significant gaps. Consider only with extensive training."
	default:
		return model.LabelPoor, "POOR MATCH - Not recommended. Major misalignment with role requirements."
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

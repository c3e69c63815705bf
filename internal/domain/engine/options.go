package engine

import (
	"github.com/okian/cvscreen/internal/domain/classify"
	"github.com/okian/cvscreen/internal/domain/redflags"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

// Thresholds gathers every tunable cut-off of the pipeline.
type Thresholds struct {
	Classify       classify.Thresholds
	RedFlags       redflags.Thresholds
	PenaltyPerFlag float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Classify:       classify.DefaultThresholds(),
		RedFlags:       redflags.DefaultThresholds(),
		PenaltyPerFlag: 10,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTaxonomy replaces the built-in taxonomy.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(e *Engine) {
		if tax != nil {
			e.tax = tax
		}
	}
}

// WithThresholds sets the pipeline thresholds. Zero fields keep their defaults.
func WithThresholds(th Thresholds) Option {
	return func(e *Engine) {
		if th.Classify.JobMinScore > 0 {
			e.th.Classify.JobMinScore = th.Classify.JobMinScore
		}
		if th.Classify.CandidateMinScore > 0 {
			e.th.Classify.CandidateMinScore = th.Classify.CandidateMinScore
		}
		if th.RedFlags.SkillGapRatio > 0 {
			e.th.RedFlags.SkillGapRatio = th.RedFlags.SkillGapRatio
		}
		if th.RedFlags.ExperienceGapRatio > 0 {
			e.th.RedFlags.ExperienceGapRatio = th.RedFlags.ExperienceGapRatio
		}
		if th.RedFlags.JobHoppingMinRoles > 0 {
			e.th.RedFlags.JobHoppingMinRoles = th.RedFlags.JobHoppingMinRoles
		}
		if th.RedFlags.JobHoppingMaxTenure > 0 {
			e.th.RedFlags.JobHoppingMaxTenure = th.RedFlags.JobHoppingMaxTenure
		}
		if th.PenaltyPerFlag > 0 {
			e.th.PenaltyPerFlag = th.PenaltyPerFlag
		}
	}
}

// WithObserver registers a hook called after every pipeline step.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Package redflags detects disqualifying patterns in a candidate/job pair.
package redflags

import (
	"fmt"
	"strconv"

	"github.com/okian/cvscreen/internal/domain/model"
)

// Rule names, used as metric labels.
const (
	RuleDomainMismatch = "domain_mismatch"
	RuleSkillsGap      = "skills_gap"
	RuleExperienceGap  = "experience_gap"
	RuleJobHopping     = "job_hopping"
)

// Thresholds configure the rules.
type Thresholds struct {
	// SkillGapRatio flags when more than this share of required skills is missing.
	SkillGapRatio float64
	// ExperienceGapRatio flags when years fall below this share of the minimum.
	ExperienceGapRatio float64
	// JobHoppingMinRoles is the number of roles from which job hopping is checked.
	JobHoppingMinRoles int
	// JobHoppingMaxTenure flags an average tenure strictly below this many years.
	JobHoppingMaxTenure float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SkillGapRatio:       0.5,
		ExperienceGapRatio:  0.7,
		JobHoppingMinRoles:  4,
		JobHoppingMaxTenure: 1.0,
	}
}

// Input is everything the rules look at.
type Input struct {
	JobDomain          model.Domain
	CandidateDomains   []model.Domain
	RequiredCount      int
	MissingCount       int
	Years              float64
	MinYears           float64
	Roles              int
	AverageTenureYears float64
}

// Flag is a raised red flag.
type Flag struct {
	Rule    string
	Message string
}

// Namer resolves a domain's display name.
type Namer interface {
	DisplayName(d model.Domain) string
}

// Detect evaluates every rule independently, in a fixed order.
func Detect(names Namer, th Thresholds, in Input) []Flag {
	var flags []Flag

	if in.JobDomain != model.DomainUnknown && !contains(in.CandidateDomains, in.JobDomain) {
		background := model.DomainUnknown
		if len(in.CandidateDomains) > 0 {
			background = in.CandidateDomains[0]
		}
		flags = append(flags, Flag{
			Rule: RuleDomainMismatch,
			Message: fmt.Sprintf("Domain mismatch: Candidate has %s background, job requires %s",
				names.DisplayName(background), names.DisplayName(in.JobDomain)),
		})
	}

	if in.RequiredCount > 0 && float64(in.MissingCount) > th.SkillGapRatio*float64(in.RequiredCount) {
		flags = append(flags, Flag{
			Rule:    RuleSkillsGap,
			Message: fmt.Sprintf("Major skills gap: Missing %d of %d required skills", in.MissingCount, in.RequiredCount),
		})
	}

	if in.MinYears > 0 && in.Years < th.ExperienceGapRatio*in.MinYears {
		flags = append(flags, Flag{
			Rule:    RuleExperienceGap,
			Message: fmt.Sprintf("Experience gap: %s years vs %s required", formatYears(in.Years), formatYears(in.MinYears)),
		})
	}

	if in.Roles >= th.JobHoppingMinRoles && in.AverageTenureYears < th.JobHoppingMaxTenure {
		flags = append(flags, Flag{
			Rule:    RuleJobHopping,
			Message: fmt.Sprintf("Job hopping pattern: Average tenure less than %s year", formatYears(th.JobHoppingMaxTenure)),
		})
	}

	return flags
}

// Messages returns the flag messages in order.
func Messages(flags []Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f.Message
	}
	return out
}

func contains(ds []model.Domain, d model.Domain) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

// formatYears prints the shortest form of y, e.g. "5" or "2.5".
func formatYears(y float64) string {
	return strconv.FormatFloat(y, 'f', -1, 64)
}

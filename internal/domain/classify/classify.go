// Package classify attributes professional domains to jobs, candidates and
// individual roles, and scores how relevant a candidate's background is to a job.
package classify

import (
	"math"
	"strings"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

// Keyword weights of the classifier.
const (
	jobTitleWeight       = 3
	jobDescriptionWeight = 1
	jobSkillWeight       = 2
	cvTitleWeight        = 2
	cvSkillWeight        = 1
)

// Relevance levels returned by DomainRelevance.
const (
	RelevanceUnknownJob    = 70.0
	RelevanceSameDomain    = 100.0
	RelevanceRelatedDomain = 60.0
	leadershipPerRole      = 5.0
	leadershipCapTechnical = 20.0
	leadershipCapOtherwise = 40.0
)

// Thresholds are the minimum keyword scores for attributing a domain.
type Thresholds struct {
	JobMinScore       int
	CandidateMinScore int
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{JobMinScore: 3, CandidateMinScore: 3}
}

// Classifier attributes domains using a taxonomy.
type Classifier struct {
	tax        *taxonomy.Taxonomy
	thresholds Thresholds
}

// New creates a Classifier. Non-positive thresholds fall back to the defaults.
func New(tax *taxonomy.Taxonomy, th Thresholds) *Classifier {
	def := DefaultThresholds()
	if th.JobMinScore <= 0 {
		th.JobMinScore = def.JobMinScore
	}
	if th.CandidateMinScore <= 0 {
		th.CandidateMinScore = def.CandidateMinScore
	}
	return &Classifier{tax: tax, thresholds: th}
}

// Taxonomy returns the taxonomy the classifier uses.
func (c *Classifier) Taxonomy() *taxonomy.Taxonomy { return c.tax }

// ClassifyJob returns the dominant domain of a job, or model.DomainUnknown when
// no domain reaches the threshold. Ties go to the alphabetically first domain.
func (c *Classifier) ClassifyJob(job model.JobRequirements) model.Domain {
	title := strings.ToLower(job.Title)
	desc := strings.ToLower(job.Description)
	skills := make(map[string]struct{}, len(job.RequiredSkills)+len(job.PreferredSkills))
	for _, s := range job.RequiredSkills {
		skills[s] = struct{}{}
	}
	for _, s := range job.PreferredSkills {
		skills[s] = struct{}{}
	}

	best, bestScore := model.DomainUnknown, 0
	for _, d := range c.tax.SortedDomains() {
		score := 0
		for _, kw := range c.tax.Keywords(d) {
			if taxonomy.ContainsPhrase(title, kw) {
				score += jobTitleWeight
			}
			if taxonomy.ContainsPhrase(desc, kw) {
				score += jobDescriptionWeight
			}
			if _, ok := skills[kw]; ok {
				score += jobSkillWeight
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	if bestScore < c.thresholds.JobMinScore {
		return model.DomainUnknown
	}
	return best
}

// ClassifyCandidate returns every domain whose evidence in the candidate's
// titles and skills reaches the threshold, in taxonomy order.
func (c *Classifier) ClassifyCandidate(cv model.Candidate) []model.Domain {
	titles := make([]string, len(cv.Experience))
	for i, e := range cv.Experience {
		titles[i] = strings.ToLower(e.Title)
	}

	var out []model.Domain
	for _, d := range c.tax.Domains() {
		score := 0
		for _, kw := range c.tax.Keywords(d) {
			for _, title := range titles {
				if taxonomy.ContainsPhrase(title, kw) {
					score += cvTitleWeight
				}
			}
		}
		for _, s := range cv.Skills {
			if c.tax.Contains(d, s) {
				score += cvSkillWeight
			}
		}
		if score >= c.thresholds.CandidateMinScore {
			out = append(out, d)
		}
	}
	return out
}

// ClassifyExperience returns the domains any of whose keywords occur in the
// role title or company name, in taxonomy order.
func (c *Classifier) ClassifyExperience(exp model.Experience) []model.Domain {
	title := strings.ToLower(exp.Title)
	company := strings.ToLower(exp.Company)

	var out []model.Domain
	for _, d := range c.tax.Domains() {
		for _, kw := range c.tax.Keywords(d) {
			if taxonomy.ContainsPhrase(title, kw) || taxonomy.ContainsPhrase(company, kw) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// DomainRelevance scores in [0,100] how well the candidate's domains fit the
// job's domain. jobDomain and candidateDomains are the outputs of ClassifyJob
// and ClassifyCandidate.
func (c *Classifier) DomainRelevance(cv model.Candidate, job model.JobRequirements, jobDomain model.Domain, candidateDomains []model.Domain) float64 {
	if jobDomain == model.DomainUnknown {
		return RelevanceUnknownJob
	}
	for _, d := range candidateDomains {
		if d == jobDomain {
			return RelevanceSameDomain
		}
	}
	for _, d := range candidateDomains {
		if c.tax.RelatedDomains(jobDomain, d) {
			return RelevanceRelatedDomain
		}
	}
	return c.transferable(cv, job.Title, jobDomain, candidateDomains)
}

func (c *Classifier) transferable(cv model.Candidate, jobTitle string, jobDomain model.Domain, candidateDomains []model.Domain) float64 {
	title := strings.ToLower(jobTitle)
	for _, role := range c.tax.TransferableRoles() {
		if taxonomy.ContainsPhrase(title, role.Phrase) {
			return role.Score
		}
	}

	leadership := float64(LeadershipRoles(c.tax, cv)) * leadershipPerRole

	if c.tax.IsTechnical(jobDomain) {
		hasTechnical := false
		for _, d := range candidateDomains {
			if c.tax.IsTechnical(d) {
				hasTechnical = true
				break
			}
		}
		if !hasTechnical {
			return math.Min(leadershipCapTechnical, leadership)
		}
	}
	return math.Min(leadershipCapOtherwise, leadership)
}

// LeadershipRoles counts the roles whose title carries a leadership word.
func LeadershipRoles(tax *taxonomy.Taxonomy, cv model.Candidate) int {
	n := 0
	words := tax.LeadershipWords()
	for _, e := range cv.Experience {
		title := strings.ToLower(e.Title)
		for _, w := range words {
			if taxonomy.ContainsPhrase(title, w) {
				n++
				break
			}
		}
	}
	return n
}

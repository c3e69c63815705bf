// Package experience scores the quantity, relevance and progression of a
// candidate's work history.
package experience

import (
	"math"
	"strings"

	"github.com/okian/cvscreen/internal/domain/classify"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

const (
	quantityWeight    = 0.4
	relevanceWeight   = 0.4
	progressionWeight = 0.2

	titleWeight  = 0.6
	domainWeight = 0.4

	progressionBase        = 50.0
	progressionStep        = 5.0
	progressionLongerBonus = 5.0

	depthFullYears = 5.0
)

// Result holds the experience sub-scores, each in [0,100].
type Result struct {
	Quantity           float64
	Relevance          float64
	Progression        float64
	Combined           float64
	AverageTenureYears float64
}

// Analyze scores the candidate's experience against the job. jobDomain is the
// output of the classifier for job.
func Analyze(c *classify.Classifier, cv model.Candidate, job model.JobRequirements, jobDomain model.Domain) Result {
	r := Result{
		Quantity:           Quantity(cv.TotalExperienceYears(), job.MinExperienceYears),
		Relevance:          Relevance(c, cv.Experience, job.Title, jobDomain),
		Progression:        Progression(c.Taxonomy(), cv.Experience),
		AverageTenureYears: AverageTenure(cv.Experience),
	}
	r.Combined = quantityWeight*r.Quantity + relevanceWeight*r.Relevance + progressionWeight*r.Progression
	return r
}

// Quantity is the share of the required years the candidate has, capped at 100.
func Quantity(years, minYears float64) float64 {
	if minYears <= 0 {
		return 100
	}
	return math.Min(100, years/minYears*100)
}

// Relevance is the duration-weighted mean of per-role relevance, where a role
// scores 60% on title overlap with the job title and 40% on sharing the job's
// domain.
func Relevance(c *classify.Classifier, exps []model.Experience, jobTitle string, jobDomain model.Domain) float64 {
	if len(exps) == 0 {
		return 0
	}
	jobWords := taxonomy.Words(jobTitle)

	var total, weights float64
	for _, e := range exps {
		weight := float64(e.DurationMonths) / 12
		domainScore := 0.0
		for _, d := range c.ClassifyExperience(e) {
			if d == jobDomain {
				domainScore = 100
				break
			}
		}
		total += (titleWeight*titleOverlap(taxonomy.Words(e.Title), jobWords) + domainWeight*domainScore) * weight
		weights += weight
	}
	if weights == 0 {
		return 0
	}
	return total / weights
}

// titleOverlap is the percentage of distinct job title words present in the role title.
func titleOverlap(titleWords, jobWords []string) float64 {
	job := toSet(jobWords)
	if len(job) == 0 {
		return 0
	}
	have := toSet(titleWords)
	common := 0
	for w := range job {
		if _, ok := have[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(job)) * 100
}

// Progression rewards seniority words and growing tenures. Fewer than two
// roles score a neutral 50.
func Progression(tax *taxonomy.Taxonomy, exps []model.Experience) float64 {
	if len(exps) < 2 {
		return progressionBase
	}
	ladder := tax.SeniorityLadder()
	score := progressionBase
	for i, e := range exps {
		title := strings.ToLower(e.Title)
		for j, word := range ladder {
			if taxonomy.ContainsPhrase(title, word) {
				score += float64(j+1) * progressionStep
				break
			}
		}
		if i > 0 && e.DurationMonths > exps[i-1].DurationMonths {
			score += progressionLongerBonus
		}
	}
	return math.Min(100, score)
}

// AverageTenure is the mean role duration in years, 0 without roles.
func AverageTenure(exps []model.Experience) float64 {
	if len(exps) == 0 {
		return 0
	}
	months := 0
	for _, e := range exps {
		months += e.DurationMonths
	}
	return float64(months) / float64(len(exps)) / 12
}

// TechnicalDepth rewards skills that belong to the taxonomy, scaled by
// experience up to five years. A skill counts once per domain it belongs to.
func TechnicalDepth(tax *taxonomy.Taxonomy, cv model.Candidate) float64 {
	if len(cv.Skills) == 0 {
		return 0
	}
	hits := 0
	for _, s := range cv.Skills {
		hits += len(tax.DomainsOf(s))
	}
	factor := math.Min(1, cv.TotalExperienceYears()/depthFullYears)
	return math.Min(100, float64(hits)/float64(len(cv.Skills))*100*factor)
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

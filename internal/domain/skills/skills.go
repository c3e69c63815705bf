// Package skills compares a candidate's skills with a job's required and
// preferred skills.
package skills

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

const (
	exactWeight     = 70.0
	relatedWeight   = 20.0
	preferredWeight = 10.0
)

// Result is the outcome of Match. All lists are sorted.
type Result struct {
	Score            float64
	Matched          []string // exact required and preferred matches
	Missing          []string // required skills the candidate does not list
	Gaps             []string // missing skills not covered by a related skill
	Related          []string // missing required skills covered by a related skill
	RequiredMatches  []string
	PreferredMatches []string
}

// Match scores cvSkills against the job's required and preferred skills.
// All inputs must already be normalized (lower-case, trimmed, deduplicated).
func Match(tax *taxonomy.Taxonomy, cvSkills, required, preferred []string) Result {
	have := make(map[string]struct{}, len(cvSkills))
	for _, s := range cvSkills {
		have[s] = struct{}{}
	}

	var res Result
	for _, req := range required {
		if _, ok := have[req]; ok {
			res.RequiredMatches = append(res.RequiredMatches, req)
			continue
		}
		res.Missing = append(res.Missing, req)
		if relatedTo(tax, req, cvSkills) {
			res.Related = append(res.Related, req)
		} else {
			res.Gaps = append(res.Gaps, req)
		}
	}
	for _, pref := range preferred {
		if _, ok := have[pref]; ok {
			res.PreferredMatches = append(res.PreferredMatches, pref)
		}
	}

	res.Matched = union(res.RequiredMatches, res.PreferredMatches)
	res.Score = score(len(required), len(res.RequiredMatches), len(res.Related), len(preferred), len(res.PreferredMatches))

	for _, list := range [][]string{res.Missing, res.Gaps, res.Related, res.RequiredMatches, res.PreferredMatches} {
		sort.Strings(list)
	}
	return res
}

func relatedTo(tax *taxonomy.Taxonomy, skill string, cvSkills []string) bool {
	for _, s := range cvSkills {
		if tax.Related(skill, s) {
			return true
		}
	}
	return false
}

func score(required, exact, related, preferred, prefMatches int) float64 {
	if required == 0 {
		return 100
	}
	s := exactWeight*float64(exact)/float64(required) + relatedWeight*float64(related)/float64(required)
	if preferred > 0 {
		s += preferredWeight * float64(prefMatches) / float64(preferred)
	} else {
		s += preferredWeight
	}
	return math.Max(0, math.Min(100, s))
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

// EducationMatch scores in [0,100] the share of requirements that appear in,
// or contain, one of the candidate's degrees. No requirements score 100.
func EducationMatch(requirements, degrees []string) float64 {
	if len(requirements) == 0 {
		return 100
	}
	if len(degrees) == 0 {
		return 0
	}
	met := 0
	for _, req := range requirements {
		for _, deg := range degrees {
			if containsEither(req, deg) {
				met++
				break
			}
		}
	}
	return float64(met) / float64(len(requirements)) * 100
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

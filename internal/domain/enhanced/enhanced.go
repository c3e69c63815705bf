// Package enhanced scores digital-media specialisms (SEO, marketing technology,
// analytics, industry verticals, remote and executive leadership) from raw CV text.
package enhanced

import (
	"math"
	"strings"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

// Points per detected item, before the cap at 100.
const (
	seoPoints            = 20
	martechPoints        = 25
	analyticsPoints      = 30
	industryPoints       = 40
	platformPoints       = 50
	salesMarketingPoints = 35
	remotePoints         = 25
	executivePoints      = 20
)

// weights of the digital-media overall, normalized by their sum.
var weights = map[string]float64{
	"seo":             0.08,
	"martech":         0.08,
	"analytics":       0.07,
	"industry":        0.05,
	"platform":        0.04,
	"sales_marketing": 0.03,
	"remote":          0.03,
	"executive":       0.02,
}

// platformPhrases mark platform leadership in a role title.
var platformPhrases = []string{"head of", "platform strategy", "platform optimization"}

// Analyze detects the enhanced keyword tables in cvText and scores them.
// Experience titles are scanned for platform leadership.
func Analyze(tax *taxonomy.Taxonomy, cvText string, cv model.Candidate) model.EnhancedScores {
	tables := tax.Enhanced()
	text := strings.ToLower(cvText)

	keywords := make(map[string][]string, len(tables.Categories))
	for _, cat := range tables.Categories {
		if found := Detect(text, cat.Keywords); len(found) > 0 {
			keywords[cat.Name] = found
		}
	}
	industries := Industries(text, tables.Industries)
	executive := Detect(text, tables.Executive)
	platform := PlatformRoles(cv.Experience)

	s := model.EnhancedScores{
		SEOExpertise:        points(len(keywords[taxonomy.CategorySEO]), seoPoints),
		MartechProficiency:  points(len(keywords[taxonomy.CategoryMartech]), martechPoints),
		AnalyticsCapability: points(len(keywords[taxonomy.CategoryAnalytics]), analyticsPoints),
		IndustryAlignment:   points(len(industries), industryPoints),
		PlatformLeadership:  points(platform, platformPoints),
		SalesMarketing:      points(len(keywords[taxonomy.CategorySalesMarketing]), salesMarketingPoints),
		RemoteLeadership:    points(len(keywords[taxonomy.CategoryRemote]), remotePoints),
		ExecutiveReadiness:  points(len(executive), executivePoints),
		DetectedKeywords:    keywords,
		DetectedIndustries:  industries,
		ExecutiveIndicators: executive,
	}
	s.DigitalMediaOverall = overall(s)
	return s
}

// Detect returns the keywords that occur in text, in table order.
func Detect(text string, keywords []string) []string {
	out := []string{}
	for _, kw := range keywords {
		if taxonomy.ContainsPhrase(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// Industries returns each industry with at least one indicator in text.
func Industries(text string, industries []taxonomy.Category) []string {
	out := []string{}
	for _, ind := range industries {
		for _, kw := range ind.Keywords {
			if taxonomy.ContainsPhrase(text, kw) {
				out = append(out, ind.Name)
				break
			}
		}
	}
	return out
}

// PlatformRoles counts the roles whose title shows platform leadership.
func PlatformRoles(exps []model.Experience) int {
	n := 0
	for _, e := range exps {
		title := strings.ToLower(e.Title)
		for _, p := range platformPhrases {
			if strings.Contains(title, p) {
				n++
				break
			}
		}
	}
	return n
}

func points(n int, per float64) float64 {
	return math.Min(100, float64(n)*per)
}

func overall(s model.EnhancedScores) float64 {
	values := map[string]float64{
		"seo":             s.SEOExpertise,
		"martech":         s.MartechProficiency,
		"analytics":       s.AnalyticsCapability,
		"industry":        s.IndustryAlignment,
		"platform":        s.PlatformLeadership,
		"sales_marketing": s.SalesMarketing,
		"remote":          s.RemoteLeadership,
		"executive":       s.ExecutiveReadiness,
	}
	var total, sum float64
	for k, w := range weights {
		total += w * values[k]
		sum += w
	}
	return math.Round(total/sum*10) / 10
}

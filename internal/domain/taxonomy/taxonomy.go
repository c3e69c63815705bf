// Package taxonomy holds the keyword and skill tables the scoring engine
// classifies and matches against. A Taxonomy is immutable once built and
// safe to share between goroutines.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/cvscreen/internal/domain/model"
)

// Enhanced keyword categories.
const (
	CategorySEO            = "seo_technical"
	CategoryMartech        = "martech_operations"
	CategoryAnalytics      = "advanced_analytics"
	CategoryAffiliate      = "affiliate_marketing"
	CategoryInfluencer     = "influencer_marketing"
	CategoryRemote         = "remote_leadership"
	CategorySalesMarketing = "sales_marketing_integration"
)

// Category is a named keyword list.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DomainTable describes one professional domain.
type DomainTable struct {
	Name        model.Domain `yaml:"name"`
	DisplayName string       `yaml:"display_name"`
	Categories  []Category   `yaml:"categories"`
}

// RoleScore is a transferable role phrase and the relevance it grants.
type RoleScore struct {
	Phrase string  `yaml:"phrase"`
	Score  float64 `yaml:"score"`
}

// EnhancedTables holds the digital-media keyword tables.
type EnhancedTables struct {
	Categories []Category `yaml:"categories"`
	Industries []Category `yaml:"industries"`
	Executive  []string   `yaml:"executive"`
}

// Tables is the raw material of a Taxonomy.
type Tables struct {
	Domains           []DomainTable       `yaml:"domains"`
	Related           map[string][]string `yaml:"related"`
	RelatedDomains    [][2]model.Domain   `yaml:"related_domains"`
	TechnicalDomains  []model.Domain      `yaml:"technical_domains"`
	TransferableRoles []RoleScore         `yaml:"transferable_roles"`
	LeadershipWords   []string            `yaml:"leadership_words"`
	SeniorityLadder   []string            `yaml:"seniority_ladder"`
	Enhanced          EnhancedTables      `yaml:"enhanced"`
}

// Taxonomy is the immutable, indexed form of Tables.
type Taxonomy struct {
	tables   Tables
	byName   map[model.Domain]int
	keywords map[model.Domain][]string
	members  map[model.Domain]map[string]struct{}
	related  map[string]map[string]struct{}
	adjacent map[model.Domain]map[model.Domain]struct{}
	tech     map[model.Domain]struct{}
}

// New validates and indexes the tables.
func New(tables Tables) (*Taxonomy, error) {
	if len(tables.Domains) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidTaxonomy)
	}
	t := &Taxonomy{
		tables:   tables,
		byName:   make(map[model.Domain]int, len(tables.Domains)),
		keywords: make(map[model.Domain][]string, len(tables.Domains)),
		members:  make(map[model.Domain]map[string]struct{}, len(tables.Domains)),
		related:  make(map[string]map[string]struct{}, len(tables.Related)),
		adjacent: make(map[model.Domain]map[model.Domain]struct{}),
		tech:     make(map[model.Domain]struct{}, len(tables.TechnicalDomains)),
	}

	for i, d := range tables.Domains {
		if d.Name == "" || d.Name == model.DomainUnknown {
			return nil, fmt.Errorf("%w: domain %d has an invalid name %q", ErrInvalidTaxonomy, i, d.Name)
		}
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate domain %q", ErrInvalidTaxonomy, d.Name)
		}
		t.byName[d.Name] = i
		set := make(map[string]struct{})
		var flat []string
		for _, c := range d.Categories {
			for _, kw := range c.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw == "" {
					continue
				}
				if _, ok := set[kw]; !ok {
					set[kw] = struct{}{}
					flat = append(flat, kw)
				}
			}
		}
		t.members[d.Name] = set
		t.keywords[d.Name] = flat
	}

	for skill, rel := range tables.Related {
		key := strings.ToLower(strings.TrimSpace(skill))
		set := make(map[string]struct{}, len(rel))
		for _, r := range rel {
			set[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
		}
		t.related[key] = set
	}

	for _, pair := range tables.RelatedDomains {
		t.link(pair[0], pair[1])
		t.link(pair[1], pair[0])
	}
	for _, d := range tables.TechnicalDomains {
		t.tech[d] = struct{}{}
	}
	return t, nil
}

// MustNew is New for built-in tables; it panics on invalid tables.
func MustNew(tables Tables) *Taxonomy {
	t, err := New(tables)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Taxonomy) link(a, b model.Domain) {
	if t.adjacent[a] == nil {
		t.adjacent[a] = make(map[model.Domain]struct{})
	}
	t.adjacent[a][b] = struct{}{}
}

// Domains returns the domain names in declaration order.
func (t *Taxonomy) Domains() []model.Domain {
	out := make([]model.Domain, len(t.tables.Domains))
	for i, d := range t.tables.Domains {
		out[i] = d.Name
	}
	return out
}

// SortedDomains returns the domain names in alphabetical order.
func (t *Taxonomy) SortedDomains() []model.Domain {
	out := t.Domains()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Keywords returns every keyword of a domain across categories, deduplicated.
func (t *Taxonomy) Keywords(d model.Domain) []string {
	return append([]string(nil), t.keywords[d]...)
}

// Contains reports whether skill is an exact keyword of domain d.
func (t *Taxonomy) Contains(d model.Domain, skill string) bool {
	_, ok := t.members[d][skill]
	return ok
}

// DomainsOf lists, in declaration order, the domains that contain skill.
func (t *Taxonomy) DomainsOf(skill string) []model.Domain {
	var out []model.Domain
	for _, d := range t.tables.Domains {
		if _, ok := t.members[d.Name][skill]; ok {
			out = append(out, d.Name)
		}
	}
	return out
}

// IsTaxonomySkill reports whether skill is a keyword of any domain.
func (t *Taxonomy) IsTaxonomySkill(skill string) bool {
	for _, set := range t.members {
		if _, ok := set[skill]; ok {
			return true
		}
	}
	return false
}

// Related reports whether two skills are linked by the related-skills table,
// in either direction.
func (t *Taxonomy) Related(a, b string) bool {
	if _, ok := t.related[a][b]; ok {
		return true
	}
	_, ok := t.related[b][a]
	return ok
}

// RelatedDomains reports whether two distinct domains are adjacent.
func (t *Taxonomy) RelatedDomains(a, b model.Domain) bool {
	_, ok := t.adjacent[a][b]
	return ok
}

// IsTechnical reports whether d is a technical domain.
func (t *Taxonomy) IsTechnical(d model.Domain) bool {
	_, ok := t.tech[d]
	return ok
}

// DisplayName returns the human name of a domain, or "Unknown".
func (t *Taxonomy) DisplayName(d model.Domain) string {
	i, ok := t.byName[d]
	if !ok {
		return "Unknown"
	}
	if name := t.tables.Domains[i].DisplayName; name != "" {
		return name
	}
	return string(d)
}

// TransferableRoles returns the ordered transferable role table.
func (t *Taxonomy) TransferableRoles() []RoleScore {
	return append([]RoleScore(nil), t.tables.TransferableRoles...)
}

// LeadershipWords returns the words that mark a leadership title.
func (t *Taxonomy) LeadershipWords() []string {
	return append([]string(nil), t.tables.LeadershipWords...)
}

// SeniorityLadder returns the seniority words from most junior to most senior.
func (t *Taxonomy) SeniorityLadder() []string {
	return append([]string(nil), t.tables.SeniorityLadder...)
}

// Enhanced returns the digital-media keyword tables.
func (t *Taxonomy) Enhanced() EnhancedTables {
	return t.tables.Enhanced
}

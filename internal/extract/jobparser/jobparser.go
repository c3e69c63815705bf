// Package jobparser turns a free-text or HTML job posting into job requirements.
package jobparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/okian/cvscreen/internal/extract/textextract"
)

// Defaults for postings that do not say.
const (
	DefaultTitle   = "Software Engineer"
	DefaultCompany = "Company"
	maxTitleLength = 120
)

// commonSkills are recognized in every posting, whatever the taxonomy.
var commonSkills = []string{"python", "java", "javascript", "react", "node.js", "sql", "aws", "docker"}

// degrees maps a canonical degree to the words that signal it.
var degrees = []struct {
	name  string
	words []string
}{
	{"bachelor", []string{"bachelor", "bachelor's", "bachelors", "bsc", "b.sc", "undergraduate degree"}},
	{"master", []string{"master", "master's", "masters", "msc", "m.sc"}},
	{"phd", []string{"phd", "ph.d", "doctorate"}},
	{"mba", []string{"mba"}},
}

// seniority maps level words to implied minimum years, checked in order.
var seniority = []struct {
	words []string
	years float64
}{
	{[]string{"senior", "sr."}, 5},
	{[]string{"mid-level", "mid level", "intermediate"}, 3},
	{[]string{"junior", "jr."}, 1},
}

var (
	reHTML    = regexp.MustCompile(`(?i)<(?:html|body|div|p|ul|ol|li|h[1-6]|br)\b[^>]*>`)
	reTitle   = regexp.MustCompile(`(?im)^\s*(?:job\s+)?(?:title|position|role)[ \t]*:[ \t]*(.+?)[ \t]*$`)
	reCompany = regexp.MustCompile(`(?im)^\s*(?:company|employer|organization)[ \t]*:[ \t]*(.+?)[ \t]*$`)
	reAtName  = regexp.MustCompile(`\bat\s+([A-Z][A-Za-z0-9&.\-]*(?:\s+[A-Z][A-Za-z0-9&.\-]*)*)`)
	reYears   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\s*\+\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(?i)(?:at least|minimum(?:\s+of)?)\s+(\d{1,2})\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(?i)(\d{1,2})\s*(?:-|–|to)\s*\d{1,2}\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(?i)(\d{1,2})\s*(?:years?|yrs?)\s+(?:of\s+)?(?:\w+\s+){0,2}experience`),
	}
	rePreferredHeading = regexp.MustCompile(`(?i)^\s*(?:preferred(?:\s+(?:qualifications|skills|experience))?|nice[\s-]to[\s-]have|bonus(?:\s+points)?|desirable|pluses)\b\s*:?\s*(.*)$`)
	reHeading          = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z /&'\-]{0,40}:\s*$`)
)

// Parser extracts job requirements. It is safe for concurrent use.
type Parser struct {
	tax          *taxonomy.Taxonomy
	defaultTitle string
	vocabulary   []string
}

// New creates a Parser using the built-in taxonomy unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{tax: taxonomy.Default(), defaultTitle: DefaultTitle}
	for _, opt := range opts {
		opt(p)
	}
	vocab := append([]string(nil), commonSkills...)
	for _, d := range p.tax.Domains() {
		vocab = append(vocab, p.tax.Keywords(d)...)
	}
	p.vocabulary = model.NormalizeSkills(vocab)
	return p
}

// Parse extracts requirements from a posting. HTML postings are converted to
// text first; an unparsable document is read as plain text.
func (p *Parser) Parse(posting string) model.JobRequirements {
	text := posting
	if reHTML.MatchString(posting) {
		if t, err := textextract.FromHTML(posting); err == nil && t != "" {
			text = t
		}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	main, preferred := splitPreferred(text)
	required := p.detect(strings.ToLower(main))
	pref := exclude(p.detect(strings.ToLower(preferred)), required)

	return model.NewJobRequirements(
		p.title(text),
		text,
		required,
		pref,
		minYears(text),
		model.WithCompany(company(text)),
		model.WithEducationRequirements(education(strings.ToLower(text))...),
	)
}

func (p *Parser) title(text string) string {
	if m := reTitle.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= maxTitleLength && !strings.Contains(line, ":") {
			return line
		}
		break
	}
	return p.defaultTitle
}

func company(text string) string {
	if m := reCompany.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := reAtName.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], ".,")
	}
	return DefaultCompany
}

// splitPreferred separates the preferred-skills block from the rest. The
// block starts at a "Preferred"/"Nice to have" heading and runs until the
// next heading line.
func splitPreferred(text string) (main, preferred string) {
	var mainLines, prefLines []string
	inPreferred := false
	for _, line := range strings.Split(text, "\n") {
		if m := rePreferredHeading.FindStringSubmatch(line); m != nil {
			inPreferred = true
			if rest := strings.TrimSpace(m[1]); rest != "" {
				prefLines = append(prefLines, rest)
			}
			continue
		}
		if inPreferred && reHeading.MatchString(line) {
			inPreferred = false
		}
		if inPreferred {
			prefLines = append(prefLines, line)
		} else {
			mainLines = append(mainLines, line)
		}
	}
	return strings.Join(mainLines, "\n"), strings.Join(prefLines, "\n")
}

func (p *Parser) detect(lower string) []string {
	var out []string
	for _, kw := range p.vocabulary {
		if taxonomy.ContainsPhrase(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func exclude(list, drop []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, s := range drop {
		skip[s] = struct{}{}
	}
	var out []string
	for _, s := range list {
		if _, ok := skip[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// minYears reads an explicit "N+ years" style requirement, falling back to
// the seniority implied by the posting.
func minYears(text string) float64 {
	for _, re := range reYears {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return float64(n)
			}
		}
	}
	lower := strings.ToLower(text)
	for _, level := range seniority {
		for _, w := range level.words {
			if taxonomy.ContainsPhrase(lower, w) {
				return level.years
			}
		}
	}
	return 0
}

func education(lower string) []string {
	var out []string
	for _, d := range degrees {
		for _, w := range d.words {
			if taxonomy.ContainsPhrase(lower, w) {
				out = append(out, d.name)
				break
			}
		}
	}
	return out
}

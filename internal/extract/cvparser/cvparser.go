// Package cvparser extracts a structured candidate from free-text CVs using
// section headings and regular expressions.
package cvparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
)

// UnknownName is used when no name can be found.
const UnknownName = "Unknown Candidate"

// Section kinds.
const (
	SectionHeader         = "header"
	SectionSummary        = "summary"
	SectionSkills         = "skills"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionCertifications = "certifications"
	SectionProjects       = "projects"
	SectionOther          = "other"
)

const (
	defaultDurationMonths = 12
	maxSkillLength        = 30
	minSummaryLength      = 50
	nameScanLines         = 5
	minGraduationYear     = 1950
	maxGraduationYear     = 2030
)

// baseSkills are detected anywhere in the text.
var baseSkills = map[string][]string{
	"programming": {"python", "java", "javascript", "c++", "c#", "php", "ruby", "go", "rust", "swift"},
	"web":         {"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask"},
	"database":    {"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch"},
	"cloud":       {"aws", "azure", "gcp", "docker", "kubernetes", "terraform"},
	"tools":       {"git", "jenkins", "jira", "confluence", "slack"},
}

var headings = map[string]string{
	"summary": SectionSummary, "professional summary": SectionSummary, "profile": SectionSummary,
	"professional profile": SectionSummary, "objective": SectionSummary, "career objective": SectionSummary,
	"about": SectionSummary, "about me": SectionSummary,

	"skills": SectionSkills, "technical skills": SectionSkills, "core skills": SectionSkills,
	"key skills": SectionSkills, "technologies": SectionSkills, "competencies": SectionSkills,
	"core competencies": SectionSkills,

	"experience": SectionExperience, "work experience": SectionExperience,
	"professional experience": SectionExperience, "employment": SectionExperience,
	"employment history": SectionExperience, "work history": SectionExperience,
	"career history": SectionExperience,

	"education": SectionEducation, "academic background": SectionEducation,
	"qualifications": SectionEducation, "academic": SectionEducation,

	"certifications": SectionCertifications, "certificates": SectionCertifications,
	"projects": SectionProjects,

	"languages": SectionOther, "interests": SectionOther, "references": SectionOther,
	"awards": SectionOther, "publications": SectionOther, "volunteering": SectionOther,
	"contact": SectionOther,
}

var (
	reNameLabel  = regexp.MustCompile(`(?im)^\s*name\s*[:\-]\s*([A-Za-z][A-Za-z .'\-]*)$`)
	reTwoCapital = regexp.MustCompile(`^([A-Z][a-z]+\s+[A-Z][a-z]+)`)
	reNameWord   = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-.]*$`)

	reEmail    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	rePhone    = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}|\+?[1-9]?\d{7,14}`)
	reLinkedIn = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-]+`)
	reLocation = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*(?:location|address)\s*:\s*([A-Za-z ,]+)$`),
		regexp.MustCompile(`\b([A-Z][a-z]+,\s*[A-Z]{2})\b`),
		regexp.MustCompile(`\b([A-Z][a-z]+\s*,\s*[A-Z][a-z]+)\b`),
	}

	reSkillSplit = regexp.MustCompile(`[,;•|\t\n]+|\s+-\s+|^-\s+`)

	reRole = regexp.MustCompile(`(?i)^\s*[-•*]?\s*([A-Za-z][A-Za-z /&]*?)\s+(?:at|@)\s+([A-Za-z0-9][A-Za-z0-9 &,.'\-]*?)` +
		`(?:\s*[-–|,(]\s*(\d{1,2})\s*(years?|yrs?|months?|mos?)\)?)?\s*$`)

	reDegree = regexp.MustCompile(`(?i)\b(bachelor|master|ph\.?d|doctorate|mba|b\.?sc|m\.?sc|b\.?a|m\.?a|b\.?s|m\.?s|b\.?eng|m\.?eng|associate|diploma|degree|certification)\b`)
	reEduSep = regexp.MustCompile(`\s*,\s*|\s+-\s+|\s+(?:at|from)\s+`)
	reYear   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Parser extracts candidates from CV text. It is safe for concurrent use.
type Parser struct {
	vocabulary []string
}

// New creates a Parser with the built-in skill vocabulary.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, cat := range []string{"programming", "web", "database", "cloud", "tools"} {
		p.vocabulary = append(p.vocabulary, baseSkills[cat]...)
	}
	for _, opt := range opts {
		opt(p)
	}
	p.vocabulary = model.NormalizeSkills(p.vocabulary)
	return p
}

// Result is a parsed CV.
type Result struct {
	Candidate model.Candidate
	Sections  []string // section kinds in document order
	WordCount int
}

type section struct {
	kind  string
	lines []string
}

// Parse extracts a candidate from text. It never fails; text without any
// recognizable content yields a candidate named UnknownName.
func (p *Parser) Parse(text string) Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	sections := split(text)

	res := Result{WordCount: len(strings.Fields(text))}
	for _, s := range sections {
		if s.kind != SectionHeader {
			res.Sections = append(res.Sections, s.kind)
		}
	}

	res.Candidate = model.NewCandidate(
		extractName(text, sections),
		p.extractSkills(text, sections),
		extractExperience(sections),
		model.WithContact(extractContact(text, strings.Join(sections[0].lines, "\n"))),
		model.WithEducation(extractEducation(sections)...),
		model.WithSummary(extractSummary(sections)),
	)
	return res
}

// split cuts text into sections at heading lines. Lines before the first
// heading form the header section. A heading may carry inline content, as in
// "Skills: Go, SQL".
func split(text string) []section {
	out := []section{{kind: SectionHeader}}
	for _, line := range strings.Split(text, "\n") {
		if kind, rest, ok := heading(line); ok {
			out = append(out, section{kind: kind})
			if rest != "" {
				out[len(out)-1].lines = append(out[len(out)-1].lines, rest)
			}
			continue
		}
		out[len(out)-1].lines = append(out[len(out)-1].lines, line)
	}
	return out
}

func heading(line string) (kind, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	key := strings.ToLower(strings.TrimRight(trimmed, ": "))
	if kind, ok := headings[key]; ok {
		return kind, "", true
	}
	before, after, found := strings.Cut(trimmed, ":")
	if !found {
		return "", "", false
	}
	if kind, ok := headings[strings.ToLower(strings.TrimSpace(before))]; ok {
		return kind, strings.TrimSpace(after), true
	}
	return "", "", false
}

func sectionLines(sections []section, kind string) []string {
	var out []string
	for _, s := range sections {
		if s.kind == kind {
			out = append(out, s.lines...)
		}
	}
	return out
}

func extractName(text string, sections []section) string {
	if m := reNameLabel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	var candidates []string
	for _, l := range sections[0].lines {
		if l = strings.TrimSpace(l); l != "" {
			candidates = append(candidates, l)
		}
		if len(candidates) == nameScanLines {
			break
		}
	}
	for _, l := range candidates {
		if looksLikeName(l) {
			return l
		}
	}
	for _, l := range candidates {
		if m := reTwoCapital.FindStringSubmatch(l); m != nil {
			return m[1]
		}
	}
	return UnknownName
}

// looksLikeName accepts two to four alphabetic words.
func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if !reNameWord.MatchString(w) {
			return false
		}
	}
	return true
}

// extractContact reads the whole text for email, phone and LinkedIn. Bare
// "City, Region" locations are only taken from the header so skill lists do
// not read as places.
func extractContact(text, header string) model.Contact {
	var c model.Contact
	c.Email = reEmail.FindString(text)
	withoutEmail := reEmail.ReplaceAllString(text, " ")
	withoutEmail = reLinkedIn.ReplaceAllString(withoutEmail, " ")
	c.Phone = strings.TrimSpace(rePhone.FindString(withoutEmail))
	if m := reLinkedIn.FindString(text); m != "" {
		c.LinkedIn = "https://" + strings.ToLower(m[:len("linkedin.com/in/")]) + m[len("linkedin.com/in/"):]
	}
	for i, re := range reLocation {
		src := header
		if i == 0 {
			src = text
		}
		if m := re.FindStringSubmatch(src); m != nil {
			c.Location = strings.TrimSpace(m[1])
			break
		}
	}
	return c
}

func (p *Parser) extractSkills(text string, sections []section) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range p.vocabulary {
		if taxonomy.ContainsPhrase(lower, kw) {
			found = append(found, kw)
		}
	}
	for _, line := range sectionLines(sections, SectionSkills) {
		for _, item := range reSkillSplit.Split(strings.TrimSpace(line), -1) {
			item = strings.TrimSpace(item)
			if item != "" && len(item) < maxSkillLength {
				found = append(found, item)
			}
		}
	}
	return found
}

func extractExperience(sections []section) []model.Experience {
	var out []model.Experience
	for _, line := range sectionLines(sections, SectionExperience) {
		m := reRole.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title, company := strings.TrimSpace(m[1]), strings.Trim(strings.TrimSpace(m[2]), ",.")
		if title == "" || company == "" {
			continue
		}
		out = append(out, model.Experience{
			Title:          title,
			Company:        company,
			DurationMonths: durationMonths(m[3], m[4]),
		})
	}
	return out
}

func durationMonths(amount, unit string) int {
	n, err := strconv.Atoi(amount)
	if err != nil || n <= 0 {
		return defaultDurationMonths
	}
	if strings.HasPrefix(strings.ToLower(unit), "y") {
		return n * 12
	}
	return n
}

func extractEducation(sections []section) []model.Education {
	var out []model.Education
	for _, line := range sectionLines(sections, SectionEducation) {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
		if line == "" || !reDegree.MatchString(line) {
			continue
		}
		edu := model.Education{GraduationYear: graduationYear(line)}
		parts := reEduSep.Split(reYear.ReplaceAllString(line, ""), -1)
		for _, part := range parts {
			part = strings.Trim(strings.TrimSpace(part), "()")
			switch {
			case part == "":
			case edu.Degree == "":
				edu.Degree = part
			case edu.Institution == "":
				edu.Institution = part
			}
		}
		out = append(out, edu)
	}
	return out
}

func graduationYear(line string) int {
	for _, m := range reYear.FindAllString(line, -1) {
		y, _ := strconv.Atoi(m)
		if y >= minGraduationYear && y <= maxGraduationYear {
			return y
		}
	}
	return 0
}

func extractSummary(sections []section) string {
	var parts []string
	for _, l := range sectionLines(sections, SectionSummary) {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	summary := strings.Join(parts, " ")
	if len(summary) <= minSummaryLength {
		return ""
	}
	return summary
}

// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
	"strings"
)

// Contact holds the candidate's reachability details. All fields are optional.
type Contact struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Location string `json:"location,omitempty"`
}

// Experience is one role held by the candidate.
type Experience struct {
	Title          string   `json:"title" validate:"max=300"`
	Company        string   `json:"company" validate:"max=300"`
	DurationMonths int      `json:"duration_months" validate:"min=0,max=600"`
	SkillsUsed     []string `json:"skills_used,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// Education is one degree held by the candidate.
type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty" validate:"omitempty,min=1950,max=2030"`
}

// Candidate is the structured view of a CV.
//
// The total years of experience are derived from Experience and cannot be set
// directly; use NewCandidate or SetExperience.
type Candidate struct {
	Name       string       `json:"name" validate:"max=200"`
	Contact    Contact      `json:"contact"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience" validate:"dive"`
	Education  []Education  `json:"education,omitempty" validate:"dive"`
	Summary    string       `json:"summary,omitempty"`

	totalYears float64
}

// CandidateOption customizes a Candidate built by NewCandidate.
type CandidateOption func(*Candidate)

// WithContact sets the candidate contact details.
func WithContact(c Contact) CandidateOption {
	return func(cv *Candidate) { cv.Contact = c }
}

// WithEducation sets the candidate education entries.
func WithEducation(edu ...Education) CandidateOption {
	return func(cv *Candidate) {
		if len(edu) > 0 {
			cv.Education = append([]Education(nil), edu...)
		}
	}
}

// WithSummary sets the free-text professional summary.
func WithSummary(summary string) CandidateOption {
	return func(cv *Candidate) { cv.Summary = strings.TrimSpace(summary) }
}

// NewCandidate builds a Candidate with normalized skills and derived total experience.
func NewCandidate(name string, skills []string, experience []Experience, opts ...CandidateOption) Candidate {
	cv := Candidate{
		Name:   strings.TrimSpace(name),
		Skills: NormalizeSkills(skills),
	}
	for _, opt := range opts {
		opt(&cv)
	}
	cv.SetExperience(experience)
	return cv
}

// SetExperience replaces the experience list and recomputes the total years.
func (c *Candidate) SetExperience(experience []Experience) {
	c.Experience = append([]Experience(nil), experience...)
	months := 0
	for _, e := range c.Experience {
		months += e.DurationMonths
	}
	c.totalYears = math.Round(float64(months)/12*10) / 10
}

// TotalExperienceYears is the sum of all durations in years, rounded to one decimal.
func (c Candidate) TotalExperienceYears() float64 {
	return c.totalYears
}

// MarshalJSON includes the derived total_experience_years.
func (c Candidate) MarshalJSON() ([]byte, error) {
	type alias Candidate
	return json.Marshal(struct {
		alias
		TotalExperienceYears float64 `json:"total_experience_years"`
	}{alias(c), c.totalYears})
}

// UnmarshalJSON ignores any provided total and derives it from the experience list.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type alias Candidate
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Candidate(a)
	c.Skills = NormalizeSkills(c.Skills)
	c.SetExperience(c.Experience)
	return nil
}

// NormalizeSkills lower-cases and trims skills, dropping empties and duplicates.
// First-seen order is preserved.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

package model

import "strings"

// JobRequirements is the structured view of a job description.
//
// Skill lists are normalized by NewJobRequirements; the scoring engine
// relies on that and does not normalize again.
type JobRequirements struct {
	Title                 string   `json:"title" validate:"max=300"`
	Company               string   `json:"company,omitempty"`
	Description           string   `json:"description,omitempty"`
	RequiredSkills        []string `json:"required_skills"`
	PreferredSkills       []string `json:"preferred_skills"`
	MinExperienceYears    float64  `json:"min_experience_years" validate:"gte=0,lte=60"`
	EducationRequirements []string `json:"education_requirements,omitempty"`
}

// JobOption customizes JobRequirements built by NewJobRequirements.
type JobOption func(*JobRequirements)

// WithCompany sets the hiring company.
func WithCompany(company string) JobOption {
	return func(j *JobRequirements) { j.Company = strings.TrimSpace(company) }
}

// WithEducationRequirements sets the degree requirements.
func WithEducationRequirements(reqs ...string) JobOption {
	return func(j *JobRequirements) { j.EducationRequirements = NormalizeSkills(reqs) }
}

// NewJobRequirements builds JobRequirements with normalized skill lists.
func NewJobRequirements(title, description string, required, preferred []string, minYears float64, opts ...JobOption) JobRequirements {
	j := JobRequirements{
		Title:              strings.TrimSpace(title),
		Description:        description,
		RequiredSkills:     NormalizeSkills(required),
		PreferredSkills:    NormalizeSkills(preferred),
		MinExperienceYears: minYears,
	}
	for _, opt := range opts {
		opt(&j)
	}
	return j
}

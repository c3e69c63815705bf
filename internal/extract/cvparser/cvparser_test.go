package cvparser

import (
	"testing"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Jane Doe
jane.doe@example.com | +1 555-123-4567 | linkedin.com/in/janedoe
Berlin, Germany

Summary
Backend engineer with eight years of experience building distributed payment systems.

Skills: Go, PostgreSQL, Kubernetes; gRPC
- Terraform

Experience
Senior Software Engineer at Acme Corp - 3 years
Software Engineer at Globex - 18 months
Intern at Initech

Education
BSc Computer Science, Technical University of Munich, 2014
`

func TestParse_FullCV(t *testing.T) {
	res := New().Parse(sampleCV)
	cv := res.Candidate

	assert.Equal(t, "Jane Doe", cv.Name)
	assert.Equal(t, model.Contact{
		Email:    "jane.doe@example.com",
		Phone:    "+1 555-123-4567",
		LinkedIn: "https://linkedin.com/in/janedoe",
		Location: "Berlin, Germany",
	}, cv.Contact)

	assert.Equal(t, []string{"go", "postgresql", "kubernetes", "terraform", "grpc"}, cv.Skills)

	require.Len(t, cv.Experience, 3)
	assert.Equal(t, model.Experience{Title: "Senior Software Engineer", Company: "Acme Corp", DurationMonths: 36}, cv.Experience[0])
	assert.Equal(t, model.Experience{Title: "Software Engineer", Company: "Globex", DurationMonths: 18}, cv.Experience[1])
	assert.Equal(t, model.Experience{Title: "Intern", Company: "Initech", DurationMonths: 12}, cv.Experience[2])
	assert.Equal(t, 5.5, cv.TotalExperienceYears())

	require.Len(t, cv.Education, 1)
	assert.Equal(t, model.Education{
		Degree:         "BSc Computer Science",
		Institution:    "Technical University of Munich",
		GraduationYear: 2014,
	}, cv.Education[0])

	assert.Equal(t, "Backend engineer with eight years of experience building distributed payment systems.", cv.Summary)
	assert.Equal(t, []string{SectionSummary, SectionSkills, SectionExperience, SectionEducation}, res.Sections)
	assert.Positive(t, res.WordCount)
}

func TestParse_Empty(t *testing.T) {
	res := New().Parse("")

	assert.Equal(t, UnknownName, res.Candidate.Name)
	assert.Empty(t, res.Candidate.Skills)
	assert.Empty(t, res.Candidate.Experience)
	assert.Empty(t, res.Sections)
	assert.Zero(t, res.WordCount)
}

func TestParse_NameAndLocationLabels(t *testing.T) {
	res := New().Parse("Curriculum vitae\nName: John Smith\nLocation: San Francisco, CA\n")

	assert.Equal(t, "John Smith", res.Candidate.Name)
	assert.Equal(t, "San Francisco, CA", res.Candidate.Contact.Location)
}

func TestParse_ShortSummaryDropped(t *testing.T) {
	res := New().Parse("Profile: Go developer.\n")

	assert.Empty(t, res.Candidate.Summary)
	assert.Contains(t, res.Candidate.Skills, "go")
}

func TestParse_SkillListIgnoresLocation(t *testing.T) {
	res := New().Parse("Alex Moore\n\nSkills\nPython, Django, A very long entry that is clearly a sentence\n")

	assert.Empty(t, res.Candidate.Contact.Location)
	assert.Equal(t, []string{"python", "django"}, res.Candidate.Skills)
}

func TestParse_WithTaxonomy(t *testing.T) {
	text := "Sam Lee\n\nProgrammatic lead running Prebid and Google Ads campaigns.\n"

	plain := New().Parse(text)
	assert.Empty(t, plain.Candidate.Skills)

	rich := New(WithTaxonomy(taxonomy.Default()), WithSkills("Campaigns")).Parse(text)
	assert.Contains(t, rich.Candidate.Skills, "programmatic")
	assert.Contains(t, rich.Candidate.Skills, "prebid")
	assert.Contains(t, rich.Candidate.Skills, "google ads")
	assert.Contains(t, rich.Candidate.Skills, "campaigns")
}

func TestDurationMonths(t *testing.T) {
	assert.Equal(t, 24, durationMonths("2", "years"))
	assert.Equal(t, 24, durationMonths("2", "Yrs"))
	assert.Equal(t, 7, durationMonths("7", "months"))
	assert.Equal(t, 12, durationMonths("", ""))
}

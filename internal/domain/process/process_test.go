package process_test

import (
	"testing"
	"time"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/process"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSteps(t *testing.T) {
	Convey("Given the step enumeration", t, func() {
		So(process.Steps, ShouldHaveLength, 16)
		So(process.StepCVParsing.Valid(), ShouldBeTrue)
		So(process.Step("teleportation").Valid(), ShouldBeFalse)
		So(process.StepSEOSEMDetection.Title(), ShouldEqual, "Seo Sem Detection")
	})
}

func TestExplain(t *testing.T) {
	Convey("Given a skill extraction outcome", t, func() {
		exp := process.Explain(process.Context{
			Step:       process.StepSkillExtraction,
			Confidence: 0.85,
			Detected:   []string{"python", "sql"},
			Missing:    []string{"docker"},
			Matches:    2,
			Required:   3,
		})

		Convey("Then the specialised explanation is used", func() {
			So(exp.StepName, ShouldEqual, "Skill Extraction")
			So(exp.Detailed, ShouldContainSubstring, "Found 2 skills, with 2 matching")
			So(exp.Evidence, ShouldContain, "- python")
			So(exp.Suggestions, ShouldResemble, []string{"Missing skills: docker"})
			So(exp.ConfidenceText, ShouldStartWith, "High confidence (85%)")
		})
	})

	Convey("Given an experience outcome", t, func() {
		exp := process.Explain(process.Context{
			Step:          process.StepExperienceAnalysis,
			Confidence:    0.5,
			TotalYears:    6.5,
			RelevantYears: 4,
			Roles:         []model.Experience{{Title: "Engineer", Company: "Acme", DurationMonths: 78}},
		})

		Convey("Then roles are listed", func() {
			So(exp.Detailed, ShouldContainSubstring, "6.5 years across 1 roles")
			So(exp.Evidence, ShouldContain, "- Engineer at Acme (78 months)")
			So(exp.ConfidenceText, ShouldStartWith, "Low confidence")
		})
	})

	Convey("Given a score calculation outcome", t, func() {
		exp := process.Explain(process.Context{
			Step:       process.StepScoreCalculation,
			Confidence: 0.7,
			Overall:    72.5,
			Components: map[string]float64{"skills": 80, "domain": 100, "experience": 40},
		})

		Convey("Then the strongest and weakest areas are named", func() {
			So(exp.Detailed, ShouldContainSubstring, "Strongest area: domain (100.0%)")
			So(exp.Detailed, ShouldContainSubstring, "Area for improvement: experience (40.0%)")
			So(exp.Evidence, ShouldHaveLength, 3)
		})
	})

	Convey("Given a step without a specialised explanation", t, func() {
		exp := process.Explain(process.Context{Step: process.StepMartechAnalysis, Confidence: 0.2, Elapsed: 1500 * time.Millisecond})

		Convey("Then the generic explanation is used", func() {
			So(exp.StepName, ShouldEqual, "Martech Analysis")
			So(exp.Headline, ShouldEqual, "Processing martech analysis")
			So(exp.Evidence, ShouldResemble, []string{"Processed in 1.50 seconds"})
			So(exp.ConfidenceText, ShouldStartWith, "Very low confidence")
		})
	})

	Convey("Given a job parsing outcome", t, func() {
		exp := process.Explain(process.Context{
			Step: process.StepJobParsing, Confidence: 0.9,
			Detected: []string{"go", "sql"}, TotalYears: 3,
		})

		Convey("Then the requirements are summarised", func() {
			So(exp.StepName, ShouldEqual, "Job Parsing")
			So(exp.Detailed, ShouldContainSubstring, "2 required skills")
			So(exp.Detailed, ShouldContainSubstring, "at least 3.0 years")
			So(exp.Evidence, ShouldResemble, []string{"Required skills:", "- go", "- sql"})
		})
	})

	Convey("Given a recommendation outcome", t, func() {
		exp := process.Explain(process.Context{
			Step: process.StepRecommendationGeneration, Confidence: 0.7, Overall: 64.5,
			Detected: []string{"GOOD MATCH", "Proceed to interview"},
		})

		Convey("Then the label is evidence and the advice a suggestion", func() {
			So(exp.StepName, ShouldEqual, "Recommendation Generation")
			So(exp.Evidence, ShouldResemble, []string{"GOOD MATCH"})
			So(exp.Suggestions, ShouldResemble, []string{"Proceed to interview"})
			So(exp.Detailed, ShouldContainSubstring, "64.5%")
		})
	})
}

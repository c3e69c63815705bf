package redflags_test

import (
	"testing"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/redflags"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func rules(flags []redflags.Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f.Rule
	}
	return out
}

func TestDetect(t *testing.T) {
	tax := taxonomy.Default()
	th := redflags.DefaultThresholds()

	Convey("Given a clean candidate", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{
			JobDomain:          taxonomy.SoftwareEngineering,
			CandidateDomains:   []model.Domain{taxonomy.SoftwareEngineering},
			RequiredCount:      4,
			MissingCount:       2,
			Years:              5,
			MinYears:           5,
			Roles:              3,
			AverageTenureYears: 0.5,
		})

		Convey("Then nothing is flagged", func() {
			So(flags, ShouldBeEmpty)
		})
	})

	Convey("Given a candidate from another domain", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{
			JobDomain:        taxonomy.MechanicalEngineering,
			CandidateDomains: []model.Domain{taxonomy.DigitalMarketing, taxonomy.Finance},
		})

		Convey("Then the mismatch names both backgrounds", func() {
			So(redflags.Messages(flags), ShouldResemble, []string{
				"Domain mismatch: Candidate has Digital Marketing/Ad Tech background, job requires Mechanical Engineering",
			})
		})
	})

	Convey("Given a candidate without any domain", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{JobDomain: taxonomy.Finance})

		Convey("Then the background is unknown", func() {
			So(flags[0].Message, ShouldEqual, "Domain mismatch: Candidate has Unknown background, job requires Finance")
		})
	})

	Convey("Given an unknown job domain", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{JobDomain: model.DomainUnknown})

		Convey("Then there is no mismatch", func() {
			So(flags, ShouldBeEmpty)
		})
	})

	Convey("Given every other rule triggering", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{
			JobDomain:          model.DomainUnknown,
			RequiredCount:      5,
			MissingCount:       3,
			Years:              2.5,
			MinYears:           5,
			Roles:              4,
			AverageTenureYears: 0.9,
		})

		Convey("Then they are raised in order", func() {
			So(rules(flags), ShouldResemble, []string{redflags.RuleSkillsGap, redflags.RuleExperienceGap, redflags.RuleJobHopping})
			So(flags[0].Message, ShouldEqual, "Major skills gap: Missing 3 of 5 required skills")
			So(flags[1].Message, ShouldEqual, "Experience gap: 2.5 years vs 5 required")
			So(flags[2].Message, ShouldEqual, "Job hopping pattern: Average tenure less than 1 year")
		})
	})

	Convey("Given an average tenure of exactly one year over four roles", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{
			JobDomain:          model.DomainUnknown,
			Roles:              4,
			AverageTenureYears: 1.0,
		})

		Convey("Then job hopping is not flagged", func() {
			So(flags, ShouldBeEmpty)
		})
	})

	Convey("Given experience above the gap ratio", t, func() {
		flags := redflags.Detect(tax, th, redflags.Input{JobDomain: model.DomainUnknown, Years: 4, MinYears: 5})

		Convey("Then the experience gap is not flagged", func() {
			So(flags, ShouldBeEmpty)
		})
	})
}

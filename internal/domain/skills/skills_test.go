package skills_test

import (
	"testing"

	"github.com/okian/cvscreen/internal/domain/skills"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatch(t *testing.T) {
	tax := taxonomy.Default()

	Convey("Given a job with required and preferred skills", t, func() {
		required := []string{"python", "sql", "docker", "javascript"}
		preferred := []string{"kubernetes", "aws"}

		Convey("When the candidate covers some exactly and some by relation", func() {
			res := skills.Match(tax, []string{"python", "postgresql", "node.js", "aws"}, required, preferred)

			Convey("Then exact, related and gaps are split", func() {
				So(res.RequiredMatches, ShouldResemble, []string{"python"})
				So(res.Related, ShouldResemble, []string{"javascript", "sql"})
				So(res.Gaps, ShouldResemble, []string{"docker"})
				So(res.Missing, ShouldResemble, []string{"docker", "javascript", "sql"})
				So(res.Matched, ShouldResemble, []string{"aws", "python"})
			})

			Convey("Then the score weights exact, related and preferred", func() {
				// 70*1/4 + 20*2/4 + 10*1/2
				So(res.Score, ShouldAlmostEqual, 32.5, 1e-9)
			})

			Convey("Then matched and missing never overlap", func() {
				for _, m := range res.Matched {
					So(res.Missing, ShouldNotContain, m)
				}
			})
		})

		Convey("When the candidate has every skill", func() {
			res := skills.Match(tax, []string{"python", "sql", "docker", "javascript", "kubernetes", "aws"}, required, preferred)

			Convey("Then the score is 100", func() {
				So(res.Score, ShouldEqual, 100)
				So(res.Missing, ShouldBeEmpty)
			})
		})

		Convey("When the candidate has no skills", func() {
			res := skills.Match(tax, nil, required, preferred)

			Convey("Then the score is 0 and everything is a gap", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Gaps, ShouldHaveLength, 4)
			})
		})
	})

	Convey("Given a job without required skills", t, func() {
		res := skills.Match(tax, []string{"python"}, nil, []string{"go"})

		Convey("Then the score is 100", func() {
			So(res.Score, ShouldEqual, 100)
		})
	})

	Convey("Given a job without preferred skills", t, func() {
		res := skills.Match(tax, []string{"python"}, []string{"python", "go"}, nil)

		Convey("Then the preferred share is granted flat", func() {
			So(res.Score, ShouldAlmostEqual, 45, 1e-9)
		})
	})
}

func TestEducationMatch(t *testing.T) {
	Convey("Given education requirements", t, func() {
		So(skills.EducationMatch(nil, nil), ShouldEqual, 100)
		So(skills.EducationMatch([]string{"bachelor"}, nil), ShouldEqual, 0)
		So(skills.EducationMatch([]string{"bachelor"}, []string{"Bachelor of Science"}), ShouldEqual, 100)
		So(skills.EducationMatch([]string{"bachelor", "mba"}, []string{"Bachelor of Arts"}), ShouldEqual, 50)
	})
}

package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/cvscreen/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewCandidate(t *testing.T) {
	convey.Convey("Given a candidate built from raw parser output", t, func() {
		cv := model.NewCandidate(" Jane Doe ",
			[]string{" Python", "python", "", "SQL ", "Docker"},
			[]model.Experience{
				{Title: "Engineer", Company: "A", DurationMonths: 14},
				{Title: "Senior Engineer", Company: "B", DurationMonths: 25},
			},
			model.WithSummary("  Backend engineer.  "),
			model.WithContact(model.Contact{Email: "jane@example.com"}),
		)

		convey.Convey("Then skills are normalized and deduplicated in first-seen order", func() {
			convey.So(cv.Skills, convey.ShouldResemble, []string{"python", "sql", "docker"})
			convey.So(cv.Name, convey.ShouldEqual, "Jane Doe")
			convey.So(cv.Summary, convey.ShouldEqual, "Backend engineer.")
		})

		convey.Convey("Then total years are derived and rounded to one decimal", func() {
			convey.So(cv.TotalExperienceYears(), convey.ShouldEqual, 3.3)
		})

		convey.Convey("When the experience is replaced", func() {
			cv.SetExperience([]model.Experience{{Title: "Lead", DurationMonths: 6}})

			convey.Convey("Then the total follows", func() {
				convey.So(cv.TotalExperienceYears(), convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When encoded as JSON", func() {
			data, err := json.Marshal(cv)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the derived total is included", func() {
				var raw map[string]interface{}
				convey.So(json.Unmarshal(data, &raw), convey.ShouldBeNil)
				convey.So(raw["total_experience_years"], convey.ShouldEqual, 3.3)
				convey.So(raw["name"], convey.ShouldEqual, "Jane Doe")
			})
		})
	})

	convey.Convey("Given JSON with an inconsistent total", t, func() {
		payload := `{"name":"X","skills":["Go"],"experience":[{"title":"Dev","company":"C","duration_months":24}],"total_experience_years":99}`

		var cv model.Candidate
		err := json.Unmarshal([]byte(payload), &cv)

		convey.Convey("Then the total is recomputed from the experience", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cv.TotalExperienceYears(), convey.ShouldEqual, 2.0)
			convey.So(cv.Skills, convey.ShouldResemble, []string{"go"})
		})
	})

	convey.Convey("Given a candidate with no experience", t, func() {
		cv := model.NewCandidate("", nil, nil)

		convey.Convey("Then totals and lists are empty", func() {
			convey.So(cv.TotalExperienceYears(), convey.ShouldEqual, 0)
			convey.So(cv.Skills, convey.ShouldBeEmpty)
		})
	})
}

func TestNewJobRequirements(t *testing.T) {
	convey.Convey("Given raw job requirements", t, func() {
		job := model.NewJobRequirements(" Backend Engineer ", "Build services",
			[]string{"Go", " go", "SQL"}, []string{"Docker", ""}, 3,
			model.WithCompany(" Acme "),
			model.WithEducationRequirements("Bachelor"),
		)

		convey.Convey("Then lists are normalized", func() {
			convey.So(job.Title, convey.ShouldEqual, "Backend Engineer")
			convey.So(job.Company, convey.ShouldEqual, "Acme")
			convey.So(job.RequiredSkills, convey.ShouldResemble, []string{"go", "sql"})
			convey.So(job.PreferredSkills, convey.ShouldResemble, []string{"docker"})
			convey.So(job.EducationRequirements, convey.ShouldResemble, []string{"bachelor"})
			convey.So(job.MinExperienceYears, convey.ShouldEqual, 3)
		})
	})
}

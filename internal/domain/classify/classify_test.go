package classify_test

import (
	"testing"

	"github.com/okian/cvscreen/internal/domain/classify"
	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func newClassifier() *classify.Classifier {
	return classify.New(taxonomy.Default(), classify.Thresholds{})
}

func roles(title string, n int) []model.Experience {
	out := make([]model.Experience, n)
	for i := range out {
		out[i] = model.Experience{Title: title, Company: "Agency", DurationMonths: 12}
	}
	return out
}

func TestClassifyJob(t *testing.T) {
	Convey("Given a classifier over the built-in taxonomy", t, func() {
		c := newClassifier()

		Convey("When the job is a Python backend role", func() {
			job := model.NewJobRequirements("Senior Python Developer", "We build web services with Django and Docker.",
				[]string{"python", "django", "docker", "sql"}, []string{"kubernetes"}, 3)

			Convey("Then it is software engineering", func() {
				So(c.ClassifyJob(job), ShouldEqual, taxonomy.SoftwareEngineering)
			})
		})

		Convey("When there is no domain evidence", func() {
			job := model.NewJobRequirements("Office Assistant", "Answer phones and greet visitors.", nil, nil, 0)

			Convey("Then it is unknown", func() {
				So(c.ClassifyJob(job), ShouldEqual, model.DomainUnknown)
			})
		})

		Convey("When evidence stays below the threshold", func() {
			job := model.NewJobRequirements("", "", []string{"tableau"}, nil, 0)

			Convey("Then it is unknown", func() {
				So(c.ClassifyJob(job), ShouldEqual, model.DomainUnknown)
			})
		})

		Convey("When two domains tie", func() {
			job := model.NewJobRequirements("", "Reporting in tableau.", []string{"tableau"}, nil, 0)

			Convey("Then the alphabetically first domain wins", func() {
				So(c.ClassifyJob(job), ShouldEqual, taxonomy.DataScience)
			})
		})

		Convey("When a single-letter keyword only appears inside words", func() {
			job := model.NewJobRequirements("Reporter", "Write stories for our readers every day.", nil, nil, 0)

			Convey("Then it does not count", func() {
				So(c.ClassifyJob(job), ShouldEqual, model.DomainUnknown)
			})
		})

		Convey("When the threshold is raised", func() {
			strict := classify.New(taxonomy.Default(), classify.Thresholds{JobMinScore: 50})
			job := model.NewJobRequirements("Senior Python Developer", "", []string{"python"}, nil, 0)

			Convey("Then the job becomes unknown", func() {
				So(strict.ClassifyJob(job), ShouldEqual, model.DomainUnknown)
			})
		})
	})
}

func TestClassifyCandidate(t *testing.T) {
	Convey("Given a classifier", t, func() {
		c := newClassifier()

		Convey("When the candidate has three engineering skills", func() {
			cv := model.NewCandidate("A", []string{"python", "django", "docker"},
				[]model.Experience{{Title: "Backend Developer", Company: "Acme", DurationMonths: 24}})

			Convey("Then only software engineering is attributed", func() {
				So(c.ClassifyCandidate(cv), ShouldResemble, []model.Domain{taxonomy.SoftwareEngineering})
			})
		})

		Convey("When the candidate's titles carry the evidence", func() {
			cv := model.NewCandidate("B", []string{"python", "pandas"},
				[]model.Experience{{Title: "Data Science Lead", Company: "Acme", DurationMonths: 24}})

			Convey("Then data science is attributed", func() {
				So(c.ClassifyCandidate(cv), ShouldResemble, []model.Domain{taxonomy.DataScience})
			})
		})

		Convey("When the candidate has no evidence", func() {
			cv := model.NewCandidate("C", []string{"cooking"}, roles("Chef", 2))

			Convey("Then no domain is attributed", func() {
				So(c.ClassifyCandidate(cv), ShouldBeEmpty)
			})
		})
	})
}

func TestClassifyExperience(t *testing.T) {
	Convey("Given single roles", t, func() {
		c := newClassifier()

		So(c.ClassifyExperience(model.Experience{Title: "Java Developer", Company: "Acme"}), ShouldResemble, []model.Domain{taxonomy.SoftwareEngineering})
		So(c.ClassifyExperience(model.Experience{Title: "Analyst", Company: "Bloomberg"}), ShouldResemble, []model.Domain{taxonomy.Finance})
		So(c.ClassifyExperience(model.Experience{Title: "Machine Learning Engineer", Company: "X"}), ShouldResemble, []model.Domain{taxonomy.DataScience})
		So(c.ClassifyExperience(model.Experience{Title: "Waiter", Company: "Diner"}), ShouldBeEmpty)
	})
}

func TestDomainRelevance(t *testing.T) {
	Convey("Given a classifier", t, func() {
		c := newClassifier()
		se := []model.Domain{taxonomy.SoftwareEngineering}
		dm := []model.Domain{taxonomy.DigitalMarketing}

		Convey("When the job domain is unknown", func() {
			So(c.DomainRelevance(model.Candidate{}, model.JobRequirements{}, model.DomainUnknown, se), ShouldEqual, 70)
		})

		Convey("When the candidate shares the job domain", func() {
			So(c.DomainRelevance(model.Candidate{}, model.JobRequirements{}, taxonomy.SoftwareEngineering, se), ShouldEqual, 100)
		})

		Convey("When the domains are related", func() {
			So(c.DomainRelevance(model.Candidate{}, model.JobRequirements{}, taxonomy.DataScience, se), ShouldEqual, 60)
		})

		Convey("When the job title names a transferable role", func() {
			job := model.JobRequirements{Title: "Finance Project Management Officer"}
			So(c.DomainRelevance(model.Candidate{}, job, taxonomy.Finance, se), ShouldEqual, 30)
		})

		Convey("When falling back to leadership for a technical job", func() {
			job := model.JobRequirements{Title: "Mechanical Design Engineer"}
			four := model.NewCandidate("D", nil, roles("Marketing Manager", 4))
			five := model.NewCandidate("E", nil, roles("Marketing Manager", 5))
			two := model.NewCandidate("F", nil, roles("Marketing Manager", 2))

			So(c.DomainRelevance(four, job, taxonomy.MechanicalEngineering, dm), ShouldEqual, 20)
			So(c.DomainRelevance(five, job, taxonomy.MechanicalEngineering, dm), ShouldEqual, 20)
			So(c.DomainRelevance(two, job, taxonomy.MechanicalEngineering, dm), ShouldEqual, 10)
		})

		Convey("When falling back to leadership for a non-technical job", func() {
			job := model.JobRequirements{Title: "Equity Research Associate"}
			five := model.NewCandidate("G", nil, roles("Account Director", 5))
			ten := model.NewCandidate("H", nil, roles("Account Director", 10))

			So(c.DomainRelevance(five, job, taxonomy.Finance, dm), ShouldEqual, 25)
			So(c.DomainRelevance(ten, job, taxonomy.Finance, dm), ShouldEqual, 40)
		})
	})
}

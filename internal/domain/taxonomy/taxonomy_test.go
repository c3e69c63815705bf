package taxonomy_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cvscreen/internal/domain/model"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTaxonomy(t *testing.T) {
	Convey("Given the built-in taxonomy", t, func() {
		tax := taxonomy.Default()

		Convey("Then domains keep declaration order", func() {
			So(tax.Domains(), ShouldResemble, []model.Domain{
				taxonomy.SoftwareEngineering, taxonomy.MechanicalEngineering,
				taxonomy.DigitalMarketing, taxonomy.DataScience, taxonomy.Finance,
			})
			So(tax.SortedDomains()[0], ShouldEqual, taxonomy.DataScience)
		})

		Convey("Then membership is exact", func() {
			So(tax.Contains(taxonomy.SoftwareEngineering, "python"), ShouldBeTrue)
			So(tax.Contains(taxonomy.SoftwareEngineering, "pythonic"), ShouldBeFalse)
			So(tax.DomainsOf("python"), ShouldResemble, []model.Domain{taxonomy.SoftwareEngineering, taxonomy.DataScience})
			So(tax.DomainsOf("tableau"), ShouldResemble, []model.Domain{taxonomy.DataScience, taxonomy.Finance})
			So(tax.IsTaxonomySkill("solidworks"), ShouldBeTrue)
			So(tax.IsTaxonomySkill("knitting"), ShouldBeFalse)
		})

		Convey("Then the related table works in both directions", func() {
			So(tax.Related("python", "django"), ShouldBeTrue)
			So(tax.Related("django", "python"), ShouldBeTrue)
			So(tax.Related("python", "java"), ShouldBeFalse)
		})

		Convey("Then domain adjacency and display names resolve", func() {
			So(tax.RelatedDomains(taxonomy.SoftwareEngineering, taxonomy.DataScience), ShouldBeTrue)
			So(tax.RelatedDomains(taxonomy.DataScience, taxonomy.SoftwareEngineering), ShouldBeTrue)
			So(tax.RelatedDomains(taxonomy.Finance, taxonomy.DataScience), ShouldBeFalse)
			So(tax.IsTechnical(taxonomy.MechanicalEngineering), ShouldBeTrue)
			So(tax.IsTechnical(taxonomy.Finance), ShouldBeFalse)
			So(tax.DisplayName(taxonomy.DigitalMarketing), ShouldEqual, "Digital Marketing/Ad Tech")
			So(tax.DisplayName(model.DomainUnknown), ShouldEqual, "Unknown")
		})

		Convey("Then the seniority ladder runs from junior to head", func() {
			ladder := tax.SeniorityLadder()
			So(ladder[0], ShouldEqual, "junior")
			So(ladder[len(ladder)-1], ShouldEqual, "head")
		})
	})
}

func TestContainsPhrase(t *testing.T) {
	Convey("Given whole-phrase matching", t, func() {
		So(taxonomy.ContainsPhrase("senior python developer", "python"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("react developer", "r"), ShouldBeFalse)
		So(taxonomy.ContainsPhrase("skills: r, sql", "r"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("google ads specialist", "go"), ShouldBeFalse)
		So(taxonomy.ContainsPhrase("c++ and c# engineer", "c++"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("built with node.js", "node.js"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("mechanical design lead", "mechanical design"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("ad tech ad technology", "ad tech"), ShouldBeTrue)
		So(taxonomy.ContainsPhrase("anything", ""), ShouldBeFalse)
		So(taxonomy.ContainsPhrase("", "go"), ShouldBeFalse)
	})
}

func TestParse(t *testing.T) {
	Convey("Given a YAML taxonomy that only defines domains", t, func() {
		doc := `
domains:
  - name: nursing
    display_name: Nursing
    categories:
      - name: core
        keywords: [patient care, triage, Phlebotomy]
  - name: software_engineering
    categories:
      - name: languages
        keywords: [go, python]
`
		tax, err := taxonomy.Parse([]byte(doc))

		Convey("Then the domains are replaced and other tables default", func() {
			So(err, ShouldBeNil)
			So(tax.Domains(), ShouldResemble, []model.Domain{"nursing", "software_engineering"})
			So(tax.Contains("nursing", "phlebotomy"), ShouldBeTrue)
			So(tax.DisplayName("software_engineering"), ShouldEqual, "software_engineering")
			So(tax.Related("python", "pandas"), ShouldBeTrue)
			So(tax.TransferableRoles(), ShouldHaveLength, 5)
		})
	})

	Convey("Given an invalid taxonomy", t, func() {
		_, errEmpty := taxonomy.Parse([]byte("domains: []"))
		_, errDup := taxonomy.Parse([]byte("domains: [{name: a}, {name: a}]"))
		_, errYAML := taxonomy.Parse([]byte("domains: [oops"))

		Convey("Then errors carry the sentinel kinds", func() {
			So(errors.Is(errEmpty, taxonomy.ErrInvalidTaxonomy), ShouldBeTrue)
			So(errors.Is(errDup, taxonomy.ErrInvalidTaxonomy), ShouldBeTrue)
			So(errors.Is(errYAML, taxonomy.ErrLoadTaxonomy), ShouldBeTrue)
		})
	})

	Convey("Given a taxonomy file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "taxonomy.yaml")
		So(os.WriteFile(path, []byte("domains:\n  - name: law\n    categories:\n      - name: core\n        keywords: [litigation]\n"), 0o600), ShouldBeNil)

		tax, err := taxonomy.LoadFile(path)

		Convey("Then it loads", func() {
			So(err, ShouldBeNil)
			So(tax.Contains("law", "litigation"), ShouldBeTrue)
		})

		Convey("And a missing file is a load error", func() {
			_, err := taxonomy.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
			So(errors.Is(err, taxonomy.ErrLoadTaxonomy), ShouldBeTrue)
		})
	})
}

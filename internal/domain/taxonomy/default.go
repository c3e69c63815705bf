package taxonomy

import "github.com/okian/cvscreen/internal/domain/model"

// Built-in domain names.
const (
	SoftwareEngineering   model.Domain = "software_engineering"
	MechanicalEngineering model.Domain = "mechanical_engineering"
	DigitalMarketing      model.Domain = "digital_marketing"
	DataScience           model.Domain = "data_science"
	Finance               model.Domain = "finance"
)

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	return MustNew(Tables{
		Domains: []DomainTable{
			{
				Name:        SoftwareEngineering,
				DisplayName: "Software Engineering",
				Categories: []Category{
					{Name: "core", Keywords: []string{"programming", "software development", "coding", "algorithms", "data structures"}},
					{Name: "languages", Keywords: []string{"python", "java", "javascript", "typescript", "c++", "c#", "php", "ruby", "go", "rust"}},
					{Name: "frameworks", Keywords: []string{"react", "angular", "vue", "node.js", "express", "django", "flask", "spring"}},
					{Name: "tools", Keywords: []string{"git", "docker", "kubernetes", "jenkins", "aws", "azure", "gcp"}},
				},
			},
			{
				Name:        MechanicalEngineering,
				DisplayName: "Mechanical Engineering",
				Categories: []Category{
					{Name: "core", Keywords: []string{"mechanical design", "engineering design", "cad", "mechanical systems", "product design"}},
					{Name: "software", Keywords: []string{"solidworks", "autocad", "inventor", "catia", "fusion 360", "creo", "ansys"}},
					{Name: "specialties", Keywords: []string{"cryogenic", "rf connectors", "microwave", "machining", "manufacturing", "tooling"}},
					{Name: "materials", Keywords: []string{"materials science", "metallurgy", "composites", "thermal analysis"}},
				},
			},
			{
				Name:        DigitalMarketing,
				DisplayName: "Digital Marketing/Ad Tech",
				Categories: []Category{
					{Name: "core", Keywords: []string{"digital marketing", "online advertising", "programmatic", "ad tech", "marketing technology"}},
					{Name: "platforms", Keywords: []string{"google ads", "facebook ads", "google ad manager", "doubleclick", "prebid"}},
					{Name: "analytics", Keywords: []string{"google analytics", "adobe analytics", "tag manager", "attribution"}},
					{Name: "specialties", Keywords: []string{"seo", "sem", "social media marketing", "content marketing", "email marketing"}},
				},
			},
			{
				Name:        DataScience,
				DisplayName: "Data Science",
				Categories: []Category{
					{Name: "core", Keywords: []string{"data science", "machine learning", "artificial intelligence", "statistics", "data analysis"}},
					{Name: "languages", Keywords: []string{"python", "r", "sql", "scala", "julia"}},
					{Name: "tools", Keywords: []string{"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "jupyter", "tableau"}},
					{Name: "techniques", Keywords: []string{"regression", "classification", "clustering", "deep learning", "nlp"}},
				},
			},
			{
				Name:        Finance,
				DisplayName: "Finance",
				Categories: []Category{
					{Name: "core", Keywords: []string{"finance", "financial analysis", "accounting", "investment", "risk management"}},
					{Name: "tools", Keywords: []string{"excel", "bloomberg", "reuters", "matlab", "sas", "tableau"}},
					{Name: "specialties", Keywords: []string{"derivatives", "portfolio management", "equity research", "fixed income", "trading"}},
				},
			},
		},
		Related: map[string][]string{
			"javascript":       {"js", "typescript", "node.js"},
			"python":           {"django", "flask", "fastapi", "pandas"},
			"sql":              {"mysql", "postgresql", "sqlite", "database"},
			"aws":              {"cloud", "ec2", "s3", "lambda"},
			"react":            {"javascript", "frontend", "ui"},
			"machine learning": {"ai", "data science", "ml", "artificial intelligence"},
		},
		RelatedDomains:   [][2]model.Domain{{SoftwareEngineering, DataScience}},
		TechnicalDomains: []model.Domain{SoftwareEngineering, MechanicalEngineering},
		TransferableRoles: []RoleScore{
			{Phrase: "project management", Score: 30},
			{Phrase: "team leadership", Score: 25},
			{Phrase: "business analysis", Score: 40},
			{Phrase: "sales", Score: 35},
			{Phrase: "marketing", Score: 30},
		},
		LeadershipWords: []string{"manager", "director", "lead", "head"},
		SeniorityLadder: []string{"junior", "senior", "lead", "principal", "manager", "director", "vp", "head"},
		Enhanced:        defaultEnhanced(),
	})
}

func defaultEnhanced() EnhancedTables {
	return EnhancedTables{
		Categories: []Category{
			{Name: CategorySEO, Keywords: []string{
				"core web vitals", "schema markup", "technical seo", "site speed",
				"google search console", "crawl errors", "sitemap", "robots.txt",
				"canonical tags", "meta descriptions", "title optimization",
			}},
			{Name: CategoryMartech, Keywords: []string{
				"salesforce marketing cloud", "hubspot workflows", "marketo automation",
				"pardot", "lead scoring", "drip campaigns", "nurture sequences",
				"marketing automation", "crm integration", "zapier",
			}},
			{Name: CategoryAnalytics, Keywords: []string{
				"sql", "python analytics", "r programming", "tableau", "power bi",
				"google analytics 4", "predictive modeling", "business intelligence",
				"data visualization", "statistical analysis", "cohort analysis",
			}},
			{Name: CategoryAffiliate, Keywords: []string{
				"commission tracking", "affiliate networks", "commission junction",
				"shareasale", "performance partnerships", "affiliate attribution",
				"partner management", "affiliate recruitment",
			}},
			{Name: CategoryInfluencer, Keywords: []string{
				"creator management", "influencer roi", "ftc compliance",
				"influencer contracts", "micro influencers", "macro influencers",
				"creator platforms", "influencer analytics",
			}},
			{Name: CategoryRemote, Keywords: []string{
				"virtual team management", "remote collaboration", "async communication",
				"cross-timezone", "distributed teams", "virtual presentations",
				"remote culture", "digital communication",
			}},
			{Name: CategorySalesMarketing, Keywords: []string{
				"crm management", "lead nurturing", "sales enablement",
				"revenue attribution", "customer lifecycle",
			}},
		},
		Industries: []Category{
			{Name: "healthcare", Keywords: []string{
				"hipaa compliance", "fda regulations", "healthcare marketing",
				"medical device", "pharmaceutical", "life sciences", "clinical trials",
			}},
			{Name: "financial_services", Keywords: []string{
				"fintech", "banking regulations", "financial compliance",
				"investment marketing", "insurance marketing", "regulatory approval",
			}},
			{Name: "b2b_saas", Keywords: []string{
				"product led growth", "free trial optimization", "saas metrics",
				"customer acquisition cost", "lifetime value", "churn reduction",
				"onboarding optimization", "feature adoption",
			}},
			{Name: "luxury_brands", Keywords: []string{
				"luxury marketing", "premium positioning", "brand heritage",
				"exclusivity marketing", "high net worth", "luxury customer journey",
			}},
		},
		Executive: []string{
			"p&l responsibility", "profit and loss", "budget management",
			"strategic planning", "board presentation", "stakeholder management",
			"organizational development", "team leadership", "culture transformation",
			"market expansion", "business development", "investor relations",
		},
	}
}

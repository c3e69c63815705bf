package jobparser

import "github.com/okian/cvscreen/internal/domain/taxonomy"

// Option configures a Parser.
type Option func(*Parser)

// WithTaxonomy sets the taxonomy whose keywords are recognized as skills.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(p *Parser) {
		if tax != nil {
			p.tax = tax
		}
	}
}

// WithDefaultTitle sets the title used when none can be found.
func WithDefaultTitle(title string) Option {
	return func(p *Parser) {
		if title != "" {
			p.defaultTitle = title
		}
	}
}

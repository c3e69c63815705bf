package cvparser

import "github.com/okian/cvscreen/internal/domain/taxonomy"

// Option configures a Parser.
type Option func(*Parser)

// WithTaxonomy adds every keyword of tax to the skill vocabulary, so domain
// terms such as "programmatic" or "solidworks" are picked up anywhere in the text.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(p *Parser) {
		if tax == nil {
			return
		}
		for _, d := range tax.Domains() {
			p.vocabulary = append(p.vocabulary, tax.Keywords(d)...)
		}
	}
}

// WithSkills adds extra skill keywords to the vocabulary.
func WithSkills(skills ...string) Option {
	return func(p *Parser) {
		p.vocabulary = append(p.vocabulary, skills...)
	}
}

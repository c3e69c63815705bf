package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML taxonomy. Tables the file leaves empty are taken
// from the built-in taxonomy, so a file may only redefine the domains.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTaxonomy, err)
	}
	return Parse(data)
}

// Parse decodes a YAML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTaxonomy, err)
	}

	def := Default().tables
	if tables.Related == nil {
		tables.Related = def.Related
	}
	if tables.RelatedDomains == nil {
		tables.RelatedDomains = def.RelatedDomains
	}
	if tables.TechnicalDomains == nil {
		tables.TechnicalDomains = def.TechnicalDomains
	}
	if tables.TransferableRoles == nil {
		tables.TransferableRoles = def.TransferableRoles
	}
	if tables.LeadershipWords == nil {
		tables.LeadershipWords = def.LeadershipWords
	}
	if tables.SeniorityLadder == nil {
		tables.SeniorityLadder = def.SeniorityLadder
	}
	if tables.Enhanced.Categories == nil && tables.Enhanced.Industries == nil && tables.Enhanced.Executive == nil {
		tables.Enhanced = def.Enhanced
	}
	return New(tables)
}

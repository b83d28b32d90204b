// Package classifier files article text under an attack category using ordered keyword rules.
package classifier

import (
	"fmt"
	"strings"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
)

// Rule binds a category to the phrases that trigger it.
type Rule struct {
	Category domain.Category `yaml:"category"`
	Triggers []string        `yaml:"triggers"`
}

// Taxonomy is an ordered rule list; earlier rules win.
type Taxonomy []Rule

// DefaultTaxonomy mirrors the production keyword list.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{Category: domain.CategoryRansomware, Triggers: []string{"ransomware", "ransom", "encryption attack", "decrypt key"}},
		{Category: domain.CategoryMalware, Triggers: []string{"malware", "virus", "trojan", "worm"}},
		{Category: domain.CategoryPhishing, Triggers: []string{"phishing", "spear phishing", "social engineering"}},
		{Category: domain.CategoryDataBreach, Triggers: []string{"data breach", "leak", "exposed data"}},
		{Category: domain.CategoryDDoS, Triggers: []string{"ddos", "denial of service", "traffic flood"}},
		{Category: domain.CategoryVulnerability, Triggers: []string{"vulnerability", "exploit", "zero-day", "security flaw"}},
	}
}

// Keyword is a first-match-wins substring classifier.
type Keyword struct {
	rules Taxonomy
}

var _ ports.Classifier = (*Keyword)(nil)

// New validates the taxonomy and lower-cases its triggers.
func New(taxonomy Taxonomy) (*Keyword, error) {
	if len(taxonomy) == 0 {
		return nil, fmt.Errorf("taxonomy is empty")
	}

	seen := make(map[domain.Category]struct{}, len(taxonomy))
	rules := make(Taxonomy, 0, len(taxonomy))
	for _, rule := range taxonomy {
		if !rule.Category.Valid() {
			return nil, fmt.Errorf("unknown category %q", rule.Category)
		}
		if _, dup := seen[rule.Category]; dup {
			return nil, fmt.Errorf("category %q declared twice", rule.Category)
		}
		seen[rule.Category] = struct{}{}

		triggers := make([]string, 0, len(rule.Triggers))
		for _, trigger := range rule.Triggers {
			trigger = strings.ToLower(strings.TrimSpace(trigger))
			if trigger != "" {
				triggers = append(triggers, trigger)
			}
		}
		if len(triggers) == 0 {
			return nil, fmt.Errorf("category %q has no triggers", rule.Category)
		}
		rules = append(rules, Rule{Category: rule.Category, Triggers: triggers})
	}

	return &Keyword{rules: rules}, nil
}

// Classify returns the first category whose trigger occurs in text.
func (k *Keyword) Classify(text string) (domain.Category, bool) {
	lower := strings.ToLower(text)
	for _, rule := range k.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lower, trigger) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// Package catalog holds the immutable rule-catalog model: versioned sets of
// review heuristics loaded from YAML packs, each rule carrying a compiled
// predicate over the extractor's signal vocabulary.
package catalog

import "sort"

// Severity is the rank a rule assigns to its findings.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// ParseSeverity returns the Severity for a raw string and whether it is recognized.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarn, SeverityFail:
		return Severity(s), true
	}
	return "", false
}

// Rank orders severities for sorting and threshold checks. Higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityFail:
		return 3
	case SeverityWarn:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Rule is one review heuristic. Rules are immutable once their catalog loads.
type Rule struct {
	ID                  string   `yaml:"id"`
	Domain              string   `yaml:"domain"`
	Severity            Severity `yaml:"severity"`
	TriggerSignatures   []string `yaml:"trigger_signature"`
	Predicate           string   `yaml:"predicate"`
	Title               string   `yaml:"title"`
	RemediationTemplate string   `yaml:"remediation_template"`
	ExampleRef          string   `yaml:"example_ref,omitempty"`

	compiled Expr
}

// Compiled returns the predicate expression compiled at load time.
func (r *Rule) Compiled() Expr {
	return r.compiled
}

// Catalog is a named, versioned set of rules with catalog-unique IDs.
// It is read-only for the lifetime of a run; updates are new versions.
type Catalog struct {
	Name    string `yaml:"catalog"`
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// RulesForDomain returns the rules tagged with the given domain, in ID order.
// An empty tag selects every rule.
func (c *Catalog) RulesForDomain(tag string) []Rule {
	out := make([]Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		if tag == "" || r.Domain == tag {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rule returns the rule with the given ID if present.
func (c *Catalog) Rule(id string) (Rule, bool) {
	for _, r := range c.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// TriggerSignatures returns the sorted union of every rule's trigger
// signatures. The dispatcher intersects this with a unit's import signals.
func (c *Catalog) TriggerSignatures() []string {
	seen := make(map[string]struct{})
	for _, r := range c.Rules {
		for _, t := range r.TriggerSignatures {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

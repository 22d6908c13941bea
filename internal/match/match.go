// Package match evaluates catalog rule predicates against extracted signal
// sets. Evaluation is pure and order-independent: rules never consult each
// other's output, and matching identical inputs twice yields identical results.
package match

import (
	"strings"

	"github.com/convlint/convlint/internal/catalog"
	"github.com/convlint/convlint/internal/extract"
)

// Match is one rule firing on one source unit, with the evidence signals and
// the remediation text resolved from the rule's template.
type Match struct {
	Rule        catalog.Rule
	CatalogName string
	Unit        *extract.SourceUnit
	Signals     []extract.Signal
	Line        int
	Remediation string
}

// Run evaluates every rule in the catalog against the unit. Severity is
// inherited verbatim from the rule; unknown signals cannot occur here because
// predicates are validated at catalog-load time.
func Run(unit *extract.SourceUnit, c *catalog.Catalog) []Match {
	var out []Match
	for _, rule := range c.RulesForDomain("") {
		ok, evidence := eval(rule.Compiled(), unit)
		if !ok {
			continue
		}
		out = append(out, Match{
			Rule:        rule,
			CatalogName: c.Name,
			Unit:        unit,
			Signals:     evidence,
			Line:        primaryLine(evidence),
			Remediation: expandTemplate(rule.RemediationTemplate, evidence, unit),
		})
	}
	return out
}

// eval returns whether the expression holds and the signals that witnessed
// it. Pure-absence branches (not ...) contribute no evidence.
func eval(e catalog.Expr, unit *extract.SourceUnit) (bool, []extract.Signal) {
	switch n := e.(type) {
	case *catalog.Term:
		sigs := termSignals(n, unit)
		return len(sigs) > 0, sigs
	case *catalog.Within:
		sigs := withinSignals(n, unit)
		return len(sigs) > 0, sigs
	case *catalog.Not:
		ok, _ := eval(n.X, unit)
		return !ok, nil
	case *catalog.And:
		lok, lsigs := eval(n.L, unit)
		if !lok {
			return false, nil
		}
		rok, rsigs := eval(n.R, unit)
		if !rok {
			return false, nil
		}
		return true, append(lsigs, rsigs...)
	case *catalog.Or:
		if ok, sigs := eval(n.L, unit); ok {
			return true, sigs
		}
		return eval(n.R, unit)
	}
	return false, nil
}

func termSignals(t *catalog.Term, unit *extract.SourceUnit) []extract.Signal {
	arg := ""
	if len(t.Args) > 0 {
		arg = t.Args[0]
	}

	var kind extract.Kind
	match := func(s extract.Signal) bool { return arg == "" || nameMatches(s.Value, arg) }

	switch t.Name {
	case string(extract.KindImport):
		kind = extract.KindImport
		match = func(s extract.Signal) bool { return s.Value == arg || strings.HasPrefix(s.Value, arg+".") }
	case string(extract.KindDecorator):
		kind = extract.KindDecorator
	case string(extract.KindFunctionDef):
		kind = extract.KindFunctionDef
	case string(extract.KindAsyncFunction), extract.TermAsyncFunction:
		kind = extract.KindAsyncFunction
	case string(extract.KindCallSite):
		kind = extract.KindCallSite
	default:
		return nil
	}

	var out []extract.Signal
	for _, s := range unit.SignalsOf(kind) {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

// withinSignals keeps inner-term signals whose enclosing function satisfies
// the scope term, e.g. a blocking call inside an async-marked function.
func withinSignals(w *catalog.Within, unit *extract.SourceUnit) []extract.Signal {
	scopeNames := make(map[string]bool)
	for _, s := range termSignals(w.Scope, unit) {
		scopeNames[s.Value] = true
	}
	if len(scopeNames) == 0 {
		return nil
	}

	var out []extract.Signal
	for _, s := range termSignals(w.Inner, unit) {
		if s.Function != "" && scopeNames[s.Function] {
			out = append(out, s)
		}
	}
	return out
}

// nameMatches compares dotted names leniently: "cache_data" matches both
// "cache_data" and "st.cache_data".
func nameMatches(value, arg string) bool {
	return value == arg || strings.HasSuffix(value, "."+arg)
}

func primaryLine(evidence []extract.Signal) int {
	line := 0
	for _, s := range evidence {
		if s.Line > 0 && (line == 0 || s.Line < line) {
			line = s.Line
		}
	}
	return line
}

// expandTemplate fills remediation placeholders from the evidence signals.
// Placeholders with no witness render as "?" rather than failing the match.
func expandTemplate(tmpl string, evidence []extract.Signal, unit *extract.SourceUnit) string {
	if tmpl == "" {
		return ""
	}

	values := map[string]string{
		"call": "?", "function": "?", "decorator": "?", "import": "?",
		"file": unit.Path,
	}
	for _, s := range evidence {
		switch s.Kind {
		case extract.KindCallSite:
			setIfUnset(values, "call", s.Value)
		case extract.KindDecorator:
			setIfUnset(values, "decorator", s.Value)
		case extract.KindImport:
			setIfUnset(values, "import", s.Value)
		case extract.KindFunctionDef, extract.KindAsyncFunction:
			setIfUnset(values, "function", s.Value)
		}
		if s.Function != "" {
			setIfUnset(values, "function", s.Function)
		}
	}

	out := tmpl
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

func setIfUnset(values map[string]string, key, value string) {
	if values[key] == "?" {
		values[key] = value
	}
}

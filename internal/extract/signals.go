// Package extract turns raw source text into a normalized signal set that
// rule predicates can query without re-parsing. Recognition is deliberately
// lightweight and line-oriented: enough structure for heuristic matching,
// nothing like full semantic analysis.
package extract

// Kind identifies the type of a structural fact.
type Kind string

const (
	KindImport        Kind = "import_present"
	KindDecorator     Kind = "decorator_present"
	KindFunctionDef   Kind = "function_def"
	KindAsyncFunction Kind = "function_is_async"
	KindCallSite      Kind = "call_site"
)

// TermAsyncFunction is the argument-free predicate alias for an async
// function definition, e.g. "call_site(requests.get) within async_function".
const TermAsyncFunction = "async_function"

// TermSpec bounds the argument count a predicate term may carry.
type TermSpec struct {
	MinArgs, MaxArgs int
}

// Vocabulary lists every signal name a predicate may reference. Rules naming
// anything else are rejected at catalog-load time.
var Vocabulary = map[string]TermSpec{
	string(KindImport):        {MinArgs: 1, MaxArgs: 1},
	string(KindDecorator):     {MinArgs: 1, MaxArgs: 1},
	string(KindFunctionDef):   {MinArgs: 0, MaxArgs: 1},
	string(KindAsyncFunction): {MinArgs: 0, MaxArgs: 1},
	string(KindCallSite):      {MinArgs: 1, MaxArgs: 1},
	TermAsyncFunction:         {MinArgs: 0, MaxArgs: 0},
}

// FunctionTerms are the signal names allowed as the scope of "within".
var FunctionTerms = map[string]bool{
	string(KindFunctionDef):   true,
	string(KindAsyncFunction): true,
	TermAsyncFunction:         true,
}

// Signal is one typed structural fact pulled from a source unit.
type Signal struct {
	Kind     Kind   `json:"kind"`
	Value    string `json:"value"`              // import path, decorator name, function name, or callee
	Function string `json:"function,omitempty"` // enclosing or attached function, "" at module level
	Line     int    `json:"line"`
}

// SourceUnit is one analyzed file: raw text plus the extracted signal set.
// Units are immutable after extraction and owned by the run that created them.
type SourceUnit struct {
	Path     string
	Raw      string
	Signals  []Signal
	Warnings []string
}

// ExtractionFailed reports whether extraction produced nothing usable: an
// empty signal set alongside at least one warning. Matching skips such units
// entirely, so a failed extraction can never fabricate a finding from the
// absence of signals.
func (u *SourceUnit) ExtractionFailed() bool {
	return len(u.Signals) == 0 && len(u.Warnings) > 0
}

// SignalsOf returns the unit's signals of one kind, in source order.
func (u *SourceUnit) SignalsOf(kind Kind) []Signal {
	var out []Signal
	for _, s := range u.Signals {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Imports returns the values of the unit's import signals.
func (u *SourceUnit) Imports() []string {
	var out []string
	for _, s := range u.Signals {
		if s.Kind == KindImport {
			out = append(out, s.Value)
		}
	}
	return out
}

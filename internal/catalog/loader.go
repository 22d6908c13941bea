package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/convlint/convlint/internal/extract"
	"github.com/convlint/convlint/pkg/shared/errors"
)

// Load reads and validates one catalog pack. Any invalid rule makes the whole
// load fail with a *errors.CatalogError listing every problem; no partial
// catalog is ever returned.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %q: %w", path, err)
	}
	return Parse(data, path)
}

// Parse validates a catalog pack held in memory. The path is used only for
// error reporting.
func Parse(data []byte, path string) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, errors.NewCatalogError(path, []errors.CatalogIssue{
			{Problem: fmt.Sprintf("malformed YAML: %v", err)},
		})
	}

	issues := validate(&c)
	if len(issues) > 0 {
		return nil, errors.NewCatalogError(path, issues)
	}
	return &c, nil
}

// LoadDir loads every *.yml / *.yaml catalog directly under dir. Catalog
// names must be unique across the directory.
func LoadDir(dir string) ([]*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogs home %q: %w", dir, err)
	}

	var catalogs []*Catalog
	byName := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		c, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := byName[c.Name]; ok {
			return nil, fmt.Errorf("catalog name %q defined in both %q and %q", c.Name, prev, path)
		}
		byName[c.Name] = path
		catalogs = append(catalogs, c)
	}

	sort.Slice(catalogs, func(i, j int) bool { return catalogs[i].Name < catalogs[j].Name })
	return catalogs, nil
}

func validate(c *Catalog) []errors.CatalogIssue {
	var issues []errors.CatalogIssue

	if c.Name == "" {
		issues = append(issues, errors.CatalogIssue{Problem: "missing catalog name"})
	}
	if c.Version == "" {
		issues = append(issues, errors.CatalogIssue{Problem: "missing catalog version"})
	}
	if len(c.Rules) == 0 {
		issues = append(issues, errors.CatalogIssue{Problem: "catalog defines no rules"})
	}

	seen := make(map[string]bool)
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.ID == "" {
			issues = append(issues, errors.CatalogIssue{Problem: fmt.Sprintf("rule #%d has no id", i+1)})
			continue
		}
		if seen[r.ID] {
			issues = append(issues, errors.CatalogIssue{RuleID: r.ID, Problem: "duplicate rule id"})
		}
		seen[r.ID] = true

		issues = append(issues, validateRule(r)...)
	}
	return issues
}

func validateRule(r *Rule) []errors.CatalogIssue {
	var issues []errors.CatalogIssue
	fail := func(format string, args ...interface{}) {
		issues = append(issues, errors.CatalogIssue{RuleID: r.ID, Problem: fmt.Sprintf(format, args...)})
	}

	if _, ok := ParseSeverity(string(r.Severity)); !ok {
		fail("unrecognized severity %q (want info, warn, or fail)", r.Severity)
	}
	if r.Title == "" {
		fail("missing title")
	}
	for _, sig := range r.TriggerSignatures {
		if strings.TrimSpace(sig) == "" {
			fail("empty trigger signature")
			continue
		}
		// alias-shaped entries must name a known alias; a typo here would
		// otherwise load cleanly and silently never trigger
		if _, ok := TriggerAliases[sig]; !ok && strings.Contains(sig, "_import") {
			fail("unknown trigger alias %q", sig)
		}
	}
	if r.Predicate == "" {
		fail("missing predicate")
		return issues
	}

	expr, err := ParsePredicate(r.Predicate)
	if err != nil {
		fail("invalid predicate: %v", err)
		return issues
	}

	for _, term := range Terms(expr) {
		spec, ok := extract.Vocabulary[term.Name]
		if !ok {
			fail("predicate references unknown signal %q", term.Name)
			continue
		}
		if len(term.Args) < spec.MinArgs || len(term.Args) > spec.MaxArgs {
			fail("signal %q takes %d to %d argument(s), got %d", term.Name, spec.MinArgs, spec.MaxArgs, len(term.Args))
		}
	}
	for _, sub := range withinNodes(expr) {
		if !extract.FunctionTerms[sub.Scope.Name] {
			fail("'within' scope must be a function signal, got %q", sub.Scope.Name)
			break
		}
	}

	if len(issues) == 0 {
		r.compiled = expr
	}
	return issues
}

func withinNodes(e Expr) []*Within {
	var out []*Within
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Within:
			out = append(out, n)
		case *Not:
			walk(n.X)
		case *And:
			walk(n.L)
			walk(n.R)
		case *Or:
			walk(n.L)
			walk(n.R)
		}
	}
	walk(e)
	return out
}

package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	rePyImport  = regexp.MustCompile(`^import\s+([\w\. ,]+)$`)
	rePyFrom    = regexp.MustCompile(`^from\s+([\w\.]+)\s+import\s+(.+)$`)
	reJSImport  = regexp.MustCompile(`^import\s+.*?\bfrom\s+['"]([^'"]+)['"]`)
	reRequire   = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	rePyDef     = regexp.MustCompile(`^(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	reJSFunc    = regexp.MustCompile(`^(async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`)
	reDecorator = regexp.MustCompile(`^@([\w\.]+)`)
	reCallSite  = regexp.MustCompile(`([A-Za-z_][\w\.]*)\s*\(`)
)

// Control keywords that look like call sites on a line scan.
var notCallees = map[string]bool{
	"if": true, "elif": true, "while": true, "for": true, "return": true,
	"with": true, "except": true, "assert": true, "lambda": true,
	"switch": true, "catch": true, "not": true, "and": true, "or": true,
	"in": true, "class": true, "def": true, "function": true, "await": true,
	"raise": true, "yield": true,
}

type funcFrame struct {
	indent int
	name   string
}

// Extract performs lightweight structural recognition on one file. It never
// fails: unsupported or malformed constructs degrade to a partial signal set
// plus recorded warnings, so one bad file cannot block a batch. Extraction is
// a pure function of its inputs and safe to run concurrently.
func Extract(path, raw string) *SourceUnit {
	unit := &SourceUnit{Path: path, Raw: raw}

	if !utf8.ValidString(raw) {
		unit.Warnings = append(unit.Warnings, "content is not valid UTF-8; no signals extracted")
		return unit
	}

	var stack []funcFrame
	var pending []Signal // decorators awaiting a function definition

	flushPending := func() {
		if len(pending) == 0 {
			return
		}
		for _, d := range pending {
			unit.Warnings = append(unit.Warnings,
				fmt.Sprintf("decorator %q at line %d is not attached to a function", d.Value, d.Line))
			unit.Signals = append(unit.Signals, d)
		}
		pending = pending[:0]
	}

	for i, line := range strings.Split(raw, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}

		indent := indentWidth(line)
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		enclosing := ""
		if len(stack) > 0 {
			enclosing = stack[len(stack)-1].name
		}

		if m := reDecorator.FindStringSubmatch(trimmed); m != nil {
			pending = append(pending, Signal{Kind: KindDecorator, Value: m[1], Line: lineNo})
			continue
		}

		if name, async, ok := matchFunctionDef(trimmed); ok {
			unit.Signals = append(unit.Signals, Signal{Kind: KindFunctionDef, Value: name, Function: enclosing, Line: lineNo})
			if async {
				unit.Signals = append(unit.Signals, Signal{Kind: KindAsyncFunction, Value: name, Function: enclosing, Line: lineNo})
			}
			for _, d := range pending {
				d.Function = name
				unit.Signals = append(unit.Signals, d)
			}
			pending = pending[:0]
			stack = append(stack, funcFrame{indent: indent, name: name})
			continue
		}

		// anything else interrupts a pending decorator chain
		flushPending()

		if extractImports(unit, trimmed, lineNo) {
			continue
		}
		extractCallSites(unit, trimmed, enclosing, lineNo)
	}
	flushPending()

	return unit
}

func matchFunctionDef(trimmed string) (name string, async bool, ok bool) {
	if m := rePyDef.FindStringSubmatch(trimmed); m != nil {
		return m[2], m[1] != "", true
	}
	if m := reJSFunc.FindStringSubmatch(trimmed); m != nil {
		return m[2], m[1] != "", true
	}
	return "", false, false
}

func extractImports(unit *SourceUnit, trimmed string, lineNo int) bool {
	if m := rePyFrom.FindStringSubmatch(trimmed); m != nil {
		module := m[1]
		unit.Signals = append(unit.Signals, Signal{Kind: KindImport, Value: module, Line: lineNo})
		for _, sym := range strings.Split(m[2], ",") {
			sym = strings.TrimSpace(sym)
			if idx := strings.Index(sym, " as "); idx >= 0 {
				sym = strings.TrimSpace(sym[:idx])
			}
			if sym == "" || sym == "*" {
				continue
			}
			unit.Signals = append(unit.Signals, Signal{Kind: KindImport, Value: module + "." + sym, Line: lineNo})
		}
		return true
	}
	if m := reJSImport.FindStringSubmatch(trimmed); m != nil {
		unit.Signals = append(unit.Signals, Signal{Kind: KindImport, Value: m[1], Line: lineNo})
		return true
	}
	if m := rePyImport.FindStringSubmatch(trimmed); m != nil {
		for _, module := range strings.Split(m[1], ",") {
			module = strings.TrimSpace(module)
			if idx := strings.Index(module, " as "); idx >= 0 {
				module = strings.TrimSpace(module[:idx])
			}
			if module != "" {
				unit.Signals = append(unit.Signals, Signal{Kind: KindImport, Value: module, Line: lineNo})
			}
		}
		return true
	}
	if m := reRequire.FindStringSubmatch(trimmed); m != nil {
		unit.Signals = append(unit.Signals, Signal{Kind: KindImport, Value: m[1], Line: lineNo})
		return true
	}
	return false
}

func extractCallSites(unit *SourceUnit, trimmed, enclosing string, lineNo int) {
	for _, m := range reCallSite.FindAllStringSubmatch(trimmed, -1) {
		callee := m[1]
		base := callee
		if idx := strings.Index(base, "."); idx >= 0 {
			base = base[:idx]
		}
		if notCallees[callee] || notCallees[base] {
			continue
		}
		unit.Signals = append(unit.Signals, Signal{Kind: KindCallSite, Value: callee, Function: enclosing, Line: lineNo})
	}
}

// indentWidth counts leading whitespace, expanding tabs to four columns.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

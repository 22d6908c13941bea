package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// Expr is a compiled predicate over a source unit's signal set.
//
// Grammar:
//
//	expr    := orExpr
//	orExpr  := andExpr { "or" andExpr }
//	andExpr := unary { "and" unary }
//	unary   := "not" unary | primary
//	primary := "(" expr ")" | term [ "within" term ]
//	term    := IDENT [ "(" arg { "," arg } ")" ]
type Expr interface {
	exprNode()
}

// Term references a signal by name, e.g. call_site(requests.get).
type Term struct {
	Name string
	Args []string
}

// Within restricts Inner to signals occurring inside a function matched by Scope.
type Within struct {
	Inner *Term
	Scope *Term
}

type Not struct{ X Expr }
type And struct{ L, R Expr }
type Or struct{ L, R Expr }

func (*Term) exprNode()   {}
func (*Within) exprNode() {}
func (*Not) exprNode()    {}
func (*And) exprNode()    {}
func (*Or) exprNode()     {}

// Terms returns every signal reference in the expression, in source order.
func Terms(e Expr) []*Term {
	var out []*Term
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Term:
			out = append(out, n)
		case *Within:
			out = append(out, n.Inner, n.Scope)
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

// ParsePredicate compiles a predicate specification string.
func ParsePredicate(src string) (Expr, error) {
	p := &predicateParser{src: src}
	p.next()
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok != tokenEOF {
		return nil, fmt.Errorf("unexpected %q after predicate", p.lit)
	}
	return expr, nil
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenLParen
	tokenRParen
	tokenComma
)

type predicateParser struct {
	src string
	pos int
	tok tokenKind
	lit string
	err error
}

func (p *predicateParser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok, p.lit = tokenEOF, ""
		return
	}
	c := p.src[p.pos]
	switch c {
	case '(':
		p.pos++
		p.tok, p.lit = tokenLParen, "("
		return
	case ')':
		p.pos++
		p.tok, p.lit = tokenRParen, ")"
		return
	case ',':
		p.pos++
		p.tok, p.lit = tokenComma, ","
		return
	case '\'', '"':
		quote := c
		end := p.pos + 1
		for end < len(p.src) && p.src[end] != quote {
			end++
		}
		if end >= len(p.src) {
			p.err = fmt.Errorf("unterminated string starting at offset %d", p.pos)
			p.tok, p.lit = tokenEOF, ""
			return
		}
		p.tok, p.lit = tokenIdent, p.src[p.pos+1:end]
		p.pos = end + 1
		return
	}
	if isIdentChar(c) {
		end := p.pos
		for end < len(p.src) && isIdentChar(p.src[end]) {
			end++
		}
		p.tok, p.lit = tokenIdent, p.src[p.pos:end]
		p.pos = end
		return
	}
	p.err = fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	p.tok, p.lit = tokenEOF, ""
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' || c == '/' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *predicateParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok == tokenIdent && strings.EqualFold(p.lit, "or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{L: left, R: right}
	}
	return left, nil
}

func (p *predicateParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok == tokenIdent && strings.EqualFold(p.lit, "and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{L: left, R: right}
	}
	return left, nil
}

func (p *predicateParser) parseUnary() (Expr, error) {
	if p.tok == tokenIdent && strings.EqualFold(p.lit, "not") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *predicateParser) parsePrimary() (Expr, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok == tokenLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok != tokenRParen {
			return nil, fmt.Errorf("expected ')' but found %q", p.lit)
		}
		p.next()
		return inner, nil
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.tok == tokenIdent && strings.EqualFold(p.lit, "within") {
		p.next()
		scope, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &Within{Inner: term, Scope: scope}, nil
	}
	return term, nil
}

func (p *predicateParser) parseTerm() (*Term, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok != tokenIdent {
		return nil, fmt.Errorf("expected signal name but found %q", p.lit)
	}
	term := &Term{Name: p.lit}
	p.next()
	if p.tok != tokenLParen {
		return term, nil
	}
	p.next()
	if p.tok == tokenRParen {
		p.next()
		return term, nil
	}
	for {
		if p.tok != tokenIdent {
			return nil, fmt.Errorf("expected argument in %s(...) but found %q", term.Name, p.lit)
		}
		term.Args = append(term.Args, p.lit)
		p.next()
		if p.tok == tokenComma {
			p.next()
			continue
		}
		break
	}
	if p.tok != tokenRParen {
		return nil, fmt.Errorf("expected ')' closing %s(...) but found %q", term.Name, p.lit)
	}
	p.next()
	return term, nil
}

// Package solidity parses Solidity source units into a syntax tree.
//
// The parser covers what call-graph extraction needs: container declarations
// (contract, abstract contract, interface, library), their function-like
// members, and full statement and expression bodies. Inline assembly is kept
// opaque and type declarations (structs, enums, events, errors, state
// variables) are skipped.
//
// # Usage
//
//	unit, err := solidity.Parse(src, solidity.Options{Loc: true})
//	if err != nil {
//	    // *ParseError or *LexError
//	}
//	for _, c := range unit.Contracts {
//	    for _, fn := range c.Functions {
//	        solidity.Inspect(fn, func(n solidity.Node) bool { ... })
//	    }
//	}
//
// # Grammar Overview
//
//	unit      → { pragma | import | container | function | skipped ';' }
//	container → [abstract] (contract|interface|library) IDENT [is bases] '{' member* '}'
//	member    → function | constructor | fallback | receive | modifier | skipped
//	function  → head '(' params ')' header* [returns '(' params ')'] (';' | block)
//
// Statements and expressions are in parser_stmt.go and parser_expr.go.
package solidity

import (
	"fmt"
)

// Options configures parsing.
type Options struct {
	// Loc attaches a Span to every node. Without it, Loc() is nil
	// everywhere.
	Loc bool
}

// Parser parses a token stream into a SourceUnit. It keeps the whole token
// slice so declaration-versus-expression ambiguities can be resolved by
// backtracking.
type Parser struct {
	toks []Token
	pos  int
	opts Options
}

// bailout carries a ParseError up to Parse.
type bailout struct{ err *ParseError }

// Parse parses src into a SourceUnit.
func Parse(src string, opts Options) (unit *SourceUnit, err error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, opts: opts}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			unit, err = nil, b.err
		}
	}()
	return p.parseSourceUnit(), nil
}

// ---------- Token Helpers ----------

func (p *Parser) token() Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) prev() Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) next() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

// is reports whether the current token is the punctuator or identifier lit.
func (p *Parser) is(lit string) bool {
	t := p.token()
	return (t.Type == PUNCT || t.Type == IDENT) && t.Literal == lit
}

func (p *Parser) peekIs(n int, lit string) bool {
	t := p.peekAt(n)
	return (t.Type == PUNCT || t.Type == IDENT) && t.Literal == lit
}

func (p *Parser) match(lit string) bool {
	if p.is(lit) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(lit string) Token {
	if !p.is(lit) {
		p.errorf(ErrUnexpectedToken, p.token(), fmt.Sprintf("%q", lit))
	}
	return p.next()
}

func (p *Parser) expectIdent() Token {
	if p.token().Type != IDENT {
		p.errorf(ErrUnexpectedToken, p.token(), "identifier")
	}
	return p.next()
}

func (p *Parser) errorf(format string, args ...any) {
	panic(bailout{&ParseError{Pos: p.token().Pos, Message: fmt.Sprintf(format, args...)}})
}

// span builds the location of a node that started at start and ends with
// the most recently consumed token.
func (p *Parser) span(start Token) NodeInfo {
	if !p.opts.Loc {
		return NodeInfo{}
	}
	return NodeInfo{Span: &Span{Start: start.Pos, End: p.prev().End}}
}

// speculate runs fn and rewinds when it fails.
func (p *Parser) speculate(fn func()) (ok bool) {
	save := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			p.pos = save
			ok = false
		}
	}()
	fn()
	return true
}

// skipBalanced consumes a bracketed group starting at the current opening
// token, including its closing token.
func (p *Parser) skipBalanced() {
	open := p.token()
	var stack []string
	for {
		t := p.next()
		if t.Type == EOF {
			panic(bailout{&ParseError{Pos: open.Pos, Message: fmt.Sprintf(ErrUnbalanced, open)}})
		}
		if t.Type != PUNCT {
			continue
		}
		switch t.Literal {
		case "(":
			stack = append(stack, ")")
		case "[":
			stack = append(stack, "]")
		case "{":
			stack = append(stack, "}")
		case ")", "]", "}":
			if len(stack) == 0 || stack[len(stack)-1] != t.Literal {
				panic(bailout{&ParseError{Pos: t.Pos, Message: fmt.Sprintf(ErrUnbalanced, open)}})
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return
		}
	}
}

// skipPast consumes tokens up to and including the next ';' outside any
// bracketed group.
func (p *Parser) skipPast(lit string) {
	for !p.is(lit) {
		t := p.token()
		if t.Type == EOF {
			p.errorf(ErrUnexpectedToken, t, fmt.Sprintf("%q", lit))
		}
		if t.Type == PUNCT && (t.Literal == "(" || t.Literal == "[" || t.Literal == "{") {
			p.skipBalanced()
			continue
		}
		if t.Type == PUNCT && (t.Literal == ")" || t.Literal == "]" || t.Literal == "}") {
			p.errorf(ErrUnbalanced, t)
		}
		p.next()
	}
	p.next()
}

// ---------- Declarations ----------

func (p *Parser) parseSourceUnit() *SourceUnit {
	start := p.token()
	unit := &SourceUnit{}
	for p.token().Type != EOF {
		switch {
		case p.is("pragma"):
			begin := p.pos
			p.skipPast(";")
			unit.Pragmas = append(unit.Pragmas, p.joinTokens(begin+1, p.pos-1))
		case p.is("import"):
			begin := p.pos
			p.skipPast(";")
			unit.Imports = append(unit.Imports, p.joinTokens(begin+1, p.pos-1))
		case p.is("abstract"), p.is("contract"), p.is("interface"), p.is("library"):
			unit.Contracts = append(unit.Contracts, p.parseContract())
		case p.is("function"):
			if fn := p.parseFunction(); fn != nil {
				unit.Functions = append(unit.Functions, fn)
			}
		case p.is("struct"), p.is("enum"):
			p.skipTypeBody()
		case p.is(";"):
			p.next()
		default:
			// events, errors, using directives, constants and user
			// defined value types
			p.skipPast(";")
		}
	}
	unit.NodeInfo = p.span(start)
	return unit
}

func (p *Parser) joinTokens(from, to int) string {
	var s string
	for i := from; i < to && i < len(p.toks); i++ {
		if i > from {
			s += " "
		}
		s += p.toks[i].Literal
	}
	return s
}

// skipTypeBody skips `struct Name { ... }` or `enum Name { ... }`.
func (p *Parser) skipTypeBody() {
	p.next()
	p.expectIdent()
	if !p.is("{") {
		p.errorf(ErrUnexpectedToken, p.token(), `"{"`)
	}
	p.skipBalanced()
}

func (p *Parser) parseContract() *ContractDefinition {
	start := p.token()
	c := &ContractDefinition{}
	if p.match("abstract") {
		c.Abstract = true
	}
	switch kw := p.next(); kw.Literal {
	case "contract":
		c.Kind = KindContract
	case "interface":
		c.Kind = KindInterface
	case "library":
		c.Kind = KindLibrary
	default:
		p.pos--
		p.errorf(ErrUnexpectedToken, kw, "contract, interface or library")
	}
	c.Name = p.expectIdent().Literal

	if p.match("is") {
		for {
			base := p.expectIdent().Literal
			for p.match(".") {
				base += "." + p.expectIdent().Literal
			}
			c.Bases = append(c.Bases, base)
			if p.is("(") {
				p.skipBalanced()
			}
			if !p.match(",") {
				break
			}
		}
	}
	// storage layout specifiers and anything else up to the body
	for !p.is("{") {
		if p.token().Type == EOF {
			p.errorf(ErrUnexpectedToken, p.token(), `"{"`)
		}
		if p.is("(") || p.is("[") {
			p.skipBalanced()
			continue
		}
		p.next()
	}
	p.expect("{")

	for !p.is("}") {
		switch {
		case p.token().Type == EOF:
			p.errorf(ErrUnexpectedToken, p.token(), `"}"`)
		case p.is("function"), p.is("constructor"),
			(p.is("fallback") || p.is("receive")) && p.peekIs(1, "("):
			if fn := p.parseFunction(); fn != nil {
				c.Functions = append(c.Functions, fn)
			}
		case p.is("modifier"):
			c.Modifiers = append(c.Modifiers, p.parseModifier())
		case p.is("struct"), p.is("enum"):
			p.skipTypeBody()
		case p.is(";"):
			p.next()
		default:
			// state variables, events, errors, using directives
			p.skipPast(";")
		}
	}
	p.expect("}")
	c.NodeInfo = p.span(start)
	return c
}

// parseFunction parses a function-like member. It returns nil when the
// `function` keyword turned out to introduce a state variable of function
// type.
func (p *Parser) parseFunction() *FunctionDefinition {
	start := p.token()
	fn := &FunctionDefinition{}
	switch kw := p.next(); kw.Literal {
	case "constructor":
		fn.IsConstructor = true
	case "fallback":
		fn.IsFallback = true
	case "receive":
		fn.IsReceive = true
	default:
		if p.token().Type == IDENT {
			fn.Name = p.next().Literal
		} else {
			// pre-0.6 unnamed fallback
			fn.IsFallback = true
		}
	}
	if !p.is("(") {
		p.errorf(ErrUnexpectedToken, p.token(), `"("`)
	}
	p.skipBalanced()

	for !p.is("{") && !p.is(";") {
		t := p.token()
		switch {
		case p.is("returns"):
			p.next()
			if !p.is("(") {
				p.errorf(ErrUnexpectedToken, p.token(), `"("`)
			}
			p.skipBalanced()
		case p.is("="):
			p.skipPast(";")
			return nil
		case t.Type == IDENT:
			p.parseHeaderWord(fn)
		default:
			p.errorf(ErrUnexpectedInHeader, t)
		}
	}
	if !p.match(";") {
		fn.Body = p.parseBlock()
	}
	fn.NodeInfo = p.span(start)
	return fn
}

func (p *Parser) parseHeaderWord(fn *FunctionDefinition) {
	word := p.token()
	switch word.Literal {
	case "public", "private", "internal", "external":
		fn.Visibility = p.next().Literal
		return
	case "pure", "view", "payable", "constant":
		fn.Mutability = p.next().Literal
		return
	case "virtual":
		p.next()
		fn.Virtual = true
		return
	}
	fn.Modifiers = append(fn.Modifiers, p.parseModifierInvocation())
}

func (p *Parser) parseModifierInvocation() *ModifierInvocation {
	start := p.token()
	m := &ModifierInvocation{Name: p.expectIdent().Literal}
	for p.match(".") {
		m.Name += "." + p.expectIdent().Literal
	}
	if p.is("(") {
		m.Args, _ = p.parseCallArgs()
	}
	m.NodeInfo = p.span(start)
	return m
}

func (p *Parser) parseModifier() *ModifierDefinition {
	start := p.expect("modifier")
	m := &ModifierDefinition{Name: p.expectIdent().Literal}
	if p.is("(") {
		p.skipBalanced()
	}
	for !p.is("{") && !p.is(";") {
		if p.token().Type != IDENT {
			p.errorf(ErrUnexpectedInHeader, p.token())
		}
		p.next()
		if p.is("(") {
			p.skipBalanced()
		}
	}
	if !p.match(";") {
		m.Body = p.parseBlock()
	}
	m.NodeInfo = p.span(start)
	return m
}

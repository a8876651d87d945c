package solidity

import "strings"

// Expression grammar, loosest binding first:
//
//	assign  → cond [assignop assign]
//	cond    → binary ['?' assign ':' assign]
//	binary  → unary {binop unary}          (precedence climbing, ** right-assoc)
//	unary   → prefixop unary | postfix
//	postfix → primary { '(' args ')' | '.' IDENT | '[' index ']' | '{' opts '}' | '++' | '--' }
//	primary → IDENT | literal | elementary type | new type | '(' tuple ')' | '[' array ']'

var assignOps = map[string]bool{
	"=": true, "|=": true, "^=": true, "&=": true, "<<=": true, ">>=": true,
	">>>=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"|":  5,
	"^":  6,
	"&":  7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

var prefixOps = map[string]bool{
	"!": true, "~": true, "-": true, "+": true, "++": true, "--": true, "delete": true,
}

func (p *Parser) parseExpr() Expr {
	start := p.token()
	lhs := p.parseConditional()
	if t := p.token(); t.Type == PUNCT && assignOps[t.Literal] {
		p.next()
		rhs := p.parseExpr()
		return &BinaryExpr{NodeInfo: p.span(start), Op: t.Literal, X: lhs, Y: rhs}
	}
	return lhs
}

func (p *Parser) parseConditional() Expr {
	start := p.token()
	cond := p.parseBinary(1)
	if !p.match("?") {
		return cond
	}
	then := p.parseExpr()
	p.expect(":")
	els := p.parseExpr()
	return &Conditional{NodeInfo: p.span(start), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseBinary(minPrec int) Expr {
	start := p.token()
	x := p.parseUnary()
	for {
		t := p.token()
		prec, ok := binaryPrec[t.Literal]
		if t.Type != PUNCT || !ok || prec < minPrec {
			return x
		}
		p.next()
		var y Expr
		if t.Literal == "**" {
			y = p.parseBinary(prec)
		} else {
			y = p.parseBinary(prec + 1)
		}
		x = &BinaryExpr{NodeInfo: p.span(start), Op: t.Literal, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() Expr {
	start := p.token()
	if (start.Type == PUNCT || start.Literal == "delete") && prefixOps[start.Literal] {
		p.next()
		x := p.parseUnary()
		return &UnaryExpr{NodeInfo: p.span(start), Op: start.Literal, X: x, Prefix: true}
	}
	return p.parsePostfix(p.parsePrimary(), start)
}

func (p *Parser) parsePostfix(x Expr, start Token) Expr {
	for {
		switch {
		case p.is("("):
			args, names := p.parseCallArgs()
			x = &FunctionCall{NodeInfo: p.span(start), Callee: x, Args: args, Names: names}
		case p.is("."):
			p.next()
			member := p.expectIdent().Literal
			x = &MemberAccess{NodeInfo: p.span(start), X: x, Member: member}
		case p.is("["):
			x = p.parseIndex(x, start)
		case p.is("{") && p.peekAt(1).Type == IDENT && p.peekIs(2, ":"):
			x = p.parseCallOptions(x, start)
		case p.is("++"), p.is("--"):
			op := p.next().Literal
			x = &UnaryExpr{NodeInfo: p.span(start), Op: op, X: x}
		default:
			return x
		}
	}
}

func (p *Parser) parseIndex(x Expr, start Token) Expr {
	p.expect("[")
	if p.match("]") {
		return &IndexAccess{NodeInfo: p.span(start), X: x}
	}
	var lo Expr
	if !p.is(":") {
		lo = p.parseExpr()
	}
	if p.match(":") {
		var hi Expr
		if !p.is("]") {
			hi = p.parseExpr()
		}
		p.expect("]")
		return &IndexRange{NodeInfo: p.span(start), X: x, Start: lo, End: hi}
	}
	p.expect("]")
	return &IndexAccess{NodeInfo: p.span(start), X: x, Index: lo}
}

func (p *Parser) parseCallOptions(x Expr, start Token) Expr {
	p.expect("{")
	opts := &CallOptions{X: x}
	for !p.is("}") {
		opts.Names = append(opts.Names, p.expectIdent().Literal)
		p.expect(":")
		opts.Values = append(opts.Values, p.parseExpr())
		if !p.is("}") {
			p.expect(",")
		}
	}
	p.expect("}")
	opts.NodeInfo = p.span(start)
	return opts
}

// parseCallArgs parses `(a, b)` or `({x: a, y: b})`.
func (p *Parser) parseCallArgs() (args []Expr, names []string) {
	p.expect("(")
	if p.match("{") {
		for !p.is("}") {
			names = append(names, p.expectIdent().Literal)
			p.expect(":")
			args = append(args, p.parseExpr())
			if !p.is("}") {
				p.expect(",")
			}
		}
		p.expect("}")
		p.expect(")")
		return args, names
	}
	for !p.is(")") {
		args = append(args, p.parseExpr())
		if !p.is(")") {
			p.expect(",")
		}
	}
	p.expect(")")
	return args, nil
}

func (p *Parser) parsePrimary() Expr {
	start := p.token()
	switch start.Type {
	case NUMBER:
		p.next()
		lit := &Literal{Kind: LitNumber, Value: start.Literal}
		if t := p.token(); t.Type == IDENT && numberUnits[t.Literal] {
			lit.Unit = p.next().Literal
		}
		lit.NodeInfo = p.span(start)
		return lit
	case STRING:
		p.next()
		parts := []string{start.Literal}
		for p.token().Type == STRING {
			parts = append(parts, p.next().Literal)
		}
		return &Literal{NodeInfo: p.span(start), Kind: LitString, Value: strings.Join(parts, " ")}
	case IDENT:
		return p.parseNamePrimary()
	case PUNCT:
		switch start.Literal {
		case "(":
			return p.parseTuple("(", ")", false)
		case "[":
			return p.parseTuple("[", "]", true)
		}
	}
	p.errorf(ErrExpectedExpression, start)
	return nil
}

func (p *Parser) parseNamePrimary() Expr {
	start := p.next()
	switch name := start.Literal; {
	case name == "true" || name == "false":
		return &Literal{NodeInfo: p.span(start), Kind: LitBool, Value: name}
	case name == "new":
		typ := p.expectIdent().Literal
		for p.match(".") {
			typ += "." + p.expectIdent().Literal
		}
		for p.is("[") && p.peekIs(1, "]") {
			p.next()
			p.next()
			typ += "[]"
		}
		return &NewExpr{NodeInfo: p.span(start), Type: typ}
	case isElementaryType(name):
		if name == "address" && p.match("payable") {
			name = "address payable"
		}
		return &ElementaryType{NodeInfo: p.span(start), Name: name}
	default:
		return &Identifier{NodeInfo: p.span(start), Name: name}
	}
}

func (p *Parser) parseTuple(open, closing string, isArray bool) Expr {
	start := p.expect(open)
	t := &TupleExpr{IsArray: isArray}
	if p.match(closing) {
		t.NodeInfo = p.span(start)
		return t
	}
	for {
		if p.is(",") || p.is(closing) {
			t.Elems = append(t.Elems, nil)
		} else {
			t.Elems = append(t.Elems, p.parseExpr())
		}
		if !p.match(",") {
			break
		}
	}
	p.expect(closing)
	t.NodeInfo = p.span(start)
	return t
}

func isElementaryType(name string) bool {
	switch name {
	case "address", "bool", "string", "bytes", "byte", "int", "uint", "fixed", "ufixed":
		return true
	}
	for _, prefix := range []string{"uint", "int", "bytes"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" && allDigits(rest) {
			return true
		}
	}
	for _, prefix := range []string{"ufixed", "fixed"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			if m, n, found := strings.Cut(rest, "x"); found && allDigits(m) && allDigits(n) && m != "" && n != "" {
				return true
			}
		}
	}
	return false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

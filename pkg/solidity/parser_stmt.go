package solidity

// Statement grammar:
//
//	stmt → block | if | for | while | do | return | emit | revert IDENT
//	     | try | unchecked block | assembly | break | continue | throw
//	     | vardecl | expr ';'
//
// Declarations and expressions share prefixes (`a[i] x;` against `a[i] = x;`),
// so declarations are tried first and rewound on failure.

func (p *Parser) parseBlock() *Block {
	start := p.expect("{")
	b := &Block{}
	for !p.is("}") {
		if p.token().Type == EOF {
			p.errorf(ErrUnexpectedToken, p.token(), `"}"`)
		}
		b.Statements = append(b.Statements, p.parseStatement())
	}
	p.expect("}")
	b.NodeInfo = p.span(start)
	return b
}

func (p *Parser) parseStatement() Stmt {
	start := p.token()
	switch {
	case p.is("{"):
		return p.parseBlock()
	case p.is(";"):
		p.next()
		return &SimpleStatement{NodeInfo: p.span(start)}
	case p.is("if"):
		return p.parseIf()
	case p.is("for"):
		return p.parseFor()
	case p.is("while"):
		p.next()
		p.expect("(")
		cond := p.parseExpr()
		p.expect(")")
		body := p.parseStatement()
		return &WhileStatement{NodeInfo: p.span(start), Cond: cond, Body: body}
	case p.is("do"):
		p.next()
		body := p.parseStatement()
		p.expect("while")
		p.expect("(")
		cond := p.parseExpr()
		p.expect(")")
		p.expect(";")
		return &DoWhileStatement{NodeInfo: p.span(start), Body: body, Cond: cond}
	case p.is("return"):
		p.next()
		var x Expr
		if !p.is(";") {
			x = p.parseExpr()
		}
		p.expect(";")
		return &ReturnStatement{NodeInfo: p.span(start), X: x}
	case p.is("emit"):
		p.next()
		call := p.parseExpr()
		p.expect(";")
		return &EmitStatement{NodeInfo: p.span(start), Call: call}
	case p.is("revert") && p.peekAt(1).Type == IDENT:
		p.next()
		call := p.parseExpr()
		p.expect(";")
		return &RevertStatement{NodeInfo: p.span(start), Call: call}
	case p.is("try"):
		return p.parseTry()
	case p.is("unchecked") && p.peekIs(1, "{"):
		p.next()
		b := p.parseBlock()
		b.Unchecked = true
		b.NodeInfo = p.span(start)
		return b
	case p.is("assembly"):
		return p.parseAssembly()
	case p.is("break"), p.is("continue"), p.is("throw"):
		kw := p.next().Literal
		p.expect(";")
		return &SimpleStatement{NodeInfo: p.span(start), Keyword: kw}
	case p.is("var"):
		return p.parseVarStatement()
	}
	if decl := p.tryVariableDeclaration(); decl != nil {
		return decl
	}
	x := p.parseExpr()
	p.expect(";")
	return &ExpressionStatement{NodeInfo: p.span(start), X: x}
}

func (p *Parser) parseIf() Stmt {
	start := p.expect("if")
	p.expect("(")
	cond := p.parseExpr()
	p.expect(")")
	s := &IfStatement{Cond: cond, Then: p.parseStatement()}
	if p.match("else") {
		s.Else = p.parseStatement()
	}
	s.NodeInfo = p.span(start)
	return s
}

func (p *Parser) parseFor() Stmt {
	start := p.expect("for")
	p.expect("(")
	s := &ForStatement{}
	if !p.match(";") {
		if decl := p.tryVariableDeclaration(); decl != nil {
			s.Init = decl
		} else {
			initStart := p.token()
			x := p.parseExpr()
			p.expect(";")
			s.Init = &ExpressionStatement{NodeInfo: p.span(initStart), X: x}
		}
	}
	if !p.is(";") {
		s.Cond = p.parseExpr()
	}
	p.expect(";")
	if !p.is(")") {
		s.Post = p.parseExpr()
	}
	p.expect(")")
	s.Body = p.parseStatement()
	s.NodeInfo = p.span(start)
	return s
}

func (p *Parser) parseTry() Stmt {
	start := p.expect("try")
	s := &TryStatement{Call: p.parseExpr()}
	if p.match("returns") {
		if !p.is("(") {
			p.errorf(ErrUnexpectedToken, p.token(), `"("`)
		}
		p.skipBalanced()
	}
	s.Body = p.parseBlock()
	for p.is("catch") {
		cstart := p.next()
		c := &CatchClause{}
		if p.token().Type == IDENT {
			c.Kind = p.next().Literal
		}
		if p.is("(") {
			p.skipBalanced()
		}
		c.Body = p.parseBlock()
		c.NodeInfo = p.span(cstart)
		s.Catches = append(s.Catches, c)
	}
	s.NodeInfo = p.span(start)
	return s
}

// parseAssembly skips `assembly ["evmasm"] [(flags)] { ... }`.
func (p *Parser) parseAssembly() Stmt {
	start := p.expect("assembly")
	if p.token().Type == STRING {
		p.next()
	}
	if p.is("(") {
		p.skipBalanced()
	}
	if !p.is("{") {
		p.errorf(ErrUnexpectedToken, p.token(), `"{"`)
	}
	p.skipBalanced()
	return &AssemblyStatement{NodeInfo: p.span(start)}
}

// parseVarStatement parses the legacy `var x = e;` and `var (a, b) = e;`.
func (p *Parser) parseVarStatement() Stmt {
	start := p.expect("var")
	s := &VariableDeclarationStatement{}
	if p.match("(") {
		for !p.is(")") {
			if p.match(",") {
				s.Names = append(s.Names, "")
				continue
			}
			s.Names = append(s.Names, p.expectIdent().Literal)
			if !p.is(")") {
				p.expect(",")
			}
		}
		p.expect(")")
	} else {
		s.Names = append(s.Names, p.expectIdent().Literal)
	}
	if p.match("=") {
		s.Init = p.parseExpr()
	}
	p.expect(";")
	s.NodeInfo = p.span(start)
	return s
}

// tryVariableDeclaration parses a local declaration ending in ';', or
// rewinds and returns nil.
func (p *Parser) tryVariableDeclaration() Stmt {
	start := p.token()
	var s *VariableDeclarationStatement
	ok := p.speculate(func() {
		s = &VariableDeclarationStatement{}
		if p.is("(") {
			p.next()
			for !p.is(")") {
				if p.match(",") {
					s.Names = append(s.Names, "")
					continue
				}
				s.Names = append(s.Names, p.parseTypedName())
				if !p.is(")") {
					p.expect(",")
				}
			}
			p.expect(")")
			p.expect("=")
			s.Init = p.parseExpr()
			p.expect(";")
			return
		}
		s.Names = []string{p.parseTypedName()}
		if p.match("=") {
			s.Init = p.parseExpr()
		}
		p.expect(";")
	})
	if !ok {
		return nil
	}
	s.NodeInfo = p.span(start)
	return s
}

// parseTypedName parses `Type [location] name` and returns name.
func (p *Parser) parseTypedName() string {
	p.parseTypeName()
	for p.is("memory") || p.is("storage") || p.is("calldata") || p.is("transient") {
		p.next()
	}
	return p.expectIdent().Literal
}

// nonTypeWords can never start a type name.
var nonTypeWords = map[string]bool{
	"delete": true, "new": true, "true": true, "false": true, "this": true,
	"super": true, "type": true, "return": true, "emit": true, "payable": true,
}

func (p *Parser) parseTypeName() {
	t := p.token()
	switch {
	case p.is("mapping"):
		p.next()
		if !p.is("(") {
			p.errorf(ErrUnexpectedToken, p.token(), `"("`)
		}
		p.skipBalanced()
	case p.is("function"):
		p.next()
		if !p.is("(") {
			p.errorf(ErrUnexpectedToken, p.token(), `"("`)
		}
		p.skipBalanced()
		for p.is("internal") || p.is("external") || p.is("pure") || p.is("view") || p.is("payable") {
			p.next()
		}
		if p.match("returns") {
			if !p.is("(") {
				p.errorf(ErrUnexpectedToken, p.token(), `"("`)
			}
			p.skipBalanced()
		}
	case t.Type == IDENT && !nonTypeWords[t.Literal]:
		p.next()
		if t.Literal == "address" {
			p.match("payable")
		}
		for p.match(".") {
			p.expectIdent()
		}
	default:
		p.errorf(ErrUnexpectedToken, t, "type name")
	}
	for p.is("[") {
		p.next()
		if !p.is("]") {
			p.parseExpr()
		}
		p.expect("]")
	}
}

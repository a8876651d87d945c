package solidity

import "fmt"

// Inspect traverses the tree rooted at node in depth-first pre-order. It
// calls f(node); when f returns true, Inspect visits each child of node and
// then calls f(nil).
func Inspect(node Node, f func(Node) bool) {
	if isNil(node) || !f(node) {
		return
	}

	switch n := node.(type) {
	case *SourceUnit:
		for _, c := range n.Contracts {
			Inspect(c, f)
		}
		for _, fn := range n.Functions {
			Inspect(fn, f)
		}
	case *ContractDefinition:
		for _, fn := range n.Functions {
			Inspect(fn, f)
		}
		for _, m := range n.Modifiers {
			Inspect(m, f)
		}
	case *FunctionDefinition:
		for _, m := range n.Modifiers {
			Inspect(m, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ModifierDefinition:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ModifierInvocation:
		inspectExprs(n.Args, f)

	// statements
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *ExpressionStatement:
		Inspect(n.X, f)
	case *VariableDeclarationStatement:
		Inspect(n.Init, f)
	case *IfStatement:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *ForStatement:
		Inspect(n.Init, f)
		Inspect(n.Cond, f)
		Inspect(n.Post, f)
		Inspect(n.Body, f)
	case *WhileStatement:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *DoWhileStatement:
		Inspect(n.Body, f)
		Inspect(n.Cond, f)
	case *ReturnStatement:
		Inspect(n.X, f)
	case *EmitStatement:
		Inspect(n.Call, f)
	case *RevertStatement:
		Inspect(n.Call, f)
	case *TryStatement:
		Inspect(n.Call, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
		for _, c := range n.Catches {
			Inspect(c, f)
		}
	case *CatchClause:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *AssemblyStatement, *SimpleStatement:
		// leaves

	// expressions
	case *MemberAccess:
		Inspect(n.X, f)
	case *FunctionCall:
		Inspect(n.Callee, f)
		inspectExprs(n.Args, f)
	case *CallOptions:
		Inspect(n.X, f)
		inspectExprs(n.Values, f)
	case *IndexAccess:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *IndexRange:
		Inspect(n.X, f)
		Inspect(n.Start, f)
		Inspect(n.End, f)
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *Conditional:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *TupleExpr:
		inspectExprs(n.Elems, f)
	case *Identifier, *NewExpr, *ElementaryType, *Literal:
		// leaves

	default:
		panic(fmt.Sprintf("solidity.Inspect: unexpected node type %T", n))
	}

	f(nil)
}

func inspectExprs(list []Expr, f func(Node) bool) {
	for _, x := range list {
		Inspect(x, f)
	}
}

// isNil reports whether node is nil or a typed nil pointer.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *Block:
		return n == nil
	case *FunctionDefinition:
		return n == nil
	}
	return false
}

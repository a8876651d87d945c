package solidity

// Node is implemented by every syntax tree node.
type Node interface {
	// Loc returns the node's source range, or nil when the tree was parsed
	// without location tracking.
	Loc() *Span
}

// Stmt is a statement inside a function or modifier body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression. The set of implementations is closed.
type Expr interface {
	Node
	exprNode()
}

// NodeInfo provides common fields for all AST nodes.
type NodeInfo struct {
	Span *Span
}

// Loc implements Node.
func (n *NodeInfo) Loc() *Span { return n.Span }

// ---------- Declarations ----------

// SourceUnit is one parsed file.
type SourceUnit struct {
	NodeInfo
	Pragmas   []string
	Imports   []string
	Contracts []*ContractDefinition
	Functions []*FunctionDefinition // free functions outside any container
}

// ContractKind is the declared kind of a container.
type ContractKind string

// ContractKind values as written in source.
const (
	KindContract  ContractKind = "contract"
	KindInterface ContractKind = "interface"
	KindLibrary   ContractKind = "library"
)

// ContractDefinition is a contract, interface or library.
type ContractDefinition struct {
	NodeInfo
	Name      string
	Kind      ContractKind
	Abstract  bool
	Bases     []string
	Functions []*FunctionDefinition
	Modifiers []*ModifierDefinition
}

// FunctionDefinition is a function-like member: a named function, a
// constructor, a fallback or a receive function.
type FunctionDefinition struct {
	NodeInfo
	Name          string
	IsConstructor bool
	IsFallback    bool
	IsReceive     bool
	Visibility    string
	Mutability    string
	Virtual       bool
	Modifiers     []*ModifierInvocation
	Body          *Block // nil for declarations without implementation
}

// ModifierDefinition is a `modifier` member.
type ModifierDefinition struct {
	NodeInfo
	Name string
	Body *Block
}

// ModifierInvocation is a modifier, override list or base constructor call
// in a function header.
type ModifierInvocation struct {
	NodeInfo
	Name string
	Args []Expr
}

// ---------- Statements ----------

// Block is a braced statement list.
type Block struct {
	NodeInfo
	Unchecked  bool
	Statements []Stmt
}

// ExpressionStatement is an expression evaluated for its effects.
type ExpressionStatement struct {
	NodeInfo
	X Expr
}

// VariableDeclarationStatement declares one or more local variables.
type VariableDeclarationStatement struct {
	NodeInfo
	Names []string // empty strings stand for omitted tuple components
	Init  Expr     // may be nil
}

// IfStatement is an if/else.
type IfStatement struct {
	NodeInfo
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

// ForStatement is a C-style for loop. Any clause may be nil.
type ForStatement struct {
	NodeInfo
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
}

// WhileStatement is a while loop.
type WhileStatement struct {
	NodeInfo
	Cond Expr
	Body Stmt
}

// DoWhileStatement is a do/while loop.
type DoWhileStatement struct {
	NodeInfo
	Body Stmt
	Cond Expr
}

// ReturnStatement returns from a function. X may be nil.
type ReturnStatement struct {
	NodeInfo
	X Expr
}

// EmitStatement emits an event.
type EmitStatement struct {
	NodeInfo
	Call Expr
}

// RevertStatement reverts with a custom error.
type RevertStatement struct {
	NodeInfo
	Call Expr
}

// TryStatement is a try/catch over an external call.
type TryStatement struct {
	NodeInfo
	Call    Expr
	Body    *Block
	Catches []*CatchClause
}

// CatchClause is one catch arm of a try statement.
type CatchClause struct {
	NodeInfo
	Kind string // "", "Error" or "Panic"
	Body *Block
}

// AssemblyStatement is an inline assembly block. Its body is kept opaque.
type AssemblyStatement struct {
	NodeInfo
}

// SimpleStatement is break, continue, throw or an empty statement.
type SimpleStatement struct {
	NodeInfo
	Keyword string
}

func (*Block) stmtNode()                        {}
func (*ExpressionStatement) stmtNode()          {}
func (*VariableDeclarationStatement) stmtNode() {}
func (*IfStatement) stmtNode()                  {}
func (*ForStatement) stmtNode()                 {}
func (*WhileStatement) stmtNode()               {}
func (*DoWhileStatement) stmtNode()             {}
func (*ReturnStatement) stmtNode()              {}
func (*EmitStatement) stmtNode()                {}
func (*RevertStatement) stmtNode()              {}
func (*TryStatement) stmtNode()                 {}
func (*AssemblyStatement) stmtNode()            {}
func (*SimpleStatement) stmtNode()              {}

// ---------- Expressions ----------

// Identifier is a bare name.
type Identifier struct {
	NodeInfo
	Name string
}

// MemberAccess is `X.Member`.
type MemberAccess struct {
	NodeInfo
	X      Expr
	Member string
}

// FunctionCall is `Callee(Args...)`. For named-argument calls Names holds
// the argument names in order.
type FunctionCall struct {
	NodeInfo
	Callee Expr
	Args   []Expr
	Names  []string
}

// CallOptions is `X{name: value, ...}`, e.g. `{value: msg.value}`.
type CallOptions struct {
	NodeInfo
	X      Expr
	Names  []string
	Values []Expr
}

// IndexAccess is `X[Index]`. Index is nil for the array type form `T[]`.
type IndexAccess struct {
	NodeInfo
	X     Expr
	Index Expr
}

// IndexRange is the slice `X[Start:End]`. Either bound may be nil.
type IndexRange struct {
	NodeInfo
	X     Expr
	Start Expr
	End   Expr
}

// NewExpr is `new T`.
type NewExpr struct {
	NodeInfo
	Type string
}

// ElementaryType is a built-in type name used as an expression, as in
// the conversion `uint256(x)`.
type ElementaryType struct {
	NodeInfo
	Name string
}

// LiteralKind classifies a Literal.
type LiteralKind string

// LiteralKind values.
const (
	LitNumber LiteralKind = "number"
	LitString LiteralKind = "string"
	LitBool   LiteralKind = "bool"
)

// Literal is a number, string or boolean literal.
type Literal struct {
	NodeInfo
	Kind  LiteralKind
	Value string
	Unit  string // denomination suffix, e.g. "ether"
}

// UnaryExpr is a prefix or postfix operation.
type UnaryExpr struct {
	NodeInfo
	Op     string
	X      Expr
	Prefix bool
}

// BinaryExpr is a binary operation, assignments included.
type BinaryExpr struct {
	NodeInfo
	Op string
	X  Expr
	Y  Expr
}

// Conditional is `Cond ? Then : Else`.
type Conditional struct {
	NodeInfo
	Cond Expr
	Then Expr
	Else Expr
}

// TupleExpr is a parenthesised list or, with IsArray, an inline array.
// Omitted components are nil.
type TupleExpr struct {
	NodeInfo
	Elems   []Expr
	IsArray bool
}

func (*Identifier) exprNode()     {}
func (*MemberAccess) exprNode()   {}
func (*FunctionCall) exprNode()   {}
func (*CallOptions) exprNode()    {}
func (*IndexAccess) exprNode()    {}
func (*IndexRange) exprNode()     {}
func (*NewExpr) exprNode()        {}
func (*ElementaryType) exprNode() {}
func (*Literal) exprNode()        {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*Conditional) exprNode()    {}
func (*TupleExpr) exprNode()      {}

package solidity

import "fmt"

// TokenType classifies a lexical token.
type TokenType int

// Token types. Keywords are lexed as IDENT and recognised by the parser,
// since most Solidity keywords are contextual.
const (
	EOF TokenType = iota
	ILLEGAL
	IDENT
	NUMBER
	STRING
	PUNCT
)

var tokenNames = [...]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	PUNCT:   "PUNCT",
}

// String implements fmt.Stringer.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in source text. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the source range of a node, from the first character of its first
// token to the last character of its last token.
type Span struct {
	Start Position
	End   Position
}

// Token is a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position // first character
	End     Position // last character
}

// String implements fmt.Stringer.
func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%q", t.Literal)
}

// punctuators ordered longest first so the lexer can take the first match.
var punctuators = []string{
	">>>=",
	">>>", "<<=", ">>=",
	"**", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=",
	"/=", "%=", "|=", "&=", "^=", "=>", "->", ":=", "<<", ">>",
	"(", ")", "{", "}", "[", "]", ";", ",", ".", "?", ":", "=", "+", "-",
	"*", "/", "%", "&", "|", "^", "~", "!", "<", ">",
}

// numberUnits are the denomination suffixes that may follow a number literal.
var numberUnits = map[string]bool{
	"wei": true, "gwei": true, "szabo": true, "finney": true, "ether": true,
	"seconds": true, "minutes": true, "hours": true, "days": true, "weeks": true, "years": true,
}

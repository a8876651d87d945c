package solidity

import "strings"

// Lexer tokenizes Solidity source text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The returned slice always ends with EOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.currentPos()
	if l.atEOF() {
		return Token{Type: EOF, Pos: start, End: start}, nil
	}

	var tok Token
	switch {
	case isIdentStart(l.ch):
		lit := l.readIdentifier()
		if (lit == "hex" || lit == "unicode") && (l.ch == '"' || l.ch == '\'') {
			s, err := l.readString()
			if err != nil {
				return Token{}, err
			}
			tok = Token{Type: STRING, Literal: lit + s}
		} else {
			tok = Token{Type: IDENT, Literal: lit}
		}
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok = Token{Type: NUMBER, Literal: l.readNumber()}
	case l.ch == '"' || l.ch == '\'':
		s, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		tok = Token{Type: STRING, Literal: s}
	default:
		p, ok := l.matchPunct()
		if !ok {
			return Token{}, &LexError{Pos: start, Message: "unexpected character " + quoteByte(l.ch)}
		}
		tok = Token{Type: PUNCT, Literal: p}
	}
	tok.Pos = start
	tok.End = l.lastPos(start)
	return tok, nil
}

// lastPos returns the position of the last character of the token that
// began at start. Tokens never span lines.
func (l *Lexer) lastPos(start Position) Position {
	n := l.pos - start.Offset
	if n < 1 {
		n = 1
	}
	return Position{Line: start.Line, Column: start.Column + n - 1, Offset: start.Offset + n - 1}
}

func (l *Lexer) matchPunct() (string, bool) {
	rest := l.input[l.pos:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p) {
			for range p {
				l.readChar()
			}
			return p, true
		}
	}
	return "", false
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}
		if l.atEOF() {
			return nil
		}
		switch {
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.currentPos()
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.atEOF() {
					return &LexError{Pos: start, Message: ErrUnterminatedComment}
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) && !l.atEOF() {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.input[start:l.pos]
	}
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '-' {
			l.readChar()
			if l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

// readString reads a quoted string including its quotes.
func (l *Lexer) readString() (string, error) {
	start := l.currentPos()
	quote := l.ch
	begin := l.pos
	l.readChar()
	for l.ch != quote {
		if l.atEOF() || l.ch == '\n' {
			return "", &LexError{Pos: start, Message: ErrUnterminatedString}
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				return "", &LexError{Pos: start, Message: ErrUnterminatedString}
			}
		}
		l.readChar()
	}
	l.readChar()
	return l.input[begin:l.pos], nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func quoteByte(ch byte) string {
	return "'" + string(rune(ch)) + "'"
}

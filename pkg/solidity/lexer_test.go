package solidity

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	toks, err := Tokenize("uint256 x = 0x1F + 1 ether; // trailing\n/* block */ y >>>= 2;")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	want := []struct {
		typ TokenType
		lit string
	}{
		{IDENT, "uint256"}, {IDENT, "x"}, {PUNCT, "="}, {NUMBER, "0x1F"}, {PUNCT, "+"},
		{NUMBER, "1"}, {IDENT, "ether"}, {PUNCT, ";"},
		{IDENT, "y"}, {PUNCT, ">>>="}, {NUMBER, "2"}, {PUNCT, ";"},
		{EOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d = %v %q, want %v %q", i, toks[i].Type, toks[i].Literal, w.typ, w.lit)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := Tokenize("a\n  bc")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	bc := toks[1]
	if bc.Pos.Line != 2 || bc.Pos.Column != 3 {
		t.Errorf("Pos = %v, want 2:3", bc.Pos)
	}
	if bc.End.Line != 2 || bc.End.Column != 4 {
		t.Errorf("End = %v, want 2:4", bc.End)
	}
	if bc.Pos.Offset != 4 {
		t.Errorf("Offset = %d, want 4", bc.Pos.Offset)
	}
}

func TestTokenizeStrings(t *testing.T) {
	toks, err := Tokenize(`hex"00ff" unicode"hi" 'it\'s' "a"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{`hex"00ff"`, `unicode"hi"`, `'it\'s'`, `"a"`}
	for i, w := range want {
		if toks[i].Type != STRING || toks[i].Literal != w {
			t.Errorf("token %d = %v %q, want STRING %q", i, toks[i].Type, toks[i].Literal, w)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `x = "abc`},
		{"newline in string", "x = \"ab\nc\""},
		{"unterminated comment", "x /* never closed"},
		{"illegal character", "x = #"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("Tokenize(%q) error = %v, want *LexError", tt.input, err)
			}
		})
	}
}

func TestIsElementaryType(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"uint", true}, {"uint256", true}, {"int8", true}, {"bytes32", true},
		{"address", true}, {"bool", true}, {"string", true}, {"fixed128x18", true},
		{"uintx", false}, {"Token", false}, {"bytesA", false}, {"fixed128", false},
	}
	for _, tt := range tests {
		if got := isElementaryType(tt.name); got != tt.want {
			t.Errorf("isElementaryType(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

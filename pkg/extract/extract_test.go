package extract

import (
	"reflect"
	"testing"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/solidity"
)

const tokenSource = `pragma solidity ^0.8.0;

interface IToken {
    function transfer(address to, uint256 amount) external returns (bool);
}

library SafeMath {
    function add(uint256 a, uint256 b) internal pure returns (uint256) {
        return a + b;
    }
}

contract Token is IToken {
    mapping(address => uint256) balances;

    constructor() {
        balances[msg.sender] = 1000;
    }

    function transfer(address to, uint256 amount) external returns (bool) {
        _move(msg.sender, to, amount);
        return true;
    }

    function _move(address from, address to, uint256 amount) internal {
        balances[from] = SafeMath.sub(balances[from], amount);
        balances[to] = SafeMath.add(
            balances[to],
            amount
        );
        emit Moved(from, to);
    }

    receive() external payable {}
}
`

func TestExtractRecords(t *testing.T) {
	rec, warnings := New(nil).Extract([]Unit{{Path: "Token.sol", Text: tokenSource}})
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}

	wantKinds := map[string]callgraph.ContainerKind{
		"IToken":   callgraph.KindInterface,
		"SafeMath": callgraph.KindLibrary,
		"Token":    callgraph.KindContract,
	}
	if !reflect.DeepEqual(rec.Kinds, wantKinds) {
		t.Errorf("Kinds = %v, want %v", rec.Kinds, wantKinds)
	}

	wantOrder := []string{
		"IToken.transfer", "SafeMath.add",
		"Token.constructor", "Token.transfer", "Token._move", "Token.receive",
	}
	if !reflect.DeepEqual(rec.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", rec.Order, wantOrder)
	}
}

func TestExtractSourceText(t *testing.T) {
	rec, _ := New(nil).Extract([]Unit{{Path: "Token.sol", Text: tokenSource}})

	fr, ok := rec.Lookup("Token.constructor")
	if !ok || fr.Source == nil {
		t.Fatalf("Token.constructor missing source: %+v", fr)
	}
	want := "    constructor() {\n        balances[msg.sender] = 1000;\n    }"
	if *fr.Source != want {
		t.Errorf("Source = %q, want %q", *fr.Source, want)
	}

	decl, _ := rec.Lookup("IToken.transfer")
	if decl.Source == nil || *decl.Source != "    function transfer(address to, uint256 amount) external returns (bool);" {
		t.Errorf("IToken.transfer source = %v", decl.Source)
	}
}

func TestExtractCalls(t *testing.T) {
	rec, _ := New(nil).Extract([]Unit{{Path: "Token.sol", Text: tokenSource}})

	tests := []struct {
		key  string
		want []callgraph.Call
	}{
		{"Token.transfer", []callgraph.Call{{Name: "_move", Line: 1}}},
		{"Token._move", []callgraph.Call{
			{Name: "sub", Line: 1},
			{Name: "add", Line: 2},
			{Name: "Moved", Line: 6},
		}},
		{"Token.constructor", nil},
		{"SafeMath.add", nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			fr, ok := rec.Lookup(tt.key)
			if !ok {
				t.Fatalf("no record for %s", tt.key)
			}
			if !reflect.DeepEqual(fr.Calls, tt.want) {
				t.Errorf("Calls = %+v, want %+v", fr.Calls, tt.want)
			}
		})
	}
}

func TestExtractSkipsBrokenUnit(t *testing.T) {
	units := []Unit{
		{Path: "Broken.sol", Text: "contract Broken { function f( }"},
		{Path: "Ok.sol", Text: "contract Ok { function g() public { h(); } }"},
	}
	rec, warnings := New(nil).Extract(units)

	if len(warnings) != 1 || warnings[0].Kind != errors.WarnParse || warnings[0].Subject != "Broken.sol" {
		t.Errorf("warnings = %v, want one parse warning for Broken.sol", warnings)
	}
	if _, ok := rec.Lookup("Ok.g"); !ok {
		t.Error("Ok.g missing after sibling unit failed")
	}
	if len(rec.Functions) != 1 {
		t.Errorf("got %d functions, want 1", len(rec.Functions))
	}
}

func TestCollectWithoutLocation(t *testing.T) {
	unit := &solidity.SourceUnit{Contracts: []*solidity.ContractDefinition{{
		Name: "A",
		Kind: solidity.KindContract,
		Functions: []*solidity.FunctionDefinition{
			{Name: "f", Body: &solidity.Block{}},
			{IsFallback: true},
		},
	}}}

	rec := NewRecords()
	warnings := New(nil).collect(Unit{Path: "A.sol"}, unit, rec)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	for _, key := range []string{"A.f", "A.fallback"} {
		fr, ok := rec.Lookup(key)
		if !ok {
			t.Fatalf("missing %s", key)
		}
		if fr.Source != nil {
			t.Errorf("%s Source = %q, want unavailable", key, *fr.Source)
		}
		if len(fr.Calls) != 0 {
			t.Errorf("%s Calls = %v, want none", key, fr.Calls)
		}
	}
}

func TestCollectCallScanFailure(t *testing.T) {
	loc := &solidity.Span{Start: solidity.Position{Line: 1}, End: solidity.Position{Line: 1}}
	broken := &solidity.FunctionDefinition{
		NodeInfo: solidity.NodeInfo{Span: loc},
		Name:     "broken",
		Body: &solidity.Block{Statements: []solidity.Stmt{
			// a call without a location cannot be attributed to a line
			&solidity.ExpressionStatement{X: &solidity.FunctionCall{Callee: &solidity.Identifier{Name: "g"}}},
		}},
	}
	healthy := &solidity.FunctionDefinition{NodeInfo: solidity.NodeInfo{Span: loc}, Name: "healthy", Body: &solidity.Block{}}
	unit := &solidity.SourceUnit{Contracts: []*solidity.ContractDefinition{{
		Name:      "A",
		Functions: []*solidity.FunctionDefinition{broken, healthy},
	}}}

	rec := NewRecords()
	warnings := New(nil).collect(Unit{Path: "A.sol", Text: "contract A {}"}, unit, rec)

	if len(warnings) != 1 || warnings[0].Kind != errors.WarnCallScan || warnings[0].Subject != "A.broken" {
		t.Fatalf("warnings = %v, want one call-scan warning for A.broken", warnings)
	}
	fr, _ := rec.Lookup("A.broken")
	if fr.Calls != nil {
		t.Errorf("A.broken Calls = %v, want empty", fr.Calls)
	}
	if fr.Source == nil {
		t.Error("A.broken lost its source text")
	}
	if _, ok := rec.Lookup("A.healthy"); !ok {
		t.Error("sibling function missing")
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		fn   solidity.FunctionDefinition
		want string
	}{
		{solidity.FunctionDefinition{Name: "mint"}, "mint"},
		{solidity.FunctionDefinition{IsConstructor: true}, "constructor"},
		{solidity.FunctionDefinition{IsFallback: true}, "fallback"},
		{solidity.FunctionDefinition{IsReceive: true}, "receive"},
		{solidity.FunctionDefinition{IsConstructor: true, IsFallback: true}, "constructor"},
		{solidity.FunctionDefinition{}, ""},
	}
	for _, tt := range tests {
		if got := memberName(&tt.fn); got != tt.want {
			t.Errorf("memberName(%+v) = %q, want %q", tt.fn, got, tt.want)
		}
	}
}

func TestSourceTextClamps(t *testing.T) {
	lines := []string{"a", "b", "c"}
	tests := []struct {
		start, end int
		want       string
	}{
		{1, 1, "a"},
		{2, 3, "b\nc"},
		{3, 9, "c"},
		{0, 1, "a"},
		{5, 6, ""},
	}
	for _, tt := range tests {
		if got := sourceText(lines, tt.start, tt.end); got != tt.want {
			t.Errorf("sourceText(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

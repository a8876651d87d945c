package solidity

import (
	"errors"
	"reflect"
	"testing"
)

const vaultSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import {IERC20} from "./IERC20.sol";

interface IVault {
    function deposit(uint256 amount) external;
}

library Math {
    function max(uint256 a, uint256 b) internal pure returns (uint256) {
        return a >= b ? a : b;
    }
}

abstract contract Base {
    function _hook() internal virtual;
}

contract Vault is Base, IVault {
    struct Position { uint256 amount; }
    event Deposited(address indexed who, uint256 amount);
    error Paused();

    mapping(address => Position) public positions;
    IERC20 public immutable token;

    modifier whenLive() {
        require(!paused, "paused");
        _;
    }

    constructor(IERC20 token_) {
        token = token_;
    }

    function deposit(uint256 amount) external whenLive override(IVault) {
        Position storage p = positions[msg.sender];
        p.amount += Math.max(amount, 1);
        token.transferFrom(msg.sender, address(this), amount);
        emit Deposited(msg.sender, amount);
    }

    function _hook() internal override {}

    receive() external payable {}

    fallback() external {
        revert Paused();
    }
}
`

func TestParseContracts(t *testing.T) {
	unit, err := Parse(vaultSource, Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(unit.Pragmas) != 1 || len(unit.Imports) != 1 {
		t.Errorf("pragmas=%d imports=%d, want 1 and 1", len(unit.Pragmas), len(unit.Imports))
	}

	type summary struct {
		Name     string
		Kind     ContractKind
		Abstract bool
		Funcs    int
	}
	var got []summary
	for _, c := range unit.Contracts {
		got = append(got, summary{c.Name, c.Kind, c.Abstract, len(c.Functions)})
	}
	want := []summary{
		{"IVault", KindInterface, false, 1},
		{"Math", KindLibrary, false, 1},
		{"Base", KindContract, true, 1},
		{"Vault", KindContract, false, 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("contracts = %+v, want %+v", got, want)
	}

	vault := unit.Contracts[3]
	if !reflect.DeepEqual(vault.Bases, []string{"Base", "IVault"}) {
		t.Errorf("Bases = %v", vault.Bases)
	}
	if len(vault.Modifiers) != 1 || vault.Modifiers[0].Name != "whenLive" {
		t.Errorf("Modifiers = %+v", vault.Modifiers)
	}
}

func TestParseFunctionFlags(t *testing.T) {
	unit, err := Parse(vaultSource, Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fns := unit.Contracts[3].Functions

	tests := []struct {
		name        string
		ctor, fb, r bool
		hasBody     bool
		startLine   int
		endLine     int
	}{
		{"", true, false, false, true, 33, 35},
		{"deposit", false, false, false, true, 37, 42},
		{"_hook", false, false, false, true, 44, 44},
		{"", false, false, true, true, 46, 46},
		{"", false, true, false, true, 48, 50},
	}
	for i, tt := range tests {
		fn := fns[i]
		if fn.Name != tt.name || fn.IsConstructor != tt.ctor || fn.IsFallback != tt.fb || fn.IsReceive != tt.r {
			t.Errorf("fn %d = %q ctor=%v fb=%v recv=%v", i, fn.Name, fn.IsConstructor, fn.IsFallback, fn.IsReceive)
		}
		if (fn.Body != nil) != tt.hasBody {
			t.Errorf("fn %d body = %v, want present=%v", i, fn.Body, tt.hasBody)
		}
		if loc := fn.Loc(); loc == nil || loc.Start.Line != tt.startLine || loc.End.Line != tt.endLine {
			t.Errorf("fn %d loc = %+v, want lines %d-%d", i, loc, tt.startLine, tt.endLine)
		}
	}

	dep := fns[1]
	if dep.Visibility != "external" {
		t.Errorf("Visibility = %q, want external", dep.Visibility)
	}
	var mods []string
	for _, m := range dep.Modifiers {
		mods = append(mods, m.Name)
	}
	if !reflect.DeepEqual(mods, []string{"whenLive", "override"}) {
		t.Errorf("Modifiers = %v", mods)
	}

	abstractHook := unit.Contracts[2].Functions[0]
	if abstractHook.Body != nil || !abstractHook.Virtual {
		t.Errorf("abstract _hook: body=%v virtual=%v", abstractHook.Body, abstractHook.Virtual)
	}
}

func TestParseLegacyFallback(t *testing.T) {
	src := `contract Old {
    function() payable { owner.transfer(msg.value); }
    function Old() { owner = msg.sender; }
}`
	unit, err := Parse(src, Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fns := unit.Contracts[0].Functions
	if len(fns) != 2 {
		t.Fatalf("got %d functions, want 2", len(fns))
	}
	if !fns[0].IsFallback || fns[0].Name != "" {
		t.Errorf("fns[0] = %+v, want unnamed fallback", fns[0])
	}
	if fns[1].Name != "Old" || fns[1].IsConstructor {
		t.Errorf("fns[1] = %+v, want named function Old", fns[1])
	}
}

// calleeShapes describes each call in a body by the Go type of its callee.
func calleeShapes(t *testing.T, body string) []string {
	t.Helper()
	unit, err := Parse("contract C { function f() public {\n"+body+"\n} }", Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse(%q): %v", body, err)
	}
	var shapes []string
	Inspect(unit.Contracts[0].Functions[0], func(n Node) bool {
		call, ok := n.(*FunctionCall)
		if !ok {
			return true
		}
		switch c := call.Callee.(type) {
		case *Identifier:
			shapes = append(shapes, "ident:"+c.Name)
		case *MemberAccess:
			shapes = append(shapes, "member:"+c.Member)
		case *ElementaryType:
			shapes = append(shapes, "type:"+c.Name)
		case *NewExpr:
			shapes = append(shapes, "new:"+c.Type)
		case *CallOptions:
			shapes = append(shapes, "options")
		case *IndexAccess:
			shapes = append(shapes, "index")
		default:
			shapes = append(shapes, "other")
		}
		return true
	})
	return shapes
}

func TestParseCallShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"identifier", "foo(1);", []string{"ident:foo"}},
		{"member", "a.b.c(x);", []string{"member:c"}},
		{"nested outer first", "f(g(x));", []string{"ident:f", "ident:g"}},
		{"chained outer first", "a.f().g();", []string{"member:g", "member:f"}},
		{"conversion", "uint256(x);", []string{"type:uint256"}},
		{"new", "new Foo(1);", []string{"new:Foo"}},
		{"new array", "uint[] memory xs = new uint[](3);", []string{"new:uint[]"}},
		{"call options", "addr.call{value: 1}(data);", []string{"options"}},
		{"index", "handlers[0](x);", []string{"index"}},
		{"emit", "emit Done(1);", []string{"ident:Done"}},
		{"revert custom", "revert Bad(2);", []string{"ident:Bad"}},
		{"revert legacy", `revert("no");`, []string{"ident:revert"}},
		{"payable", "payable(to).transfer(1);", []string{"member:transfer", "ident:payable"}},
		{"named args", "set({key: 1, value: g()});", []string{"ident:set", "ident:g"}},
		{"assembly opaque", "assembly { let x := mload(0x40) }", nil},
		{"ternary", "x = c ? f() : g();", []string{"ident:f", "ident:g"}},
		{"try", "try t.run() returns (uint v) { h(v); } catch Error(string memory) { k(); } catch { }",
			[]string{"member:run", "ident:h", "ident:k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calleeShapes(t, tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("shapes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	body := `
uint256[] memory arr = new uint256[](3);
arr[0] = 1;
(uint a, , bool ok) = pair();
(a, ok) = (1, true);
mapping(address => uint) storage m = balances;
for (uint i = 0; i < arr.length; i++) { total += arr[i]; }
while (x > 0) { x--; }
do { x++; } while (x < 10);
unchecked { y = y * 2; }
if (a == 1) { return; } else if (a == 2) { return; } else { delete m[msg.sender]; }
bytes memory s = msg.data[4:];
_;`
	unit, err := Parse("contract C { function f() public {"+body+"} }", Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmts := unit.Contracts[0].Functions[0].Body.Statements

	var kinds []string
	for _, s := range stmts {
		switch s.(type) {
		case *VariableDeclarationStatement:
			kinds = append(kinds, "decl")
		case *ExpressionStatement:
			kinds = append(kinds, "expr")
		case *ForStatement:
			kinds = append(kinds, "for")
		case *WhileStatement:
			kinds = append(kinds, "while")
		case *DoWhileStatement:
			kinds = append(kinds, "do")
		case *Block:
			kinds = append(kinds, "block")
		case *IfStatement:
			kinds = append(kinds, "if")
		default:
			kinds = append(kinds, "other")
		}
	}
	want := []string{"decl", "expr", "decl", "expr", "decl", "for", "while", "do", "block", "if", "decl", "expr"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("statement kinds = %v, want %v", kinds, want)
	}

	tuple := stmts[2].(*VariableDeclarationStatement)
	if !reflect.DeepEqual(tuple.Names, []string{"a", "", "ok"}) {
		t.Errorf("tuple names = %q", tuple.Names)
	}
}

func TestParseWithoutLocations(t *testing.T) {
	unit, err := Parse(vaultSource, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	Inspect(unit, func(n Node) bool {
		if n != nil && n.Loc() != nil {
			t.Errorf("%T has location %+v, want nil", n, n.Loc())
		}
		return true
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing brace", "contract A { function f() public { "},
		{"bad header", "contract A { function f() public 12 {} }"},
		{"bad expression", "contract A { function f() public { x = ; } }"},
		{"unbalanced", "contract A { uint x = (1; }"},
		{"missing name", "contract { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, Options{Loc: true})
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error = %v, want *ParseError", tt.src, err)
			}
			if perr.Pos.Line < 1 {
				t.Errorf("ParseError.Pos = %v, want a real position", perr.Pos)
			}
		})
	}
}

func TestInspectVisitsPreOrder(t *testing.T) {
	unit, err := Parse("contract C { function f() public { a(b(c())); } }", Options{Loc: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var names []string
	Inspect(unit, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	if !reflect.DeepEqual(names, []string{"a", "b", "c"}) {
		t.Errorf("identifiers = %v, want [a b c]", names)
	}

	var count int
	Inspect(unit, func(n Node) bool {
		if _, ok := n.(*ContractDefinition); ok {
			count++
			return false
		}
		if _, ok := n.(*FunctionCall); ok {
			t.Error("descended into pruned subtree")
		}
		return true
	})
	if count != 1 {
		t.Errorf("contracts visited = %d, want 1", count)
	}
}

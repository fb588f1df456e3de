// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/asm/parser"
	"github.com/consensys/go-evmasm/pkg/util/assert"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// expected diagnostic (kind + message)
type diag struct {
	kind source.Kind
	msg  string
}

var cmpDiag = cmp.AllowUnexported(diag{})

func Test_Analysis_Clean(t *testing.T) {
	for _, input := range []string{
		"{ }",
		"{ let x := 7 }",
		"{ 1 2 mul pop }",
		"{ let x := 4 7 add }",
		"{ revert(0, 0) }",
		"{ invalid }",
		"{ let x := \"12345678901234567890123456789012\" }",
		"{ let x := 1 { let y := x pop(y) } }",
		"{ loop: jump(loop) }",
		"{ jump(skip) skip: }",
		"{ function f(a) -> (r) { r := add(a, 1) } let x := f(2) }",
		"{ let z := g(1) function g(a) -> (r) { r := a } }",
		"{ let x := 0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff }",
		"{ let x := caller }",
		"{ suicide(0) }",
	} {
		checkAnalysis(t, input)
	}
}

func Test_Analysis_Builtins(t *testing.T) {
	checkAnalysis(t, "{ this }", diag{source.DECLARATION_ERROR, "built-in this is not accessible from assembly"})
	checkAnalysis(t, "{ ecrecover }",
		diag{source.DECLARATION_ERROR, "built-in ecrecover is not accessible from assembly"})
	checkAnalysis(t, "{ let ecrecover := 1 ecrecover }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ ecrecover let ecrecover := 1 }",
		diag{source.DECLARATION_ERROR, "built-in ecrecover is not accessible from assembly"})
	checkAnalysis(t, "{ pop(msg(1)) }",
		diag{source.DECLARATION_ERROR, "built-in msg is not accessible from assembly"})
}

func Test_Analysis_Placeholders(t *testing.T) {
	checkAnalysis(t, "{ invalidJumpLabel }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ jump(invalidJumpLabel) }")
	checkAnalysis(t, "{ jump(nowhere) }", diag{source.WARNING, "jump target nowhere not found, using invalid jump label"})
	checkAnalysis(t, "{ jumpi(nowhere, 1) }",
		diag{source.WARNING, "jump target nowhere not found, using invalid jump label"})
	checkAnalysis(t, "{ nowhere jump }", diag{source.WARNING, "jump target nowhere not found, using invalid jump label"})
	checkAnalysis(t, "{ 1 nowhere jumpi }",
		diag{source.WARNING, "jump target nowhere not found, using invalid jump label"})
	checkAnalysis(t, "{ nowhere pop }", diag{source.DECLARATION_ERROR, "identifier nowhere not found"})
	checkAnalysis(t, "{ jumpi(1, nowhere) }", diag{source.DECLARATION_ERROR, "identifier nowhere not found"})
}

func Test_Analysis_Collisions(t *testing.T) {
	checkAnalysis(t, "{ let gas := 1 }",
		diag{source.DECLARATION_ERROR, "cannot use instruction names for identifier names"})
	checkAnalysis(t, "{ 2 =: gas }", diag{source.DECLARATION_ERROR, "identifier expected, got instruction name"})
	checkAnalysis(t, "{ gas := 2 }", diag{source.DECLARATION_ERROR, "identifier expected, got instruction name"})
	checkAnalysis(t, "{ function add() { } }",
		diag{source.DECLARATION_ERROR, "cannot use instruction names for identifier names"})
	checkAnalysis(t, "{ function f(mul) { } }",
		diag{source.DECLARATION_ERROR, "cannot use instruction names for identifier names"})
	checkAnalysis(t, "{ function f() -> (sub) { } }",
		diag{source.DECLARATION_ERROR, "cannot use instruction names for identifier names"})
	checkAnalysis(t, "{ gas: }", diag{source.DECLARATION_ERROR, "cannot use instruction names for identifier names"})
}

func Test_Analysis_CollisionSymmetry(t *testing.T) {
	d := dialect.EVM()
	//
	for _, m := range d.Mnemonics() {
		checkFails(t, "{ let "+m+" := 1 }", source.DECLARATION_ERROR)
		checkFails(t, "{ 1 =: "+m+" }", source.DECLARATION_ERROR)
		checkFails(t, "{ "+m+" := 1 }", source.DECLARATION_ERROR)
	}
	// Non-reserved names never collide
	for _, n := range []string{"x", "gasx", "Gas", "addr", "jumpdest", "push1"} {
		checkAnalysis(t, "{ let "+n+" := 1 "+n+" := 2 3 =: "+n+" }")
	}
}

func Test_Analysis_Declarations(t *testing.T) {
	checkAnalysis(t, "{ let x := 1 let x := 2 }", diag{source.DECLARATION_ERROR, "variable x already declared"})
	checkAnalysis(t, "{ a: a: jump(a) }", diag{source.DECLARATION_ERROR, "label a already declared"})
	checkAnalysis(t, "{ function f() { } function f() { } }",
		diag{source.DECLARATION_ERROR, "function f already declared"})
	checkAnalysis(t, "{ function f(a, a) { } }", diag{source.DECLARATION_ERROR, "variable a already declared"})
	checkAnalysis(t, "{ let x := x }", diag{source.DECLARATION_ERROR, "identifier x not found"})
	checkAnalysis(t, "{ x pop let x := 1 }", diag{source.DECLARATION_ERROR, "identifier x not found"})
	checkAnalysis(t, "{ { let y := 1 } y pop }", diag{source.DECLARATION_ERROR, "identifier y not found"})
	// Shadowing in nested blocks is permitted
	checkAnalysis(t, "{ let x := 1 { let x := 2 } }")
}

func Test_Analysis_Functions(t *testing.T) {
	checkAnalysis(t, "{ let x := 1 function f() { pop(x) } }",
		diag{source.DECLARATION_ERROR, "variable x not accessible from within function f"})
	checkAnalysis(t, "{ l: function f() { jump(l) } }",
		diag{source.DECLARATION_ERROR, "label l not accessible from within function f"},
		diag{source.WARNING, "label l is not referenced"})
	checkAnalysis(t, "{ function f(a) { } f() }", diag{source.TYPE_ERROR, "function f expects 1 arguments, got 0"})
	checkAnalysis(t, "{ function f() -> (a, b) { } let x := f() }",
		diag{source.TYPE_ERROR, "f produces 2 values where one is expected"})
	checkAnalysis(t, "{ function f() { } f }", diag{source.TYPE_ERROR, "function f cannot be used as a value"})
	checkAnalysis(t, "{ function f() { } f := 1 }", diag{source.TYPE_ERROR, "cannot assign to function f"})
	checkAnalysis(t, "{ function f() { f() } f() }")
}

func Test_Analysis_Arity(t *testing.T) {
	checkAnalysis(t, "{ pop(add(1)) }", diag{source.TYPE_ERROR, "instruction add expects 2 arguments, got 1"})
	checkAnalysis(t, "{ let x := mstore(0, 1) }", diag{source.TYPE_ERROR, "mstore produces 0 values where one is expected"})
	checkAnalysis(t, "{ let x := add }", diag{source.TYPE_ERROR, "instruction add expects 2 arguments, got 0"})
	checkAnalysis(t, "{ let x := stop }", diag{source.TYPE_ERROR, "instruction stop does not produce a value"})
	checkAnalysis(t, "{ let x := 1 x() }", diag{source.TYPE_ERROR, "variable x cannot be called"})
	checkAnalysis(t, "{ l: l := 1 }", diag{source.TYPE_ERROR, "cannot assign to label l"})
}

func Test_Analysis_Literals(t *testing.T) {
	checkAnalysis(t, "{ let x := \"123456789012345678901234567890123\" }",
		diag{source.TYPE_ERROR, "string literal too long (33 > 32)"})
	checkAnalysis(t, "{ let x := 0x1ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff }",
		diag{source.TYPE_ERROR, "number literal too large"})
	// Unicode escapes count in bytes
	checkAnalysis(t, "{ let x := \"\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\\u1bac\" }",
		diag{source.TYPE_ERROR, "string literal too long (33 > 32)"})
}

func Test_Analysis_Balance(t *testing.T) {
	checkAnalysis(t, "{ 1 }", diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ pop }", diag{source.WARNING, "block is not balanced, it takes 1 item(s) from the stack"})
	// Surplus of a nested block is reported once
	checkAnalysis(t, "{ 1 { 2 } pop }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ { 1 } }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ { { 1 } } }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ { 1 } 2 }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"},
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ { 1 } pop }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"},
		diag{source.WARNING, "block is not balanced, it takes 1 item(s) from the stack"})
	checkAnalysis(t, "{ function f(a) -> (b) { a } }",
		diag{source.WARNING, "block is not balanced, it leaves 1 item(s) on the stack"})
	checkAnalysis(t, "{ let x := 1 2 =: x }")
	checkAnalysis(t, "{ 1 2 l[0]: jump(l) }")
	checkAnalysis(t, "{ l[-1]: jump(l) }", diag{source.TYPE_ERROR, "invalid stack height -1 for label l"})
}

func Test_Analysis_Labels(t *testing.T) {
	checkAnalysis(t, "{ l: }", diag{source.WARNING, "label l is not referenced"})
	checkAnalysis(t, "{ l: { jump(l) } }")
}

func Test_Analysis_Reanalyse(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("{ let x := 7 pop(x) l: jump(nowhere) 1 }"))
	block, srcmap, errs := parser.Parse(srcfile, dialect.EVM())
	assert.Equal(t, 0, len(errs))
	//
	_, first := Analyze(block, srcmap, dialect.EVM())
	_, second := Analyze(block, srcmap, dialect.EVM())
	//
	assert.Equal(t, 3, len(first))
	assert.NoDiff(t, toDiags(first), toDiags(second), cmpDiag)
}

func Test_Analysis_Scopes(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("{ let x := 1 l: function f(a) -> (b) { let c := a } { let y := 2 } }"))
	block, srcmap, errs := parser.Parse(srcfile, dialect.EVM())
	assert.Equal(t, 0, len(errs))
	//
	info, diags := Analyze(block, srcmap, dialect.EVM())
	assert.True(t, source.ContainsOnlyWarnings(diags))
	//
	root := info.Scope(block)
	fn := block.Statements[2].(*ast.FunctionDefinition)
	body := info.Scope(fn.Body)
	inner := info.Scope(block.Statements[3].(*ast.Block))
	//
	assert.Equal(t, 1, len(root.Variables()))
	assert.True(t, root.Function() == nil)
	assert.True(t, body.Function() == fn)
	assert.Equal(t, 3, len(body.Variables()))
	assert.Equal(t, 1, len(inner.Variables()))
	//
	_, ok := root.Lookup("l")
	assert.True(t, ok)
	_, ok = root.Lookup("f")
	assert.True(t, ok)
	_, ok = inner.Lookup("x")
	assert.False(t, ok)
}

// ============================================================================
// Helpers
// ============================================================================

func analyse(t *testing.T, input string) []source.Diagnostic {
	srcfile := source.NewSourceFile("test", []byte(input))
	block, srcmap, errs := parser.Parse(srcfile, dialect.EVM())
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected error parsing %q: %s", input, errs[0].Message())
	}
	//
	_, diags := Analyze(block, srcmap, dialect.EVM())
	//
	return diags
}

// Check that analysing a given input produces exactly the expected
// diagnostics (in order).
func checkAnalysis(t *testing.T, input string, expected ...diag) {
	t.Helper()
	//
	var actual = toDiags(analyse(t, input))
	//
	if len(expected) == 0 {
		expected = nil
	}
	//
	assert.NoDiff(t, expected, actual, cmpDiag)
}

// Check that analysing a given input produces at least one diagnostic of the
// given kind.
func checkFails(t *testing.T, input string, kind source.Kind) {
	if !source.ContainsKind(analyse(t, input), kind) {
		t.Fatalf("expected %s for %q", kind, input)
	}
}

func toDiags(diagnostics []source.Diagnostic) []diag {
	var diags []diag
	//
	for _, d := range diagnostics {
		diags = append(diags, diag{d.Kind(), d.Message()})
	}
	//
	return diags
}

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
package asm

import (
	"strings"
	"testing"

	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/assert"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// ===================================================================
// Parsing
// ===================================================================

func Test_Parse_Smoke(t *testing.T) {
	assert.True(t, successParse("{ }"))
}

func Test_Parse_SimpleInstructions(t *testing.T) {
	assert.True(t, successParse("{ dup1 dup1 mul dup1 sub }"))
}

func Test_Parse_SuicideSelfdestruct(t *testing.T) {
	assert.True(t, successParse("{ suicide selfdestruct }"))
}

func Test_Parse_Keywords(t *testing.T) {
	assert.True(t, successParse("{ byte return address }"))
}

func Test_Parse_Constants(t *testing.T) {
	assert.True(t, successParse("{ 7 8 mul }"))
}

func Test_Parse_VarDecl(t *testing.T) {
	assert.True(t, successParse("{ let x := 7 }"))
}

func Test_Parse_Assignment(t *testing.T) {
	assert.True(t, successParse("{ 7 8 add =: x }"))
}

func Test_Parse_Label(t *testing.T) {
	assert.True(t, successParse("{ 7 abc: 8 eq abc jump }"))
}

func Test_Parse_LabelComplex(t *testing.T) {
	assert.True(t, successParse("{ 7 abc: 8 eq jump(abc) jumpi(eq(7, 8), abc) }"))
}

func Test_Parse_Functional(t *testing.T) {
	assert.True(t, successParse("{ add(7, mul(6, x)) add mul(7, 8) }"))
}

func Test_Parse_FunctionalAssignment(t *testing.T) {
	assert.True(t, successParse("{ x := 7 }"))
}

func Test_Parse_FunctionalAssignmentComplex(t *testing.T) {
	assert.True(t, successParse("{ x := add(7, mul(6, x)) add mul(7, 8) }"))
}

func Test_Parse_VarDeclComplex(t *testing.T) {
	assert.True(t, successParse("{ let x := add(7, mul(6, x)) add mul(7, 8) }"))
}

func Test_Parse_Blocks(t *testing.T) {
	assert.True(t, successParse("{ let x := 7 { let y := 3 } { let z := 2 } }"))
}

func Test_Parse_LabelsWithStackInfo(t *testing.T) {
	assert.True(t, successParse("{ x[-1]: y[a]: z[d, e]: h[100]: g[]: }"))
}

func Test_Parse_FunctionDefinitions(t *testing.T) {
	assert.True(t, successParse("{ function f() { } function g(a) -> (x) { } }"))
}

func Test_Parse_FunctionDefinitionsMultipleArgs(t *testing.T) {
	assert.True(t, successParse("{ function f(a, d) { } function g(a, d) -> (x, y) { } }"))
}

func Test_Parse_FunctionCalls(t *testing.T) {
	assert.True(t, successParse("{ g(1, 2, f(mul(2, 3))) x() }"))
}

func Test_Parse_Invalid(t *testing.T) {
	for _, input := range []string{"", "{", "}", "{ let }", "{ let x 7 }", "{ 7 =: }", "{ f(1, }", "{ 1x }",
		"{ \"abc }", "{ function () { } }", "{ x[1 }", "{ } }"} {
		assert.False(t, successParse(input), input)
	}
}

// ===================================================================
// Printing
// ===================================================================

func Test_Print_Smoke(t *testing.T) {
	parsePrintCompare(t, "{\n}")
}

func Test_Print_Instructions(t *testing.T) {
	parsePrintCompare(t, "{\n    7\n    8\n    mul\n    dup10\n    add\n}")
}

func Test_Print_SubBlock(t *testing.T) {
	parsePrintCompare(t, "{\n    {\n        dup4\n        add\n    }\n}")
}

func Test_Print_Functional(t *testing.T) {
	parsePrintCompare(t, "{\n    mul(sload(0x12), 7)\n}")
}

func Test_Print_Label(t *testing.T) {
	parsePrintCompare(t, "{\n    loop:\n    jump(loop)\n}")
}

func Test_Print_LabelWithStack(t *testing.T) {
	parsePrintCompare(t, "{\n    loop[x, y]:\n    other[-2]:\n    third[10]:\n}")
}

func Test_Print_Assignments(t *testing.T) {
	parsePrintCompare(t, "{\n    let x := mul(2, 3)\n    7\n    =: x\n    x := add(1, 2)\n}")
}

func Test_Print_StringLiterals(t *testing.T) {
	parsePrintCompare(t, "{\n    \"\\n'\\xab\\x95\\\"\"\n}")
}

func Test_Print_StringLiteralUnicode(t *testing.T) {
	var (
		input  = "{ \"\\u1bac\" }"
		parsed = "{\n    \"\\xe1\\xae\\xac\"\n}"
		stack  = NewStack(dialect.EVM())
	)
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte(input))))
	assert.Equal(t, 0, len(stack.Errors()))
	assert.Equal(t, parsed, stack.String())
	parsePrintCompare(t, parsed)
}

func Test_Print_FunctionDefinitionsMultipleArgs(t *testing.T) {
	parsePrintCompare(t,
		"{\n    function f(a, d)\n    {\n        mstore(a, d)\n    }\n    function g(a, d) -> (x, y)\n    {\n    }\n}")
}

func Test_Print_FunctionCalls(t *testing.T) {
	parsePrintCompare(t, "{\n    g(1, mul(2, x), f(mul(2, 3)))\n    x()\n}")
}

// ===================================================================
// Analysis
// ===================================================================

func Test_Analysis_StringLiterals(t *testing.T) {
	assert.True(t, successAssemble("{ let x := \"12345678901234567890123456789012\" }", true))
}

func Test_Analysis_OversizeStringLiterals(t *testing.T) {
	assert.False(t, successAssemble("{ let x := \"123456789012345678901234567890123\" }", true))
}

func Test_Analysis_AssignmentAfterTag(t *testing.T) {
	assert.True(t, successParse("{ let x := 1 { tag: =: x } }"))
}

func Test_Analysis_MagicVariables(t *testing.T) {
	assert.False(t, successAssemble("{ this }", true))
	assert.False(t, successAssemble("{ ecrecover }", true))
	assert.True(t, successAssemble("{ let ecrecover := 1 ecrecover }", true))
}

func Test_Analysis_ImbalancedStack(t *testing.T) {
	assert.True(t, successAssemble("{ 1 2 mul pop }", false))
	assert.False(t, successAssemble("{ 1 }", false))
	assert.True(t, successAssemble("{ let x := 4 7 add }", false))
}

func Test_Analysis_ErrorTag(t *testing.T) {
	assert.True(t, successAssemble("{ invalidJumpLabel }", true))
}

func Test_Analysis_DesignatedInvalidInstruction(t *testing.T) {
	assert.True(t, successAssemble("{ invalid }", true))
}

func Test_Analysis_ShadowedInstructionDeclaration(t *testing.T) {
	assert.False(t, successAssemble("{ let gas := 1 }", true))
}

func Test_Analysis_ShadowedInstructionAssignment(t *testing.T) {
	assert.False(t, successAssemble("{ 2 =: gas }", true))
}

func Test_Analysis_ShadowedInstructionFunctionalAssignment(t *testing.T) {
	assert.False(t, successAssemble("{ gas := 2 }", true))
}

func Test_Analysis_Revert(t *testing.T) {
	assert.True(t, successAssemble("{ revert(0, 0) }", true))
}

// ===================================================================
// Properties
// ===================================================================

func Test_Property_RoundTrip(t *testing.T) {
	for _, input := range []string{
		"{ }",
		"{ dup1 dup1 mul dup1 sub }",
		"{ 7 abc: 8 eq jump(abc) jumpi(eq(7, 8), abc) }",
		"{ x := add(7, mul(6, x)) add mul(7, 8) }",
		"{ let x := 7 { let y := 3 } { let z := 2 } }",
		"{ x[-1]: y[a]: z[d, e]: h[100]: g[]: }",
		"{ function f(a, d) { } function g(a, d) -> (x, y) { } }",
		"{ g(1, 2, f(mul(2, 3))) x() }",
		"{ \"\\u1bac\\t'\" 'a\"b' }",
		"{ // comment\n 1 /* another */ pop }",
	} {
		var (
			first  = NewStack(dialect.EVM())
			second = NewStack(dialect.EVM())
		)
		//
		assert.True(t, first.Parse(source.NewSourceFile("first", []byte(input))), input)
		printed := first.String()
		assert.True(t, second.Parse(source.NewSourceFile("second", []byte(printed))), printed)
		assert.Equal(t, 0, len(second.Errors()))
		assert.Equal(t, printed, second.String())
	}
}

func Test_Property_CollisionSymmetry(t *testing.T) {
	for _, m := range dialect.EVM().Mnemonics() {
		for _, input := range []string{"{ let " + m + " := 1 }", "{ 1 =: " + m + " }", "{ " + m + " := 1 }"} {
			diags := assemble(t, input)
			assert.True(t, source.ContainsKind(diags, source.DECLARATION_ERROR), input)
			assert.False(t, Succeeded(diags, false), input)
		}
	}
	// Non-reserved names
	for _, n := range []string{"x", "gasprice1", "Add", "jumpdest", "push1", "mstore9"} {
		input := "{ let " + n + " := 1 " + n + " := 2 3 =: " + n + " }"
		assert.True(t, Succeeded(assemble(t, input), true), input)
	}
}

func Test_Property_ShadowThenUse(t *testing.T) {
	for _, name := range dialect.DEFAULT_BUILTINS {
		assert.True(t, Succeeded(assemble(t, "{ let "+name+" := 1 pop("+name+") }"), true), name)
		assert.False(t, Succeeded(assemble(t, "{ "+name+" }"), false), name)
	}
}

func Test_Property_StackBalance(t *testing.T) {
	assert.True(t, Succeeded(assemble(t, "{ 1 2 mul pop }"), true))
	assert.True(t, Succeeded(assemble(t, "{ mstore(0, add(1, 2)) }"), true))
	//
	diags := assemble(t, "{ 1 }")
	assert.True(t, Succeeded(diags, false))
	assert.False(t, Succeeded(diags, true))
}

func Test_Property_LiteralSize(t *testing.T) {
	var (
		word = strings.Repeat("x", 32)
		over = word + "y"
	)
	//
	assert.True(t, Succeeded(assemble(t, "{ let v := \""+word+"\" }"), true))
	//
	diags := assemble(t, "{ let v := \""+over+"\" }")
	assert.True(t, source.ContainsKind(diags, source.TYPE_ERROR))
	assert.False(t, Succeeded(diags, false))
}

// ===================================================================
// Scenarios
// ===================================================================

func Test_Scenario_01(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte("{ }"))))
	assert.Equal(t, "{\n}", stack.String())
}

func Test_Scenario_02(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte("{ let x := 7 }"))))
	assert.True(t, stack.Assemble().HasValue())
	assert.Equal(t, 0, len(stack.Errors()))
}

func Test_Scenario_03(t *testing.T) {
	assert.True(t, successParse("{ let x := 1 { tag: =: x } }"))
}

func Test_Scenario_04(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte("{ let gas := 1 }"))))
	assert.True(t, stack.Assemble().IsEmpty())
	assert.True(t, source.ContainsKind(stack.Errors(), source.DECLARATION_ERROR))
}

func Test_Scenario_05(t *testing.T) {
	assert.True(t, successAssemble("{ 1 2 mul pop }", false))
	assert.True(t, successAssemble("{ 1 }", true))
	assert.False(t, successAssemble("{ 1 }", false))
}

func Test_Scenario_06(t *testing.T) {
	assert.True(t, successAssemble("{ let x := \"abcdefghijklmnopqrstuvwxyzABCDEF\" }", true))
	assert.False(t, successAssemble("{ let x := \"abcdefghijklmnopqrstuvwxyzABCDEFG\" }", true))
}

func Test_Assemble_Plan(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte("{ loop: jump(loop) }"))))
	//
	plan := stack.Assemble()
	//
	assert.True(t, plan.HasValue())
	assert.Equal(t, "tag_1:\n    PUSH [tag_1]\n    JUMP\n", plan.Unwrap().String())
}

func Test_Assemble_Twice(t *testing.T) {
	for _, input := range []string{"{ let x := 7 pop(x) }", "{ 1 }", "{ l: function f(a) -> (r) { r := a } pop(f(2)) }"} {
		stack := NewStack(dialect.EVM())
		//
		assert.True(t, stack.Parse(source.NewSourceFile("test", []byte(input))))
		//
		first := stack.Assemble()
		firstErrs := stack.Errors()
		second := stack.Assemble()
		secondErrs := stack.Errors()
		//
		assert.True(t, first.HasValue())
		assert.True(t, second.HasValue())
		assert.NoDiff(t, first.Unwrap(), second.Unwrap())
		assert.Equal(t, len(firstErrs), len(secondErrs))
		//
		for i := range firstErrs {
			assert.Equal(t, firstErrs[i].Kind(), secondErrs[i].Kind())
			assert.Equal(t, firstErrs[i].Message(), secondErrs[i].Message())
			assert.Equal(t, firstErrs[i].Span(), secondErrs[i].Span())
		}
	}
}

func Test_Assemble_DefaultThenStrict(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte("{ 1 }"))))
	assert.True(t, stack.Assemble().HasValue())
	assert.True(t, Succeeded(stack.Errors(), false))
	// Assembling again does not accumulate warnings
	assert.True(t, stack.Assemble().HasValue())
	assert.Equal(t, 1, len(stack.Errors()))
	assert.False(t, Succeeded(stack.Errors(), true))
}

func Test_Assemble_WithoutParse(t *testing.T) {
	stack := NewStack(dialect.EVM())
	//
	assert.False(t, stack.Parse(source.NewSourceFile("test", []byte("{"))))
	assert.True(t, stack.Assemble().IsEmpty())
	assert.Equal(t, "", stack.String())
}

func Test_Assemble_CustomDialect(t *testing.T) {
	d := dialect.EVM(dialect.WithBuiltins("block"), dialect.WithPlaceholders("fail"))
	//
	assert.True(t, successAssembleWith(d, "{ let this := 1 pop(this) jump(fail) }", false))
	assert.False(t, successAssembleWith(d, "{ block }", true))
	assert.False(t, successAssembleWith(d, "{ jump(invalidJumpLabel) }", false))
}

// ===================================================================
// Test Helpers
// ===================================================================

// Check whether a given input parses.
func successParse(input string) bool {
	return NewStack(dialect.EVM()).Parse(source.NewSourceFile("test", []byte(input)))
}

// Check whether a given input parses and assembles.  Warnings are permitted
// only if so indicated.
func successAssemble(input string, allowWarnings bool) bool {
	return successAssembleWith(dialect.EVM(), input, allowWarnings)
}

func successAssembleWith(d *dialect.Dialect, input string, allowWarnings bool) bool {
	stack := NewStack(d)
	//
	if !stack.Parse(source.NewSourceFile("test", []byte(input))) {
		return false
	}
	//
	plan := stack.Assemble()
	//
	return plan.HasValue() && Succeeded(stack.Errors(), !allowWarnings)
}

// Assemble a given input which is expected to parse, returning all
// diagnostics.
func assemble(t *testing.T, input string) []source.Diagnostic {
	stack := NewStack(dialect.EVM())
	//
	if !stack.Parse(source.NewSourceFile("test", []byte(input))) {
		t.Fatalf("unexpected error parsing %q", input)
	}
	//
	stack.Assemble()
	//
	return stack.Errors()
}

func parsePrintCompare(t *testing.T, input string) {
	stack := NewStack(dialect.EVM())
	//
	assert.True(t, stack.Parse(source.NewSourceFile("test", []byte(input))), input)
	assert.Equal(t, 0, len(stack.Errors()))
	assert.Equal(t, input, stack.String())
}

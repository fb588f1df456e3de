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
package codegen

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-evmasm/pkg/asm/analysis"
	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// Generate the emission plan for a block which has been successfully analysed.
// Local variables live on the stack, and are accessed with dup / swap
// operations.  Hence, a variable which is too deep inside the stack cannot be
// accessed and this is reported as a code generation error.
func Generate(block *ast.Block, srcmap *source.Map[ast.Node], info *analysis.Info) (Plan, []source.Diagnostic) {
	g := generator{
		srcmap: srcmap,
		info:   info,
		slots:  make(map[*ast.Variable]int),
		tags:   make(map[ast.Binding]uint),
		ntags:  INVALID_TAG + 1,
	}
	//
	g.generateBlock(block, 0)
	//
	return Plan{g.items, g.ntags, ast.Fingerprint(block)}, g.diagnostics
}

type generator struct {
	srcmap *source.Map[ast.Node]
	info   *analysis.Info
	items  []Item
	// Current height of the stack
	height int
	// Stack position of each variable in scope, where 1 is the bottom
	slots map[*ast.Variable]int
	// Tags allocated for labels and functions
	tags        map[ast.Binding]uint
	ntags       uint
	diagnostics []source.Diagnostic
}

// ============================================================================
// Statements
// ============================================================================

// Generate a block whose given number of locals are already on the stack.  Any
// variables declared by the block itself are removed on exit.
func (p *generator) generateBlock(block *ast.Block, locals int) {
	var (
		base     = p.height - locals
		declared = len(p.info.Scope(block).Variables()) - locals
	)
	//
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			p.generateExpr(s.Value)
			p.slots[s.Variable] = p.height
			locals++
		case *ast.Label:
			p.emit(Tag(p.tagOf(s)))
			//
			if n, ok := s.StackAdjustment(); ok {
				p.height = max(0, base+locals+n)
			}
		default:
			p.generateStatement(stmt)
		}
	}
	// Release locals
	for range max(0, declared) {
		p.operation(dialect.POP)
	}
}

func (p *generator) generateStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.generateBlock(s, 0)
	case *ast.FunctionDefinition:
		p.generateFunction(s)
	case *ast.Assignment:
		p.generateExpr(s.Value)
		p.assign(s.Target)
	case *ast.StackAssignment:
		p.assign(s.Target)
	case *ast.Identifier:
		p.generateIdentifier(s)
	case *ast.Call:
		p.generateCall(s)
	case *ast.Literal:
		p.generateLiteral(s)
	default:
		panic(fmt.Sprintf("unknown statement %T", stmt))
	}
}

// Generate a function definition in place, such that it is skipped over by
// normal control flow.  On entry, the stack holds the return tag followed by
// the arguments, with the first argument on top.
func (p *generator) generateFunction(fn *ast.FunctionDefinition) {
	var (
		height = p.height
		skip   = p.newTag()
		nargs  = len(fn.Params)
	)
	// Skip over body
	p.jumpTo(skip)
	p.emit(Tag(p.tagOf(fn)))
	// Layout the frame
	p.height = 1 + nargs
	//
	for i, v := range fn.Params {
		p.slots[v] = 1 + nargs - i
	}
	//
	for _, v := range fn.Returns {
		p.emit(Push(big.NewInt(0)))
		p.slots[v] = p.height
	}
	//
	p.generateBlock(fn.Body, nargs+len(fn.Returns))
	p.exitFunction(fn)
	p.operation(dialect.JUMP)
	p.emit(Tag(skip))
	//
	p.height = height
}

// Reshuffle the stack on exit from a function, such that the arguments are
// discarded and the return values are left in order with the return tag on
// top.
func (p *generator) exitFunction(fn *ast.FunctionDefinition) {
	var (
		nargs = len(fn.Params)
		nrets = len(fn.Returns)
		// layout[i] gives the final position of the item at position i, or -1
		// if it is discarded.
		layout = make([]int, 0, 1+nargs+nrets)
	)
	//
	layout = append(layout, nrets)
	//
	for range nargs {
		layout = append(layout, -1)
	}
	//
	for i := range nrets {
		layout = append(layout, i)
	}
	//
	for n := len(layout); n > 0 && layout[n-1] != n-1; n = len(layout) {
		if target := layout[n-1]; target < 0 {
			p.operation(dialect.POP)
			layout = layout[:n-1]
		} else if depth := n - 1 - target; depth > dialect.MAX_STACK_ACCESS {
			p.report(fn, "variable inaccessible, too deep inside stack")
			return
		} else {
			p.operation(dialect.Swap(uint(depth)))
			layout[target], layout[n-1] = layout[n-1], layout[target]
		}
	}
}

// ============================================================================
// Expressions
// ============================================================================

func (p *generator) generateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		p.generateLiteral(e)
	case *ast.Identifier:
		p.generateIdentifier(e)
	case *ast.Call:
		p.generateCall(e)
	default:
		panic(fmt.Sprintf("unknown expression %T", expr))
	}
}

func (p *generator) generateLiteral(lit *ast.Literal) {
	if lit.Kind == ast.STRING {
		// Strings are left-aligned within the word
		word := make([]byte, dialect.WORD_SIZE)
		copy(word, lit.Value)
		p.emit(Push(new(big.Int).SetBytes(word)))
	} else if value, ok := analysis.NumberValue(lit); ok {
		p.emit(Push(value))
	} else {
		panic(fmt.Sprintf("invalid number literal %s", lit.Value))
	}
}

func (p *generator) generateIdentifier(id *ast.Identifier) {
	switch b := id.Binding().(type) {
	case *ast.InstructionBinding:
		p.operation(b.Instruction)
	case *ast.Variable:
		if depth, ok := p.depthOf(id, b, 0); ok {
			p.operation(dialect.Dup(depth))
		} else {
			// keep height consistent
			p.height++
		}
	case *ast.Label:
		p.emit(PushTag(p.tagOf(b)))
	case *ast.PlaceholderBinding:
		p.emit(PushTag(INVALID_TAG))
	default:
		panic(fmt.Sprintf("unresolved identifier %s", id.Name))
	}
}

// Generate a call, whose arguments are evaluated from last to first such that
// the first argument ends up on top of the stack.
func (p *generator) generateCall(call *ast.Call) {
	switch b := call.Callee.Binding().(type) {
	case *ast.InstructionBinding:
		for i := len(call.Args) - 1; i >= 0; i-- {
			p.generateExpr(call.Args[i])
		}
		//
		p.operation(b.Instruction)
	case *ast.FunctionDefinition:
		var (
			height = p.height
			ret    = p.newTag()
		)
		//
		p.emit(PushTag(ret))
		//
		for i := len(call.Args) - 1; i >= 0; i-- {
			p.generateExpr(call.Args[i])
		}
		//
		p.jumpTo(p.tagOf(b))
		p.emit(Tag(ret))
		p.height = height + len(b.Returns)
	default:
		panic(fmt.Sprintf("invalid call to %s", call.Callee.Name))
	}
}

// Assign the value on top of the stack to a given variable.
func (p *generator) assign(target *ast.Identifier) {
	v := target.Binding().(*ast.Variable)
	//
	if depth, ok := p.depthOf(target, v, 1); ok {
		p.operation(dialect.Swap(depth))
		p.operation(dialect.POP)
	} else {
		p.height--
	}
}

// ============================================================================
// Helpers
// ============================================================================

// Determine the depth of a variable within the stack, relative to a given
// offset from the top.  An error is reported if it cannot be reached.
func (p *generator) depthOf(node ast.Node, v *ast.Variable, offset int) (uint, bool) {
	depth := p.height - p.slots[v] + 1 - offset
	//
	if depth < 1 || depth > dialect.MAX_STACK_ACCESS {
		p.report(node, "variable inaccessible, too deep inside stack")
		return 0, false
	}
	//
	return uint(depth), true
}

// Determine the tag for a given label or function, allocating one if
// necessary.
func (p *generator) tagOf(binding ast.Binding) uint {
	if tag, ok := p.tags[binding]; ok {
		return tag
	}
	//
	tag := p.newTag()
	p.tags[binding] = tag
	//
	return tag
}

func (p *generator) newTag() uint {
	p.ntags++
	return p.ntags - 1
}

func (p *generator) jumpTo(tag uint) {
	p.emit(PushTag(tag))
	p.operation(dialect.JUMP)
}

func (p *generator) operation(insn dialect.Instruction) {
	p.emit(Operation(insn.Opcode()))
	p.height += int(insn.Out()) - int(insn.In())
}

func (p *generator) emit(item Item) {
	p.items = append(p.items, item)
	//
	if item.Kind == PUSH || item.Kind == PUSH_TAG {
		p.height++
	}
}

func (p *generator) report(node ast.Node, msg string) {
	p.diagnostics = append(p.diagnostics, p.srcmap.Diagnostic(node, source.CODEGEN_ERROR, msg))
}

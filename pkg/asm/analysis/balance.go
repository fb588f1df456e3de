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
	"fmt"

	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// CheckStackBalance checks that every block leaves the stack as it found it,
// once its local variables have been removed.  Function bodies are checked
// independently, with their parameters and returns counted as locals.  An
// unbalanced block is reported with a warning.  This requires identifiers to
// have been resolved already.
func CheckStackBalance(block *ast.Block, srcmap *source.Map[ast.Node]) []source.Diagnostic {
	var b = balancer{srcmap: srcmap}
	//
	b.checkBlock(block, 0)
	//
	return b.diagnostics
}

type balancer struct {
	srcmap *source.Map[ast.Node]
	// Combined surplus of the nested blocks of the block being checked
	nested      int
	diagnostics []source.Diagnostic
}

// Check a block whose given number of locals are already on the stack, and
// return its surplus (i.e. the number of items it leaves on the stack after
// its locals are removed).  Only the surplus arising from the block's own
// statements is reported, since that of any nested block is reported by the
// nested block itself.
func (p *balancer) checkBlock(block *ast.Block, locals int) int {
	var (
		height = locals
		outer  = p.nested
	)
	//
	p.nested = 0
	//
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			height += p.effect(s.Value)
			locals++
		case *ast.Label:
			if n, ok := s.StackAdjustment(); ok {
				height = locals + n
				//
				if height < 0 {
					p.report(s, source.TYPE_ERROR, fmt.Sprintf("invalid stack height %d for label %s", height, s.Name))
					height = 0
				}
			}
		default:
			height += p.effect(stmt)
		}
	}
	//
	var (
		surplus = height - locals
		own     = surplus - p.nested
	)
	//
	if own > 0 {
		p.report(block, source.WARNING, fmt.Sprintf("block is not balanced, it leaves %d item(s) on the stack", own))
	} else if own < 0 {
		p.report(block, source.WARNING, fmt.Sprintf("block is not balanced, it takes %d item(s) from the stack", -own))
	}
	//
	p.nested = outer
	//
	return surplus
}

// Determine the net effect of a given statement on the height of the stack.
func (p *balancer) effect(stmt ast.Stmt) int {
	switch s := stmt.(type) {
	case *ast.Literal:
		return 1
	case *ast.Identifier:
		return p.identifierEffect(s)
	case *ast.Call:
		var height int
		//
		for _, arg := range s.Args {
			height += p.effect(arg)
		}
		//
		switch b := s.Callee.Binding().(type) {
		case *ast.InstructionBinding:
			return height + int(b.Instruction.Out()) - int(b.Instruction.In())
		case *ast.FunctionDefinition:
			return height + len(b.Returns) - len(b.Params)
		default:
			return height
		}
	case *ast.Assignment:
		return p.effect(s.Value) - 1
	case *ast.StackAssignment:
		return -1
	case *ast.Block:
		surplus := p.checkBlock(s, 0)
		p.nested += surplus
		//
		return surplus
	case *ast.FunctionDefinition:
		p.checkBlock(s.Body, len(s.Params)+len(s.Returns))
		return 0
	default:
		return 0
	}
}

func (p *balancer) identifierEffect(id *ast.Identifier) int {
	switch b := id.Binding().(type) {
	case *ast.InstructionBinding:
		return int(b.Instruction.Out()) - int(b.Instruction.In())
	case *ast.Variable, *ast.Label, *ast.PlaceholderBinding:
		return 1
	default:
		return 0
	}
}

func (p *balancer) report(node ast.Node, kind source.Kind, msg string) {
	p.diagnostics = append(p.diagnostics, p.srcmap.Diagnostic(node, kind, msg))
}

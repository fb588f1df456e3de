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
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// Resolve constructs the scope of every block, checks declarations for
// collisions and resolves every identifier to its binding.  Arity is checked
// for every call, and every expression is checked to produce exactly one
// value.  Scopes are recorded in the given info.  Any bindings from a previous
// resolution of the same tree are discarded first.
func Resolve(block *ast.Block, srcmap *source.Map[ast.Node], d *dialect.Dialect, info *Info) []source.Diagnostic {
	r := resolver{srcmap, d, NewFrames(d), info, nil, make(map[*ast.Label]bool), nil}
	//
	ast.Walk(block, func(node ast.Node) bool {
		if id, ok := node.(*ast.Identifier); ok && id.IsResolved() {
			id.Unresolve()
		}
		//
		return true
	})
	//
	r.resolveBlock(block, nil)
	// Report unreferenced labels
	for _, label := range r.labels {
		if !r.referenced[label] {
			r.report(label, source.WARNING, fmt.Sprintf("label %s is not referenced", label.Name))
		}
	}
	//
	return r.diagnostics
}

type resolver struct {
	srcmap  *source.Map[ast.Node]
	dialect *dialect.Dialect
	frames  Frames
	info    *Info
	// Labels in order of declaration
	labels []*ast.Label
	// Labels referenced at least once
	referenced  map[*ast.Label]bool
	diagnostics []source.Diagnostic
}

// Resolve a block (which may be the body of a function) in a new scope.
func (p *resolver) resolveBlock(block *ast.Block, fn *ast.FunctionDefinition) {
	scope := NewScope(fn)
	//
	p.info.scopes[block] = scope
	p.frames.Enter(scope)
	// Parameters and returns are locals of the body
	if fn != nil {
		for _, v := range fn.Params {
			p.declare(v.Name, v, v)
		}
		//
		for _, v := range fn.Returns {
			p.declare(v.Name, v, v)
		}
	}
	// Hoist labels and functions
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.Label:
			if p.declare(s.Name, s, s) {
				p.labels = append(p.labels, s)
			}
		case *ast.FunctionDefinition:
			p.declare(s.Name, s, s)
		}
	}
	//
	for i, stmt := range block.Statements {
		// Bare jumps take their target from the preceding statement
		if i+1 < len(block.Statements) && p.isBareJumpTarget(stmt, block.Statements[i+1]) {
			continue
		}
		//
		p.resolveStatement(stmt)
	}
	//
	p.frames.Exit()
}

func (p *resolver) resolveStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.resolveBlock(s, nil)
	case *ast.FunctionDefinition:
		p.resolveBlock(s.Body, s)
	case *ast.VariableDeclaration:
		p.resolveExpr(s.Value)
		// Not visible in its own initialiser
		p.declare(s.Variable.Name, s.Variable, s.Variable)
	case *ast.Assignment:
		p.resolveExpr(s.Value)
		p.resolveTarget(s.Target)
	case *ast.StackAssignment:
		p.resolveTarget(s.Target)
	case *ast.Identifier:
		if _, ok := p.resolveIdentifier(s).(*ast.FunctionDefinition); ok {
			p.report(s, source.TYPE_ERROR, fmt.Sprintf("function %s cannot be used as a value", s.Name))
		}
	case *ast.Call:
		p.resolveCall(s)
	case *ast.Label, *ast.Literal:
		// nothing to do
	default:
		panic(fmt.Sprintf("unknown statement %T", stmt))
	}
}

// Resolve an expression which is expected to produce exactly one value.
func (p *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// nothing to do
	case *ast.Identifier:
		switch b := p.resolveIdentifier(e).(type) {
		case *ast.FunctionDefinition:
			p.report(e, source.TYPE_ERROR, fmt.Sprintf("function %s cannot be used as a value", e.Name))
		case *ast.InstructionBinding:
			if b.Instruction.In() != 0 {
				p.report(e, source.TYPE_ERROR, fmt.Sprintf("instruction %s expects %d arguments, got 0", e.Name,
					b.Instruction.In()))
			} else if b.Instruction.Out() != 1 {
				p.report(e, source.TYPE_ERROR, fmt.Sprintf("instruction %s does not produce a value", e.Name))
			}
		}
	case *ast.Call:
		if n, ok := p.resolveCall(e); ok && n != 1 {
			p.report(e, source.TYPE_ERROR, fmt.Sprintf("%s produces %d values where one is expected", e.Callee.Name, n))
		}
	default:
		panic(fmt.Sprintf("unknown expression %T", expr))
	}
}

// Resolve a call, returning the number of values it produces (if known).
func (p *resolver) resolveCall(call *ast.Call) (uint, bool) {
	var (
		binding = p.resolveIdentifier(call.Callee)
		nargs   = uint(len(call.Args))
	)
	//
	for i, arg := range call.Args {
		if i == 0 && p.isJumpTarget(binding, arg) {
			continue
		}
		//
		p.resolveExpr(arg)
	}
	//
	switch b := binding.(type) {
	case *ast.InstructionBinding:
		if b.Instruction.In() != nargs {
			p.report(call, source.TYPE_ERROR, fmt.Sprintf("instruction %s expects %d arguments, got %d", call.Callee.Name,
				b.Instruction.In(), nargs))
		}
		//
		return b.Instruction.Out(), true
	case *ast.FunctionDefinition:
		if uint(len(b.Params)) != nargs {
			p.report(call, source.TYPE_ERROR, fmt.Sprintf("function %s expects %d arguments, got %d", call.Callee.Name,
				len(b.Params), nargs))
		}
		//
		return uint(len(b.Returns)), true
	case nil:
		// already reported
		return 0, false
	default:
		p.report(call.Callee, source.TYPE_ERROR, fmt.Sprintf("%s %s cannot be called", b.Description(), call.Callee.Name))
		//
		return 0, false
	}
}

// Check whether the given statement is the unresolvable target of a bare jump
// (e.g. "nowhere jump") which immediately follows it.
func (p *resolver) isBareJumpTarget(stmt ast.Stmt, next ast.Stmt) bool {
	var (
		id, ok1   = stmt.(*ast.Identifier)
		jump, ok2 = next.(*ast.Identifier)
	)
	//
	if !ok1 || !ok2 {
		return false
	} else if insn, ok := p.dialect.Instruction(jump.Name); !ok || !insn.IsJump() {
		return false
	}
	//
	return p.isUnresolvedTarget(id)
}

// Check whether the given argument is the unresolvable target of a functional
// jump.
func (p *resolver) isJumpTarget(callee ast.Binding, arg ast.Expr) bool {
	var (
		insn, ok1 = callee.(*ast.InstructionBinding)
		id, ok2   = arg.(*ast.Identifier)
	)
	//
	if !ok1 || !ok2 || !insn.Instruction.IsJump() {
		return false
	}
	//
	return p.isUnresolvedTarget(id)
}

// Check whether a jump target cannot be resolved.  If so, it is bound to the
// always-fails placeholder and a warning is reported.
func (p *resolver) isUnresolvedTarget(id *ast.Identifier) bool {
	if _, _, found := p.frames.Lookup(id.Name); found || p.dialect.IsInstruction(id.Name) {
		return false
	}
	//
	p.report(id, source.WARNING, fmt.Sprintf("jump target %s not found, using invalid jump label", id.Name))
	id.Resolve(&ast.PlaceholderBinding{Name: id.Name})
	//
	return true
}

// Resolve the target of an assignment, which must be a variable.
func (p *resolver) resolveTarget(target *ast.Identifier) {
	if p.dialect.IsInstruction(target.Name) {
		p.report(target, source.DECLARATION_ERROR, "identifier expected, got instruction name")
		return
	}
	//
	switch b := p.resolveIdentifier(target).(type) {
	case *ast.Variable, nil:
		// fine, or already reported
	default:
		p.report(target, source.TYPE_ERROR, fmt.Sprintf("cannot assign to %s %s", b.Description(), target.Name))
	}
}

// Resolve an identifier by searching the enclosing scopes and, failing that,
// the instruction table.  If this fails, an error is reported and nil is
// returned.
func (p *resolver) resolveIdentifier(id *ast.Identifier) ast.Binding {
	binding, boundary, ok := p.frames.Lookup(id.Name)
	//
	if !ok {
		insn, ok := p.dialect.Instruction(id.Name)
		if !ok {
			p.report(id, source.DECLARATION_ERROR, fmt.Sprintf("identifier %s not found", id.Name))
			return nil
		}
		//
		binding = &ast.InstructionBinding{Instruction: insn}
	}
	//
	switch b := binding.(type) {
	case *ast.BuiltinBinding:
		p.report(id, source.DECLARATION_ERROR, fmt.Sprintf("built-in %s is not accessible from assembly", id.Name))
		return nil
	case *ast.Variable, *ast.Label:
		if boundary != nil {
			p.report(id, source.DECLARATION_ERROR, fmt.Sprintf("%s %s not accessible from within function %s",
				binding.Description(), id.Name, boundary.Name))
			//
			return nil
		} else if label, ok := b.(*ast.Label); ok {
			p.referenced[label] = true
		}
	}
	//
	id.Resolve(binding)
	//
	return binding
}

// Declare a new binding in the innermost scope, returning true if this
// succeeded.
func (p *resolver) declare(name string, binding ast.Binding, node ast.Node) bool {
	if p.dialect.IsInstruction(name) {
		p.report(node, source.DECLARATION_ERROR, "cannot use instruction names for identifier names")
		return false
	} else if !p.frames.Innermost().Declare(name, binding) {
		p.report(node, source.DECLARATION_ERROR, fmt.Sprintf("%s %s already declared", binding.Description(), name))
		return false
	}
	//
	return true
}

func (p *resolver) report(node ast.Node, kind source.Kind, msg string) {
	p.diagnostics = append(p.diagnostics, p.srcmap.Diagnostic(node, kind, msg))
}

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
	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/collection/stack"
)

// Scope represents the symbol table of a single block.  Labels and functions
// declared in the block are visible throughout, whilst variables are visible
// only after their declaration.
type Scope struct {
	// Function whose body this scope represents (or nil).
	function *ast.FunctionDefinition
	// Bindings declared in this scope
	bindings map[string]ast.Binding
	// Variables declared in this scope, in order of declaration.
	variables []*ast.Variable
}

// NewScope constructs an initially empty scope.  If the scope is the body of
// a function, then this must be provided.
func NewScope(function *ast.FunctionDefinition) *Scope {
	return &Scope{function, make(map[string]ast.Binding), nil}
}

// Function returns the function whose body this scope represents, or nil if
// it is not a function body.
func (p *Scope) Function() *ast.FunctionDefinition {
	return p.function
}

// Lookup a binding declared in this scope.
func (p *Scope) Lookup(name string) (ast.Binding, bool) {
	binding, ok := p.bindings[name]
	return binding, ok
}

// Variables returns the variables declared in this scope, in order of
// declaration.
func (p *Scope) Variables() []*ast.Variable {
	return p.variables
}

// Declare a new binding in this scope.  This fails if a binding of the same
// name already exists in this scope.
func (p *Scope) Declare(name string, binding ast.Binding) bool {
	if _, ok := p.bindings[name]; ok {
		return false
	}
	//
	p.bindings[name] = binding
	//
	if v, ok := binding.(*ast.Variable); ok {
		p.variables = append(p.variables, v)
	}
	//
	return true
}

// Frames represents the chain of scopes enclosing the current point of
// analysis.  The bottom frame is always the synthetic scope holding the
// dialect's contextual built-ins and placeholders.
type Frames struct {
	frames *stack.Stack[*Scope]
}

// NewFrames constructs a chain consisting only of the synthetic outermost
// scope for a given dialect.
func NewFrames(d *dialect.Dialect) Frames {
	var (
		frames = stack.NewStack[*Scope]()
		root   = NewScope(nil)
	)
	//
	for _, name := range d.Builtins() {
		root.Declare(name, &ast.BuiltinBinding{Name: name})
	}
	//
	for _, name := range d.Placeholders() {
		root.Declare(name, &ast.PlaceholderBinding{Name: name})
	}
	//
	frames.Push(root)
	//
	return Frames{frames}
}

// Enter a new (innermost) scope.
func (p Frames) Enter(scope *Scope) {
	p.frames.Push(scope)
}

// Exit the innermost scope.
func (p Frames) Exit() *Scope {
	return p.frames.Pop()
}

// Innermost returns the innermost scope.
func (p Frames) Innermost() *Scope {
	return p.frames.Peek(0)
}

// Lookup a name by searching outwards from the innermost scope.  If the name
// is found beyond the body of some function, that function is also returned.
// Since a function body does not share the stack of its caller, variables and
// labels found beyond a function boundary are not accessible.
func (p Frames) Lookup(name string) (ast.Binding, *ast.FunctionDefinition, bool) {
	var boundary *ast.FunctionDefinition
	//
	for i := uint(0); i < p.frames.Len(); i++ {
		scope := p.frames.Peek(i)
		//
		if binding, ok := scope.Lookup(name); ok {
			return binding, boundary, true
		} else if boundary == nil && scope.function != nil {
			boundary = scope.function
		}
	}
	//
	return nil, nil, false
}

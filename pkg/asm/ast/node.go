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
package ast

import (
	"strconv"

	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util"
)

// Node represents any node of the abstract syntax tree.  Nodes are always
// pointers, and hence can be used as keys in a source map.
type Node interface {
	node()
}

// Stmt represents a statement within a block.  Observe that every expression
// is also a statement (e.g. a bare literal or an instruction call).
type Stmt interface {
	Node
	stmt()
}

// Expr represents an expression which (normally) leaves a single value on the
// stack.
type Expr interface {
	Stmt
	expr()
}

// ============================================================================
// Expressions
// ============================================================================

// NUMBER identifies a decimal or hexadecimal number literal.
const NUMBER = 0

// STRING identifies a quoted string literal.
const STRING = 1

// Literal represents a constant pushed onto the stack.
type Literal struct {
	// Kind is either NUMBER or STRING.
	Kind uint
	// Value holds the source text for a number, or the decoded bytes of a
	// string.
	Value string
}

// NewNumber constructs a number literal from its source text.
func NewNumber(text string) *Literal {
	return &Literal{NUMBER, text}
}

// NewString constructs a string literal from its decoded bytes.
func NewString(bytes string) *Literal {
	return &Literal{STRING, bytes}
}

// Identifier represents a use of a name, such as a variable access, a bare
// instruction or the target of an assignment.  Identifiers are resolved during
// analysis.
type Identifier struct {
	Name    string
	binding Binding
}

// NewIdentifier constructs a new (unresolved) identifier.
func NewIdentifier(name string) *Identifier {
	return &Identifier{name, nil}
}

// IsResolved checks whether this identifier has been resolved already.
func (p *Identifier) IsResolved() bool {
	return p.binding != nil
}

// Resolve this identifier by associating it with the binding to which it
// refers.
func (p *Identifier) Resolve(binding Binding) {
	if binding == nil {
		panic("empty binding")
	} else if p.binding != nil {
		panic("already resolved")
	}
	//
	p.binding = binding
}

// Unresolve this identifier by discarding its binding (if any).
func (p *Identifier) Unresolve() {
	p.binding = nil
}

// Binding returns the binding of this identifier, or nil if it is unresolved.
func (p *Identifier) Binding() Binding {
	return p.binding
}

// Call represents a functional-style invocation of either an instruction or a
// user-defined function, such as "mstore(0, 1)".
type Call struct {
	Callee *Identifier
	Args   []Expr
}

// NewCall constructs a new call node.
func NewCall(callee *Identifier, args ...Expr) *Call {
	return &Call{callee, args}
}

// ============================================================================
// Statements
// ============================================================================

// Variable represents the declaration site of a local variable.  This is
// either the target of a "let", or a parameter or return of a function.
type Variable struct {
	Name string
}

// NewVariable constructs a new variable declaration site.
func NewVariable(name string) *Variable {
	return &Variable{name}
}

// VariableDeclaration represents "let x := e".
type VariableDeclaration struct {
	Variable *Variable
	Value    Expr
}

// NewVariableDeclaration constructs a new variable declaration.
func NewVariableDeclaration(variable *Variable, value Expr) *VariableDeclaration {
	return &VariableDeclaration{variable, value}
}

// Assignment represents the functional assignment "x := e".
type Assignment struct {
	Target *Identifier
	Value  Expr
}

// NewAssignment constructs a new functional assignment.
func NewAssignment(target *Identifier, value Expr) *Assignment {
	return &Assignment{target, value}
}

// StackAssignment represents the legacy assignment "=: x", which pops the top
// of the stack into x.
type StackAssignment struct {
	Target *Identifier
}

// NewStackAssignment constructs a new legacy assignment.
func NewStackAssignment(target *Identifier) *StackAssignment {
	return &StackAssignment{target}
}

// Label represents a jump target, optionally annotated with the expected
// shape of the stack (e.g. "loop[x, y]:" or "other[-2]:").  Each annotation
// item is either an identifier or a (signed) number, held as source text.
type Label struct {
	Name      string
	StackInfo util.Option[[]string]
}

// NewLabel constructs an unannotated label.
func NewLabel(name string) *Label {
	return &Label{name, util.None[[]string]()}
}

// NewAnnotatedLabel constructs a label with a (possibly empty) stack
// annotation.
func NewAnnotatedLabel(name string, items ...string) *Label {
	return &Label{name, util.Some(items)}
}

// StackAdjustment determines the stack height (above the local variables)
// asserted by this label's annotation.  A single number is taken as the height
// itself, whilst a list of items asserts one slot per item.  If the label is
// not annotated, false is returned.
func (p *Label) StackAdjustment() (int, bool) {
	if p.StackInfo.IsEmpty() {
		return 0, false
	}
	//
	items := p.StackInfo.Unwrap()
	//
	if len(items) == 1 {
		if n, err := strconv.Atoi(items[0]); err == nil {
			return n, true
		}
	}
	//
	return len(items), true
}

// Block represents a sequence of statements which introduces a new scope.
type Block struct {
	Statements []Stmt
}

// NewBlock constructs a new block.
func NewBlock(stmts ...Stmt) *Block {
	return &Block{stmts}
}

// FunctionDefinition represents "function f(a, b) -> (x, y) { ... }".
type FunctionDefinition struct {
	Name    string
	Params  []*Variable
	Returns []*Variable
	Body    *Block
}

// NewFunctionDefinition constructs a new function definition.
func NewFunctionDefinition(name string, params []*Variable, returns []*Variable, body *Block) *FunctionDefinition {
	return &FunctionDefinition{name, params, returns, body}
}

// ============================================================================
// Bindings
// ============================================================================

// Binding represents whatever an identifier has been resolved to.
type Binding interface {
	// Description of this kind of binding, as used in error messages.
	Description() string
}

// InstructionBinding is the binding of an identifier spelling a mnemonic.
type InstructionBinding struct {
	Instruction dialect.Instruction
}

// BuiltinBinding is the binding of a contextual built-in of the host language.
type BuiltinBinding struct {
	Name string
}

// PlaceholderBinding is the binding of a name standing for the always-fails
// jump target.
type PlaceholderBinding struct {
	Name string
}

// Description implementation for Binding interface.
func (p *Variable) Description() string { return "variable" }

// Description implementation for Binding interface.
func (p *Label) Description() string { return "label" }

// Description implementation for Binding interface.
func (p *FunctionDefinition) Description() string { return "function" }

// Description implementation for Binding interface.
func (p *InstructionBinding) Description() string { return "instruction" }

// Description implementation for Binding interface.
func (p *BuiltinBinding) Description() string { return "built-in" }

// Description implementation for Binding interface.
func (p *PlaceholderBinding) Description() string { return "label" }

// ============================================================================
// Markers
// ============================================================================

func (p *Literal) node()             {}
func (p *Identifier) node()          {}
func (p *Call) node()                {}
func (p *Variable) node()            {}
func (p *VariableDeclaration) node() {}
func (p *Assignment) node()          {}
func (p *StackAssignment) node()     {}
func (p *Label) node()               {}
func (p *Block) node()               {}
func (p *FunctionDefinition) node()  {}

func (p *Literal) stmt()             {}
func (p *Identifier) stmt()          {}
func (p *Call) stmt()                {}
func (p *VariableDeclaration) stmt() {}
func (p *Assignment) stmt()          {}
func (p *StackAssignment) stmt()     {}
func (p *Label) stmt()               {}
func (p *Block) stmt()               {}
func (p *FunctionDefinition) stmt()  {}

func (p *Literal) expr()    {}
func (p *Identifier) expr() {}
func (p *Call) expr()       {}

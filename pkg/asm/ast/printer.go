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
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// INDENT is the whitespace used for each level of nesting.
const INDENT = "    "

// String returns the canonical textual form of a given node.  This is total
// and deterministic, and re-parsing the result yields an identical tree.
func String(node Node) string {
	var p printer
	//
	p.print(node)
	//
	return p.builder.String()
}

// Fingerprint returns a hash of the canonical form of a given node.  Since
// formatting is canonical, two inputs which differ only in layout or comments
// have the same fingerprint.
func Fingerprint(node Node) uint64 {
	return xxhash.Sum64String(String(node))
}

type printer struct {
	builder strings.Builder
	// current nesting level
	depth uint
}

func (p *printer) print(node Node) {
	switch n := node.(type) {
	case *Block:
		p.printBlock(n)
	case *FunctionDefinition:
		p.printFunction(n)
	case *Literal:
		p.printLiteral(n)
	case *Identifier:
		p.builder.WriteString(n.Name)
	case *Call:
		p.printCall(n)
	case *Variable:
		p.builder.WriteString(n.Name)
	case *VariableDeclaration:
		p.builder.WriteString("let ")
		p.builder.WriteString(n.Variable.Name)
		p.builder.WriteString(" := ")
		p.print(n.Value)
	case *Assignment:
		p.builder.WriteString(n.Target.Name)
		p.builder.WriteString(" := ")
		p.print(n.Value)
	case *StackAssignment:
		p.builder.WriteString("=: ")
		p.builder.WriteString(n.Target.Name)
	case *Label:
		p.printLabel(n)
	default:
		panic(fmt.Sprintf("unknown node %T", node))
	}
}

func (p *printer) printBlock(block *Block) {
	p.builder.WriteString("{")
	//
	p.depth++
	//
	for _, stmt := range block.Statements {
		p.newline()
		p.print(stmt)
	}
	//
	p.depth--
	p.newline()
	p.builder.WriteString("}")
}

func (p *printer) printFunction(fn *FunctionDefinition) {
	p.builder.WriteString("function ")
	p.builder.WriteString(fn.Name)
	p.builder.WriteString("(")
	p.printVariables(fn.Params)
	p.builder.WriteString(")")
	//
	if len(fn.Returns) > 0 {
		p.builder.WriteString(" -> (")
		p.printVariables(fn.Returns)
		p.builder.WriteString(")")
	}
	//
	p.newline()
	p.printBlock(fn.Body)
}

func (p *printer) printVariables(vars []*Variable) {
	for i, v := range vars {
		if i != 0 {
			p.builder.WriteString(", ")
		}
		//
		p.builder.WriteString(v.Name)
	}
}

func (p *printer) printCall(call *Call) {
	p.builder.WriteString(call.Callee.Name)
	p.builder.WriteString("(")
	//
	for i, arg := range call.Args {
		if i != 0 {
			p.builder.WriteString(", ")
		}
		//
		p.print(arg)
	}
	//
	p.builder.WriteString(")")
}

func (p *printer) printLabel(label *Label) {
	p.builder.WriteString(label.Name)
	//
	if label.StackInfo.HasValue() {
		p.builder.WriteString("[")
		p.builder.WriteString(strings.Join(label.StackInfo.Unwrap(), ", "))
		p.builder.WriteString("]")
	}
	//
	p.builder.WriteString(":")
}

func (p *printer) printLiteral(lit *Literal) {
	if lit.Kind == NUMBER {
		p.builder.WriteString(lit.Value)
		return
	}
	//
	p.builder.WriteString("\"")
	p.builder.WriteString(Escape(lit.Value))
	p.builder.WriteString("\"")
}

func (p *printer) newline() {
	p.builder.WriteString("\n")
	//
	for range p.depth {
		p.builder.WriteString(INDENT)
	}
}

// Escape converts the decoded bytes of a string literal into the canonical
// quoted form (without the enclosing quotes).  Printable ASCII is written as
// is, common control characters use single character escapes and all other
// bytes are written in hexadecimal.
func Escape(bytes string) string {
	var builder strings.Builder
	//
	for i := 0; i < len(bytes); i++ {
		c := bytes[i]
		//
		switch c {
		case '\\':
			builder.WriteString("\\\\")
		case '"':
			builder.WriteString("\\\"")
		case '\b':
			builder.WriteString("\\b")
		case '\f':
			builder.WriteString("\\f")
		case '\n':
			builder.WriteString("\\n")
		case '\r':
			builder.WriteString("\\r")
		case '\t':
			builder.WriteString("\\t")
		case '\v':
			builder.WriteString("\\v")
		default:
			if c >= 0x20 && c < 0x7f {
				builder.WriteByte(c)
			} else {
				fmt.Fprintf(&builder, "\\x%02x", c)
			}
		}
	}
	//
	return builder.String()
}

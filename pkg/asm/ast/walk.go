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

// Walk visits a given node and all of its descendants in depth-first
// (pre-order) fashion.  Children are visited in source order.  If the visitor
// returns false for a node, then its children are skipped.
func Walk(node Node, visitor func(Node) bool) {
	if !visitor(node) {
		return
	}
	//
	switch n := node.(type) {
	case *Block:
		for _, stmt := range n.Statements {
			Walk(stmt, visitor)
		}
	case *FunctionDefinition:
		for _, v := range n.Params {
			Walk(v, visitor)
		}
		//
		for _, v := range n.Returns {
			Walk(v, visitor)
		}
		//
		Walk(n.Body, visitor)
	case *Call:
		Walk(n.Callee, visitor)
		//
		for _, arg := range n.Args {
			Walk(arg, visitor)
		}
	case *VariableDeclaration:
		Walk(n.Variable, visitor)
		Walk(n.Value, visitor)
	case *Assignment:
		Walk(n.Target, visitor)
		Walk(n.Value, visitor)
	case *StackAssignment:
		Walk(n.Target, visitor)
	}
}

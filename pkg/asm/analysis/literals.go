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
	"math/big"

	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
	"github.com/ethereum/go-ethereum/common/math"
)

// CheckLiterals ensures every literal fits into a single machine word.  That
// is, strings cannot be longer than the word size, and numbers must fit into
// 256 bits.
func CheckLiterals(block *ast.Block, srcmap *source.Map[ast.Node], d *dialect.Dialect) []source.Diagnostic {
	var diagnostics []source.Diagnostic
	//
	ast.Walk(block, func(node ast.Node) bool {
		lit, ok := node.(*ast.Literal)
		//
		if !ok {
			return true
		} else if lit.Kind == ast.STRING && uint(len(lit.Value)) > d.WordSize() {
			msg := fmt.Sprintf("string literal too long (%d > %d)", len(lit.Value), d.WordSize())
			diagnostics = append(diagnostics, srcmap.Diagnostic(lit, source.TYPE_ERROR, msg))
		} else if _, ok := NumberValue(lit); lit.Kind == ast.NUMBER && !ok {
			diagnostics = append(diagnostics, srcmap.Diagnostic(lit, source.TYPE_ERROR, "number literal too large"))
		}
		//
		return false
	})
	//
	return diagnostics
}

// NumberValue decodes the value of a number literal, which may be decimal or
// hexadecimal.  This fails if the value does not fit into 256 bits.
func NumberValue(lit *ast.Literal) (*big.Int, bool) {
	if lit.Kind != ast.NUMBER {
		return nil, false
	}
	//
	return math.ParseBig256(lit.Value)
}

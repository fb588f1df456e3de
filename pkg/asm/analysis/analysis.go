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
	"github.com/consensys/go-evmasm/pkg/util"
	"github.com/consensys/go-evmasm/pkg/util/source"
)

// Info holds the results of analysis which are not recorded directly in the
// tree itself.
type Info struct {
	scopes map[*ast.Block]*Scope
}

// NewInfo constructs an initially empty info.
func NewInfo() *Info {
	return &Info{make(map[*ast.Block]*Scope)}
}

// Scope returns the scope constructed for a given block, or nil if the block
// was not analysed.
func (p *Info) Scope(block *ast.Block) *Scope {
	return p.scopes[block]
}

// Analyze runs every analysis pass over a given tree in order.  A fatal
// diagnostic arising in one pass does not prevent subsequent passes from
// running, though the stack-balance pass is skipped when name resolution
// failed since the effect of unresolved names is unknown.
func Analyze(block *ast.Block, srcmap *source.Map[ast.Node], d *dialect.Dialect) (*Info, []source.Diagnostic) {
	var (
		info        = NewInfo()
		diagnostics []source.Diagnostic
		stats       = util.NewPerfStats()
	)
	// Scopes, collisions & resolution
	diagnostics = append(diagnostics, Resolve(block, srcmap, d, info)...)
	resolved := source.ContainsOnlyWarnings(diagnostics)
	//
	stats.Log("Name resolution")
	// Literals
	stats = util.NewPerfStats()
	diagnostics = append(diagnostics, CheckLiterals(block, srcmap, d)...)
	stats.Log("Literal validation")
	// Stack balance
	if resolved {
		stats = util.NewPerfStats()
		diagnostics = append(diagnostics, CheckStackBalance(block, srcmap)...)
		stats.Log("Stack balance")
	}
	//
	return info, diagnostics
}

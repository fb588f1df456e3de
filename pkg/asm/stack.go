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
	"slices"

	"github.com/consensys/go-evmasm/pkg/asm/analysis"
	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/codegen"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/asm/parser"
	"github.com/consensys/go-evmasm/pkg/util"
	"github.com/consensys/go-evmasm/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// Stack provides the entry point for processing a single piece of assembly
// code.  Source is first parsed, after which it can be printed in canonical
// form or assembled into an emission plan.  Diagnostics arising from either
// step are accumulated and can be inspected at any point.
type Stack struct {
	dialect *dialect.Dialect
	// Root block of the last successful parse (or nil)
	block  *ast.Block
	srcmap *source.Map[ast.Node]
	// Diagnostics arising from the last parse
	parseErrors []source.Diagnostic
	// Diagnostics arising from the last assembly (if any)
	errors []source.Diagnostic
}

// NewStack constructs an empty stack for a given dialect.
func NewStack(d *dialect.Dialect) *Stack {
	return &Stack{dialect: d}
}

// Parse a given source file, returning true if this succeeded.  Any previous
// state held by this stack is discarded.
func (p *Stack) Parse(srcfile *source.File) bool {
	var stats = util.NewPerfStats()
	//
	log.Debugf("parsing %s", srcfile.Filename())
	//
	block, srcmap, errs := parser.Parse(srcfile, p.dialect)
	p.parseErrors, p.errors = errs, nil
	//
	stats.Log("Parsing")
	//
	if source.ContainsKind(errs, source.PARSER_ERROR) {
		p.block, p.srcmap = nil, nil
		return false
	}
	//
	p.block, p.srcmap = block, srcmap
	//
	return true
}

// String returns the canonical form of the last successful parse, or the empty
// string if there was none.
func (p *Stack) String() string {
	if p.block == nil {
		return ""
	}
	//
	return ast.String(p.block)
}

// Fingerprint returns the fingerprint of the canonical form of the last
// successful parse, or zero if there was none.
func (p *Stack) Fingerprint() uint64 {
	if p.block == nil {
		return 0
	}
	//
	return ast.Fingerprint(p.block)
}

// Assemble the last successful parse into an emission plan.  Diagnostics
// arising replace those of any previous assembly, such that assembling the same
// parse again gives the same result.  No plan is returned if any fatal
// diagnostic arises, or there was no successful parse.
func (p *Stack) Assemble() util.Option[codegen.Plan] {
	if p.block == nil {
		return util.None[codegen.Plan]()
	}
	//
	info, errs := analysis.Analyze(p.block, p.srcmap, p.dialect)
	p.errors = errs
	//
	if !source.ContainsOnlyWarnings(p.Errors()) {
		return util.None[codegen.Plan]()
	}
	//
	stats := util.NewPerfStats()
	plan, errs := codegen.Generate(p.block, p.srcmap, info)
	p.errors = append(p.errors, errs...)
	//
	stats.Log("Code generation")
	//
	if !source.ContainsOnlyWarnings(p.Errors()) {
		return util.None[codegen.Plan]()
	}
	//
	return util.Some(plan)
}

// Errors returns all diagnostics arising from the last parse, followed by
// those of the last assembly.
func (p *Stack) Errors() []source.Diagnostic {
	return append(slices.Clone(p.parseErrors), p.errors...)
}

// Succeeded determines whether a given set of diagnostics indicates success.
// By default, only fatal diagnostics indicate failure.  In strict mode, any
// diagnostic (including warnings) indicates failure.
func Succeeded(diagnostics []source.Diagnostic, strict bool) bool {
	if strict {
		return len(diagnostics) == 0
	}
	//
	return source.ContainsOnlyWarnings(diagnostics)
}

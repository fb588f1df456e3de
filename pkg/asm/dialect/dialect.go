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
package dialect

import (
	"errors"
	"fmt"
	"slices"
)

// KEYWORD_LET introduces a variable declaration.
const KEYWORD_LET = "let"

// KEYWORD_FUNCTION introduces a function definition.
const KEYWORD_FUNCTION = "function"

// WORD_SIZE is the number of bytes in a single machine word.
const WORD_SIZE = 32

// DEFAULT_BUILTINS are the names of the host language's global symbols which
// exist in the outermost scope, but which cannot be accessed from assembly.
var DEFAULT_BUILTINS = []string{
	"abi", "assert", "block", "ecrecover", "gasleft", "msg", "now", "require", "ripemd160", "sha256", "super",
	"this", "tx",
}

// DEFAULT_PLACEHOLDERS are the label names which resolve to the designated
// always-fails tag.
var DEFAULT_PLACEHOLDERS = []string{"invalidJumpLabel"}

// Dialect captures the read-only tables needed to classify, resolve and
// assemble inline assembly.  A dialect is never modified after construction,
// and can therefore be shared freely.
type Dialect struct {
	// Mnemonic lookup (including aliases)
	mnemonics map[string]Instruction
	// Contextual built-ins, in sorted order.
	builtins []string
	// Placeholder labels, in sorted order.
	placeholders []string
	// Word size in bytes
	wordSize uint
}

// Option configures a dialect at construction time.
type Option func(*Dialect)

// WithBuiltins replaces the set of contextual built-ins.
func WithBuiltins(names ...string) Option {
	return func(d *Dialect) {
		d.builtins = sortedSet(names)
	}
}

// WithPlaceholders replaces the set of placeholder label names.
func WithPlaceholders(names ...string) Option {
	return func(d *Dialect) {
		d.placeholders = sortedSet(names)
	}
}

// WithWordSize sets the maximum length (in bytes) of a string literal, which
// cannot exceed the machine word size.
func WithWordSize(n uint) Option {
	return func(d *Dialect) {
		d.wordSize = n
	}
}

// EVM constructs the default dialect, optionally modified by some options.
func EVM(options ...Option) *Dialect {
	d := &Dialect{
		mnemonics:    make(map[string]Instruction),
		builtins:     sortedSet(DEFAULT_BUILTINS),
		placeholders: sortedSet(DEFAULT_PLACEHOLDERS),
		wordSize:     WORD_SIZE,
	}
	//
	for i := range NUM_INSTRUCTIONS {
		insn := Instruction(i)
		d.mnemonics[insn.String()] = insn
	}
	// Legacy aliases
	d.mnemonics["suicide"] = SELFDESTRUCT
	d.mnemonics["sha3"] = KECCAK256
	//
	for _, opt := range options {
		opt(d)
	}
	//
	return d
}

// Validate checks that the contextual names of this dialect are all distinct
// from the keywords and reserved mnemonics.
func (p *Dialect) Validate() error {
	var errs []error
	//
	check := func(what string, names []string) {
		for _, n := range names {
			if n == "" {
				errs = append(errs, fmt.Errorf("empty %s name", what))
			} else if p.IsKeyword(n) {
				errs = append(errs, fmt.Errorf("%s %q is a keyword", what, n))
			} else if _, ok := p.mnemonics[n]; ok {
				errs = append(errs, fmt.Errorf("%s %q is an instruction name", what, n))
			}
		}
	}
	//
	check("built-in", p.builtins)
	check("placeholder", p.placeholders)
	//
	for _, n := range p.placeholders {
		if p.IsBuiltin(n) {
			errs = append(errs, fmt.Errorf("%q is both a built-in and a placeholder", n))
		}
	}
	//
	if p.wordSize == 0 {
		errs = append(errs, errors.New("word size cannot be zero"))
	} else if p.wordSize > WORD_SIZE {
		errs = append(errs, fmt.Errorf("word size cannot exceed %d", WORD_SIZE))
	}
	//
	return errors.Join(errs...)
}

// Instruction looks up the instruction with a given mnemonic (or alias).
func (p *Dialect) Instruction(name string) (Instruction, bool) {
	insn, ok := p.mnemonics[name]
	return insn, ok
}

// IsInstruction checks whether a given name is a reserved mnemonic.
func (p *Dialect) IsInstruction(name string) bool {
	_, ok := p.mnemonics[name]
	return ok
}

// IsKeyword checks whether a given name is one of the assembly keywords.
func (p *Dialect) IsKeyword(name string) bool {
	return name == KEYWORD_LET || name == KEYWORD_FUNCTION
}

// IsBuiltin checks whether a given name is a contextual built-in.
func (p *Dialect) IsBuiltin(name string) bool {
	_, ok := slices.BinarySearch(p.builtins, name)
	return ok
}

// IsPlaceholder checks whether a given name is a placeholder label.
func (p *Dialect) IsPlaceholder(name string) bool {
	_, ok := slices.BinarySearch(p.placeholders, name)
	return ok
}

// Builtins returns the contextual built-ins of this dialect.
func (p *Dialect) Builtins() []string {
	return p.builtins
}

// Placeholders returns the placeholder labels of this dialect.
func (p *Dialect) Placeholders() []string {
	return p.placeholders
}

// Mnemonics returns every reserved mnemonic (including aliases) in sorted
// order.
func (p *Dialect) Mnemonics() []string {
	var names = make([]string, 0, len(p.mnemonics))
	//
	for n := range p.mnemonics {
		names = append(names, n)
	}
	//
	slices.Sort(names)
	//
	return names
}

// WordSize returns the size of a machine word in bytes.
func (p *Dialect) WordSize() uint {
	return p.wordSize
}

func sortedSet(names []string) []string {
	var result = slices.Clone(names)
	//
	slices.Sort(result)
	//
	return slices.Compact(result)
}

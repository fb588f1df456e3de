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
package parser

import (
	"slices"

	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
	"github.com/consensys/go-evmasm/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals whitespace
const WHITESPACE uint = 1

// COMMENT signals "// ... \n" or "/* ... */"
const COMMENT uint = 2

// LBRACE signals "("
const LBRACE uint = 3

// RBRACE signals ")"
const RBRACE uint = 4

// LCURLY signals "{"
const LCURLY uint = 5

// RCURLY signals "}"
const RCURLY uint = 6

// LSQUARE signals "["
const LSQUARE uint = 7

// RSQUARE signals "]"
const RSQUARE uint = 8

// COMMA signals ","
const COMMA uint = 9

// COLON signals ":"
const COLON uint = 10

// EQUALS signals "="
const EQUALS uint = 11

// RIGHTARROW signals "->"
const RIGHTARROW uint = 12

// SUB signals "-"
const SUB uint = 13

// NUMBER signals a decimal or hexadecimal number
const NUMBER uint = 20

// STRING signals a quoted string
const STRING uint = 21

// IDENTIFIER signals a name which is neither a keyword nor a mnemonic
const IDENTIFIER uint = 30

// INSTRUCTION signals a reserved mnemonic
const INSTRUCTION uint = 31

// KEYWORD_LET signals a variable declaration
const KEYWORD_LET uint = 32

// KEYWORD_FUNCTION signals a function definition
const KEYWORD_FUNCTION uint = 33

// Rule for describing whitespace
var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))

// Rule for describing numbers.  A number is either hexadecimal or decimal.
var (
	hexDigit = lex.Or(
		lex.Within('0', '9'),
		lex.Within('A', 'F'),
		lex.Within('a', 'f'),
	)
	hexNumber     = lex.Sequence(lex.String("0x"), lex.Many(hexDigit))
	decimalNumber = lex.Many(lex.Within('0', '9'))
	number        = lex.Or(hexNumber, decimalNumber)
)

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'),
	lex.Unit('$'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Unit('$'),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

// Rule for describing identifiers
var identifier lex.Scanner[rune] = lex.And(identifierStart, identifierRest)

// Rule for describing strings in (single or double) quotes.  Escapes are
// decoded by the parser.
var strung lex.Scanner[rune] = lex.Or(lex.Quoted('"', '\\', '\n'), lex.Quoted('\'', '\\', '\n'))

// Line comments continue until a newline or EOF.
var lineComment lex.Scanner[rune] = lex.And(lex.Unit('/', '/'), lex.Until('\n'))

// Block comments continue until the first "*/".
var blockComment lex.Scanner[rune] = lex.Between([]rune("/*"), []rune("*/"))

var comment lex.Scanner[rune] = lex.Or(lineComment, blockComment)

// lexing rules
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(comment, COMMENT),
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit('{'), LCURLY),
	lex.Rule(lex.Unit('}'), RCURLY),
	lex.Rule(lex.Unit('['), LSQUARE),
	lex.Rule(lex.Unit(']'), RSQUARE),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('-', '>'), RIGHTARROW),
	lex.Rule(lex.Unit('-'), SUB),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(number, NUMBER),
	lex.Rule(strung, STRING),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex a given source file into a sequence of zero or more tokens, along with
// any syntax errors arising.  Identifiers are classified according to the
// given dialect.
func Lex(srcfile *source.File, d *dialect.Dialect) ([]lex.Token, []source.Diagnostic) {
	var (
		lexer = lex.NewLexer(srcfile.Contents(), rules...)
		// Lex as many tokens as possible
		tokens = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start, end := lexer.Index(), lexer.Index()+lexer.Remaining()
		err := srcfile.SyntaxError(source.NewSpan(int(start), int(end)), "unknown text encountered")
		// errors
		return nil, []source.Diagnostic{*err}
	}
	// Numbers cannot run into names or other numbers (e.g. "12ab" or "0xzz")
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Kind == NUMBER && tokens[i].Span.End() == tokens[i+1].Span.Start() {
			if k := tokens[i+1].Kind; k == NUMBER || k == IDENTIFIER {
				span := tokens[i].Span.Join(tokens[i+1].Span)
				return nil, []source.Diagnostic{*srcfile.SyntaxError(span, "invalid number literal")}
			}
		}
	}
	// Remove any whitespace and comments
	tokens = slices.DeleteFunc(tokens, func(t lex.Token) bool { return t.Kind == WHITESPACE || t.Kind == COMMENT })
	// Done
	return Classify(srcfile, tokens, d), nil
}

// Classify reinterprets identifier tokens in the context of a given dialect.
// Keywords and reserved mnemonics are recognised exactly (i.e. case
// sensitively), whilst all other names remain identifiers to be resolved
// later.
func Classify(srcfile *source.File, tokens []lex.Token, d *dialect.Dialect) []lex.Token {
	for i, t := range tokens {
		if t.Kind != IDENTIFIER {
			continue
		}
		//
		switch name := srcfile.Text(t.Span); {
		case name == dialect.KEYWORD_LET:
			tokens[i].Kind = KEYWORD_LET
		case name == dialect.KEYWORD_FUNCTION:
			tokens[i].Kind = KEYWORD_FUNCTION
		case d.IsInstruction(name):
			tokens[i].Kind = INSTRUCTION
		}
	}
	//
	return tokens
}

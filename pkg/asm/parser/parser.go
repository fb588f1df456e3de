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
	"github.com/consensys/go-evmasm/pkg/asm/ast"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
	"github.com/consensys/go-evmasm/pkg/util/source/lex"
)

// Parse accepts a given source file containing exactly one outermost block of
// assembly code, and produces the corresponding abstract syntax tree along
// with a mapping from its nodes to their spans in the original text.  The
// first syntax error encountered aborts the parse.
func Parse(srcfile *source.File, d *dialect.Dialect) (*ast.Block, *source.Map[ast.Node], []source.Diagnostic) {
	parser := NewParser(srcfile, d)
	//
	block, errs := parser.Parse()
	//
	return block, parser.srcmap, errs
}

// ============================================================================
// Parser
// ============================================================================

// Parser is a recursive descent parser for inline assembly.
type Parser struct {
	srcfile *source.File
	dialect *dialect.Dialect
	tokens  []lex.Token
	// Source mapping
	srcmap *source.Map[ast.Node]
	// Position within the tokens
	index int
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File, d *dialect.Dialect) *Parser {
	// Construct (initially empty) source mapping
	srcmap := source.NewSourceMap[ast.Node](srcfile)
	//
	return &Parser{srcfile, d, nil, srcmap, 0}
}

// Parse the given source file into a single root block, or produce a syntax
// error.
func (p *Parser) Parse() (*ast.Block, []source.Diagnostic) {
	var (
		block *ast.Block
		errs  []source.Diagnostic
	)
	// Convert source file into tokens
	if p.tokens, errs = Lex(p.srcfile, p.dialect); len(errs) > 0 {
		return nil, errs
	}
	// Parse root block
	if block, errs = p.parseBlock(); len(errs) > 0 {
		return nil, errs
	}
	// Nothing can follow the root block
	if p.lookahead().Kind != END_OF {
		return nil, p.syntaxErrors(p.lookahead(), "expected end of input")
	}
	//
	return block, nil
}

func (p *Parser) parseBlock() (*ast.Block, []source.Diagnostic) {
	var (
		start = p.index
		stmts []ast.Stmt
		stmt  ast.Stmt
		errs  []source.Diagnostic
	)
	// Parse start of block
	if _, errs = p.expect(LCURLY); len(errs) > 0 {
		return nil, errs
	}
	// Parse statements until end of block
	for p.lookahead().Kind != RCURLY {
		if stmt, errs = p.parseStatement(); len(errs) > 0 {
			return nil, errs
		}
		//
		stmts = append(stmts, stmt)
	}
	// Advance past "}"
	p.match(RCURLY)
	//
	return withSpan(p, ast.NewBlock(stmts...), start), nil
}

func (p *Parser) parseStatement() (ast.Stmt, []source.Diagnostic) {
	lookahead := p.lookahead()
	//
	switch lookahead.Kind {
	case LCURLY:
		return p.parseBlock()
	case KEYWORD_LET:
		return p.parseVariableDeclaration()
	case KEYWORD_FUNCTION:
		return p.parseFunctionDefinition()
	case EQUALS:
		return p.parseStackAssignment()
	case NUMBER, STRING:
		return p.parseLiteral()
	case IDENTIFIER, INSTRUCTION:
		return p.parseNamedStatement()
	case END_OF:
		return nil, p.syntaxErrors(lookahead, "unexpected end of input")
	default:
		return nil, p.syntaxErrors(lookahead, "unexpected token")
	}
}

// Parse a statement beginning with a name.  This is either a call, a
// functional assignment, a label or a bare identifier.
func (p *Parser) parseNamedStatement() (ast.Stmt, []source.Diagnostic) {
	var (
		start     = p.index
		name, _   = p.parseName()
		stackInfo []string
		errs      []source.Diagnostic
	)
	//
	switch {
	case p.follows(LBRACE):
		return p.parseCall(name, start)
	case p.follows(COLON, EQUALS) && !p.followsAt(2, COLON):
		var value ast.Expr
		// Advance past ":="
		p.index += 2
		//
		if value, errs = p.parseExpr(); len(errs) > 0 {
			return nil, errs
		}
		//
		target := withSpan(p, ast.NewIdentifier(name), start, start)
		//
		return withSpan(p, ast.NewAssignment(target, value), start), nil
	case p.match(COLON):
		return withSpan(p, ast.NewLabel(name), start), nil
	case p.follows(LSQUARE):
		if stackInfo, errs = p.parseStackInfo(); len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(COLON); len(errs) > 0 {
			return nil, errs
		}
		//
		return withSpan(p, ast.NewAnnotatedLabel(name, stackInfo...), start), nil
	default:
		return withSpan(p, ast.NewIdentifier(name), start), nil
	}
}

// Parse a label's stack annotation, such as "[x, y]", "[-2]" or "[]".
func (p *Parser) parseStackInfo() ([]string, []source.Diagnostic) {
	var (
		items = []string{}
		token lex.Token
		errs  []source.Diagnostic
	)
	// Parse start of annotation
	if _, errs = p.expect(LSQUARE); len(errs) > 0 {
		return nil, errs
	}
	// Parse entries until end bracket
	for p.lookahead().Kind != RSQUARE {
		// look for ","
		if len(items) != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		switch {
		case p.match(SUB):
			if token, errs = p.expect(NUMBER); len(errs) > 0 {
				return nil, errs
			}
			//
			items = append(items, "-"+p.string(token))
		case p.follows(NUMBER):
			items = append(items, p.string(p.next()))
		default:
			var name string
			//
			if name, errs = p.parseName(); len(errs) > 0 {
				return nil, errs
			}
			//
			items = append(items, name)
		}
	}
	// Advance past "]"
	p.match(RSQUARE)
	//
	return items, nil
}

// Parse "let x := e"
func (p *Parser) parseVariableDeclaration() (ast.Stmt, []source.Diagnostic) {
	var (
		start = p.index
		name  string
		value ast.Expr
		errs  []source.Diagnostic
	)
	//
	if _, errs = p.expect(KEYWORD_LET); len(errs) > 0 {
		return nil, errs
	}
	//
	nameIndex := p.index
	//
	if name, errs = p.parseName(); len(errs) > 0 {
		return nil, errs
	} else if errs = p.parseAssignmentOp(); len(errs) > 0 {
		return nil, errs
	} else if value, errs = p.parseExpr(); len(errs) > 0 {
		return nil, errs
	}
	//
	variable := withSpan(p, ast.NewVariable(name), nameIndex, nameIndex)
	//
	return withSpan(p, ast.NewVariableDeclaration(variable, value), start), nil
}

// Parse "=: x"
func (p *Parser) parseStackAssignment() (ast.Stmt, []source.Diagnostic) {
	var (
		start = p.index
		name  string
		errs  []source.Diagnostic
	)
	//
	if _, errs = p.expect(EQUALS); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(COLON); len(errs) > 0 {
		return nil, errs
	}
	//
	nameIndex := p.index
	//
	if name, errs = p.parseName(); len(errs) > 0 {
		return nil, errs
	}
	//
	target := withSpan(p, ast.NewIdentifier(name), nameIndex, nameIndex)
	//
	return withSpan(p, ast.NewStackAssignment(target), start), nil
}

// Parse "function f(a, b) -> (x, y) { ... }"
func (p *Parser) parseFunctionDefinition() (ast.Stmt, []source.Diagnostic) {
	var (
		start           = p.index
		name            string
		params, returns []*ast.Variable
		body            *ast.Block
		errs            []source.Diagnostic
	)
	// Parse function declaration
	if _, errs = p.expect(KEYWORD_FUNCTION); len(errs) > 0 {
		return nil, errs
	}
	// Parse function name
	if name, errs = p.parseName(); len(errs) > 0 {
		return nil, errs
	}
	// Parse parameters
	if params, errs = p.parseVariableList(); len(errs) > 0 {
		return nil, errs
	}
	// Parse optional '->'
	if p.match(RIGHTARROW) {
		// Parse returns
		if returns, errs = p.parseVariableList(); len(errs) > 0 {
			return nil, errs
		}
	}
	// Parse body
	if body, errs = p.parseBlock(); len(errs) > 0 {
		return nil, errs
	}
	//
	return withSpan(p, ast.NewFunctionDefinition(name, params, returns, body), start), nil
}

func (p *Parser) parseVariableList() ([]*ast.Variable, []source.Diagnostic) {
	var (
		vars []*ast.Variable
		name string
		errs []source.Diagnostic
	)
	// Parse start of list
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	// Parse entries until end brace
	for p.lookahead().Kind != RBRACE {
		// look for ","
		if len(vars) != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		index := p.index
		//
		if name, errs = p.parseName(); len(errs) > 0 {
			return nil, errs
		}
		//
		vars = append(vars, withSpan(p, ast.NewVariable(name), index, index))
	}
	// Advance past ")"
	p.match(RBRACE)
	//
	return vars, nil
}

// ============================================================================
// Expressions
// ============================================================================

func (p *Parser) parseExpr() (ast.Expr, []source.Diagnostic) {
	var (
		start     = p.index
		lookahead = p.lookahead()
	)
	//
	switch lookahead.Kind {
	case NUMBER, STRING:
		return p.parseLiteral()
	case IDENTIFIER, INSTRUCTION:
		name, _ := p.parseName()
		//
		if p.follows(LBRACE) {
			return p.parseCall(name, start)
		}
		//
		return withSpan(p, ast.NewIdentifier(name), start), nil
	default:
		return nil, p.syntaxErrors(lookahead, "expected expression")
	}
}

// Parse the arguments of a call, given the name of its callee which has
// already been consumed.
func (p *Parser) parseCall(name string, start int) (*ast.Call, []source.Diagnostic) {
	var (
		args []ast.Expr
		arg  ast.Expr
		errs []source.Diagnostic
	)
	//
	callee := withSpan(p, ast.NewIdentifier(name), start, start)
	// Parse start of arguments
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	// Parse arguments until end brace
	for p.lookahead().Kind != RBRACE {
		// look for ","
		if len(args) != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		if arg, errs = p.parseExpr(); len(errs) > 0 {
			return nil, errs
		}
		//
		args = append(args, arg)
	}
	// Advance past ")"
	p.match(RBRACE)
	//
	return withSpan(p, ast.NewCall(callee, args...), start), nil
}

func (p *Parser) parseLiteral() (*ast.Literal, []source.Diagnostic) {
	var (
		start = p.index
		token = p.next()
	)
	//
	switch token.Kind {
	case NUMBER:
		return withSpan(p, ast.NewNumber(p.string(token)), start), nil
	case STRING:
		bytes, err := DecodeString(p.srcfile.Contents()[token.Span.Start():token.Span.End()])
		if err != nil {
			return nil, p.syntaxErrors(token, err.Error())
		}
		//
		return withSpan(p, ast.NewString(bytes), start), nil
	default:
		return nil, p.syntaxErrors(token, "expected literal")
	}
}

// Parse ":=" which is made up of two distinct tokens.
func (p *Parser) parseAssignmentOp() []source.Diagnostic {
	if _, errs := p.expect(COLON); len(errs) > 0 {
		return errs
	} else if _, errs := p.expect(EQUALS); len(errs) > 0 {
		return errs
	}
	//
	return nil
}

// Parse a name, which may be either an identifier or an instruction mnemonic.
// Whether or not an instruction is permitted in a given position is checked
// later.
func (p *Parser) parseName() (string, []source.Diagnostic) {
	token := p.lookahead()
	//
	if token.Kind != IDENTIFIER && token.Kind != INSTRUCTION {
		return "", p.syntaxErrors(token, "expected identifier")
	}
	//
	p.index++
	//
	return p.string(token), nil
}

// ============================================================================
// Helpers
// ============================================================================

// Register a node with the source map, giving it the span from a given start
// token upto (and including) either the last token consumed or the given end
// token.
func withSpan[T ast.Node](p *Parser, node T, start int, end ...int) T {
	last := p.index - 1
	//
	if len(end) > 0 {
		last = end[0]
	}
	//
	p.srcmap.Put(node, p.spanOf(start, last))
	//
	return node
}

func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// Next returns the next token and advances past it.
func (p *Parser) next() lex.Token {
	token := p.tokens[p.index]
	p.index++
	//
	return token
}

// Expect returns an error if the next token is not what was expected.
func (p *Parser) expect(kind uint) (lex.Token, []source.Diagnostic) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		errs := p.syntaxErrors(lookahead, "unexpected token")
		return lookahead, errs
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

// Follows attempts to check what follows the current position.
func (p *Parser) follows(kinds ...uint) bool {
	return p.followsAt(0, kinds...)
}

// FollowsAt checks what follows a given offset from the current position.
func (p *Parser) followsAt(offset int, kinds ...uint) bool {
	for i, kind := range kinds {
		n := i + p.index + offset
		if n >= len(p.tokens) {
			return false
		} else if p.tokens[n].Kind != kind {
			return false
		}
	}
	//
	return true
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[lastToken].Span.End()
	//
	return source.NewSpan(start, end)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.Diagnostic {
	return []source.Diagnostic{*p.srcfile.SyntaxError(token.Span, msg)}
}

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
package source

import (
	"fmt"
)

// Kind classifies a diagnostic according to the stage which produced it and
// its severity.  Every kind except WARNING is fatal.
type Kind uint8

// PARSER_ERROR signals a malformed token sequence.
const PARSER_ERROR Kind = 0

// DECLARATION_ERROR signals a name collision or an unresolved reference.
const DECLARATION_ERROR Kind = 1

// TYPE_ERROR signals an arity mismatch or an invalid literal.
const TYPE_ERROR Kind = 2

// CODEGEN_ERROR signals a program which cannot be lowered (e.g. a variable too
// deep inside the stack).
const CODEGEN_ERROR Kind = 3

// WARNING signals something suspicious which does not prevent assembly.
const WARNING Kind = 4

func (k Kind) String() string {
	switch k {
	case PARSER_ERROR:
		return "ParserError"
	case DECLARATION_ERROR:
		return "DeclarationError"
	case TYPE_ERROR:
		return "TypeError"
	case CODEGEN_ERROR:
		return "CodeGenerationError"
	case WARNING:
		return "Warning"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Diagnostic is a structured error which retains the span of the original
// text where an issue was found, along with its kind and a message.
type Diagnostic struct {
	srcfile *File
	// Span of the original text to which this diagnostic refers.
	span Span
	// Classification of this diagnostic.
	kind Kind
	// Message being reported
	msg string
}

// SourceFile returns the underlying source file that this diagnostic covers.
func (p *Diagnostic) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of the original text on which this diagnostic is
// reported.
func (p *Diagnostic) Span() Span {
	return p.span
}

// Kind returns the classification of this diagnostic.
func (p *Diagnostic) Kind() Kind {
	return p.kind
}

// Message returns the message to be reported.
func (p *Diagnostic) Message() string {
	return p.msg
}

// IsWarning checks whether this diagnostic is informational only.
func (p *Diagnostic) IsWarning() bool {
	return p.kind == WARNING
}

// Error implements the error interface.
func (p *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d:%s:%s", p.span.Start(), p.span.End(), p.kind.String(), p.Message())
}

// FirstEnclosingLine determines the first line in this source file to which
// this diagnostic is associated. Observe that, if the position is beyond the
// bounds of the source file then the last physical line is returned.  Also, the
// returned line is not guaranteed to enclose the entire span, as these can
// cross multiple lines.
func (p *Diagnostic) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}

// ContainsOnlyWarnings checks whether none of the given diagnostics is fatal.
func ContainsOnlyWarnings(diagnostics []Diagnostic) bool {
	for _, d := range diagnostics {
		if !d.IsWarning() {
			return false
		}
	}
	//
	return true
}

// ContainsKind checks whether at least one of the given diagnostics has the
// given kind.
func ContainsKind(diagnostics []Diagnostic, kind Kind) bool {
	for _, d := range diagnostics {
		if d.kind == kind {
			return true
		}
	}
	//
	return false
}

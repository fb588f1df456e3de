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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/consensys/go-evmasm/pkg/util/source"
	"github.com/consensys/go-evmasm/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	return r
}

// GetUint gets an expected unsigned int, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	return r
}

// GetStringArray gets an expected string array, or panic if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	return r
}

// Construct the dialect configured by the given command's flags.  Flags which
// are not given leave the corresponding defaults in place.
func getDialect(cmd *cobra.Command) *dialect.Dialect {
	var options []dialect.Option
	//
	if cmd.Flags().Changed("builtin") {
		options = append(options, dialect.WithBuiltins(GetStringArray(cmd, "builtin")...))
	}
	//
	if cmd.Flags().Changed("placeholder") {
		options = append(options, dialect.WithPlaceholders(GetStringArray(cmd, "placeholder")...))
	}
	//
	if cmd.Flags().Changed("word-size") {
		options = append(options, dialect.WithWordSize(GetUint(cmd, "word-size")))
	}
	//
	d := dialect.EVM(options...)
	// Sanity check configuration
	if err := d.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return d
}

// Read the given source files, or exit if any could not be read.
func readSourceFiles(filenames []string) []source.File {
	for _, n := range filenames {
		log.Debug(fmt.Sprintf("including source file %s", n))
	}
	//
	srcfiles, err := source.ReadFiles(filenames...)
	// Sanity check for errors
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return srcfiles
}

// Print a set of diagnostics, using colour when writing to a terminal.
func printDiagnostics(cmd *cobra.Command, diagnostics []source.Diagnostic) {
	colour := !GetFlag(cmd, "no-colour") && termio.IsTerminal(os.Stdout)
	//
	for _, d := range diagnostics {
		printDiagnostic(&d, colour)
	}
}

// Print a diagnostic with appropriate highlighting.
func printDiagnostic(d *source.Diagnostic, colour bool) {
	span := d.Span()
	line := d.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := max(1, min(line.Length()-lineOffset, span.Length()))
	kind := d.Kind().String()
	highlight := strings.Repeat("^", length)
	//
	if colour {
		escape := termio.NewAnsiEscape().Bold().FgColour(termio.TERM_RED)
		//
		if d.IsWarning() {
			escape = termio.NewAnsiEscape().Bold().FgColour(termio.TERM_YELLOW)
		}
		//
		kind = escape.Wrap(kind)
		highlight = escape.Wrap(highlight)
	}
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s: %s\n", d.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, kind, d.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(highlight)
}

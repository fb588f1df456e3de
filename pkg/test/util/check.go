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
package util

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/consensys/go-evmasm/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the valid and invalid assembly files are found.
const TestDir = "../../testdata"

// Compiler processes a source file, producing zero or more diagnostics.
type Compiler func(*source.File) []source.Diagnostic

// CheckInvalid checks that a given source file produces exactly the
// diagnostics described at the beginning of the file (in order).
// nolint
func CheckInvalid(t *testing.T, test, ext string, compiler Compiler) {
	var filename = fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
	// Enable testing each file in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	// Compile source file to produce errors
	actual := compiler(srcfile)
	// Extract expected errors for comparison
	expected, errs := ExtractAttributes(srcfile, extractExpectedError, extractExpectedWarning)
	//
	if len(errs) > 0 {
		// Report any errors encountered parsing the attributes themselves.
		t.Fatal(errors.Join(errs...))
	}
	// Check program did not compile!
	checkExpectedErrors(t, srcfile, actual, expected)
}

// CheckValid checks that a given source file produces no diagnostics at all.
func CheckValid(t *testing.T, test, ext string, compiler Compiler) {
	var filename = fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
	// Enable testing each file in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	//
	if actual := compiler(srcfile); len(actual) != 0 {
		msg := fmt.Sprintf("Error %s\n", srcfile.Filename())
		//
		for _, err := range actual {
			msg = fmt.Sprintf("%s unexpected error %s", msg, errorToString(err))
		}
		//
		t.Fatal(msg)
	}
}

func checkExpectedErrors(t *testing.T, srcfile *source.File, actual, expected []source.Diagnostic) {
	if len(actual) == 0 {
		t.Fatalf("Error %s should not have compiled\n", srcfile.Filename())
	}
	//
	error := false
	// Construct initial message
	msg := fmt.Sprintf("Error %s\n", srcfile.Filename())
	// Pad out with what received
	for i := 0; i < max(len(actual), len(expected)); i++ {
		if i < len(actual) && i < len(expected) {
			expected := expected[i]
			actual := actual[i]
			// Check whether message OK
			if expected.Message() == actual.Message() && expected.Span() == actual.Span() &&
				expected.IsWarning() == actual.IsWarning() {
				continue
			}
		}
		// Indicate error arose
		error = true
		// actual
		if i < len(actual) {
			msg = fmt.Sprintf("%s unexpected error %s", msg, errorToString(actual[i]))
		}
		// expected
		if i < len(expected) {
			msg = fmt.Sprintf("%s   expected error %s", msg, errorToString(expected[i]))
		}
	}
	//
	if error {
		t.Fatal(msg)
	}
}

func readSourceFile(t *testing.T, filename string) *source.File {
	// Read source file
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	// Package up as source file
	return source.NewSourceFile(filename, bytes)
}

// Convert a diagnostic into a useful human readable string.
func errorToString(err source.Diagnostic) string {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := min(line.Length()-lineOffset, span.Length())
	// Print error + line number
	return fmt.Sprintf("%s:%d:%d-%d %s: %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Kind(), err.Message())
}

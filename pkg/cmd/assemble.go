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

	"github.com/consensys/go-evmasm/pkg/asm"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [flags] file1.asm file2.asm ...",
	Short: "assemble one or more assembly files.",
	Long: `Assemble a given set of assembly file(s), printing the emission plan for
each.  By default, only errors cause assembly to fail.  In strict mode, warnings
also cause assembly to fail.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			strict = GetFlag(cmd, "strict")
			stack  = asm.NewStack(getDialect(cmd))
			ok     = true
		)
		//
		for _, srcfile := range readSourceFiles(args) {
			var succeeded = false
			//
			if stack.Parse(&srcfile) {
				plan := stack.Assemble()
				//
				if plan.HasValue() && asm.Succeeded(stack.Errors(), strict) {
					fmt.Printf("%s:\n%s", srcfile.Filename(), plan.Unwrap().String())
					//
					succeeded = true
				}
			}
			//
			printDiagnostics(cmd, stack.Errors())
			//
			ok = ok && succeeded
		}
		//
		if !ok {
			os.Exit(4)
		}
	},
}

func init() {
	rootCmd.AddCommand(assembleCmd)
	assembleCmd.Flags().Bool("strict", false, "treat warnings as errors")
	assembleCmd.Flags().StringArray("builtin", nil, "names of host built-ins (replaces the defaults)")
	assembleCmd.Flags().StringArray("placeholder", nil, "names of placeholder labels (replaces the defaults)")
	assembleCmd.Flags().Uint("word-size", dialect.WORD_SIZE, "maximum length (in bytes) of a string literal")
}

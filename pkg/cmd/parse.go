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
	"os"

	"github.com/consensys/go-evmasm/pkg/asm"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file1.asm file2.asm ...",
	Short: "check one or more assembly files parse correctly.",
	Long:  `Parse a given set of assembly file(s), reporting any syntax errors found.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			stack = asm.NewStack(dialect.EVM())
			ok    = true
		)
		//
		for _, srcfile := range readSourceFiles(args) {
			ok = stack.Parse(&srcfile) && ok
			//
			printDiagnostics(cmd, stack.Errors())
		}
		//
		if !ok {
			os.Exit(4)
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

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

	"github.com/cespare/xxhash/v2"
	"github.com/consensys/go-evmasm/pkg/asm"
	"github.com/consensys/go-evmasm/pkg/asm/dialect"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] file1.asm file2.asm ...",
	Short: "print assembly files in canonical form.",
	Long: `Print a given set of assembly file(s) in canonical form.  When checking,
nothing is printed except the names of files which are not in canonical form.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			check = GetFlag(cmd, "check")
			stack = asm.NewStack(dialect.EVM())
			ok    = true
		)
		//
		for _, srcfile := range readSourceFiles(args) {
			if !stack.Parse(&srcfile) {
				printDiagnostics(cmd, stack.Errors())
				//
				ok = false
			} else if check {
				// Ignore final newline
				contents := strings.TrimSuffix(string(srcfile.Contents()), "\n")
				actual := xxhash.Sum64String(contents)
				//
				log.Debugf("%s has fingerprint %016x (canonical %016x)", srcfile.Filename(), actual,
					stack.Fingerprint())
				//
				if actual != stack.Fingerprint() {
					fmt.Println(srcfile.Filename())
					//
					ok = false
				}
			} else {
				fmt.Println(stack.String())
			}
		}
		//
		if !ok {
			os.Exit(4)
		}
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().Bool("check", false, "list files which are not in canonical form")
}

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
package termio

import (
	"testing"

	"github.com/consensys/go-evmasm/pkg/util/assert"
)

func Test_AnsiEscape_01(t *testing.T) {
	assert.Equal(t, "\033[0m", ResetAnsiEscape().Build())
	assert.Equal(t, "\033[31m", NewAnsiEscape().FgColour(TERM_RED).Build())
	assert.Equal(t, "\033[1;33m", NewAnsiEscape().Bold().FgColour(TERM_YELLOW).Build())
}

func Test_AnsiEscape_02(t *testing.T) {
	var (
		bold = NewAnsiEscape().Bold()
		cyan = bold.FgColour(TERM_CYAN)
	)
	// Extending an escape does not modify the original
	assert.Equal(t, "\033[1m", bold.Build())
	assert.Equal(t, "\033[1;36mx\033[0m", cyan.Wrap("x"))
}

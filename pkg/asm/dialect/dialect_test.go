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
	"strings"
	"testing"

	"github.com/consensys/go-evmasm/pkg/util/assert"
	"github.com/ethereum/go-ethereum/core/vm"
)

func Test_Dialect_01(t *testing.T) {
	d := EVM()
	// Every table entry must agree with the canonical opcode name.
	for i := range NUM_INSTRUCTIONS {
		insn := Instruction(i)
		name := insn.Opcode().String()
		// go-ethereum spells these differently
		if insn == INVALID || insn == DIFFICULTY {
			continue
		}
		//
		assert.Equal(t, name, strings.ToUpper(insn.String()), "mnemonic mismatch")
		//
		lookup, ok := d.Instruction(insn.String())
		assert.True(t, ok, "missing %s", insn)
		assert.Equal(t, insn, lookup)
	}
}

func Test_Dialect_02(t *testing.T) {
	d := EVM()
	//
	for _, n := range []string{"jumpdest", "push1", "push32", "push0", "let", "function"} {
		assert.False(t, d.IsInstruction(n), "unexpected instruction %s", n)
	}
	//
	insn, _ := d.Instruction("suicide")
	assert.Equal(t, SELFDESTRUCT, insn)
	insn, _ = d.Instruction("sha3")
	assert.Equal(t, KECCAK256, insn)
}

func Test_Dialect_03(t *testing.T) {
	assert.Equal(t, vm.OpCode(vm.DUP1), Dup(1).Opcode())
	assert.Equal(t, vm.OpCode(vm.DUP16), Dup(16).Opcode())
	assert.Equal(t, vm.OpCode(vm.SWAP1), Swap(1).Opcode())
	assert.Equal(t, vm.OpCode(vm.SWAP16), Swap(16).Opcode())
	assert.Equal(t, vm.LOG4, LOG4.Opcode())
	assert.Equal(t, "dup3", Dup(3).String())
	assert.Equal(t, uint(3), Dup(3).In())
	assert.Equal(t, uint(4), Dup(3).Out())
	assert.Equal(t, uint(5), Swap(4).In())
	assert.Equal(t, uint(6), LOG4.In())
	assert.Equal(t, uint(7), CALL.In())
}

func Test_Dialect_04(t *testing.T) {
	d := EVM()
	//
	assert.True(t, d.IsBuiltin("this"))
	assert.True(t, d.IsBuiltin("ecrecover"))
	assert.False(t, d.IsBuiltin("revert"))
	assert.True(t, d.IsPlaceholder("invalidJumpLabel"))
	assert.True(t, d.Validate() == nil)
	//
	d = EVM(WithBuiltins("foo", "foo", "bar"), WithPlaceholders("fail"))
	assert.Equal(t, 2, len(d.Builtins()))
	assert.True(t, d.IsBuiltin("foo"))
	assert.False(t, d.IsBuiltin("this"))
	assert.True(t, d.IsPlaceholder("fail"))
	assert.True(t, d.Validate() == nil)
}

func Test_Dialect_05(t *testing.T) {
	assert.True(t, EVM(WithBuiltins("gas")).Validate() != nil)
	assert.True(t, EVM(WithPlaceholders("let")).Validate() != nil)
	assert.True(t, EVM(WithBuiltins("x"), WithPlaceholders("x")).Validate() != nil)
	assert.True(t, EVM(WithWordSize(0)).Validate() != nil)
	assert.True(t, EVM(WithWordSize(33)).Validate() != nil)
	assert.True(t, EVM(WithWordSize(16)).Validate() == nil)
}

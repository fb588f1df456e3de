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
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// Instruction identifies one of the reserved low-level operations available to
// assembly code.  This is a closed enumeration: every instruction has exactly
// one entry in the static instruction table, which determines its mnemonic,
// its opcode and its effect on the stack.
type Instruction uint8

// Arithmetic & comparison
const (
	STOP Instruction = iota
	ADD
	MUL
	SUB
	DIV
	SDIV
	MOD
	SMOD
	ADDMOD
	MULMOD
	EXP
	SIGNEXTEND
	LT
	GT
	SLT
	SGT
	EQ
	ISZERO
	AND
	OR
	XOR
	NOT
	BYTE
	SHL
	SHR
	SAR
	KECCAK256
	// Environment
	ADDRESS
	BALANCE
	ORIGIN
	CALLER
	CALLVALUE
	CALLDATALOAD
	CALLDATASIZE
	CALLDATACOPY
	CODESIZE
	CODECOPY
	GASPRICE
	EXTCODESIZE
	EXTCODECOPY
	RETURNDATASIZE
	RETURNDATACOPY
	EXTCODEHASH
	BLOCKHASH
	COINBASE
	TIMESTAMP
	NUMBER
	DIFFICULTY
	GASLIMIT
	CHAINID
	SELFBALANCE
	BASEFEE
	// Stack, memory, storage & flow
	POP
	MLOAD
	MSTORE
	MSTORE8
	SLOAD
	SSTORE
	JUMP
	JUMPI
	PC
	MSIZE
	GAS
	// System
	CREATE
	CALL
	CALLCODE
	RETURN
	DELEGATECALL
	CREATE2
	STATICCALL
	REVERT
	INVALID
	SELFDESTRUCT
	// Ranges
	DUP1
)

// DUP16 is the last of the sixteen dup instructions.
const DUP16 = DUP1 + 15

// SWAP1 is the first of the sixteen swap instructions.
const SWAP1 = DUP16 + 1

// SWAP16 is the last of the sixteen swap instructions.
const SWAP16 = SWAP1 + 15

// LOG0 is the first of the five log instructions.
const LOG0 = SWAP16 + 1

// LOG4 is the last of the five log instructions.
const LOG4 = LOG0 + 4

// NUM_INSTRUCTIONS determines the size of the instruction table.
const NUM_INSTRUCTIONS = uint(LOG4) + 1

// MAX_STACK_ACCESS is the deepest stack slot reachable by a dup or swap.
const MAX_STACK_ACCESS = 16

// Info describes a given instruction.
type Info struct {
	// Mnemonic used for this instruction in assembly code.
	Mnemonic string
	// Opcode emitted for this instruction.
	Opcode vm.OpCode
	// Number of stack items consumed.
	In uint
	// Number of stack items produced.
	Out uint
}

var instructions [NUM_INSTRUCTIONS]Info

func init() {
	var base = []Info{
		{"stop", vm.STOP, 0, 0},
		{"add", vm.ADD, 2, 1},
		{"mul", vm.MUL, 2, 1},
		{"sub", vm.SUB, 2, 1},
		{"div", vm.DIV, 2, 1},
		{"sdiv", vm.SDIV, 2, 1},
		{"mod", vm.MOD, 2, 1},
		{"smod", vm.SMOD, 2, 1},
		{"addmod", vm.ADDMOD, 3, 1},
		{"mulmod", vm.MULMOD, 3, 1},
		{"exp", vm.EXP, 2, 1},
		{"signextend", vm.SIGNEXTEND, 2, 1},
		{"lt", vm.LT, 2, 1},
		{"gt", vm.GT, 2, 1},
		{"slt", vm.SLT, 2, 1},
		{"sgt", vm.SGT, 2, 1},
		{"eq", vm.EQ, 2, 1},
		{"iszero", vm.ISZERO, 1, 1},
		{"and", vm.AND, 2, 1},
		{"or", vm.OR, 2, 1},
		{"xor", vm.XOR, 2, 1},
		{"not", vm.NOT, 1, 1},
		{"byte", vm.BYTE, 2, 1},
		{"shl", vm.SHL, 2, 1},
		{"shr", vm.SHR, 2, 1},
		{"sar", vm.SAR, 2, 1},
		{"keccak256", vm.KECCAK256, 2, 1},
		{"address", vm.ADDRESS, 0, 1},
		{"balance", vm.BALANCE, 1, 1},
		{"origin", vm.ORIGIN, 0, 1},
		{"caller", vm.CALLER, 0, 1},
		{"callvalue", vm.CALLVALUE, 0, 1},
		{"calldataload", vm.CALLDATALOAD, 1, 1},
		{"calldatasize", vm.CALLDATASIZE, 0, 1},
		{"calldatacopy", vm.CALLDATACOPY, 3, 0},
		{"codesize", vm.CODESIZE, 0, 1},
		{"codecopy", vm.CODECOPY, 3, 0},
		{"gasprice", vm.GASPRICE, 0, 1},
		{"extcodesize", vm.EXTCODESIZE, 1, 1},
		{"extcodecopy", vm.EXTCODECOPY, 4, 0},
		{"returndatasize", vm.RETURNDATASIZE, 0, 1},
		{"returndatacopy", vm.RETURNDATACOPY, 3, 0},
		{"extcodehash", vm.EXTCODEHASH, 1, 1},
		{"blockhash", vm.BLOCKHASH, 1, 1},
		{"coinbase", vm.COINBASE, 0, 1},
		{"timestamp", vm.TIMESTAMP, 0, 1},
		{"number", vm.NUMBER, 0, 1},
		{"difficulty", vm.DIFFICULTY, 0, 1},
		{"gaslimit", vm.GASLIMIT, 0, 1},
		{"chainid", vm.CHAINID, 0, 1},
		{"selfbalance", vm.SELFBALANCE, 0, 1},
		{"basefee", vm.BASEFEE, 0, 1},
		{"pop", vm.POP, 1, 0},
		{"mload", vm.MLOAD, 1, 1},
		{"mstore", vm.MSTORE, 2, 0},
		{"mstore8", vm.MSTORE8, 2, 0},
		{"sload", vm.SLOAD, 1, 1},
		{"sstore", vm.SSTORE, 2, 0},
		{"jump", vm.JUMP, 1, 0},
		{"jumpi", vm.JUMPI, 2, 0},
		{"pc", vm.PC, 0, 1},
		{"msize", vm.MSIZE, 0, 1},
		{"gas", vm.GAS, 0, 1},
		{"create", vm.CREATE, 3, 1},
		{"call", vm.CALL, 7, 1},
		{"callcode", vm.CALLCODE, 7, 1},
		{"return", vm.RETURN, 2, 0},
		{"delegatecall", vm.DELEGATECALL, 6, 1},
		{"create2", vm.CREATE2, 4, 1},
		{"staticcall", vm.STATICCALL, 6, 1},
		{"revert", vm.REVERT, 2, 0},
		{"invalid", vm.INVALID, 0, 0},
		{"selfdestruct", vm.SELFDESTRUCT, 1, 0},
	}
	// Sanity check
	if len(base) != int(DUP1) {
		panic(fmt.Sprintf("instruction table out of sync (%d vs %d)", len(base), DUP1))
	}
	//
	copy(instructions[:], base)
	// Fill in ranges
	for i := uint(1); i <= 16; i++ {
		instructions[DUP1+Instruction(i-1)] = Info{fmt.Sprintf("dup%d", i), vm.DUP1 + vm.OpCode(i-1), i, i + 1}
		instructions[SWAP1+Instruction(i-1)] = Info{fmt.Sprintf("swap%d", i), vm.SWAP1 + vm.OpCode(i-1), i + 1, i + 1}
	}
	//
	for i := uint(0); i <= 4; i++ {
		instructions[LOG0+Instruction(i)] = Info{fmt.Sprintf("log%d", i), vm.LOG0 + vm.OpCode(i), i + 2, 0}
	}
}

// Dup returns the instruction duplicating the nth stack item (counting from
// 1).
func Dup(n uint) Instruction {
	if n == 0 || n > MAX_STACK_ACCESS {
		panic(fmt.Sprintf("invalid dup%d", n))
	}
	//
	return DUP1 + Instruction(n-1)
}

// Swap returns the instruction exchanging the top of the stack with the
// (n+1)th stack item.
func Swap(n uint) Instruction {
	if n == 0 || n > MAX_STACK_ACCESS {
		panic(fmt.Sprintf("invalid swap%d", n))
	}
	//
	return SWAP1 + Instruction(n-1)
}

// Info returns the table entry for this instruction.
func (p Instruction) Info() Info {
	return instructions[p]
}

// Opcode returns the opcode emitted for this instruction.
func (p Instruction) Opcode() vm.OpCode {
	return instructions[p].Opcode
}

// In returns the number of stack items consumed by this instruction.
func (p Instruction) In() uint {
	return instructions[p].In
}

// Out returns the number of stack items produced by this instruction.
func (p Instruction) Out() uint {
	return instructions[p].Out
}

// IsJump checks whether this instruction transfers control to a label given as
// its first argument.
func (p Instruction) IsJump() bool {
	return p == JUMP || p == JUMPI
}

func (p Instruction) String() string {
	return instructions[p].Mnemonic
}

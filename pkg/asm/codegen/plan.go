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
package codegen

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
)

// PUSH represents an item which pushes a constant word onto the stack.
const PUSH uint = 0

// OPERATION represents an item which executes a single machine operation.
const OPERATION uint = 1

// TAG represents an item which marks a jump destination.
const TAG uint = 2

// PUSH_TAG represents an item which pushes the position of a tag onto the
// stack.
const PUSH_TAG uint = 3

// INVALID_TAG identifies the designated tag which is never placed, and hence
// any jump to it always fails.
const INVALID_TAG uint = 0

// Item represents a single entry in an emission plan.
type Item struct {
	// Kind of this item (e.g. PUSH, TAG, etc)
	Kind uint
	// Value pushed by a PUSH item, in big-endian form without leading zeros.
	// This is empty for the zero word.
	Data []byte
	// Opcode executed by an OPERATION item.
	Opcode vm.OpCode
	// Tag marked (or referenced) by a TAG (or PUSH_TAG) item.
	Tag uint
}

// Push constructs an item pushing a given word.
func Push(value *big.Int) Item {
	return Item{Kind: PUSH, Data: value.Bytes()}
}

// Operation constructs an item executing a given opcode.
func Operation(opcode vm.OpCode) Item {
	return Item{Kind: OPERATION, Opcode: opcode}
}

// Tag constructs an item marking a given tag.
func Tag(tag uint) Item {
	return Item{Kind: TAG, Tag: tag}
}

// PushTag constructs an item referencing a given tag.
func PushTag(tag uint) Item {
	return Item{Kind: PUSH_TAG, Tag: tag}
}

// Width returns the number of bytes needed to encode the value of a PUSH item,
// which is at least one.
func (p Item) Width() uint {
	return max(1, uint(len(p.Data)))
}

func (p Item) String() string {
	switch p.Kind {
	case PUSH:
		return fmt.Sprintf("%s 0x%x", vm.PUSH1+vm.OpCode(p.Width()-1), p.padded())
	case OPERATION:
		return p.Opcode.String()
	case TAG:
		return fmt.Sprintf("tag_%d:", p.Tag)
	case PUSH_TAG:
		return fmt.Sprintf("PUSH [tag_%d]", p.Tag)
	default:
		panic(fmt.Sprintf("unknown plan item (kind %d)", p.Kind))
	}
}

func (p Item) padded() []byte {
	if len(p.Data) == 0 {
		return []byte{0}
	}
	//
	return p.Data
}

// Plan is the result of assembling a block: a sequence of items in emission
// order, along with the fingerprint of the canonical source it was generated
// from.
type Plan struct {
	Items []Item
	// Number of tags allocated, including the invalid tag.
	Tags uint
	// Fingerprint of the canonical source.
	Fingerprint uint64
}

// Tagged returns the index of the item marking a given tag, or false if no
// such item exists.
func (p Plan) Tagged(tag uint) (uint, bool) {
	for i, item := range p.Items {
		if item.Kind == TAG && item.Tag == tag {
			return uint(i), true
		}
	}
	//
	return 0, false
}

func (p Plan) String() string {
	var builder strings.Builder
	//
	for _, item := range p.Items {
		if item.Kind != TAG {
			builder.WriteString(INDENT)
		}
		//
		builder.WriteString(item.String())
		builder.WriteString("\n")
	}
	//
	return builder.String()
}

// INDENT used when printing plans.
const INDENT = "    "

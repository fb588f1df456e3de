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
package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DecodeString decodes the text of a quoted string literal (including its
// quotes) into the bytes it represents.  Characters outside of escapes are
// encoded as UTF-8, as are unicode escapes of the form "\uXXXX".
func DecodeString(text []rune) (string, error) {
	var builder strings.Builder
	//
	if len(text) < 2 || text[0] != text[len(text)-1] {
		return "", errors.New("unterminated string literal")
	}
	// Strip quotes
	text = text[1 : len(text)-1]
	//
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' {
			builder.WriteRune(text[i])
			continue
		} else if i+1 == len(text) {
			return "", errors.New("invalid escape sequence")
		}
		//
		i++
		//
		switch text[i] {
		case '\\', '"', '\'':
			builder.WriteRune(text[i])
		case 'b':
			builder.WriteByte('\b')
		case 'f':
			builder.WriteByte('\f')
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case 't':
			builder.WriteByte('\t')
		case 'v':
			builder.WriteByte('\v')
		case 'x':
			val, err := decodeHex(text, i+1, 2)
			if err != nil {
				return "", err
			}
			//
			builder.WriteByte(byte(val))
			//
			i += 2
		case 'u':
			val, err := decodeHex(text, i+1, 4)
			if err != nil {
				return "", err
			} else if !utf8.ValidRune(rune(val)) {
				return "", errors.New("invalid unicode escape")
			}
			//
			builder.WriteRune(rune(val))
			//
			i += 4
		default:
			return "", errors.New("invalid escape sequence")
		}
	}
	//
	return builder.String(), nil
}

// Decode exactly n hex digits starting at a given index.
func decodeHex(text []rune, index int, n int) (uint64, error) {
	if index+n > len(text) {
		return 0, errors.New("invalid escape sequence")
	}
	//
	digits := string(text[index : index+n])
	// Reject signs, underscores, etc.
	for _, c := range digits {
		if !isHexDigit(c) {
			return 0, errors.New("invalid escape sequence")
		}
	}
	//
	return strconv.ParseUint(digits, 16, 32)
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"encoding/hex"
	"strconv"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxTreeDepth bounds DecodeTree's recursion into nested LEN payloads, per
// DESIGN NOTES §9 ("process everything the server might produce" openness
// vs. safety): an attacker-controlled body must never blow the stack.
const MaxTreeDepth = 8

// NodeKind is the sum type described in DESIGN NOTES §9(a): a LEN field
// resolves to exactly one of Message, PackedVarint, String or Bytes;
// Varint/Fixed32/Fixed64 fields resolve directly from their wire type.
type NodeKind int

const (
	KindVarint NodeKind = iota
	KindFixed64
	KindFixed32
	KindMessage
	KindPackedVarint
	KindString
	KindBytes
)

func (k NodeKind) String() string {
	switch k {
	case KindVarint:
		return "varint"
	case KindFixed64:
		return "fixed64"
	case KindFixed32:
		return "fixed32"
	case KindMessage:
		return "message"
	case KindPackedVarint:
		return "packed_varint"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Node is one annotated field in a decoded protobuf tree.
type Node struct {
	Field int32
	Wire  WireType
	Kind  NodeKind

	Varint  Varint  // KindVarint
	Fixed64 uint64  // KindFixed64
	Fixed32 uint32  // KindFixed32
	Message []*Node // KindMessage
	Packed  []Varint
	Str     string
	Hex     string

	Raw []byte // original LEN payload, kept for lossless re-encoding
}

// SignedVarint exposes the ZigZag-decoded view of a KindVarint node.
func (n *Node) SignedVarint() int64 {
	return ZigZag(n.Varint.Value)
}

// DecodeTree produces gnostic's equivalent of a compiled message: an
// annotated tree built without any schema, using the LEN-field heuristic
// from spec §4.1. depth is the current nesting level (0 at the root);
// callers of the public entry point pass 0.
func DecodeTree(b []byte, depth int) ([]*Node, bool) {
	if depth > MaxTreeDepth {
		return nil, false
	}
	raw, ok := DecodeRaw(b)
	if !ok {
		return nil, false
	}
	nodes := make([]*Node, 0, len(raw))
	for _, f := range raw {
		n := &Node{Field: f.Field, Wire: f.Wire}
		switch f.Wire {
		case WireVarint:
			n.Kind = KindVarint
			n.Varint = Varint{Value: f.VarintValue}
			if f.VarintValue > MaxSafeInteger {
				n.Varint.String = strconv.FormatUint(f.VarintValue, 10)
			}
		case Wire64Bit:
			n.Kind = KindFixed64
			v, cn := protowire.ConsumeFixed64(f.Data)
			if cn < 0 {
				return nil, false
			}
			n.Fixed64 = v
		case Wire32Bit:
			n.Kind = KindFixed32
			v, cn := protowire.ConsumeFixed32(f.Data)
			if cn < 0 {
				return nil, false
			}
			n.Fixed32 = v
		case WireLen:
			n.Raw = f.Data
			resolveLen(n, f.Data, depth)
		default:
			return nil, false
		}
		nodes = append(nodes, n)
	}
	return nodes, true
}

// resolveLen applies the three-interpretation heuristic of spec §4.1 to a
// LEN field's payload, in order: embedded message, packed repeated
// scalar, UTF-8 string, falling back to hex.
func resolveLen(n *Node, data []byte, depth int) {
	if depth > 0 {
		if msg, ok := tryEmbeddedMessage(data, depth); ok {
			n.Kind = KindMessage
			n.Message = msg
			return
		}
	}
	if packed, ok := tryPackedVarints(data); ok {
		n.Kind = KindPackedVarint
		n.Packed = packed
		return
	}
	if s, ok := tryUTF8String(data); ok {
		n.Kind = KindString
		n.Str = s
		return
	}
	n.Kind = KindBytes
	n.Hex = hex.EncodeToString(data)
}

// tryEmbeddedMessage implements spec §4.1 rule 1.
func tryEmbeddedMessage(data []byte, depth int) ([]*Node, bool) {
	raw, ok := DecodeRaw(data)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	minField, maxField := raw[0].Field, raw[0].Field
	for _, f := range raw {
		if f.Field < minField {
			minField = f.Field
		}
		if f.Field > maxField {
			maxField = f.Field
		}
		if f.Field < 1 || f.Field > 10000 {
			return nil, false
		}
	}
	if maxField-minField > int32(100*len(raw)) {
		return nil, false
	}
	if len(data) <= 4 && len(raw) < 2 {
		return nil, false
	}
	nodes, ok := DecodeTree(data, depth+1)
	if !ok {
		return nil, false
	}
	return nodes, true
}

// tryPackedVarints implements spec §4.1 rule 2: two or more successive
// varints that consume the payload exactly.
func tryPackedVarints(data []byte) ([]Varint, bool) {
	var out []Varint
	rest := data
	for len(rest) > 0 {
		v, n, ok := DecodeVarint(rest)
		if !ok {
			return nil, false
		}
		out = append(out, v)
		rest = rest[n:]
	}
	if len(out) < 2 {
		return nil, false
	}
	return out, true
}

// tryUTF8String implements spec §4.1 rule 3: strict UTF-8 plus an
// all-printable guard (ASCII 0x20-0x7E, tab/CR/LF, or U+00A0-U+FFFF).
func tryUTF8String(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	s := string(data)
	for _, r := range s {
		if isPrintableRune(r) {
			continue
		}
		return "", false
	}
	return s, true
}

func isPrintableRune(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return true
	}
	if r >= 0x20 && r <= 0x7E {
		return true
	}
	if r >= 0x00A0 && r <= 0xFFFF {
		return true
	}
	return false
}

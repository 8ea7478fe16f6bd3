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

package format

import (
	"encoding/base64"
	"encoding/binary"
)

// IsGRPCWeb matches the gRPC-Web content-type family (spec §4.2).
func IsGRPCWeb(contentType string) bool {
	return containsFold(contentType, "grpc-web") || containsFold(contentType, "grpc+proto")
}

// IsGRPCWebText reports the base64-wrapped subtype.
func IsGRPCWebText(contentType string) bool {
	return containsFold(contentType, "grpc-web-text")
}

const (
	grpcWebFlagData    byte = 0x00
	grpcWebFlagTrailer byte = 0x80
)

// Frame is one gRPC-Web frame: a 1-byte flag, 4-byte big-endian length,
// and payload (spec §6). A Trailer frame's Payload is ASCII `key:
// value\r\n` lines rather than a protobuf message.
type Frame struct {
	Trailer bool
	Payload []byte
}

// ParseFrames decodes a (possibly base64-wrapped, per IsGRPCWebText)
// sequence of gRPC-Web frames. ok is false on any truncated or
// malformed frame; a partial prefix of valid frames is not returned,
// matching spec §7's DecodeFailure contract (absence of result, never a
// partial one).
func ParseFrames(body []byte, base64Wrapped bool) (frames []Frame, ok bool) {
	if base64Wrapped {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return nil, false
		}
		body = decoded
	}
	for len(body) > 0 {
		if len(body) < 5 {
			return nil, false
		}
		flag := body[0]
		length := binary.BigEndian.Uint32(body[1:5])
		body = body[5:]
		if uint64(length) > uint64(len(body)) {
			return nil, false
		}
		payload := body[:length]
		body = body[length:]
		frames = append(frames, Frame{Trailer: flag&grpcWebFlagTrailer != 0, Payload: payload})
	}
	return frames, true
}

// EncodeFrame is the inverse of ParseFrames for a single frame, used to
// verify spec §8's gRPC-Web round-trip property.
func EncodeFrame(f Frame) []byte {
	out := make([]byte, 5, 5+len(f.Payload))
	if f.Trailer {
		out[0] = grpcWebFlagTrailer
	} else {
		out[0] = grpcWebFlagData
	}
	binary.BigEndian.PutUint32(out[1:5], uint32(len(f.Payload)))
	return append(out, f.Payload...)
}

// EncodeFrames re-serialises a full frame sequence, optionally
// base64-wrapping it for the -text subtype.
func EncodeFrames(frames []Frame, base64Wrapped bool) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, EncodeFrame(f)...)
	}
	if base64Wrapped {
		return []byte(base64.StdEncoding.EncodeToString(out))
	}
	return out
}

// ParseTrailer decodes a trailer frame's ASCII `key: value\r\n` payload.
func ParseTrailer(payload []byte) map[string]string {
	out := make(map[string]string)
	lines := splitLines(payload)
	for _, line := range lines {
		idx := indexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := trimSpace(line[:idx])
		val := trimSpace(line[idx+1:])
		out[key] = val
	}
	return out
}

func splitLines(b []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			line := b[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(b) {
		lines = append(lines, b[start:])
	}
	return lines
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimSpace(b []byte) string {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}
	return string(b[start:end])
}

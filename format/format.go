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

// Package format recognises and decodes the family of serialisation
// formats spec §4.2 enumerates (gRPC-Web, JSPB, batch-execute,
// async-chunked, SSE, NDJSON, multipart batch, GraphQL, plain JSON).
// Every parser here is total: on structurally invalid input it returns
// ok=false rather than panicking or returning a partially built value,
// so the orchestrator can always fall back to "format unknown" (spec
// §7, FormatMismatch) instead of aborting.
package format

import "strings"

// Kind is the sum type from DESIGN NOTES §9(b): a response body decodes
// to exactly one of these, or KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindAsyncChunked
	KindBatchExecute
	KindGRPCWeb
	KindSSE
	KindNDJSON
	KindMultipart
	KindGraphQL
	KindJSON
	KindProtobuf
	KindJSPB
)

func (k Kind) String() string {
	switch k {
	case KindAsyncChunked:
		return "async-chunked"
	case KindBatchExecute:
		return "batch-execute"
	case KindGRPCWeb:
		return "grpc-web"
	case KindSSE:
		return "sse"
	case KindNDJSON:
		return "ndjson"
	case KindMultipart:
		return "multipart"
	case KindGraphQL:
		return "graphql"
	case KindJSON:
		return "json"
	case KindProtobuf:
		return "protobuf"
	case KindJSPB:
		return "jspb"
	default:
		return "unknown"
	}
}

// containsFold reports whether s contains substr, case-insensitively,
// the content-type matching rule spec §4.2 specifies throughout.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Classify implements the response-side dispatch order of spec §4.8:
// async-chunked -> batch-execute -> gRPC-Web -> SSE -> NDJSON ->
// multipart -> GraphQL -> JSON -> protobuf, with JSPB (a json+protobuf
// content type or a bare top-level JSON array) checked just before
// JSON. urlPath may be empty when
// classifying a bare response with no request context.
func Classify(contentType, urlPath string, body []byte) Kind {
	switch {
	case IsAsyncChunked(body):
		return KindAsyncChunked
	case IsBatchExecutePath(urlPath):
		return KindBatchExecute
	case IsGRPCWeb(contentType):
		return KindGRPCWeb
	case IsSSE(contentType):
		return KindSSE
	case IsNDJSON(contentType, body):
		return KindNDJSON
	case IsMultipart(contentType):
		return KindMultipart
	case IsGraphQL(urlPath, body):
		return KindGraphQL
	case IsJSPB(contentType, body):
		return KindJSPB
	case looksLikeJSON(body):
		return KindJSON
	case IsProtobufContentType(contentType):
		return KindProtobuf
	default:
		return KindUnknown
	}
}

func looksLikeJSON(body []byte) bool {
	b := trimLeadingSpace(body)
	return len(b) > 0 && (b[0] == '{' || b[0] == '[')
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return b[i:]
}

// IsProtobufContentType recognises the binary protobuf content types
// that never carry a JSON-parseable body.
func IsProtobufContentType(contentType string) bool {
	return containsFold(contentType, "x-protobuf") || containsFold(contentType, "application/protobuf")
}

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

// Package probe drives the error-driven schema probe (spec §4.4): it
// sends crafted payloads at a target URL and reads protobuf schema back
// out of the validation-error responses they elicit.
package probe

import "context"

// Request is one outbound probe attempt, handed to a Relay.
type Request struct {
	Method       string
	Headers      map[string]string
	Body         []byte
	BodyEncoding string // "" (text) or "base64"
}

// Response is what a Relay hands back. Error is set, and the rest left
// zero, when the relay itself could not reach the target (spec's
// RelayUnreachable, a terminal no-op for that attempt).
type Response struct {
	OK           bool
	Status       int
	Headers      map[string]string
	Body         []byte
	BodyEncoding string
	Error        string
}

// Relay is the credential-preserving fetch collaborator (spec §6): it
// carries the host's ambient cookies and supplies Origin/Referer, so
// the probe engine itself must never set those headers.
type Relay interface {
	Fetch(ctx context.Context, url string, req Request) (Response, error)
}

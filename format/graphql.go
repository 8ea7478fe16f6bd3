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
	"encoding/json"
	"strings"
)

// Envelope is a GraphQL request body: {query, variables?, operationName?}.
type Envelope struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// IsGraphQL matches spec §4.2: URL path containing /graphql, or a body
// shaped like a GraphQL envelope.
func IsGraphQL(urlPath string, body []byte) bool {
	if strings.Contains(urlPath, "/graphql") {
		return true
	}
	_, ok := ParseGraphQL(body)
	return ok
}

// ParseGraphQL decodes body as a GraphQL envelope; ok is false unless
// "query" is present and non-empty.
func ParseGraphQL(body []byte) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, false
	}
	if env.Query == "" {
		return Envelope{}, false
	}
	return env, true
}

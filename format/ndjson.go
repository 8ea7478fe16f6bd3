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
	"bufio"
	"bytes"
	"encoding/json"
)

// IsNDJSON matches spec §4.2: an explicit ndjson/jsonl content type, or,
// whatever the content type, a body whose first two non-blank lines are
// each valid JSON.
func IsNDJSON(contentType string, body []byte) bool {
	if containsFold(contentType, "x-ndjson") || containsFold(contentType, "jsonl") {
		return true
	}
	_, ok := countValidJSONLines(body, 2)
	return ok
}

func countValidJSONLines(body []byte, need int) (int, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	count := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v interface{}
		if json.Unmarshal(line, &v) != nil {
			return count, false
		}
		count++
		if count >= need {
			return count, true
		}
	}
	return count, count >= need
}

// ParseNDJSON decodes one JSON value per non-blank line.
func ParseNDJSON(body []byte) (values []interface{}, ok bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

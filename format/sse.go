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
	"strings"
)

// IsSSE matches the text/event-stream content type.
func IsSSE(contentType string) bool {
	return containsFold(contentType, "text/event-stream")
}

// Event is one Server-Sent Event per RFC: blank-line separated, with
// data/event/id fields; multi-line data fields are joined with "\n".
type Event struct {
	Data  string
	Event string
	ID    string
}

// ParseSSE parses an SSE stream into its events. Lines beginning with
// ':' are comments and ignored, per the RFC.
func ParseSSE(body []byte) (events []Event, ok bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var cur Event
	var dataLines []string
	haveEvent := false
	flush := func() {
		if !haveEvent {
			return
		}
		cur.Data = strings.Join(dataLines, "\n")
		events = append(events, cur)
		cur = Event{}
		dataLines = nil
		haveEvent = false
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value := splitSSEField(line)
		haveEvent = true
		switch field {
		case "data":
			dataLines = append(dataLines, value)
		case "event":
			cur.Event = value
		case "id":
			cur.ID = value
		}
	}
	flush()
	return events, len(events) > 0
}

func splitSSEField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

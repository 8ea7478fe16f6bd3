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

package probe

import "strings"

// contentTypes is the root-level probing order (spec §4.4).
var contentTypes = []string{
	"application/json+protobuf",
	"application/json",
	"application/x-protobuf",
}

// forceAltJSON appends (or replaces) the "alt=json" query parameter,
// which the first two root-level content types require.
func forceAltJSON(url string) string {
	base := url
	if idx := strings.IndexByte(url, '?'); idx >= 0 {
		base = url[:idx]
		query := url[idx+1:]
		parts := strings.Split(query, "&")
		kept := parts[:0]
		for _, p := range parts {
			if !strings.HasPrefix(p, "alt=") {
				kept = append(kept, p)
			}
		}
		kept = append(kept, "alt=json")
		return base + "?" + strings.Join(kept, "&")
	}
	return base + "?alt=json"
}

// probeURL returns the URL a given content type should be sent to.
func probeURL(target, contentType string) string {
	if contentType == "application/x-protobuf" {
		return target
	}
	return forceAltJSON(target)
}

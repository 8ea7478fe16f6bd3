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

package stats

import "regexp"

// Format is one of the five string-format hints spec §4.5 tracks.
type Format string

const (
	FormatDateTime Format = "date-time"
	FormatURI      Format = "uri"
	FormatEmail    Format = "email"
	FormatUUID     Format = "uuid"
	FormatInteger  Format = "integer"
)

// formatPredicates are strict anchored regexes for each format hint:
// RFC 3339 date-time, a URL with a scheme, an email address, an
// RFC 4122 UUID, and a signed integer literal.
var formatPredicates = []struct {
	format Format
	re     *regexp.Regexp
}{
	{FormatDateTime, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)},
	{FormatURI, regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+$`)},
	{FormatEmail, regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)},
	{FormatUUID, regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)},
	{FormatInteger, regexp.MustCompile(`^-?\d+$`)},
}

// DetectFormats returns every format hint s matches.
func DetectFormats(s string) []Format {
	var hits []Format
	for _, p := range formatPredicates {
		if p.re.MatchString(s) {
			hits = append(hits, p.format)
		}
	}
	return hits
}

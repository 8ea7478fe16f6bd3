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

package vddoc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/vdd/format"
	"github.com/stoewer/go-strcase"
)

// apiRootKeywords are the generic first-path-segment hints spec §3
// names for interface-name derivation.
var apiRootKeywords = map[string]bool{
	"api": true, "rest": true, "graphql": true, "rpc": true,
	"gateway": true, "services": true, "wp-json": true, "async": true,
}

var versionSegmentRe = regexp.MustCompile(`^v\d+\w*$`)

// InterfaceName derives the stable service identity string from a
// request's host and URL path (spec §3).
func InterfaceName(host, urlPath string) string {
	if format.IsBatchExecutePath(urlPath) {
		return host + "." + batchExecutePrecedingSegment(urlPath)
	}
	if strings.HasSuffix(host, ".googleapis.com") {
		labels := strings.Split(host, ".")
		if len(labels) > 0 && labels[0] != "" {
			return labels[0]
		}
	}

	segments := splitPath(urlPath)
	if len(segments) > 0 && apiRootKeywords[strings.ToLower(segments[0])] {
		name := host + "/" + segments[0]
		if len(segments) > 1 && versionSegmentRe.MatchString(segments[1]) {
			name += "/" + segments[1]
		}
		return strings.ReplaceAll(name, "/", ".")
	}
	return host
}

func batchExecutePrecedingSegment(urlPath string) string {
	segments := splitPath(urlPath)
	for i, seg := range segments {
		if strings.Contains(strings.ToLower(seg), "batchexecute") {
			if i > 0 {
				return segments[i-1]
			}
			return ""
		}
	}
	return ""
}

func splitPath(urlPath string) []string {
	trimmed := strings.Trim(urlPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// MethodId builds `<InterfaceName with '/' => '.'> + '.' + <methodName>`
// (spec §3).
func MethodId(interfaceName, methodName string) string {
	return strings.ReplaceAll(interfaceName, "/", ".") + "." + methodName
}

var (
	mongoObjectIDRe = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	uuidRe          = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	numericRe       = regexp.MustCompile(`^\d+$`)
	base64ishRe     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// isDynamicSegment reports whether a path segment looks like an opaque
// identifier rather than a fixed resource word (spec §3: "pure numeric,
// UUID, MongoDB ObjectId, base64-ish >= 16 chars with a digit").
func isDynamicSegment(seg string) bool {
	switch {
	case numericRe.MatchString(seg):
		return true
	case uuidRe.MatchString(seg):
		return true
	case mongoObjectIDRe.MatchString(seg):
		return true
	case len(seg) >= 16 && base64ishRe.MatchString(seg) && containsDigit(seg):
		return true
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// BaseMethodName derives spec §3's method-name by joining the path
// segments after the interface prefix, normalising dynamic-looking
// segments to "_id" and stripping overlong/base64-laden ones. host must
// be the same host InterfaceName(host, urlPath) was computed from, so
// the two agree on how many leading path segments the interface name
// already consumed.
func BaseMethodName(host, urlPath string) string {
	segments := splitPath(urlPath)
	prefixLen := interfacePrefixSegmentCount(host, segments)
	if prefixLen > len(segments) {
		prefixLen = len(segments)
	}
	segments = segments[prefixLen:]

	var parts []string
	for _, seg := range segments {
		if len(seg) > 32 || strings.Contains(seg, "=") {
			continue
		}
		if isDynamicSegment(seg) {
			parts = append(parts, "_id")
			continue
		}
		parts = append(parts, strcase.LowerCamelCase(seg))
	}
	if len(parts) == 0 {
		return "root"
	}
	name := parts[0]
	for _, p := range parts[1:] {
		if p != "_id" {
			name += "_"
		}
		name += p
	}
	return name
}

// interfacePrefixSegmentCount mirrors InterfaceName's own dispatch to
// report how many leading path segments it folded into the interface
// name, so BaseMethodName doesn't repeat them in the method name (e.g.
// the "api"/"v1" prefix segments). batch-execute and *.googleapis.com
// hosts consume none: their interface name is built from the host, not
// a path prefix.
func interfacePrefixSegmentCount(host string, segments []string) int {
	if strings.HasSuffix(host, ".googleapis.com") {
		return 0
	}
	if len(segments) > 0 && apiRootKeywords[strings.ToLower(segments[0])] {
		if len(segments) > 1 && versionSegmentRe.MatchString(segments[1]) {
			return 2
		}
		return 1
	}
	return 0
}

// QualifiedMethodName implements spec §4.7's disambiguation rename:
// "<prior.httpMethod>_<baseName>".
func QualifiedMethodName(httpMethod, baseName string) string {
	return strings.ToLower(httpMethod) + "_" + baseName
}

// ParamTypeFromValue implements spec §4.7's query-parameter typing
// rule: "type is number when the first observed value parses
// numerically, else string".
func ParamTypeFromValue(value string) string {
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return "number"
	}
	return "string"
}

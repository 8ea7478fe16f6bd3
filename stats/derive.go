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

import "math"

// Derived is what Derive applies back to a ParamDef (spec §4.5,
// "Derived attributes"). A zero Derived changes nothing.
type Derived struct {
	Required          bool
	Enum              []string
	HasDefault        bool
	Default           string
	DefaultConfidence float64
	HasFormat         bool
	Format            Format
	Range             *NumericRange
}

// Derive recomputes every derived attribute for one parameter, given
// the method's total request count. customRequired/customEnum
// overrides are the caller's responsibility (spec: "Never overrides
// customRequired"/"customEnum") — Derive only ever proposes a value,
// it is up to the caller to skip applying it where a custom override
// already exists.
func Derive(p *ParamStats, requestCount int) Derived {
	var d Derived

	if requestCount >= 3 {
		confidence := float64(p.ObservedCount) / float64(requestCount)
		if confidence >= 1.0 {
			d.Required = true
		}
	}

	if p.ObservedCount >= 5 {
		if enum, ok := deriveEnum(p); ok {
			d.Enum = enum
		}
	}

	if p.ObservedCount >= 3 {
		if value, confidence, ok := deriveDefault(p); ok {
			d.HasDefault = true
			d.Default = value
			d.DefaultConfidence = confidence
		}
	}

	if p.ObservedCount >= 5 {
		if format, ok := deriveFormat(p); ok {
			d.HasFormat = true
			d.Format = format
		}
	}

	if p.NumericRange != nil && p.NumericRange.Min.Float64() != p.NumericRange.Max.Float64() {
		d.Range = p.NumericRange
	}

	return d
}

func deriveEnum(p *ParamStats) ([]string, bool) {
	unique := len(p.Values)
	upper := int(math.Round(0.3 * float64(p.ObservedCount)))
	if unique < 2 || unique > upper {
		return nil, false
	}
	covered := 0
	for _, count := range p.Values {
		covered += count
	}
	if float64(covered)/float64(p.ObservedCount) < 0.8 {
		return nil, false
	}
	return p.SortedValues(), true
}

func deriveDefault(p *ParamStats) (value string, confidence float64, ok bool) {
	for v, count := range p.Values {
		share := float64(count) / float64(p.ObservedCount)
		if share >= 0.8 {
			return v, share, true
		}
	}
	return "", 0, false
}

func deriveFormat(p *ParamStats) (Format, bool) {
	for format, count := range p.FormatHintCounts {
		if float64(count)/float64(p.ObservedCount) >= 0.8 {
			return format, true
		}
	}
	return "", false
}

// Correlation names a pair of same-method params whose observed-value
// sets are identical (spec §4.5: "used only for diagnostics").
type Correlation struct {
	A, B string
}

// Correlations finds every pair among params whose distinct observed
// values are exactly the same set. source should be the union of a
// method's Params and BodyFields (callers combine as they see fit).
func Correlations(source map[string]*ParamStats) []Correlation {
	var names []string
	for name := range source {
		names = append(names, name)
	}
	var out []Correlation
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if sameValueSet(source[names[i]], source[names[j]]) {
				out = append(out, Correlation{A: names[i], B: names[j]})
			}
		}
	}
	return out
}

func sameValueSet(a, b *ParamStats) bool {
	if len(a.Values) == 0 || len(a.Values) != len(b.Values) {
		return false
	}
	for v := range a.Values {
		if _, ok := b.Values[v]; !ok {
			return false
		}
	}
	return true
}

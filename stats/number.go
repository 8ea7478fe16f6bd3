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

// Package stats maintains per-parameter observation histograms (spec
// §4.5) and derives ParamDef attributes (required/enum/default/format/
// range/correlation) from them.
package stats

// Number holds either an integer or a fractional observation, the same
// either/or shape jsonschema.SchemaNumber used for draft-04 numeric
// keywords, reused here for numericRange.min/max since a param's
// observed values may mix integers and floats.
type Number struct {
	Integer *int64
	Float   *float64
}

// IntNumber builds a Number from an int64.
func IntNumber(v int64) Number { return Number{Integer: &v} }

// FloatNumber builds a Number from a float64.
func FloatNumber(v float64) Number { return Number{Float: &v} }

// Float64 returns n's value as a float64 for comparison purposes.
func (n Number) Float64() float64 {
	if n.Integer != nil {
		return float64(*n.Integer)
	}
	if n.Float != nil {
		return *n.Float
	}
	return 0
}

// IsFraction reports whether n carries a non-integral value.
func (n Number) IsFraction() bool {
	return n.Float != nil
}

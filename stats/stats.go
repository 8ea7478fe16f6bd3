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

import (
	"fmt"
	"sort"
)

// NumericRange is ParamStats.numericRange (spec §4.5).
type NumericRange struct {
	Min Number
	Max Number
}

// ParamStats is one parameter's or body field's running observation
// histogram (spec §4.5).
type ParamStats struct {
	ObservedCount    int
	Values           map[string]int
	NumericRange     *NumericRange
	FormatHintCounts map[Format]int
}

// NewParamStats returns an empty histogram.
func NewParamStats() *ParamStats {
	return &ParamStats{Values: map[string]int{}, FormatHintCounts: map[Format]int{}}
}

// Observe records one occurrence of value, updating the value
// histogram, numeric range, and string format hints.
func (p *ParamStats) Observe(value interface{}) {
	p.ObservedCount++
	key := fmt.Sprint(value)
	p.Values[key]++

	switch v := value.(type) {
	case string:
		for _, f := range DetectFormats(v) {
			p.FormatHintCounts[f]++
		}
	case int:
		p.observeNumber(IntNumber(int64(v)))
	case int64:
		p.observeNumber(IntNumber(v))
	case float64:
		if v == float64(int64(v)) {
			p.observeNumber(IntNumber(int64(v)))
		} else {
			p.observeNumber(FloatNumber(v))
		}
	}
}

func (p *ParamStats) observeNumber(n Number) {
	if p.NumericRange == nil {
		p.NumericRange = &NumericRange{Min: n, Max: n}
		return
	}
	if n.Float64() < p.NumericRange.Min.Float64() {
		p.NumericRange.Min = n
	}
	if n.Float64() > p.NumericRange.Max.Float64() {
		p.NumericRange.Max = n
	}
}

// SortedValues returns the observed distinct values sorted
// lexicographically, for deterministic enum emission.
func (p *ParamStats) SortedValues() []string {
	out := make([]string, 0, len(p.Values))
	for v := range p.Values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MethodStats is the per-method statistics bundle spec §4.5 names:
// {requestCount, params, bodyFields}.
type MethodStats struct {
	RequestCount int
	Params       map[string]*ParamStats
	BodyFields   map[string]*ParamStats
}

// NewMethodStats returns an empty MethodStats.
func NewMethodStats() *MethodStats {
	return &MethodStats{Params: map[string]*ParamStats{}, BodyFields: map[string]*ParamStats{}}
}

// ObserveRequest increments the method-level request counter. Call once
// per observed request, before recording its params/body fields.
func (m *MethodStats) ObserveRequest() {
	m.RequestCount++
}

// ObserveParam records one observed value for a query or path param.
func (m *MethodStats) ObserveParam(name string, value interface{}) {
	ps, ok := m.Params[name]
	if !ok {
		ps = NewParamStats()
		m.Params[name] = ps
	}
	ps.Observe(value)
}

// ObserveBodyField records one observed value for a dotted body path.
func (m *MethodStats) ObserveBodyField(path string, value interface{}) {
	ps, ok := m.BodyFields[path]
	if !ok {
		ps = NewParamStats()
		m.BodyFields[path] = ps
	}
	ps.Observe(value)
}

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

import "testing"

func TestDetectFormats(t *testing.T) {
	cases := map[string]Format{
		"2024-01-02T15:04:05Z":                 FormatDateTime,
		"https://example.com/a":                FormatURI,
		"a@example.com":                        FormatEmail,
		"123e4567-e89b-12d3-a456-426614174000": FormatUUID,
		"-42":                                  FormatInteger,
	}
	for input, want := range cases {
		hits := DetectFormats(input)
		found := false
		for _, h := range hits {
			if h == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("DetectFormats(%q) = %v, want to contain %v", input, hits, want)
		}
	}
}

func TestDeriveRequired(t *testing.T) {
	p := NewParamStats()
	for i := 0; i < 4; i++ {
		p.Observe("x")
	}
	d := Derive(p, 4)
	if !d.Required {
		t.Fatalf("expected required, got %+v", d)
	}
}

func TestDeriveRequiredNeedsFullCoverage(t *testing.T) {
	p := NewParamStats()
	p.Observe("x")
	p.Observe("x")
	d := Derive(p, 5)
	if d.Required {
		t.Fatalf("expected not required, got %+v", d)
	}
}

func TestDeriveEnum(t *testing.T) {
	p := NewParamStats()
	values := []string{"a", "b", "a", "b", "a"}
	for _, v := range values {
		p.Observe(v)
	}
	d := Derive(p, 5)
	if len(d.Enum) != 2 || d.Enum[0] != "a" || d.Enum[1] != "b" {
		t.Fatalf("got %+v", d.Enum)
	}
}

func TestDeriveDefault(t *testing.T) {
	p := NewParamStats()
	p.Observe("en")
	p.Observe("en")
	p.Observe("en")
	p.Observe("en")
	p.Observe("fr")
	d := Derive(p, 5)
	if !d.HasDefault || d.Default != "en" {
		t.Fatalf("got %+v", d)
	}
}

func TestDeriveRange(t *testing.T) {
	p := NewParamStats()
	for _, v := range []int{5, 1, 9, 3} {
		p.Observe(v)
	}
	d := Derive(p, 4)
	if d.Range == nil || d.Range.Min.Float64() != 1 || d.Range.Max.Float64() != 9 {
		t.Fatalf("got %+v", d.Range)
	}
}

func TestCorrelations(t *testing.T) {
	source := map[string]*ParamStats{
		"a": NewParamStats(),
		"b": NewParamStats(),
		"c": NewParamStats(),
	}
	source["a"].Observe("1")
	source["a"].Observe("2")
	source["b"].Observe("1")
	source["b"].Observe("2")
	source["c"].Observe("9")

	got := Correlations(source)
	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	if (got[0].A != "a" || got[0].B != "b") && (got[0].A != "b" || got[0].B != "a") {
		t.Fatalf("got %+v", got[0])
	}
}

func TestMethodStatsObserve(t *testing.T) {
	m := NewMethodStats()
	m.ObserveRequest()
	m.ObserveParam("q", "hello")
	m.ObserveBodyField("context.query", "hello")
	if m.RequestCount != 1 {
		t.Fatalf("got %d", m.RequestCount)
	}
	if m.Params["q"].ObservedCount != 1 {
		t.Fatalf("got %+v", m.Params["q"])
	}
	if m.BodyFields["context.query"].ObservedCount != 1 {
		t.Fatalf("got %+v", m.BodyFields["context.query"])
	}
}

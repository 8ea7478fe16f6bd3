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

package chain

// Link is spec §4.6's ChainLink: a hit where a value used as a request
// input for targetMethodID was previously observed in a response field
// of a different method.
type Link struct {
	TargetMethodID  string
	ParamName       string
	ParamLocation   string // "query", "path", or "body"
	SourceMethodID  string
	SourceFieldPath string
	ObservedCount   int
}

// Input is one flattened request value a caller wants checked against
// the index, naming where it came from on the outgoing request.
type Input struct {
	Name     string
	Location string
	Value    interface{}
}

// DetectLinks implements spec §4.6's "Detection": for each chainable
// input value, look up the index and emit a Link for every hit whose
// source method differs from targetMethodID.
func (ix *Index) DetectLinks(targetMethodID string, inputs []Input) []Link {
	var links []Link
	for _, in := range inputs {
		switch v := in.Value.(type) {
		case string:
			if !IsChainableString(v) {
				continue
			}
			for _, occ := range ix.LookupString(v) {
				if occ.MethodID == targetMethodID {
					continue
				}
				links = append(links, Link{
					TargetMethodID:  targetMethodID,
					ParamName:       in.Name,
					ParamLocation:   in.Location,
					SourceMethodID:  occ.MethodID,
					SourceFieldPath: occ.FieldPath,
					ObservedCount:   1,
				})
			}
		case float64:
			if !IsChainableNumber(v) {
				continue
			}
			for _, occ := range ix.LookupNumber(formatNumberKey(v)) {
				if occ.MethodID == targetMethodID {
					continue
				}
				links = append(links, Link{
					TargetMethodID:  targetMethodID,
					ParamName:       in.Name,
					ParamLocation:   in.Location,
					SourceMethodID:  occ.MethodID,
					SourceFieldPath: occ.FieldPath,
					ObservedCount:   1,
				})
			}
		}
	}
	return links
}

// Key identifies a link for dedup/merge purposes (spec: "increment
// observedCount on duplicate re-observation").
type Key struct {
	TargetMethodID  string
	ParamName       string
	SourceMethodID  string
	SourceFieldPath string
}

func (l Link) Key() Key {
	return Key{
		TargetMethodID:  l.TargetMethodID,
		ParamName:       l.ParamName,
		SourceMethodID:  l.SourceMethodID,
		SourceFieldPath: l.SourceFieldPath,
	}
}

// Set is an append-or-increment collection of Links, used by each
// method to hold its outgoing/incoming chain links.
type Set struct {
	links map[Key]*Link
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{links: map[Key]*Link{}}
}

// Merge records each link, incrementing ObservedCount on a repeat.
func (s *Set) Merge(links []Link) {
	for _, l := range links {
		key := l.Key()
		if existing, ok := s.links[key]; ok {
			existing.ObservedCount++
			continue
		}
		clone := l
		if clone.ObservedCount < 1 {
			clone.ObservedCount = 1
		}
		s.links[key] = &clone
	}
}

// All returns every link in the set.
func (s *Set) All() []Link {
	out := make([]Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, *l)
	}
	return out
}

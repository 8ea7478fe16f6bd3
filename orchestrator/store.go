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

// Package orchestrator wires the codec, parser, probe, stats and chain
// packages together into the single-writer VDD pipeline spec §4.8
// describes: one entry point per captured request, one per captured
// response.
package orchestrator

import (
	"context"
	"sync"

	"github.com/google/vdd/vddoc"
)

// Store is the credential-opaque KV collaborator of spec §6: "Keyed
// reads and writes of opaque values with atomic overwrites." The
// orchestrator serialises apiKeys/endpoints/discoveryDocs/probeResults/
// scopes/securityFindings through it; this package never assumes a
// particular backing store.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
}

// MemoryStore is a minimal concrete Store, sufficient standalone use
// and for tests; a browser-extension host would instead back Store with
// its own storage.local/IndexedDB collaborator.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// DiscoveryFetcher is the external collaborator spec §4.8 step 3 calls
// out: "an asynchronous discovery fetch... its success merges into the
// VDD with virtual-part preservation." ok is false for DiscoveryNotFound
// (spec §7) — every candidate URL failed or returned non-discovery JSON.
type DiscoveryFetcher interface {
	FetchOfficial(ctx context.Context, host string) (*vddoc.Document, bool)
}

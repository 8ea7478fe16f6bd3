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

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigWithNoFlagReturnsEmptyConfig(t *testing.T) {
	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cfg.APIKeyFor("example.com"); ok {
		t.Fatal("expected no API key without a config file")
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vddtool.yaml")
	contents := "credentialHeaders:\n  Authorization: Bearer test-token\napiKeys:\n  widgets.googleapis.com: AIza-test\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CredentialHeaders["Authorization"] != "Bearer test-token" {
		t.Fatalf("got %+v", cfg.CredentialHeaders)
	}
	key, ok := cfg.APIKeyFor("widgets.googleapis.com")
	if !ok || key != "AIza-test" {
		t.Fatalf("got %q, %v", key, ok)
	}
}

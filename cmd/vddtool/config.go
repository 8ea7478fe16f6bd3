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

	"gopkg.in/yaml.v3"
)

// config is vddtool's replay-time configuration: credential headers the
// production browser relay would already be carrying, and per-host API
// keys for the googleapis.com discovery candidates (spec §6).
//
// credentialHeaders: { "Authorization": "Bearer ..." }
// apiKeys: { "widgets.googleapis.com": "AIza..." }
type config struct {
	CredentialHeaders map[string]string `yaml:"credentialHeaders"`
	APIKeys           map[string]string `yaml:"apiKeys"`
}

// loadConfig reads a YAML config file named by arg (a docopt
// --config=<file> value, possibly nil/absent). A missing --config flag
// is not an error: replay works with no credentials or API keys, just
// as the production relay does against an unauthenticated host.
func loadConfig(arg interface{}) (*config, error) {
	path, _ := arg.(string)
	if path == "" {
		return &config{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKeyFor implements the lookup discovery.Client.SetAPIKeyLookup
// expects.
func (c *config) APIKeyFor(host string) (string, bool) {
	key, ok := c.APIKeys[host]
	return key, ok
}

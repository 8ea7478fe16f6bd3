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

// Package discovery implements spec §6's "discovery URL probe set" and
// feeds its result through §4.7's virtual-part-preserving merge path.
// It adapts compiler/reader.go's fetch-or-read-file idiom to the
// orchestrator's DiscoveryFetcher collaborator contract.
package discovery

import (
	"context"
	"strings"

	"github.com/google/vdd/probe"
	"github.com/google/vdd/vddoc"
)

// Client implements orchestrator.DiscoveryFetcher by probing the
// well-known discovery URL set (spec §6) through a credential-preserving
// relay, same collaborator the probe engine (C4) uses.
type Client struct {
	relay     probe.Relay
	apiKeyFor func(host string) (string, bool)
}

// NewClient returns a Client that fetches through relay. By default no
// API key is known for any host; call SetAPIKeyLookup to wire one in
// (e.g. from keys the orchestrator has observed in captured traffic).
func NewClient(relay probe.Relay) *Client {
	return &Client{relay: relay}
}

// SetAPIKeyLookup installs a function the client consults before
// probing a *.googleapis.com host, to populate the X-Goog-Api-Key
// header and ?key= query variants spec §6 names.
func (c *Client) SetAPIKeyLookup(f func(host string) (string, bool)) {
	c.apiKeyFor = f
}

type candidate struct {
	url     string
	method  string
	headers map[string]string
}

func (c *Client) candidatesForHost(host string) []candidate {
	base := "https://" + host
	paths := []string{"/openapi.json", "/swagger.json", "/api-docs", "/v1/openapi.json"}
	var out []candidate
	for _, p := range paths {
		u := base + p
		out = append(out, candidate{url: u, method: "GET"})
		out = append(out, candidate{url: u, method: "POST", headers: map[string]string{"X-Http-Method-Override": "GET"}})
	}

	if strings.HasSuffix(host, ".googleapis.com") {
		du := base + "/$discovery/rest?version=v1"
		out = append(out, candidate{url: du, method: "GET"})
		out = append(out, candidate{url: du, method: "POST", headers: map[string]string{"X-Http-Method-Override": "GET"}})
		if c.apiKeyFor != nil {
			if apiKey, found := c.apiKeyFor(host); found {
				out = append(out, candidate{url: du, method: "GET", headers: map[string]string{"X-Goog-Api-Key": apiKey}})
				out = append(out, candidate{url: du + "&key=" + apiKey, method: "GET"})
			}
		}
	}
	return out
}

// FetchOfficial tries each well-known discovery URL in turn, returning
// the first one whose response parses as a Google Discovery document or
// an OpenAPI v2/v3 document.
func (c *Client) FetchOfficial(ctx context.Context, host string) (*vddoc.Document, bool) {
	for _, cand := range c.candidatesForHost(host) {
		resp, err := c.relay.Fetch(ctx, cand.url, probe.Request{Method: cand.method, Headers: cand.headers})
		if err != nil || !resp.OK || resp.Status != 200 {
			continue
		}
		if doc, ok := parseOfficialDocument(host, resp.Body); ok {
			return doc, true
		}
	}
	return nil, false
}

func parseOfficialDocument(host string, body []byte) (*vddoc.Document, bool) {
	if looksLikeGoogleDiscoveryDocument(body) {
		if doc, ok := convertGoogleDiscoveryDocument(host, body); ok {
			return doc, true
		}
	}
	if looksLikeOpenAPIDocument(body) {
		if doc, ok := convertOpenAPIDocument(host, body); ok {
			return doc, true
		}
	}
	return nil, false
}

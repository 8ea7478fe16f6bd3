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

// Command vddtool replays a captured traffic log through the
// orchestrator and prints the resulting Virtual Discovery Documents.
// It stands in for the browser extension's traffic shim (spec §6) so
// the engine can be exercised from the command line.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"

	"github.com/docopt/docopt-go"
	"google.golang.org/genproto/googleapis/api/httpbody"

	"github.com/google/vdd/discovery"
	"github.com/google/vdd/orchestrator"
	"github.com/google/vdd/probe"
	"github.com/google/vdd/vddjson"
)

const usage = `vddtool.

Usage:
  vddtool replay <tracefile> [--host=<host>] [--config=<file>]
  vddtool -h | --help

Replays a captured traffic log (newline-delimited JSON records shaped
like the traffic shim's {request} and {response} deliveries, spec §6)
through the orchestrator and prints the resulting Virtual Discovery
Document for every host observed, as JSON.

Options:
  --host=<host>      Print only the VDD for this host.
  --config=<file>    YAML config supplying API keys and extra headers
                      for the replay relay (see config.go).
`

func main() {
	arguments, err := docopt.Parse(usage, nil, true, "vddtool 1.0", false)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if arguments["replay"].(bool) {
		runReplay(arguments)
	}
}

// traceRecord is one line of a replayed trace: either a captured
// request or its matching response, distinguished by Type. Body is
// base64-encoded, matching the traffic shim's "rawBody (optional,
// base64)" / "body (base64 or text)" contract (spec §6).
type traceRecord struct {
	Type        string `json:"type"`
	TabID       string `json:"tabId"`
	RequestID   string `json:"requestId"`
	URL         string `json:"url"`
	Method      string `json:"method"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
	Status      int    `json:"status"`
}

func runReplay(arguments map[string]interface{}) {
	path := arguments["<tracefile>"].(string)
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer f.Close()

	cfg, err := loadConfig(arguments["--config"])
	if err != nil {
		log.Fatalf("%+v", err)
	}

	relay := httpRelay{client: &http.Client{}, extraHeaders: cfg.CredentialHeaders}
	discoveryClient := discovery.NewClient(relay)
	discoveryClient.SetAPIKeyLookup(cfg.APIKeyFor)
	o := orchestrator.New(relay, discoveryClient, orchestrator.NewMemoryStore())

	ctx := context.Background()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		replayLine(ctx, o, line)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("%+v", err)
	}

	hostFilter, _ := arguments["--host"].(string)
	hosts := o.Hosts()
	sort.Strings(hosts)
	for _, host := range hosts {
		if hostFilter != "" && host != hostFilter {
			continue
		}
		fmt.Printf("// %s\n", host)
		os.Stdout.Write(vddjson.Print(o.DocumentFor(host)))
	}
}

func replayLine(ctx context.Context, o *orchestrator.Orchestrator, line []byte) {
	var rec traceRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		log.Printf("skipping malformed trace line: %v", err)
		return
	}
	body, err := base64.StdEncoding.DecodeString(rec.Body)
	if err != nil {
		body = []byte(rec.Body)
	}
	switch rec.Type {
	case "request":
		o.HandleRequest(ctx, orchestrator.TrafficRequest{
			TabID:     rec.TabID,
			RequestID: rec.RequestID,
			URL:       rec.URL,
			Method:    rec.Method,
			Body:      &httpbody.HttpBody{ContentType: rec.ContentType, Data: body},
		})
	case "response":
		o.HandleResponse(orchestrator.TrafficResponse{
			RequestID: rec.RequestID,
			Status:    rec.Status,
			Body:      &httpbody.HttpBody{ContentType: rec.ContentType, Data: body},
		})
	default:
		log.Printf("skipping trace line with unknown type %q", rec.Type)
	}
}

// httpRelay is a plain net/http implementation of probe.Relay for
// command-line replay, where there is no browser cookie jar to
// preserve. Production deployments implement Relay against the
// browser's credential-carrying fetch instead (spec §6).
type httpRelay struct {
	client       *http.Client
	extraHeaders map[string]string
}

func (r httpRelay) Fetch(ctx context.Context, url string, req probe.Request) (probe.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bytes.NewReader(req.Body))
	if err != nil {
		return probe.Response{}, err
	}
	for k, v := range r.extraHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return probe.Response{Error: err.Error()}, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return probe.Response{Error: err.Error()}, nil
	}
	return probe.Response{OK: true, Status: resp.StatusCode, Body: body}, nil
}

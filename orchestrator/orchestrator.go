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

package orchestrator

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"google.golang.org/genproto/googleapis/api/httpbody"

	"github.com/google/vdd/chain"
	"github.com/google/vdd/format"
	"github.com/google/vdd/probe"
	"github.com/google/vdd/vddoc"
)

// requestLogCapacity bounds per-tab request-log entries (spec §5:
// "Per-tab request-log capacity is bounded at 50 entries (oldest
// evicted)").
const requestLogCapacity = 50

// discoveryCooldown is spec §4.8 step 3's "last attempt was not_found
// more than 5 minutes ago" retry window.
const discoveryCooldown = 5 * time.Minute

// TrafficRequest is the traffic-shim collaborator's request record
// (spec §6), trimmed to the fields the orchestrator consumes. Body
// carries the captured request body in the same envelope the traffic
// shim uses all the way from capture to the format decoders, rather
// than an ad hoc byte-slice/content-type pair; Body is nil for
// bodyless requests.
type TrafficRequest struct {
	TabID           string
	RequestID       string
	URL             string
	Method          string
	InitiatorOrigin string
	RequestHeaders  map[string]string
	Body            *httpbody.HttpBody
}

// TrafficResponse is the traffic-shim collaborator's response record
// (spec §6).
type TrafficResponse struct {
	RequestID       string
	Status          int
	ResponseHeaders map[string]string
	Body            *httpbody.HttpBody
}

type pendingRequest struct {
	tabID      string
	host       string
	urlPath    string
	httpMethod string
}

type discoveryAttempt struct {
	status string // "pending", "found" or "not_found"
	at     time.Time
}

// Orchestrator is the single writer of every per-service VDD (spec §5:
// "the orchestrator's public operations are the only writers to the
// VDD"). Its exported methods are safe to call from multiple
// goroutines; a mutex serialises every mutation, the Go realisation of
// the spec's "single logical task queue."
type Orchestrator struct {
	mu sync.Mutex

	docs              map[string]*vddoc.Document
	chains            map[string]*chain.Index
	pending           map[string]pendingRequest
	pendingOrder      map[string][]string // tabID -> requestIDs, oldest first
	inFlightProbes    map[string]bool
	discoveryAttempts map[string]discoveryAttempt

	probeEngine *probe.Engine
	fetcher     DiscoveryFetcher
	store       Store
}

// New returns an Orchestrator ready to learn. fetcher may be nil, in
// which case discovery scheduling (spec §4.8 step 3) is skipped.
func New(relay probe.Relay, fetcher DiscoveryFetcher, store Store) *Orchestrator {
	return &Orchestrator{
		docs:              make(map[string]*vddoc.Document),
		chains:            make(map[string]*chain.Index),
		pending:           make(map[string]pendingRequest),
		pendingOrder:      make(map[string][]string),
		inFlightProbes:    make(map[string]bool),
		discoveryAttempts: make(map[string]discoveryAttempt),
		probeEngine:       probe.NewEngine(relay),
		fetcher:           fetcher,
		store:             store,
	}
}

// DocumentFor returns the current VDD for host, or nil if nothing has
// been learned about it yet.
func (o *Orchestrator) DocumentFor(host string) *vddoc.Document {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.docs[host]
}

// Hosts returns every host an Orchestrator has a VDD for, in no
// particular order.
func (o *Orchestrator) Hosts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	hosts := make([]string, 0, len(o.docs))
	for host := range o.docs {
		hosts = append(hosts, host)
	}
	return hosts
}

// HandleRequest implements spec §4.8's per-request pipeline: method
// resolution, parameter/body learning, and probe/discovery scheduling.
func (o *Orchestrator) HandleRequest(ctx context.Context, req TrafficRequest) {
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return
	}
	host := parsed.Host
	urlPath := parsed.Path

	o.mu.Lock()
	doc := o.docFor(host)
	interfaceName := vddoc.InterfaceName(host, urlPath)
	baseName := vddoc.BaseMethodName(host, urlPath)

	resourceName := vddoc.ResourceLearned
	if _, existingResource, ok := vddoc.FindMethod(doc, baseName); ok {
		resourceName = existingResource
	}
	method := vddoc.ResolveMethod(doc, resourceName, interfaceName, baseName, req.Method, urlPath)

	vddoc.LearnPathParams(method, urlPath)
	vddoc.LearnQueryParams(method, parsed.Query())

	reqBody, reqContentType := bodyBytes(req.Body), bodyContentType(req.Body)
	if format.IsBatchExecutePath(urlPath) {
		if calls, ok := format.ParseRequest(reqBody); ok {
			vddoc.LearnBatchExecuteRequest(doc, resourceName, interfaceName, calls)
		}
	} else if len(reqBody) > 0 {
		vddoc.LearnRequestBody(doc, method, reqContentType, urlPath, reqBody)
	}

	o.recordPending(req, host, urlPath)
	o.detectIncomingLinks(req.TabID, method, parsed.Query(), decodeJSONBestEffort(reqBody))

	shouldProbe := isProbeCandidate(reqContentType) && (method.Request == nil || resourceName == vddoc.ResourceLearned)
	probeKey := host + urlPath
	scheduleProbe := shouldProbe && !o.inFlightProbes[probeKey]
	if scheduleProbe {
		o.inFlightProbes[probeKey] = true
	}

	scheduleDiscovery := o.fetcher != nil && o.shouldAttemptDiscovery(host)
	if scheduleDiscovery {
		o.discoveryAttempts[host] = discoveryAttempt{status: "pending", at: timeNow()}
	}
	o.persistDoc(host, doc)
	o.mu.Unlock()

	if scheduleProbe {
		go o.runProbe(ctx, host, urlPath, probeKey, baseName, req.RequestHeaders)
	}
	if scheduleDiscovery {
		go o.runDiscovery(ctx, host)
	}
}

// HandleResponse implements spec §4.8's per-response pipeline:
// classify, learn a response schema, index chainable values.
func (o *Orchestrator) HandleResponse(resp TrafficResponse) {
	o.mu.Lock()
	pending, ok := o.pending[resp.RequestID]
	if ok {
		delete(o.pending, resp.RequestID)
	}
	if !ok {
		o.mu.Unlock()
		return
	}

	doc := o.docFor(pending.host)
	interfaceName := vddoc.InterfaceName(pending.host, pending.urlPath)
	baseName := vddoc.BaseMethodName(pending.host, pending.urlPath)
	method, _, found := vddoc.FindMethod(doc, baseName)
	if !found {
		method = vddoc.ResolveMethod(doc, vddoc.ResourceLearned, interfaceName, baseName, pending.httpMethod, pending.urlPath)
	}

	respBody, respContentType := bodyBytes(resp.Body), bodyContentType(resp.Body)
	vddoc.LearnResponseBody(doc, method, respContentType, pending.urlPath, respBody)

	ix := o.chainIndexFor(pending.tabID)
	var decoded interface{}
	switch format.Classify(respContentType, pending.urlPath, respBody) {
	case format.KindJSON:
		decoded = decodeJSONBestEffort(respBody)
	case format.KindJSPB:
		if arr, ok := format.ParseJSPB(respBody); ok {
			decoded = arr
		}
	}
	if decoded != nil {
		ix.IndexResponse(method.ID, respContentType, decoded)
	}
	o.persistDoc(pending.host, doc)
	o.mu.Unlock()
}

// bodyBytes and bodyContentType unwrap the httpbody.HttpBody envelope,
// treating a nil Body (no body captured) the same as an empty one.
func bodyBytes(b *httpbody.HttpBody) []byte {
	if b == nil {
		return nil
	}
	return b.GetData()
}

func bodyContentType(b *httpbody.HttpBody) string {
	if b == nil {
		return ""
	}
	return b.GetContentType()
}

// persistDoc serialises doc's current state to the Store collaborator
// (spec §6: "The orchestrator serialises ... to this store"). Caller
// holds o.mu. A marshal failure is treated like any other collaborator
// error (spec §7): local, non-fatal, state unchanged.
func (o *Orchestrator) persistDoc(host string, doc *vddoc.Document) {
	if o.store == nil {
		return
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return
	}
	o.store.Put("vdd:"+host, b)
}

func (o *Orchestrator) docFor(host string) *vddoc.Document {
	doc, ok := o.docs[host]
	if !ok {
		doc = vddoc.NewDocument(host)
		o.docs[host] = doc
	}
	return doc
}

func (o *Orchestrator) chainIndexFor(tabID string) *chain.Index {
	ix, ok := o.chains[tabID]
	if !ok {
		ix = chain.New()
		o.chains[tabID] = ix
	}
	return ix
}

// detectIncomingLinks implements spec §4.6's detection half: the new
// request's flattened query params and body values are checked against
// the tab's chain index, and every hit from a different method is
// recorded as a link on both ends. decodedBody is the JSON-decoded
// request body, or nil if there wasn't one / it didn't decode. Caller
// holds o.mu.
func (o *Orchestrator) detectIncomingLinks(tabID string, method *vddoc.Method, query url.Values, decodedBody interface{}) {
	var inputs []chain.Input
	for name, vs := range query {
		for _, v := range vs {
			inputs = append(inputs, chain.Input{Name: name, Location: vddoc.LocationQuery, Value: v})
		}
	}
	inputs = append(inputs, chain.FlattenInputs(vddoc.LocationBody, decodedBody)...)
	if len(inputs) == 0 {
		return
	}

	ix := o.chainIndexFor(tabID)
	links := ix.DetectLinks(method.ID, inputs)
	if len(links) == 0 {
		return
	}
	method.Incoming.Merge(links)
	for _, l := range links {
		if source := o.findMethodByID(l.SourceMethodID); source != nil {
			source.Outgoing.Merge([]chain.Link{l})
		}
	}
}

// findMethodByID scans every known document for a method with id,
// needed because a chain link's source method may live in a different
// service's document than the link's target. Caller holds o.mu.
func (o *Orchestrator) findMethodByID(id string) *vddoc.Method {
	for _, doc := range o.docs {
		for _, resourceName := range doc.Resources.Keys() {
			resource, _ := doc.Resources.Get(resourceName)
			for _, name := range resource.Methods.Keys() {
				m, _ := resource.Methods.Get(name)
				if m.ID == id {
					return m
				}
			}
		}
	}
	return nil
}

func (o *Orchestrator) recordPending(req TrafficRequest, host, urlPath string) {
	o.pending[req.RequestID] = pendingRequest{
		tabID:      req.TabID,
		host:       host,
		urlPath:    urlPath,
		httpMethod: req.Method,
	}
	order := append(o.pendingOrder[req.TabID], req.RequestID)
	if len(order) > requestLogCapacity {
		evicted := order[0]
		order = order[1:]
		delete(o.pending, evicted)
	}
	o.pendingOrder[req.TabID] = order
}

func (o *Orchestrator) shouldAttemptDiscovery(host string) bool {
	attempt, ok := o.discoveryAttempts[host]
	if !ok {
		return true
	}
	if attempt.status == "pending" {
		return false
	}
	return attempt.status == "not_found" && timeNow().Sub(attempt.at) > discoveryCooldown
}

func (o *Orchestrator) runProbe(ctx context.Context, host, urlPath, probeKey, baseName string, headers map[string]string) {
	result, ok := o.probeEngine.Run(ctx, "https://"+host+urlPath, headers)

	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlightProbes, probeKey)
	if !ok {
		return
	}

	doc := o.docFor(host)
	method, _, found := vddoc.FindMethod(doc, baseName)
	if !found {
		return
	}
	name := vddoc.SchemaNameForMethod(method.ID, "Request")
	fresh := vddoc.NewOrderedMap[*vddoc.Schema]()
	incoming := vddoc.GenerateSchemaFromProbe(fresh, name, result.Fields)

	if existing, ok := doc.Schemas.Get(name); ok {
		vddoc.MergeSchemaInto(doc.Schemas, fresh, existing, incoming, true)
	} else {
		doc.Schemas.Set(name, incoming)
	}
	method.Request = &vddoc.Ref{Ref: name}
	vddoc.PromoteToProbed(doc, baseName)
	o.persistDoc(host, doc)
}

func (o *Orchestrator) runDiscovery(ctx context.Context, host string) {
	officialDoc, ok := o.fetcher.FetchOfficial(ctx, host)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !ok {
		o.discoveryAttempts[host] = discoveryAttempt{status: "not_found", at: timeNow()}
		return
	}
	o.discoveryAttempts[host] = discoveryAttempt{status: "found", at: timeNow()}

	oldDoc := o.docs[host]
	if oldDoc != nil {
		vddoc.PreserveVirtualParts(officialDoc, oldDoc)
	}
	o.docs[host] = officialDoc
	o.persistDoc(host, officialDoc)
}

func isProbeCandidate(contentType string) bool {
	return format.IsProtobufContentType(contentType) || format.IsGRPCWeb(contentType) || strings.Contains(strings.ToLower(contentType), "grpc")
}

func decodeJSONBestEffort(body []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

func timeNow() time.Time {
	return time.Now()
}

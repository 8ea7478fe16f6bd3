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

package discovery

import (
	"encoding/json"
	"strings"

	"github.com/google/vdd/scalar"
	"github.com/google/vdd/vddoc"
)

// googleDoc is the subset of the Google API Discovery document format
// (https://developers.google.com/discovery/v1/reference/apis) this
// package needs; it mirrors the teacher's own plain-struct JSON idiom
// in discovery/list.go rather than the generated protobuf accessors the
// teacher used downstream of it.
type googleDoc struct {
	Kind             string                    `json:"kind"`
	DiscoveryVersion string                    `json:"discoveryVersion"`
	RootURL          string                    `json:"rootUrl"`
	ServicePath      string                    `json:"servicePath"`
	BasePath         string                    `json:"basePath"`
	Schemas          map[string]*jsonSchemaNode `json:"schemas"`
	Methods          map[string]*googleMethod  `json:"methods"`
	Resources        map[string]*googleResource `json:"resources"`
}

type googleResource struct {
	Methods   map[string]*googleMethod   `json:"methods"`
	Resources map[string]*googleResource `json:"resources"`
}

type googleMethod struct {
	ID         string                       `json:"id"`
	Path       string                       `json:"path"`
	FlatPath   string                       `json:"flatPath"`
	HTTPMethod string                       `json:"httpMethod"`
	Parameters map[string]*googleParameter  `json:"parameters"`
	Request    *googleRef                   `json:"request"`
	Response   *googleRef                   `json:"response"`
}

type googleRef struct {
	Ref string `json:"$ref"`
}

type googleParameter struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Required bool   `json:"required"`
	Format   string `json:"format"`
}

// looksLikeGoogleDiscoveryDocument is a cheap pre-check so the client
// doesn't have to fully unmarshal every candidate body against every
// format before picking the right one.
func looksLikeGoogleDiscoveryDocument(body []byte) bool {
	s := string(body)
	return strings.Contains(s, `"discoveryVersion"`) || strings.Contains(s, `"kind": "discovery#restDescription"`) ||
		strings.Contains(s, `"kind":"discovery#restDescription"`)
}

func convertGoogleDiscoveryDocument(host string, body []byte) (*vddoc.Document, bool) {
	var gd googleDoc
	if err := json.Unmarshal(body, &gd); err != nil {
		return nil, false
	}
	if gd.DiscoveryVersion == "" && gd.Kind != "discovery#restDescription" {
		return nil, false
	}

	rootURL := gd.RootURL
	if rootURL == "" {
		rootURL = "https://" + host + "/"
	}
	doc := vddoc.NewDocument(rootURL)
	official := vddoc.NewResource()
	doc.Resources.Set(vddoc.ResourceOfficial, official)

	for _, name := range sortedSchemaKeys(gd.Schemas) {
		convertSchemaNode(doc.Schemas, name, gd.Schemas[name])
	}

	basePath := gd.BasePath
	if basePath == "" {
		basePath = gd.ServicePath
	}
	walkGoogleMethods(doc, official, basePath, gd.Methods)
	walkGoogleResources(doc, official, basePath, "", gd.Resources)
	return doc, true
}

func walkGoogleResources(doc *vddoc.Document, official *vddoc.Resource, basePath, prefix string, resources map[string]*googleResource) {
	for _, name := range sortedGoogleResourceKeys(resources) {
		r := resources[name]
		nestedPrefix := prefix + name + "_"
		walkGoogleMethods(doc, official, basePath, prefixMethodNames(r.Methods, nestedPrefix))
		walkGoogleResources(doc, official, basePath, nestedPrefix, r.Resources)
	}
}

func prefixMethodNames(methods map[string]*googleMethod, prefix string) map[string]*googleMethod {
	if len(methods) == 0 {
		return nil
	}
	out := make(map[string]*googleMethod, len(methods))
	for name, m := range methods {
		out[prefix+name] = m
	}
	return out
}

func walkGoogleMethods(doc *vddoc.Document, official *vddoc.Resource, basePath string, methods map[string]*googleMethod) {
	for _, name := range sortedGoogleMethodKeys(methods) {
		gm := methods[name]
		path := gm.FlatPath
		if path == "" {
			path = gm.Path
		}
		if !strings.HasPrefix(path, "/") {
			path = strings.TrimSuffix(basePath, "/") + "/" + path
		}
		baseName := sanitizeResourceMethodName(name)
		method := vddoc.NewMethod(gm.ID, path, strings.ToUpper(gm.HTTPMethod))
		for _, pname := range sortedGoogleParamKeys(gm.Parameters) {
			p := gm.Parameters[pname]
			method.Parameters.Set(pname, &vddoc.ParamDef{
				Name:     pname,
				Type:     googleParamScalarType(p.Type),
				Location: p.Location,
				Required: p.Required,
				Format:   p.Format,
			})
		}
		if gm.Request != nil && gm.Request.Ref != "" {
			method.Request = &vddoc.Ref{Ref: gm.Request.Ref}
		}
		if gm.Response != nil && gm.Response.Ref != "" {
			method.Response = &vddoc.Ref{Ref: gm.Response.Ref}
		}
		official.Methods.Set(baseName, method)
	}
}

func googleParamScalarType(t string) scalar.Type {
	switch t {
	case "integer":
		return scalar.Int64
	case "number":
		return scalar.Double
	case "boolean":
		return scalar.Bool
	default:
		return scalar.String
	}
}

func sanitizeResourceMethodName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func sortedGoogleResourceKeys(m map[string]*googleResource) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortedGoogleMethodKeys(m map[string]*googleMethod) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortedGoogleParamKeys(m map[string]*googleParameter) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortStrings(keys []string) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

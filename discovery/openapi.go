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
	"github.com/stoewer/go-strcase"
)

// openAPIDoc covers the fields shared by OpenAPI v2 ("swagger") and v3
// ("openapi") documents this package needs: operations, parameters and
// named schemas. v2 keeps schemas under "definitions", v3 nests them
// under "components.schemas"; both are folded into Schemas below.
type openAPIDoc struct {
	Swagger    string                              `json:"swagger"`
	OpenAPI    string                              `json:"openapi"`
	Host       string                              `json:"host"`
	BasePath   string                              `json:"basePath"`
	Paths      map[string]map[string]*openAPIOp    `json:"paths"`
	Definitions map[string]*jsonSchemaNode         `json:"definitions"`
	Components  struct {
		Schemas map[string]*jsonSchemaNode `json:"schemas"`
	} `json:"components"`
}

type openAPIOp struct {
	OperationID string               `json:"operationId"`
	Parameters  []*openAPIParameter  `json:"parameters"`
	RequestBody *openAPIRequestBody  `json:"requestBody"`
	Responses   map[string]*openAPIResponse `json:"responses"`
}

type openAPIParameter struct {
	Name     string          `json:"name"`
	In       string          `json:"in"`
	Required bool            `json:"required"`
	Type     string          `json:"type"`
	Format   string          `json:"format"`
	Schema   *jsonSchemaNode `json:"schema"`
}

type openAPIRequestBody struct {
	Content map[string]struct {
		Schema *jsonSchemaNode `json:"schema"`
	} `json:"content"`
}

type openAPIResponse struct {
	Schema  *jsonSchemaNode `json:"schema"` // v2
	Content map[string]struct {
		Schema *jsonSchemaNode `json:"schema"`
	} `json:"content"` // v3
}

func looksLikeOpenAPIDocument(body []byte) bool {
	s := string(body)
	return strings.Contains(s, `"swagger"`) || strings.Contains(s, `"openapi"`)
}

func convertOpenAPIDocument(host string, body []byte) (*vddoc.Document, bool) {
	var od openAPIDoc
	if err := json.Unmarshal(body, &od); err != nil {
		return nil, false
	}
	if od.Swagger == "" && od.OpenAPI == "" {
		return nil, false
	}

	rootHost := od.Host
	if rootHost == "" {
		rootHost = host
	}
	doc := vddoc.NewDocument("https://" + rootHost + od.BasePath)
	official := vddoc.NewResource()
	doc.Resources.Set(vddoc.ResourceOfficial, official)

	schemaDefs := od.Definitions
	if len(schemaDefs) == 0 {
		schemaDefs = od.Components.Schemas
	}
	for _, name := range sortedSchemaKeys(schemaDefs) {
		convertSchemaNode(doc.Schemas, name, schemaDefs[name])
	}

	for _, path := range sortedPathKeys(od.Paths) {
		ops := od.Paths[path]
		for _, httpMethod := range sortedOpKeys(ops) {
			op := ops[httpMethod]
			baseName := operationBaseName(op, path, httpMethod)
			method := vddoc.NewMethod(baseName, od.BasePath+path, strings.ToUpper(httpMethod))
			for _, p := range op.Parameters {
				if p.In == "body" {
					continue
				}
				method.Parameters.Set(p.Name, &vddoc.ParamDef{
					Name:     p.Name,
					Type:     openAPIParamScalarType(p),
					Location: p.In,
					Required: p.Required,
					Format:   p.Format,
				})
			}
			if reqSchema := requestBodySchema(op); reqSchema != nil {
				name := strcase.UpperCamelCase(baseName) + "Request"
				convertSchemaNode(doc.Schemas, name, reqSchema)
				method.Request = &vddoc.Ref{Ref: name}
			}
			if respSchema := successResponseSchema(op); respSchema != nil && respSchema.Ref != "" {
				method.Response = &vddoc.Ref{Ref: refName(respSchema.Ref)}
			} else if respSchema != nil {
				name := strcase.UpperCamelCase(baseName) + "Response"
				convertSchemaNode(doc.Schemas, name, respSchema)
				method.Response = &vddoc.Ref{Ref: name}
			}
			official.Methods.Set(baseName, method)
		}
	}
	return doc, true
}

func operationBaseName(op *openAPIOp, path, httpMethod string) string {
	if op.OperationID != "" {
		return sanitizeResourceMethodName(op.OperationID)
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	return strings.ToLower(httpMethod) + "_" + strings.Join(segments, "_")
}

func openAPIParamScalarType(p *openAPIParameter) scalar.Type {
	t := p.Type
	if t == "" && p.Schema != nil {
		t = p.Schema.Type
	}
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

func requestBodySchema(op *openAPIOp) *jsonSchemaNode {
	if op.RequestBody != nil {
		for _, ct := range []string{"application/json", "application/x-www-form-urlencoded"} {
			if c, ok := op.RequestBody.Content[ct]; ok && c.Schema != nil {
				return c.Schema
			}
		}
		for _, c := range op.RequestBody.Content {
			if c.Schema != nil {
				return c.Schema
			}
		}
	}
	for _, p := range op.Parameters {
		if p.In == "body" && p.Schema != nil {
			return p.Schema
		}
	}
	return nil
}

func successResponseSchema(op *openAPIOp) *jsonSchemaNode {
	for _, code := range []string{"200", "201", "default"} {
		r, ok := op.Responses[code]
		if !ok {
			continue
		}
		if r.Schema != nil {
			return r.Schema
		}
		for _, ct := range []string{"application/json"} {
			if c, ok := r.Content[ct]; ok && c.Schema != nil {
				return c.Schema
			}
		}
		for _, c := range r.Content {
			if c.Schema != nil {
				return c.Schema
			}
		}
	}
	return nil
}

func sortedPathKeys(m map[string]map[string]*openAPIOp) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortedOpKeys(m map[string]*openAPIOp) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

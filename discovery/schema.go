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
	"strings"

	"github.com/google/vdd/scalar"
	"github.com/google/vdd/vddoc"
	"github.com/stoewer/go-strcase"
)

// jsonSchemaNode is the shared shape of a JSON-Schema-ish node as found
// in both Google Discovery documents ("type"/"properties"/"items"/"$ref")
// and OpenAPI v2/v3 schema objects. Only the subset spec §3's PropertyDef
// can represent is carried across.
type jsonSchemaNode struct {
	Type       string                     `json:"type"`
	Format     string                     `json:"format"`
	Ref        string                     `json:"$ref"`
	Properties map[string]*jsonSchemaNode `json:"properties"`
	Items      *jsonSchemaNode            `json:"items"`
	Required   []string                   `json:"required"`
	Enum       []string                   `json:"enum"`
}

// convertSchemaNode registers node (and everything it references) into
// schemas under name, following the same "index by name, recurse into
// nested objects" shape as vddoc.GenerateSchemaFromJSON.
func convertSchemaNode(schemas *vddoc.OrderedMap[*vddoc.Schema], name string, node *jsonSchemaNode) *vddoc.Schema {
	if existing, ok := schemas.Get(name); ok {
		return existing
	}
	schema := vddoc.NewObjectSchema(name)
	schemas.Set(name, schema)

	required := map[string]bool{}
	for _, r := range node.Required {
		required[r] = true
	}
	for _, key := range sortedSchemaKeys(node.Properties) {
		prop := convertSchemaProperty(schemas, name, key, node.Properties[key])
		if required[key] {
			prop.Label = scalar.Required
		}
		schema.Properties.Set(key, prop)
	}
	return schema
}

func convertSchemaProperty(schemas *vddoc.OrderedMap[*vddoc.Schema], parentName, key string, node *jsonSchemaNode) *vddoc.PropertyDef {
	if node == nil {
		return &vddoc.PropertyDef{Name: key, Type: scalar.Unknown, Label: scalar.Optional}
	}
	if node.Ref != "" {
		return &vddoc.PropertyDef{Name: key, Type: scalar.Message, Label: scalar.Optional, Ref: refName(node.Ref)}
	}
	if len(node.Enum) > 0 {
		return &vddoc.PropertyDef{Name: key, Type: scalar.Enum, Label: scalar.Optional}
	}
	switch node.Type {
	case "object":
		nestedName := parentName + strcase.UpperCamelCase(key)
		convertSchemaNode(schemas, nestedName, node)
		return &vddoc.PropertyDef{Name: key, Type: scalar.Message, Label: scalar.Optional, Ref: nestedName}
	case "array":
		return convertSchemaArrayProperty(schemas, parentName, key, node.Items)
	case "integer":
		return &vddoc.PropertyDef{Name: key, Type: scalar.Int64, Label: scalar.Optional, Format: node.Format}
	case "number":
		return &vddoc.PropertyDef{Name: key, Type: scalar.Double, Label: scalar.Optional, Format: node.Format}
	case "boolean":
		return &vddoc.PropertyDef{Name: key, Type: scalar.Bool, Label: scalar.Optional}
	default:
		return &vddoc.PropertyDef{Name: key, Type: scalar.String, Label: scalar.Optional, Format: node.Format}
	}
}

func convertSchemaArrayProperty(schemas *vddoc.OrderedMap[*vddoc.Schema], parentName, key string, items *jsonSchemaNode) *vddoc.PropertyDef {
	if items == nil {
		return &vddoc.PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &vddoc.Items{}}
	}
	if items.Ref != "" {
		return &vddoc.PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &vddoc.Items{Type: scalar.Message, Ref: refName(items.Ref)}}
	}
	if items.Type == "object" {
		nestedName := parentName + strcase.UpperCamelCase(key) + "Item"
		convertSchemaNode(schemas, nestedName, items)
		return &vddoc.PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &vddoc.Items{Type: scalar.Message, Ref: nestedName}}
	}
	item := convertSchemaProperty(schemas, parentName, key, items)
	return &vddoc.PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &vddoc.Items{Type: item.Type}}
}

// refName strips the container prefix off a Google Discovery ("Widget")
// or OpenAPI ("#/definitions/Widget", "#/components/schemas/Widget")
// schema reference, leaving the bare schema name.
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func sortedSchemaKeys(m map[string]*jsonSchemaNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

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

package vddoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/vdd/jsonutil"
	"github.com/google/vdd/scalar"
	"github.com/google/vdd/wire"
	"github.com/stoewer/go-strcase"
)

// SchemaNameForMethod builds spec §4.7's `<MethodNameSafe><suffix>` name
// from a method id's last dotted segment (suffix is "Request" or
// "Response").
func SchemaNameForMethod(methodID, suffix string) string {
	parts := strings.Split(methodID, ".")
	last := parts[len(parts)-1]
	return strcase.UpperCamelCase(last) + suffix
}

// GenerateSchemaFromJSON implements spec §4.7's "JSON object" schema
// generation rule, registering any nested object/array-of-object
// schemas into schemas under a derived name.
func GenerateSchemaFromJSON(schemas *OrderedMap[*Schema], name string, value map[string]interface{}) *Schema {
	schema := NewObjectSchema(name)
	_, keys, _ := jsonutil.UnpackMap(value)
	for _, key := range keys {
		schema.Properties.Set(key, inferJSONProperty(schemas, name, key, value[key]))
	}
	return schema
}

func inferJSONProperty(schemas *OrderedMap[*Schema], parentName, key string, v interface{}) *PropertyDef {
	switch val := v.(type) {
	case bool:
		return &PropertyDef{Name: key, Type: scalar.Bool, Label: scalar.Optional}
	case float64:
		if val == math.Trunc(val) {
			return &PropertyDef{Name: key, Type: scalar.Int64, Label: scalar.Optional}
		}
		return &PropertyDef{Name: key, Type: scalar.Double, Label: scalar.Optional}
	case string:
		return &PropertyDef{Name: key, Type: scalar.String, Label: scalar.Optional}
	case map[string]interface{}:
		nestedName := parentName + strcase.UpperCamelCase(key)
		schemas.Set(nestedName, GenerateSchemaFromJSON(schemas, nestedName, val))
		return &PropertyDef{Name: key, Type: scalar.Message, Label: scalar.Optional, Ref: nestedName}
	case []interface{}:
		return inferJSONArrayProperty(schemas, parentName, key, val)
	default:
		return &PropertyDef{Name: key, Type: scalar.Unknown, Label: scalar.Optional}
	}
}

func inferJSONArrayProperty(schemas *OrderedMap[*Schema], parentName, key string, arr []interface{}) *PropertyDef {
	if len(arr) == 0 {
		return &PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &Items{}}
	}
	if obj, ok := arr[0].(map[string]interface{}); ok {
		nestedName := parentName + strcase.UpperCamelCase(key) + "Item"
		schemas.Set(nestedName, GenerateSchemaFromJSON(schemas, nestedName, obj))
		return &PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &Items{Ref: nestedName}}
	}
	item := inferJSONProperty(schemas, parentName, key, arr[0])
	return &PropertyDef{Name: key, Type: scalar.Array, Label: scalar.Repeated, Items: &Items{Type: item.Type}}
}

// GenerateSchemaFromJSPB implements spec §4.7's "JSON array (indexed
// JSPB)" rule: each index i emits key field<i+1>, number = i+1.
func GenerateSchemaFromJSPB(schemas *OrderedMap[*Schema], name string, nodes []*wire.JSPBNode) *Schema {
	schema := NewObjectSchema(name)
	for _, node := range nodes {
		key := fmt.Sprintf("field%d", node.Field)
		schema.Properties.Set(key, inferJSPBProperty(schemas, name, key, node))
	}
	return schema
}

func inferJSPBProperty(schemas *OrderedMap[*Schema], parentName, key string, node *wire.JSPBNode) *PropertyDef {
	num := int(node.Field)
	switch {
	case node.Message != nil:
		nestedName := parentName + "Field" + strconv.Itoa(num)
		schemas.Set(nestedName, GenerateSchemaFromJSPB(schemas, nestedName, node.Message))
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Message, Label: scalar.Optional, Ref: nestedName}
	case node.Object != nil:
		nestedName := parentName + "Field" + strconv.Itoa(num)
		schemas.Set(nestedName, GenerateSchemaFromJSON(schemas, nestedName, node.Object))
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Message, Label: scalar.Optional, Ref: nestedName}
	case node.Repeated != nil:
		return &PropertyDef{
			Name: key, Number: &num, Type: scalar.Array, Label: scalar.Repeated,
			Items: &Items{Type: scalarTypeOfValue(firstOrNil(node.Repeated))},
		}
	default:
		return &PropertyDef{Name: key, Number: &num, Type: scalarTypeOfValue(node.Scalar), Label: scalar.Optional}
	}
}

func scalarTypeOfValue(v interface{}) scalar.Type {
	switch val := v.(type) {
	case bool:
		return scalar.Bool
	case float64:
		if val == math.Trunc(val) {
			return scalar.Int64
		}
		return scalar.Double
	case string:
		return scalar.String
	default:
		return scalar.Unknown
	}
}

func firstOrNil(arr []interface{}) interface{} {
	if len(arr) > 0 {
		return arr[0]
	}
	return nil
}

// GenerateSchemaFromProtobuf implements spec §4.7's "Protobuf tree"
// rule: repeated detection by occurrence count or packed flag, type
// inferred from wire kind, nested messages recursed.
func GenerateSchemaFromProtobuf(schemas *OrderedMap[*Schema], name string, nodes []*wire.Node) *Schema {
	schema := NewObjectSchema(name)
	counts := map[int32]int{}
	for _, n := range nodes {
		counts[n.Field]++
	}
	seen := map[int32]bool{}
	for _, n := range nodes {
		if seen[n.Field] {
			continue
		}
		seen[n.Field] = true
		key := fmt.Sprintf("field%d", n.Field)
		repeated := counts[n.Field] > 1 || n.Kind == wire.KindPackedVarint
		schema.Properties.Set(key, inferProtobufProperty(schemas, name, key, n, repeated))
	}
	return schema
}

func inferProtobufProperty(schemas *OrderedMap[*Schema], parentName, key string, n *wire.Node, repeated bool) *PropertyDef {
	num := int(n.Field)
	label := scalar.Optional
	if repeated {
		label = scalar.Repeated
	}
	switch n.Kind {
	case wire.KindVarint:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Int64, Label: label}
	case wire.KindFixed32:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Float, Label: label}
	case wire.KindFixed64:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Double, Label: label}
	case wire.KindString:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.String, Label: label}
	case wire.KindBytes:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Bytes, Label: label}
	case wire.KindPackedVarint:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Array, Label: scalar.Repeated, Items: &Items{Type: scalar.Int64}}
	case wire.KindMessage:
		nestedName := parentName + "Field" + strconv.Itoa(num)
		schemas.Set(nestedName, GenerateSchemaFromProtobuf(schemas, nestedName, n.Message))
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Message, Label: label, Ref: nestedName}
	default:
		return &PropertyDef{Name: key, Number: &num, Type: scalar.Unknown, Label: label}
	}
}

// isFieldNKey reports whether key is a synthetic `field<N>` name, as
// opposed to a real, server-observed property name.
func isFieldNKey(key string) bool {
	if !strings.HasPrefix(key, "field") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(key, "field"))
	return err == nil
}

// MergeSchemaInto merges incoming (read from the source schema table)
// into existing (held in target), implementing spec §4.7's "Schema
// merge" algorithm. authoritative marks a probe-sourced merge, where
// field numbers and message-vs-scalar types are authoritative and
// field<N> keys are re-keyed to real names (spec: "Probe merge differs
// only in that...").
func MergeSchemaInto(target, source *OrderedMap[*Schema], existing, incoming *Schema, authoritative bool) {
	numberToKey := map[int]string{}
	for _, k := range existing.Properties.Keys() {
		p, _ := existing.Properties.Get(k)
		if p.Number != nil {
			numberToKey[*p.Number] = k
		}
	}

	for _, newKey := range incoming.Properties.Keys() {
		newProp, _ := incoming.Properties.Get(newKey)

		key := newKey
		existingProp, matched := existing.Properties.Get(newKey)
		if !matched && newProp.Number != nil {
			if k2, ok := numberToKey[*newProp.Number]; ok {
				existingProp, matched = existing.Properties.Get(k2)
				key = k2
			}
		}

		if !matched {
			existing.Properties.Set(newKey, newProp)
			if newProp.Number != nil {
				numberToKey[*newProp.Number] = newKey
			}
			copyReferencedSchema(target, source, newProp)
			continue
		}

		renamed := key
		if key != newKey && isFieldNKey(key) && !isFieldNKey(newKey) && !existingProp.CustomName {
			if existing.Properties.Rekey(key, newKey) {
				renamed = newKey
				numberToKey[*existingProp.Number] = newKey
			}
		}

		merged := mergeProperty(existingProp, newProp, authoritative)
		existing.Properties.Set(renamed, merged)
		if merged.Number != nil {
			numberToKey[*merged.Number] = renamed
		}

		if newProp.Ref == "" {
			continue
		}
		newRefSchema, ok := source.Get(newProp.Ref)
		if !ok {
			continue
		}
		existingRefSchema, ok := target.Get(merged.Ref)
		if !ok {
			target.Set(merged.Ref, newRefSchema)
			continue
		}
		MergeSchemaInto(target, source, existingRefSchema, newRefSchema, authoritative)
	}
}

// copyReferencedSchema copies a brand-new property's referenced nested
// schema (and everything it transitively references) from source into
// target, since target had no prior entry to merge into.
func copyReferencedSchema(target, source *OrderedMap[*Schema], prop *PropertyDef) {
	refs := []string{}
	if prop.Ref != "" {
		refs = append(refs, prop.Ref)
	}
	if prop.Items != nil && prop.Items.Ref != "" {
		refs = append(refs, prop.Items.Ref)
	}
	for _, ref := range refs {
		if target.Has(ref) {
			continue
		}
		schema, ok := source.Get(ref)
		if !ok {
			continue
		}
		target.Set(ref, schema)
		for _, k := range schema.Properties.Keys() {
			p, _ := schema.Properties.Get(k)
			copyReferencedSchema(target, source, p)
		}
	}
}

func mergeProperty(existing, incoming *PropertyDef, authoritative bool) *PropertyDef {
	out := *existing

	if out.Number == nil && incoming.Number != nil {
		n := *incoming.Number
		out.Number = &n
	}

	out.Type = upgradeType(out.Type, incoming.Type, authoritative)

	if incoming.Label == scalar.Repeated {
		out.Label = scalar.Repeated
	} else if incoming.Label == scalar.Required && out.Label != scalar.Repeated {
		out.Label = scalar.Required
	}

	if out.Ref == "" {
		out.Ref = incoming.Ref
	}
	if out.Items == nil {
		out.Items = incoming.Items
	} else if incoming.Items != nil {
		if out.Items.Type == scalar.Unknown {
			out.Items.Type = incoming.Items.Type
		}
		if out.Items.Ref == "" {
			out.Items.Ref = incoming.Items.Ref
		}
	}
	return &out
}

// upgradeType implements spec's "Upgrade types: string -> <specific>
// allowed; int64|int32 -> double|float when a fractional observation
// appears; never downgrade." A probe-authoritative incoming type always
// wins over a prior unknown/message guess.
func upgradeType(existing, incoming scalar.Type, authoritative bool) scalar.Type {
	if existing == scalar.Unknown {
		return incoming
	}
	if incoming == scalar.Unknown {
		return existing
	}
	if existing == scalar.String && incoming != scalar.String {
		return incoming
	}
	if (existing == scalar.Int64 || existing == scalar.Int32) && (incoming == scalar.Double || incoming == scalar.Float) {
		return incoming
	}
	if authoritative && existing == scalar.Message {
		return incoming
	}
	return existing
}

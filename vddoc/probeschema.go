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
	"github.com/google/vdd/rpcerror"
	"github.com/google/vdd/scalar"
)

// GenerateSchemaFromProbe builds a Schema from the field tree the probe
// engine (C4) extracted out of validation-error responses. Probe data is
// authoritative for field numbers and message-vs-scalar typing (spec
// §4.7's "Probe merge"), so every PropertyDef here carries a Number
// when the violation it came from reported one.
func GenerateSchemaFromProbe(schemas *OrderedMap[*Schema], name string, fields []rpcerror.Field) *Schema {
	schema := NewObjectSchema(name)
	schemas.Set(name, schema)

	for _, f := range fields {
		prop := &PropertyDef{Name: f.Name, Type: f.Type, Label: scalar.Optional}
		if f.HasNumber {
			n := f.Number
			prop.Number = &n
		}
		if f.Required {
			prop.Label = scalar.Required
		}
		if f.Enum {
			prop.Type = scalar.Enum
		}

		if len(f.Children) > 0 {
			childName := name + capitalizeFieldName(f.Name)
			if f.MessageType != "" {
				childName = sanitizeMessageTypeName(f.MessageType)
			}
			GenerateSchemaFromProbe(schemas, childName, f.Children)
			if f.Repeated {
				prop.Type = scalar.Array
				prop.Items = &Items{Type: scalar.Message, Ref: childName}
			} else {
				prop.Type = scalar.Message
				prop.Ref = childName
			}
		} else if f.Repeated {
			itemType := prop.Type
			prop.Type = scalar.Array
			prop.Items = &Items{Type: itemType}
		}

		schema.Properties.Set(f.Name, prop)
	}
	return schema
}

func capitalizeFieldName(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

func sanitizeMessageTypeName(fullName string) string {
	out := make([]byte, 0, len(fullName))
	for i := 0; i < len(fullName); i++ {
		c := fullName[i]
		if c == '.' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

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

// Package scalar defines the canonical scalar-type vocabulary shared by
// the schema-learning, error-parsing and probe-discovery components
// (spec §3's "Scalar types" plus "message"/"array" for PropertyDef.Type),
// so every component agrees on one closed enum instead of each
// stringly-typing its own.
package scalar

// Type is one of the canonical scalar tags, or Message/Array for the two
// non-scalar PropertyDef.Type values spec §3 allows.
type Type string

const (
	String   Type = "string"
	Bytes    Type = "bytes"
	Bool     Type = "bool"
	Int32    Type = "int32"
	Int64    Type = "int64"
	Uint32   Type = "uint32"
	Uint64   Type = "uint64"
	Sint32   Type = "sint32"
	Sint64   Type = "sint64"
	Fixed32  Type = "fixed32"
	Fixed64  Type = "fixed64"
	Sfixed32 Type = "sfixed32"
	Sfixed64 Type = "sfixed64"
	Float    Type = "float"
	Double   Type = "double"
	Enum     Type = "enum"
	Message  Type = "message"
	Array    Type = "array"
	Unknown  Type = ""
)

// protoScalarNames maps the `TYPE_*` strings google.rpc.Status-derived
// error descriptions carry (spec §4.3) to our canonical Type.
var protoScalarNames = map[string]Type{
	"TYPE_STRING":   String,
	"TYPE_BYTES":    Bytes,
	"TYPE_BOOL":     Bool,
	"TYPE_INT32":    Int32,
	"TYPE_INT64":    Int64,
	"TYPE_UINT32":   Uint32,
	"TYPE_UINT64":   Uint64,
	"TYPE_SINT32":   Sint32,
	"TYPE_SINT64":   Sint64,
	"TYPE_FIXED32":  Fixed32,
	"TYPE_FIXED64":  Fixed64,
	"TYPE_SFIXED32": Sfixed32,
	"TYPE_SFIXED64": Sfixed64,
	"TYPE_FLOAT":    Float,
	"TYPE_DOUBLE":   Double,
	"TYPE_ENUM":     Enum,
}

// FromProtoTypeString resolves a `TYPE_*` token to its canonical Type.
func FromProtoTypeString(s string) (Type, bool) {
	t, ok := protoScalarNames[s]
	return t, ok
}

// Label is a PropertyDef/ParamDef field label (spec §3).
type Label string

const (
	Optional Label = "optional"
	Required Label = "required"
	Repeated Label = "repeated"
)

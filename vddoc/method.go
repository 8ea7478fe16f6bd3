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

// ResolveMethod implements spec §4.7's "Method resolution on learn":
// given the already-derived base method name and the observed HTTP
// method, find or create the Method that should receive this
// observation's learning, disambiguating a collision between two
// distinct HTTP methods sharing one base name.
func ResolveMethod(doc *Document, resourceName, interfaceName, baseName, httpMethod, path string) *Method {
	resource, ok := doc.Resources.Get(resourceName)
	if !ok {
		resource = NewResource()
		doc.Resources.Set(resourceName, resource)
	}

	existing, ok := resource.Methods.Get(baseName)
	if !ok {
		// No prior entry: check whether a disambiguated qualified name
		// for this httpMethod already exists from an earlier collision.
		qualified := QualifiedMethodName(httpMethod, baseName)
		if m, ok := resource.Methods.Get(qualified); ok {
			return m
		}
		m := NewMethod(MethodId(interfaceName, baseName), path, httpMethod)
		resource.Methods.Set(baseName, m)
		return m
	}

	if existing.HTTPMethod == httpMethod {
		return existing
	}

	// Disambiguate: rename the prior entry, insert a new qualified entry
	// for the current httpMethod, release the bare base name.
	priorQualified := QualifiedMethodName(existing.HTTPMethod, baseName)
	existing.ID = MethodId(interfaceName, priorQualified)
	resource.Methods.Delete(baseName)
	resource.Methods.Set(priorQualified, existing)

	newQualified := QualifiedMethodName(httpMethod, baseName)
	newMethod := NewMethod(MethodId(interfaceName, newQualified), path, httpMethod)
	resource.Methods.Set(newQualified, newMethod)
	return newMethod
}

// PromoteToProbed moves a method from learned into probed by name,
// per spec §3's invariant that probing may promote a learned method.
// Subsequent learning must then write to the probed entry (the
// orchestrator is responsible for checking which resource a method
// lives in before learning).
func PromoteToProbed(doc *Document, name string) *Method {
	learned, ok := doc.Resources.Get(ResourceLearned)
	if !ok {
		return nil
	}
	m, ok := learned.Methods.Get(name)
	if !ok {
		return nil
	}
	learned.Methods.Delete(name)

	probed, ok := doc.Resources.Get(ResourceProbed)
	if !ok {
		probed = NewResource()
		doc.Resources.Set(ResourceProbed, probed)
	}
	probed.Methods.Set(name, m)
	return m
}

// FindMethod looks up name across learned and probed (the two resources
// active learning ever writes to), returning the resource name it was
// found in.
func FindMethod(doc *Document, name string) (method *Method, resourceName string, ok bool) {
	for _, rn := range []string{ResourceProbed, ResourceLearned} {
		r, exists := doc.Resources.Get(rn)
		if !exists {
			continue
		}
		if m, exists := r.Methods.Get(name); exists {
			return m, rn, true
		}
	}
	return nil, "", false
}

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

package format

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
)

// IsMultipart matches spec §4.2: multipart/mixed with an explicit
// boundary parameter.
func IsMultipart(contentType string) bool {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return containsFold(mediaType, "multipart/mixed") && params["boundary"] != ""
}

// Part is one dissected body part of a multipart/mixed batch.
type Part struct {
	Header map[string][]string
	Body   []byte
}

// ParseMultipart dissects body per RFC 2046 using the boundary named in
// contentType.
func ParseMultipart(contentType string, body []byte) (parts []Part, ok bool) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, false
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return parts, len(parts) > 0
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return parts, len(parts) > 0
		}
		parts = append(parts, Part{Header: map[string][]string(p.Header), Body: data})
	}
	return parts, len(parts) > 0
}

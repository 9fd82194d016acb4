// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseMetadataResponse turns a model's JSON reply into flat string metadata.
// Markdown code fences are stripped and common JSON mistakes are repaired
// before parsing. The reply must be a JSON object.
func ParseMetadataResponse(text string) (map[string]string, error) {
	text = StripCodeFence(text)
	if text == "" {
		return map[string]string{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(RepairJSON(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseableResponse, err)
	}
	return FlattenMetadata(raw), nil
}

// FlattenMetadata converts decoded JSON values to strings.
// Strings are kept as-is, nulls are dropped and everything else is
// re-encoded as compact JSON.
func FlattenMetadata(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

// StripCodeFence removes a surrounding ``` or ```json fence and whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// RepairJSON fixes two mistakes small models make when emitting JSON:
// a key missing its opening quote (`{title": "x"}`) and a trailing comma
// before a closing brace or bracket. Text inside string literals is left alone.
func RepairJSON(s string) string {
	src := []rune(s)
	var out bytes.Buffer
	inString := false

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out.WriteRune(ch)
			if ch == '\\' && i+1 < len(src) {
				i++
				out.WriteRune(src[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)
		case ',':
			j := skipSpace(src, i+1)
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				continue // trailing comma
			}
			out.WriteRune(ch)
			i = copyUnquotedKey(src, i+1, &out) - 1
		case '{':
			out.WriteRune(ch)
			i = copyUnquotedKey(src, i+1, &out) - 1
		default:
			out.WriteRune(ch)
		}
	}
	return out.String()
}

// copyUnquotedKey copies whitespace starting at pos and, if it is followed by
// a bare word that ends in `":`, writes the missing opening quote.
// Returns the position of the next rune to process.
func copyUnquotedKey(src []rune, pos int, out *bytes.Buffer) int {
	j := skipSpace(src, pos)
	out.WriteString(string(src[pos:j]))

	k := j
	for k < len(src) && isKeyRune(src[k]) {
		k++
	}
	if k > j && k+1 < len(src) && src[k] == '"' && src[k+1] == ':' {
		out.WriteRune('"')
		out.WriteString(string(src[j:k]))
		out.WriteRune('"')
		return k + 1
	}
	return j
}

func skipSpace(src []rune, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\n' || src[i] == '\t' || src[i] == '\r') {
		i++
	}
	return i
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

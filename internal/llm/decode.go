package llm

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// StripFences removes markdown code fences and an optional language tag
// (```mermaid, ```json, ...) from a completion. Prose around a single
// fenced block is discarded; unfenced input is returned trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "```") {
		return s
	}

	// Take the content of the first fenced block; models that fence their
	// output put the payload there and keep any prose outside.
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	body := parts[1]

	// Drop a language tag on the opening fence line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || isLanguageTag(tag) {
			body = body[nl+1:]
		}
	} else if isLanguageTag(strings.TrimSpace(body)) {
		body = ""
	}

	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	switch strings.ToLower(s) {
	case "mermaid", "json", "text", "txt":
		return true
	}
	return false
}

// DecodeJSON strips fences from a completion and unmarshals the remaining
// text into v. All JSON-expecting call sites share this helper so the
// fence-stripping/parse-or-fallback logic lives in exactly one place.
func DecodeJSON(raw string, v any) error {
	body := StripFences(raw)
	if body == "" {
		return schema.NewError(schema.ErrCodeDecode, "empty completion payload")
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return schema.NewError(schema.ErrCodeDecode, "completion is not valid JSON").WithCause(err)
	}
	return nil
}

// Extractor evaluates jq queries against decoded completion payloads so
// callers can tolerate near-miss shapes (an array wrapped in an object,
// mixed-type arrays). Compiled queries are cached; safe for concurrent use.
type Extractor struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewExtractor creates an Extractor with an empty query cache.
func NewExtractor() *Extractor {
	return &Extractor{cache: make(map[string]*gojq.Code)}
}

// Extract strips fences, parses raw as JSON, applies the jq query, and
// unmarshals the first query output into out (via a JSON round-trip).
func (e *Extractor) Extract(raw, query string, out any) error {
	var doc any
	if err := DecodeJSON(raw, &doc); err != nil {
		return err
	}

	code, err := e.getOrCompile(query)
	if err != nil {
		return err
	}

	iter := code.Run(doc)
	val, ok := iter.Next()
	if !ok {
		return schema.NewErrorf(schema.ErrCodeDecode, "query %q produced no output", query)
	}
	if qErr, isErr := val.(error); isErr {
		return schema.NewErrorf(schema.ErrCodeDecode, "query %q failed: %s", query, qErr.Error()).WithCause(qErr)
	}

	b, err := json.Marshal(val)
	if err != nil {
		return schema.NewError(schema.ErrCodeDecode, "re-encode query output").WithCause(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return schema.NewError(schema.ErrCodeDecode, "query output has unexpected shape").WithCause(err)
	}
	return nil
}

func (e *Extractor) getOrCompile(query string) (*gojq.Code, error) {
	e.mu.RLock()
	if code, ok := e.cache[query]; ok {
		e.mu.RUnlock()
		return code, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if code, ok := e.cache[query]; ok {
		return code, nil
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "parse query %q: %s", query, err.Error()).WithCause(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeDecode, "compile query %q: %s", query, err.Error()).WithCause(err)
	}
	e.cache[query] = code
	return code, nil
}

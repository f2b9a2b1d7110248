// Package codec provides lossless serialization between task records and
// their structured-text form: a frontmatter block of key/value fields
// followed by a free-text body.
//
// Two independent parse strategies are provided — a full YAML parser and a
// minimal line-oriented fallback — both reducing to the same intermediate
// field representation, so they agree on output for every valid input.
// Unknown frontmatter fields are preserved verbatim rather than dropped.
package codec

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed frontmatter block. Batch callers skip the
// record and report; a single bad record never crashes the batch.
type ParseError struct {
	Reason string
	Line   int // 1-based document line
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
}

// SchemaError reports a missing or invalid required field.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return "missing or invalid required field: " + e.Field
}

// fieldValue is the shared intermediate representation both parsers reduce
// to. A value is exactly one of: null, a scalar, or a flat list of scalars.
type fieldValue struct {
	scalar string
	list   []string
	isList bool
	isNull bool
}

// parsedField is one frontmatter entry with enough provenance to preserve
// unknown fields verbatim and to report line numbers on errors.
type parsedField struct {
	key  string
	raw  string // original source text, emitted unchanged for unknown keys
	val  fieldValue
	line int // 1-based document line of the key
}

// asList interprets a value as a list. A scalar that textually looks like a
// list (a relic of a historical double-encoding defect where a list was
// re-encoded as a quoted string) is re-parsed instead of treated as opaque
// text, so a write-read-write cycle converges instead of nesting quotes.
func (v fieldValue) asList() []string {
	if v.isNull {
		return nil
	}
	if v.isList {
		return v.list
	}
	return splitFlowList(v.scalar)
}

// splitFlowList parses "[a, b, c]" (or bare "a, b, c") into items.
// Returns nil when s is not list-like.
func splitFlowList(s string) []string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		item := strings.TrimSpace(p)
		item = unquoteScalar(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// unquoteScalar strips a surrounding double-quote pair, resolving standard
// escapes. Unquoted input is returned unchanged.
func unquoteScalar(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		if u, err := unquote(s); err == nil {
			return u
		}
	}
	return s
}

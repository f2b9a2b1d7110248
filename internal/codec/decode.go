package codec

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hseto/minute/internal/domain"
)

// Decode parses a structured-text record using the full YAML parser.
func Decode(text string) (*domain.TaskRecord, error) {
	block, body, err := splitDocument(text)
	if err != nil {
		return nil, err
	}
	fields, err := parseBlockYAML(block)
	if err != nil {
		return nil, err
	}
	return buildRecord(fields, body)
}

// DecodeFallback parses a structured-text record using the minimal
// line-oriented parser. It accepts exactly the canonical form Encode emits
// and produces output structurally equal to Decode for every valid input.
func DecodeFallback(text string) (*domain.TaskRecord, error) {
	block, body, err := splitDocument(text)
	if err != nil {
		return nil, err
	}
	fields, err := parseBlockLines(block)
	if err != nil {
		return nil, err
	}
	return buildRecord(fields, body)
}

// splitDocument separates the frontmatter block from the body. Line numbers
// reported downstream are document lines: the block starts at line 2.
func splitDocument(text string) (string, string, error) {
	if !strings.HasPrefix(text, "---\n") {
		return "", "", &ParseError{Reason: "missing opening ---", Line: 1}
	}
	rest := text[4:]
	lines := strings.Split(rest, "\n")
	end := -1
	for i, line := range lines {
		if line == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", "", &ParseError{Reason: "missing closing ---", Line: 1}
	}
	block := strings.Join(lines[:end], "\n")
	body := strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	return block, body, nil
}

// parseBlockYAML is the full structured parser. It walks the top-level
// mapping of the YAML document and reduces every entry to the shared field
// representation, slicing unknown entries out of the source text verbatim.
func parseBlockYAML(block string) ([]parsedField, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, &ParseError{Reason: err.Error(), Line: 2}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, &ParseError{Reason: "frontmatter is not a key/value mapping", Line: 2}
	}

	blockLines := strings.Split(block, "\n")
	fields := make([]parsedField, 0, len(mapping.Content)/2)

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]
		key := keyNode.Value

		// Raw text spans from the key's line up to the next key's line.
		rawStart := keyNode.Line - 1
		rawEnd := len(blockLines)
		if i+2 < len(mapping.Content) {
			rawEnd = mapping.Content[i+2].Line - 1
		}
		raw := strings.TrimRight(strings.Join(blockLines[rawStart:rawEnd], "\n"), "\n")

		fv, ok := nodeValue(valNode)
		if !ok && knownKeys[key] {
			return nil, &ParseError{
				Reason: "unsupported nested value for field " + key,
				Line:   keyNode.Line + 1,
			}
		}

		fields = append(fields, parsedField{
			key:  key,
			val:  fv,
			raw:  raw,
			line: keyNode.Line + 1,
		})
	}
	return fields, nil
}

// nodeValue reduces a YAML node to the shared field representation.
func nodeValue(n *yaml.Node) (fieldValue, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return fieldValue{isNull: true}, true
		}
		return fieldValue{scalar: n.Value}, true
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return fieldValue{}, false
			}
			items = append(items, item.Value)
		}
		return fieldValue{list: items, isList: true}, true
	default:
		return fieldValue{}, false
	}
}

// parseBlockLines is the minimal fallback parser: one "key: value" pair per
// line, flow lists in brackets, double-quoted scalars, null markers.
func parseBlockLines(block string) ([]parsedField, error) {
	if block == "" {
		return nil, nil
	}
	var fields []parsedField
	for i, line := range strings.Split(block, "\n") {
		docLine := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			return nil, &ParseError{Reason: "malformed line: missing ':'", Line: docLine}
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, &ParseError{Reason: "malformed key", Line: docLine}
		}
		rawValue := strings.TrimSpace(line[idx+1:])

		fields = append(fields, parsedField{
			key:  key,
			val:  scalarValue(rawValue),
			raw:  line,
			line: docLine,
		})
	}
	return fields, nil
}

// scalarValue classifies a raw line value as null, list or scalar. A quoted
// value is always a scalar, even when it looks like a flow list; only an
// unquoted [...] is list syntax.
func scalarValue(raw string) fieldValue {
	switch raw {
	case "", "null", "~":
		return fieldValue{isNull: true}
	}
	if strings.HasPrefix(raw, `"`) {
		return fieldValue{scalar: unquoteScalar(raw)}
	}
	if items := splitFlowList(raw); items != nil {
		return fieldValue{list: items, isList: true}
	}
	return fieldValue{scalar: raw}
}

// knownKeys is the machine-parsed field set; anything else is preserved
// opaquely for forward compatibility.
var knownKeys = map[string]bool{
	"id": true, "title": true, "status": true, "assignee": true,
	"priority": true, "score": true, "urgency": true, "impact": true,
	"effort": true, "created_date": true, "updated_date": true,
	"due_date": true, "labels": true, "dependencies": true,
	"blocked_by": true, "source": true, "confidence": true,
	"provisional": true,
}

// buildRecord converts parsed fields into a TaskRecord, enforcing the
// required-field schema. Both parse strategies share this path, which is
// what guarantees they agree on output.
func buildRecord(fields []parsedField, body string) (*domain.TaskRecord, error) {
	rec := &domain.TaskRecord{Body: body}
	seen := make(map[string]bool, len(fields))

	for _, f := range fields {
		if !knownKeys[f.key] {
			rec.Unknown = append(rec.Unknown, domain.Field{Key: f.key, Raw: f.raw})
			continue
		}
		if seen[f.key] {
			return nil, &ParseError{Reason: "duplicate field " + f.key, Line: f.line}
		}
		seen[f.key] = true

		var err error
		switch f.key {
		case "id":
			rec.ID = f.val.scalar
		case "title":
			rec.Title = f.val.scalar
		case "status":
			rec.Status = domain.Status(f.val.scalar)
		case "assignee":
			rec.Assignee = f.val.scalar
		case "priority":
			rec.Priority = domain.Priority(f.val.scalar)
		case "score":
			rec.Score, err = optFloat(f)
		case "urgency":
			rec.Urgency, err = optInt(f)
		case "impact":
			rec.Impact, err = optInt(f)
		case "effort":
			rec.Effort, err = optInt(f)
		case "created_date":
			rec.Created, err = reqDate(f)
		case "updated_date":
			rec.Updated, err = reqDate(f)
		case "due_date":
			rec.Due, err = optDate(f)
		case "labels":
			rec.Labels = normalizeList(f.val.asList())
		case "dependencies":
			rec.Dependencies = normalizeList(f.val.asList())
		case "blocked_by":
			if !f.val.isNull {
				v := f.val.scalar
				rec.BlockedBy = &v
			}
		case "source":
			rec.Source = f.val.scalar
		case "confidence":
			rec.Confidence, err = reqFloat(f)
		case "provisional":
			rec.Provisional, err = reqBool(f)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, required := range []struct {
		name string
		ok   bool
	}{
		{"id", rec.ID != ""},
		{"title", rec.Title != ""},
		{"status", seen["status"] && rec.Status.IsValid()},
		{"assignee", rec.Assignee != ""},
		{"priority", seen["priority"] && rec.Priority.IsValid()},
		{"created_date", seen["created_date"]},
		{"updated_date", seen["updated_date"]},
		{"source", rec.Source != ""},
		{"confidence", seen["confidence"]},
	} {
		if !required.ok {
			return nil, &SchemaError{Field: required.name}
		}
	}

	return rec, nil
}

// normalizeList maps empty lists to nil so decoded records compare equal to
// freshly constructed ones.
func normalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return items
}

func optInt(f parsedField) (*int, error) {
	if f.val.isNull {
		return nil, nil
	}
	v, err := strconv.Atoi(f.val.scalar)
	if err != nil {
		return nil, &ParseError{Reason: "field " + f.key + " is not an integer", Line: f.line}
	}
	return &v, nil
}

func optFloat(f parsedField) (*float64, error) {
	if f.val.isNull {
		return nil, nil
	}
	v, err := reqFloat(f)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func reqFloat(f parsedField) (float64, error) {
	v, err := strconv.ParseFloat(f.val.scalar, 64)
	if err != nil {
		return 0, &ParseError{Reason: "field " + f.key + " is not a number", Line: f.line}
	}
	return v, nil
}

func reqDate(f parsedField) (domain.Date, error) {
	if f.val.isNull {
		return domain.Date{}, &SchemaError{Field: f.key}
	}
	d, err := domain.ParseDate(f.val.scalar)
	if err != nil {
		return domain.Date{}, &ParseError{Reason: "field " + f.key + " is not a date", Line: f.line}
	}
	return d, nil
}

func optDate(f parsedField) (*domain.Date, error) {
	if f.val.isNull {
		return nil, nil
	}
	d, err := domain.ParseDate(f.val.scalar)
	if err != nil {
		return nil, &ParseError{Reason: "field " + f.key + " is not a date", Line: f.line}
	}
	return &d, nil
}

func reqBool(f parsedField) (bool, error) {
	switch strings.ToLower(f.val.scalar) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ParseError{Reason: "field " + f.key + " is not a boolean", Line: f.line}
}

package codec

import (
	"strconv"
	"strings"

	"github.com/hseto/minute/internal/domain"
)

// Encode renders a record in its canonical structured-text form. The field
// order is fixed; unknown fields follow the known set in their original
// order, each on its original source line. Encode(Decode(text)) is stable:
// re-encoding an unchanged record reproduces the same bytes.
func Encode(rec *domain.TaskRecord) ([]byte, error) {
	var b strings.Builder
	b.WriteString("---\n")

	writeScalar(&b, "id", rec.ID)
	writeQuoted(&b, "title", rec.Title)
	writeScalar(&b, "status", string(rec.Status))
	writeQuoted(&b, "assignee", rec.Assignee)
	writeScalar(&b, "priority", string(rec.Priority))
	writeOptFloat(&b, "score", rec.Score, 1)
	writeOptInt(&b, "urgency", rec.Urgency)
	writeOptInt(&b, "impact", rec.Impact)
	writeOptInt(&b, "effort", rec.Effort)
	writeQuoted(&b, "created_date", rec.Created.String())
	writeQuoted(&b, "updated_date", rec.Updated.String())
	if rec.Due != nil {
		writeQuoted(&b, "due_date", rec.Due.String())
	} else {
		writeScalar(&b, "due_date", "null")
	}
	writeList(&b, "labels", rec.Labels)
	writeList(&b, "dependencies", rec.Dependencies)
	if rec.BlockedBy != nil {
		writeQuoted(&b, "blocked_by", *rec.BlockedBy)
	} else {
		writeScalar(&b, "blocked_by", "null")
	}
	writeQuoted(&b, "source", rec.Source)
	writeScalar(&b, "confidence", strconv.FormatFloat(rec.Confidence, 'f', 2, 64))
	if rec.Provisional {
		writeScalar(&b, "provisional", "true")
	}
	for _, f := range rec.Unknown {
		b.WriteString(f.Raw)
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	if rec.Body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(rec.Body))
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

func writeScalar(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func writeQuoted(b *strings.Builder, key, value string) {
	writeScalar(b, key, quote(value))
}

func writeOptInt(b *strings.Builder, key string, v *int) {
	if v == nil {
		writeScalar(b, key, "null")
		return
	}
	writeScalar(b, key, strconv.Itoa(*v))
}

func writeOptFloat(b *strings.Builder, key string, v *float64, prec int) {
	if v == nil {
		writeScalar(b, key, "null")
		return
	}
	writeScalar(b, key, strconv.FormatFloat(*v, 'f', prec, 64))
}

// writeList emits a flow-style list: labels: [api, auth]. The flow form is
// unambiguously re-parseable by both decoders, which keeps multi-value
// fields from being wrapped into opaque scalars on a second pass.
func writeList(b *strings.Builder, key string, items []string) {
	b.WriteString(key)
	b.WriteString(": [")
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item)
	}
	b.WriteString("]\n")
}

// quote renders a double-quoted scalar. The escape set (backslash, quote,
// \n, \t, \u for non-printables) is shared by YAML double-quoted strings
// and the fallback decoder.
func quote(s string) string {
	return strconv.Quote(s)
}

// unquote is the inverse of quote.
func unquote(s string) (string, error) {
	return strconv.Unquote(s)
}

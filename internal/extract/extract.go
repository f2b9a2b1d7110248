// Package extract turns meeting-note text into draft task records. The
// engine is a pure transform: identical input text and configuration always
// produce the identical candidate sequence, so re-running extraction on an
// unchanged note is idempotent.
package extract

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/hseto/minute/internal/domain"
)

// Kind classifies how a candidate was recognized.
type Kind string

const (
	// KindCheckbox is a structurally unambiguous action-item line.
	KindCheckbox Kind = "checkbox"
	// KindCommitment is an implicit commitment found in prose.
	KindCommitment Kind = "commitment"
	// KindHedged is a vague commitment; always routed to holding.
	KindHedged Kind = "hedged"
)

// Candidate is one draft record plus its provenance in the note. The record
// has no ID and no dates; the caller assigns both at persist time.
type Candidate struct {
	Record  *domain.TaskRecord
	Kind    Kind
	Section string
	Line    int // 1-based line in the note
}

// Confidence model. Checkbox items start high because the structure itself
// is the signal; prose commitments start lower and can never reach the
// checkbox ceiling; hedged language overrides everything else.
const (
	checkboxBase   = 0.90
	commitmentBase = 0.75
	commitmentCap  = 0.90
	hedgedBase     = 0.65
	hedgedFloor    = 0.50
	detailBonus    = 0.05 // per explicit owner or due date
)

var (
	sectionRe  = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	checkboxRe = regexp.MustCompile(`^\s*-\s+\[[ xX]\]\s+(.+)$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
	ownerRe    = regexp.MustCompile(`\*\*@(\w+)\*\*|@(\w+)`)
	dueRe      = regexp.MustCompile(`(?i)\bdue\s+(\d{4}-\d{2}-\d{2})\b`)

	ownerClauseRe   = regexp.MustCompile(`(?:\*\*@\w+\*\*|@\w+)\s*[—–-]*\s*`)
	dueClauseRe     = regexp.MustCompile(`(?i)\s*[—–-]\s*due\s+.*`)
	blockerClauseRe = regexp.MustCompile(`(?i)\s*[—–-]\s*(blocking|blocked by|blocked|depends on)\s+.*`)

	decisionRe = regexp.MustCompile(`(?i)^(we\s+)?(decided|decision|agreed)\b`)
	subjectRe  = regexp.MustCompile(`^([A-Z][a-zA-Z]+)\s`)
)

// Engine extracts draft records from meeting notes. The scoring config is
// consulted once per candidate to default the priority hint from urgency
// keywords; after extraction, priority belongs to humans.
type Engine struct {
	cfg     domain.ExtractConfig
	scoring domain.ScoringConfig
}

func NewEngine(cfg domain.ExtractConfig, scoring domain.ScoringConfig) *Engine {
	return &Engine{cfg: cfg, scoring: scoring}
}

// Extract scans the note and returns draft candidates in document order.
// source identifies the note and is recorded on every draft.
func (e *Engine) Extract(noteText, source string) []Candidate {
	var out []Candidate
	section := ""

	for i, line := range strings.Split(noteText, "\n") {
		lineNo := i + 1

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			section = strings.ToLower(strings.TrimSpace(m[1]))
			continue
		}

		switch {
		case isActionSection(section):
			if m := checkboxRe.FindStringSubmatch(line); m != nil {
				if c := e.candidate(m[1], source, section, lineNo, KindCheckbox); c != nil {
					out = append(out, *c)
				}
			}
		case isProseSection(section):
			text := strings.TrimSpace(line)
			if m := bulletRe.FindStringSubmatch(line); m != nil {
				text = strings.TrimSpace(m[1])
			}
			if text == "" {
				continue
			}
			kind, phrase, ok := e.classifyProse(text)
			if !ok {
				continue
			}
			if c := e.proseCandidate(text, phrase, source, section, lineNo, kind); c != nil {
				out = append(out, *c)
			}
		}
	}
	return out
}

func isActionSection(section string) bool {
	return strings.HasPrefix(section, "action item")
}

func isProseSection(section string) bool {
	switch {
	case strings.HasPrefix(section, "discussion"),
		strings.HasPrefix(section, "decision"),
		strings.HasPrefix(section, "follow"):
		return true
	}
	return false
}

// classifyProse decides whether a prose line carries a commitment and
// returns the phrase that triggered the classification. Decision
// restatements without commitment language are not tasks.
func (e *Engine) classifyProse(text string) (Kind, string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range e.cfg.HedgePhrases {
		if containsPhrase(lower, phrase) {
			return KindHedged, phrase, true
		}
	}
	if decisionRe.MatchString(text) {
		return "", "", false
	}
	for _, phrase := range e.cfg.CommitmentPhrases {
		if containsPhrase(lower, phrase) {
			return KindCommitment, phrase, true
		}
	}
	return "", "", false
}

// proseCandidate parses an implicit commitment. The owner is an @mention or
// the leading subject; the title is the clause after the commitment phrase,
// rewritten as an imperative.
func (e *Engine) proseCandidate(text, phrase, source, section string, lineNo int, kind Kind) *Candidate {
	lower := strings.ToLower(text)

	assignee := domain.Unassigned
	if m := ownerRe.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			assignee = m[1]
		} else {
			assignee = m[2]
		}
	} else if m := subjectRe.FindStringSubmatch(text); m != nil {
		assignee = strings.ToLower(m[1])
	}

	var due *domain.Date
	if m := dueRe.FindStringSubmatch(text); m != nil {
		if d, err := domain.ParseDate(m[1]); err == nil {
			due = &d
		}
	}

	title := proseTitle(lower, phrase, e.cfg.HedgePhrases)
	if title == "" {
		return nil
	}

	rec := &domain.TaskRecord{
		Title:      title,
		Status:     domain.StatusTodo,
		Assignee:   assignee,
		Priority:   e.priorityHint(lower),
		Due:        due,
		Labels:     e.labels(lower),
		Source:     source,
		Confidence: e.confidence(kind, lower, assignee != domain.Unassigned, due != nil),
		Body:       fmt.Sprintf("> %s\n\nExtracted from %s (%s).", text, source, section),
	}

	return &Candidate{Record: rec, Kind: kind, Section: section, Line: lineNo}
}

// proseTitle takes the clause after the matched phrase, drops any residual
// hedge markers and capitalizes the result.
func proseTitle(lower, phrase string, hedges []string) string {
	idx := strings.Index(lower, phrase)
	if idx < 0 {
		return ""
	}
	t := lower[idx+len(phrase):]
	for _, h := range hedges {
		t = strings.ReplaceAll(t, h, "")
	}
	t = strings.TrimPrefix(strings.TrimSpace(t), "to ")
	t = strings.Trim(t, " .,;—–-")
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + t[1:]
}

// candidate parses one raw item into a draft record. Returns nil when the
// item has no usable title after annotations are stripped.
func (e *Engine) candidate(raw, source, section string, lineNo int, kind Kind) *Candidate {
	lower := strings.ToLower(raw)

	// Hedged language wins over structural signals.
	if hedges := e.hedgeCount(lower); hedges > 0 {
		kind = KindHedged
	}

	assignee := domain.Unassigned
	if m := ownerRe.FindStringSubmatch(raw); m != nil {
		if m[1] != "" {
			assignee = m[1]
		} else {
			assignee = m[2]
		}
	}

	var due *domain.Date
	if m := dueRe.FindStringSubmatch(raw); m != nil {
		if d, err := domain.ParseDate(m[1]); err == nil {
			due = &d
		}
	}

	title := cleanTitle(raw)
	if title == "" {
		return nil
	}

	rec := &domain.TaskRecord{
		Title:      title,
		Status:     domain.StatusTodo,
		Assignee:   assignee,
		Priority:   e.priorityHint(lower),
		Due:        due,
		Labels:     e.labels(lower),
		Source:     source,
		Confidence: e.confidence(kind, lower, assignee != domain.Unassigned, due != nil),
		Body:       fmt.Sprintf("> %s\n\nExtracted from %s (%s).", raw, source, section),
	}

	return &Candidate{Record: rec, Kind: kind, Section: section, Line: lineNo}
}

// cleanTitle strips owner mentions, due-date clauses and dependency
// annotations, leaving the imperative description.
func cleanTitle(raw string) string {
	t := ownerClauseRe.ReplaceAllString(raw, "")
	t = dueClauseRe.ReplaceAllString(t, "")
	t = blockerClauseRe.ReplaceAllString(t, "")
	return strings.Trim(t, " \t—–-*")
}

func (e *Engine) confidence(kind Kind, lower string, hasOwner, hasDue bool) float64 {
	var c float64
	switch kind {
	case KindHedged:
		c = hedgedBase - detailBonus*float64(e.hedgeCount(lower)-1)
		if c < hedgedFloor {
			c = hedgedFloor
		}
	case KindCheckbox:
		c = checkboxBase
		if hasOwner {
			c += detailBonus
		}
		if hasDue {
			c += detailBonus
		}
		if c > 1.0 {
			c = 1.0
		}
	default:
		c = commitmentBase
		if hasOwner {
			c += detailBonus
		}
		if hasDue {
			c += detailBonus
		}
		if c > commitmentCap {
			c = commitmentCap
		}
	}
	return math.Round(c*100) / 100
}

// priorityHint defaults the priority field from urgency keywords in the raw
// text. This runs once, at extraction; scoring treats priority as human-set
// and never rewrites it.
func (e *Engine) priorityHint(lower string) domain.Priority {
	urgency := e.scoring.UrgencyFloor
	for kw, value := range e.scoring.UrgencyKeywords {
		if value > urgency && domain.ContainsKeyword(lower, kw) {
			urgency = value
		}
	}
	switch {
	case urgency >= 8:
		return domain.PriorityHigh
	case urgency >= 5:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func (e *Engine) hedgeCount(lower string) int {
	n := 0
	for _, phrase := range e.cfg.HedgePhrases {
		if containsPhrase(lower, phrase) {
			n++
		}
	}
	return n
}

// labels maps taxonomy keywords found in the raw text to labels, deduped
// and sorted so extraction output is stable.
func (e *Engine) labels(lower string) []string {
	seen := make(map[string]bool)
	for kw, label := range e.cfg.Taxonomy {
		if strings.Contains(lower, kw) {
			seen[label] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// containsPhrase matches a phrase at word boundaries; substring hits inside
// a larger word ("willing") do not count.
func containsPhrase(s, phrase string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		if boundaryAt(s, idx-1) && boundaryAt(s, end) {
			return true
		}
		start = idx + 1
	}
}

func boundaryAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}

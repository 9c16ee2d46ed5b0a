// Package template implements the template engine (C4, spec.md §4.4):
// path-prefix template selection, structured-header synthesis with token
// substitution, and the format-preserving merge used by update_note.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/taigrr/vault-gateway/internal/frontmatter"
)

// Kind identifies one row of the template selection table.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindProject Kind = "project"
	KindArea    Kind = "area"
	KindNone    Kind = "none"
)

// Def is one entry of the selection table: a path-prefix rule, the kind it
// selects, and the header fields that kind requires.
type Def struct {
	Kind            Kind
	MatchesPrefixes []string // also matches "NN_<prefix>" for any numeric NN
	RequiredFields  []string
	FixedFields     map[string]string // field -> value, e.g. type=daily-note
}

var numericPrefixPattern = regexp.MustCompile(`^\d+_`)

// defaultDefs is the illustrative table from spec.md §4.4. Prefixes are
// configuration in principle; these are the defaults an Engine starts with.
func defaultDefs() []Def {
	return []Def{
		{
			Kind:            KindDaily,
			MatchesPrefixes: []string{"daily-notes/"},
			RequiredFields:  []string{"creation-date"},
			FixedFields:     map[string]string{"type": "daily-note"},
		},
		{
			Kind:            KindProject,
			MatchesPrefixes: []string{"projects/"},
			RequiredFields:  []string{"status", "created"},
			FixedFields:     map[string]string{"type": "project"},
		},
		{
			Kind:            KindArea,
			MatchesPrefixes: []string{"areas/"},
			RequiredFields:  []string{"review-frequency"},
			FixedFields:     map[string]string{"type": "area"},
		},
	}
}

// Engine selects and applies templates when creating or updating notes.
type Engine struct {
	defs []Def
	fm   *frontmatter.Handler
	now  func() time.Time
}

// New constructs an Engine with the default selection table.
func New(fm *frontmatter.Handler) *Engine {
	return &Engine{defs: defaultDefs(), fm: fm, now: time.Now}
}

// Select returns the first matching Def for path, or (Def{Kind: KindNone},
// false) if nothing matches. A prefix also matches when preceded by a
// numeric folder-ordering segment, e.g. "01_daily-notes/".
func (e *Engine) Select(path string) (Def, bool) {
	for _, d := range e.defs {
		for _, prefix := range d.MatchesPrefixes {
			if strings.HasPrefix(path, prefix) {
				return d, true
			}
			if idx := strings.Index(path, "_"+prefix); idx >= 0 && numericPrefixPattern.MatchString(path[:idx+1+len(prefix)]) {
				return d, true
			}
		}
	}
	return Def{Kind: KindNone}, false
}

// Synthesize builds the structured header block for a new note at path,
// prefilling required fields from wall-clock date and the caller's
// defaults, then prepends it to body — unless body already begins with a
// header block, in which case body is returned unchanged.
func (e *Engine) Synthesize(path, body string, defaults map[string]any) (string, error) {
	if strings.HasPrefix(body, "---\n") {
		return body, nil
	}

	def, ok := e.Select(path)
	if !ok {
		return body, nil
	}

	now := e.now()
	headers := make(map[string]any)
	for k, v := range defaults {
		headers[k] = substituteTokens(fmt.Sprint(v), now)
	}
	for field, value := range def.FixedFields {
		headers[field] = value
	}
	for _, field := range def.RequiredFields {
		if _, present := headers[field]; present {
			continue
		}
		headers[field] = defaultValueFor(field, now)
	}

	return e.fm.Stringify(headers, body)
}

func defaultValueFor(field string, now time.Time) string {
	switch field {
	case "creation-date", "created":
		return now.Format("2006-01-02")
	default:
		return ""
	}
}

// PreserveFormatMerge implements update_note's preserve_format=true path: it
// parses the existing note's header block and the caller's new content,
// then merges by taking the caller's values where provided and the
// existing values otherwise — dropping any key whose value is a broken,
// unresolved template token.
func (e *Engine) PreserveFormatMerge(existingContent, newContent string) (string, error) {
	existing := e.fm.Parse(existingContent)
	incoming := e.fm.Parse(newContent)

	merged := make(map[string]any)
	for k, v := range existing.Headers {
		if s, ok := v.(string); ok && isBrokenToken(s) {
			continue
		}
		merged[k] = v
	}
	for k, v := range incoming.Headers {
		if s, ok := v.(string); ok && isBrokenToken(s) {
			continue
		}
		merged[k] = v
	}

	return e.fm.Stringify(merged, incoming.Content)
}

// dailyNamePattern extracts the YYYY-MM-DD filename stem of a daily note.
var dailyNamePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\.md$`)
var headingYearPattern = regexp.MustCompile(`(?m)^#\s+.*?(\d{4}).*$`)

// CheckDateMismatch implements the advisory date-mismatch check (spec.md
// §4.4): for a daily note whose filename parses as YYYY-MM-DD, compare
// that date against the content's creation-date header and the year in its
// first top-level heading. Returns a warning message and true if any
// disagreement is found; the write proceeds regardless.
func (e *Engine) CheckDateMismatch(path, content string) (string, bool) {
	def, ok := e.Select(path)
	if !ok || def.Kind != KindDaily {
		return "", false
	}

	m := dailyNamePattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	fileDate := m[1] + "-" + m[2] + "-" + m[3]

	parsed := e.fm.Parse(content)
	var mismatches []string

	if cd, ok := parsed.Headers["creation-date"]; ok {
		if s := fmt.Sprint(cd); s != fileDate {
			mismatches = append(mismatches, fmt.Sprintf("creation-date %q does not match filename date %q", s, fileDate))
		}
	}

	if hm := headingYearPattern.FindStringSubmatch(parsed.Content); hm != nil {
		if hm[1] != m[1] {
			mismatches = append(mismatches, fmt.Sprintf("heading year %q does not match filename year %q", hm[1], m[1]))
		}
	}

	if len(mismatches) == 0 {
		return "", false
	}
	return "date mismatch: " + strings.Join(mismatches, "; "), true
}

// ParseDailyDate parses a daily-note filename's date, used by
// list_daily_notes to filter by range.
func ParseDailyDate(path string) (time.Time, bool) {
	m := dailyNamePattern.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

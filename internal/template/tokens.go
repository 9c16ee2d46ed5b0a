package template

import (
	"regexp"
	"strings"
	"time"
)

// tokenPattern matches the fixed token vocabulary spec.md §4.4 defines:
// {date:YYYY-MM-DD}, {date:YYYY}, {time:HH:mm}. Anything else that looks
// like a token but isn't in the vocabulary is left for substituteTokens to
// strip.
var tokenPattern = regexp.MustCompile(`\{\s*(date|time)\s*:\s*([^}]*)\s*\}`)

// substituteTokens runs a single pass over content, replacing every
// recognized token with its rendering at `at`. Any token-shaped text that
// doesn't resolve to a known format is removed outright — never left as a
// literal placeholder (spec.md §4.4, the "broken-placeholder" redesign
// note in spec.md §9).
func substituteTokens(content string, at time.Time) string {
	return tokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := tokenPattern.FindStringSubmatch(match)
		kind, format := sub[1], strings.TrimSpace(sub[2])
		if rendered, ok := renderToken(kind, format, at); ok {
			return rendered
		}
		return ""
	})
}

func renderToken(kind, format string, at time.Time) (string, bool) {
	switch kind {
	case "date":
		switch format {
		case "YYYY-MM-DD":
			return at.Format("2006-01-02"), true
		case "YYYY":
			return at.Format("2006"), true
		}
	case "time":
		switch format {
		case "HH:mm":
			return at.Format("15:04"), true
		}
	}
	return "", false
}

// isBrokenToken reports whether s still contains an unresolved token —
// used by the preserve-format merge to drop any header value that carries
// one rather than persist it literally.
func isBrokenToken(s string) bool {
	return tokenPattern.MatchString(s)
}

package onboard

import (
	"regexp"
	"strings"
)

// Intent is what can be pulled out of one onboarding utterance.
type Intent struct {
	Location string
	Topics   string
}

var (
	locationRe = regexp.MustCompile(`(?i)\b(?:i(?:'m| am)? (?:in|from)|i live in|living in|based in)\s+([A-Za-z][A-Za-z .'-]*)`)
	topicsRe   = regexp.MustCompile(`(?i)\b(?:interested in|care about|topics (?:are|like)|news about|follow)\s+(.+)`)
)

// ExtractIntent pulls a location and topic list out of a transcript with
// forgiving keyword rules. Either field may come back empty; the wizard
// decides what to ask next. It never errors: an unparseable transcript is an
// empty intent.
func ExtractIntent(transcript string) Intent {
	var intent Intent
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return intent
	}

	if m := locationRe.FindStringSubmatch(transcript); m != nil {
		intent.Location = trimClause(m[1])
	}
	if m := topicsRe.FindStringSubmatch(transcript); m != nil {
		intent.Topics = normalizeTopics(m[1])
	}
	return intent
}

// trimClause cuts a captured clause at the first connective so "Berlin and I
// like tech" yields just "Berlin".
func trimClause(s string) string {
	for _, stop := range []string{" and ", ",", ".", ";"} {
		if idx := strings.Index(strings.ToLower(s), stop); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// normalizeTopics rewrites a spoken topic list into the comma-separated form
// the profile stores.
func normalizeTopics(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".!?")
	s = strings.ReplaceAll(s, " and ", ", ")
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

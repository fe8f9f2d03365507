// Package normalize converts free-form agent output text into a validated
// briefing: a lead summary plus a bounded, ordered list of typed story
// records. Every transform here is total; malformed input degrades to
// documented fallbacks instead of errors.
package normalize

import (
	"strings"

	"github.com/mohammad-safakhou/briefer/models"
)

// MaxItems bounds how many stories one briefing may carry; bullets past the
// bound are discarded in order.
const MaxItems = 18

// Normalize parses a block of raw agent output into a briefing. Lines before
// the first bullet (excluding headings) are joined into the summary; each
// bullet line becomes a candidate story. When no bullets are recognized but
// summary text exists, a single fallback story is synthesized so callers
// always have something to render.
func Normalize(raw string) models.Briefing {
	briefing := models.Briefing{Items: []models.StoryItem{}}
	if strings.TrimSpace(raw) == "" {
		return briefing
	}

	var summaryParts []string
	seenBullet := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if bulletMarkerRe.MatchString(line) {
			seenBullet = true
			if len(briefing.Items) >= MaxItems {
				continue
			}
			if item := ParseBullet(line); item != nil {
				briefing.Items = append(briefing.Items, *item)
			}
			continue
		}
		if !seenBullet && !strings.HasPrefix(line, "#") {
			summaryParts = append(summaryParts, line)
		}
	}

	briefing.Summary = strings.Join(summaryParts, " ")

	if len(briefing.Items) == 0 && briefing.Summary != "" {
		briefing.Items = append(briefing.Items, fallbackStory(briefing.Summary))
	}

	return briefing
}

// fallbackStory synthesizes the single story used when the agent produced
// summary prose but no recognizable bullets.
func fallbackStory(summary string) models.StoryItem {
	title := summary
	if idx := strings.Index(summary, "."); idx >= 0 {
		title = summary[:idx]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Top story"
	}
	return models.StoryItem{
		Title:    title,
		Summary:  summary,
		Category: models.CategoryOther,
		Tags:     []string{},
	}
}

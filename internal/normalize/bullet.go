package normalize

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/briefer/models"
)

var (
	bulletMarkerRe = regexp.MustCompile(`^[-*]\s+`)
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://\S+`)
)

// leadingSeparators is trimmed off summary text left over after a link or
// media token has been cut out of a bullet.
const leadingSeparators = " \t-–—:|,."

const defaultLinkSummary = "Details in the linked source."

// ParseBullet turns one bullet line of raw agent output into a story item.
// Extraction runs in fixed priority order: inline media first, then a
// markdown link, then a bare URL, then plain text. A line that yields no
// recoverable title returns nil and is dropped by the caller.
func ParseBullet(line string) *models.StoryItem {
	text := strings.TrimSpace(bulletMarkerRe.ReplaceAllString(strings.TrimSpace(line), ""))

	media := ExtractMedia(text)
	text = media.CleanedText

	item := &models.StoryItem{
		MediaURL:  media.MediaURL,
		MediaType: media.MediaType,
		Tags:      []string{},
	}

	if m := markdownLinkRe.FindStringSubmatchIndex(text); m != nil {
		item.Title = strings.TrimSpace(text[m[2]:m[3]])
		if item.Title == "" {
			item.Title = "Source link"
		}
		item.URL = text[m[4]:m[5]]
		rest := strings.TrimLeft(strings.TrimSpace(text[:m[0]]+text[m[1]:]), leadingSeparators)
		applyCategory(item, ParseCategory(rest))
		if item.Summary == "" {
			item.Summary = defaultLinkSummary
		}
		return item
	}

	if m := bareURLRe.FindStringIndex(text); m != nil {
		raw := text[m[0]:m[1]]
		// Only ), and . are safe to trim here; anything broader would
		// truncate valid paths.
		item.URL = strings.TrimRight(raw, "),.")
		before := text[:m[0]]
		segments := strings.Split(before, " - ")
		item.Title = strings.TrimSpace(segments[0])
		if item.Title == "" {
			item.Title = "Source link"
		}
		candidate := strings.TrimSpace(strings.Join(segments[1:], " - "))
		applyCategory(item, ParseCategory(candidate))
		if item.Summary == "" {
			item.Summary = defaultLinkSummary
		}
		return item
	}

	if text != "" {
		item.Title = text
		applyCategory(item, ParseCategory(""))
		return item
	}

	return nil
}

func applyCategory(item *models.StoryItem, cat CategoryResult) {
	item.Category = cat.Category
	item.Summary = cat.Summary
	item.Tags = cat.Tags
}

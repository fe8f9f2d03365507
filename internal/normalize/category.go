package normalize

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/briefer/models"
)

// CategoryResult carries the classification extracted from a bullet's
// trailing text.
type CategoryResult struct {
	Category models.NewsCategory
	Summary  string
	Tags     []string
}

var bracketGroupRe = regexp.MustCompile(`\[([^\]]*)\]`)

// categoryKeywords is ordered so longer keywords win before shorter ones
// could shadow them.
var categoryKeywords = []struct {
	prefix   string
	category models.NewsCategory
}{
	{"international", models.CategoryInternational},
	{"interest", models.CategoryInterest},
	{"local", models.CategoryLocal},
	{"social", models.CategorySocial},
}

// categorySeparators are the characters allowed between a category keyword
// and the summary that follows it.
const categorySeparators = " \t:|-"

// ParseCategory extracts a category label and bracketed tags from free text.
// A single bracketed group anywhere in the text is read as a comma-separated
// tag list and removed before classification. A leading category keyword
// (case-insensitive, prefix match) selects the category; everything after the
// keyword and any separator run becomes the summary. Without a keyword the
// category is Other and the summary is the bracket-stripped text unchanged.
func ParseCategory(text string) CategoryResult {
	res := CategoryResult{Category: models.CategoryOther, Tags: []string{}}
	text = strings.TrimSpace(text)
	if text == "" {
		return res
	}

	if m := bracketGroupRe.FindStringSubmatchIndex(text); m != nil {
		inner := text[m[2]:m[3]]
		for _, tag := range strings.Split(inner, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				res.Tags = append(res.Tags, tag)
			}
		}
		text = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	}

	lower := strings.ToLower(text)
	for _, kw := range categoryKeywords {
		if strings.HasPrefix(lower, kw.prefix) {
			res.Category = kw.category
			res.Summary = strings.TrimLeft(text[len(kw.prefix):], categorySeparators)
			return res
		}
	}

	res.Summary = text
	return res
}

package normalize

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/briefer/models"
)

// MediaResult carries an inline media reference pulled out of bullet text,
// plus the text with the reference removed.
type MediaResult struct {
	MediaURL    string
	MediaType   models.MediaType
	CleanedText string
}

var (
	markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\((\S+?)\)`)
	mediaTagRe      = regexp.MustCompile(`(?i)media:\s*(\S+)`)
)

var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
var videoSuffixes = []string{".mp4", ".webm", ".mov"}
var videoHostPatterns = []string{"youtu.be", "youtube.com", "vimeo.com"}

// ExtractMedia pulls a single image/video reference out of text. A markdown
// image token takes priority; a `media: <url>` tag is only consulted when no
// image URL was already bound. The returned CleanedText has the matched
// reference removed so it cannot pollute title or summary extraction.
func ExtractMedia(text string) MediaResult {
	res := MediaResult{CleanedText: text}

	if m := markdownImageRe.FindStringSubmatchIndex(text); m != nil {
		url := text[m[2]:m[3]]
		res.MediaURL = url
		if hasAnySuffix(url, imageSuffixes) {
			res.MediaType = models.MediaImage
		}
		res.CleanedText = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	}

	if res.MediaURL == "" {
		if m := mediaTagRe.FindStringSubmatchIndex(res.CleanedText); m != nil {
			url := strings.TrimRight(res.CleanedText[m[2]:m[3]], "),.")
			res.MediaURL = url
			res.MediaType = classifyMediaURL(url)
			res.CleanedText = strings.TrimSpace(res.CleanedText[:m[0]] + res.CleanedText[m[1]:])
		}
	}

	return res
}

func classifyMediaURL(url string) models.MediaType {
	switch {
	case hasAnySuffix(url, imageSuffixes):
		return models.MediaImage
	case hasAnySuffix(url, videoSuffixes):
		return models.MediaVideo
	}
	lower := strings.ToLower(url)
	for _, host := range videoHostPatterns {
		if strings.Contains(lower, host) {
			return models.MediaVideo
		}
	}
	return ""
}

func hasAnySuffix(url string, suffixes []string) bool {
	lower := strings.ToLower(url)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

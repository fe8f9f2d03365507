package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrProfileNotFound is returned when no reader profile has been stored yet
var ErrProfileNotFound = errors.New("reader profile not found")

// ErrBriefingNotFound is returned when no cached briefing exists for a profile
var ErrBriefingNotFound = errors.New("cached briefing not found")

// ReaderProfile is the persisted location/topics preference driving personalization.
type ReaderProfile struct {
	Location string `json:"location"`
	Topics   string `json:"topics"`
}

// Validate reports whether the profile may be persisted. Topics is a required,
// comma-separated free-text field; Location is optional.
func (p ReaderProfile) Validate() error {
	if strings.TrimSpace(p.Topics) == "" {
		return errors.New("topics required")
	}
	return nil
}

// EffectiveLocation returns the location, defaulting to "Global" when empty.
func (p ReaderProfile) EffectiveLocation() string {
	loc := strings.TrimSpace(p.Location)
	if loc == "" {
		return "Global"
	}
	return loc
}

// Fingerprint hashes the normalized profile fields into a short stable
// identifier used for cache keys and run-history rows.
func (p ReaderProfile) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(p.Location)) + "|" + strings.ToLower(strings.TrimSpace(p.Topics))))
	return hex.EncodeToString(h[:8])
}

// TopicList splits the comma-separated topics field into trimmed, non-empty entries.
func (p ReaderProfile) TopicList() []string {
	var out []string
	for _, t := range strings.Split(p.Topics, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NewsCategory classifies a story. The set is closed; CategoryOther is the
// fallback whenever classification is ambiguous or absent.
type NewsCategory string

const (
	CategoryLocal         NewsCategory = "local"
	CategoryInternational NewsCategory = "international"
	CategoryInterest      NewsCategory = "interest"
	CategorySocial        NewsCategory = "social"
	CategoryOther         NewsCategory = "other"
)

// MediaType distinguishes inline story media.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// StoryItem is one normalized story in a briefing. Title is always non-empty;
// Tags is never nil.
type StoryItem struct {
	Title     string       `json:"title"`
	Summary   string       `json:"summary"`
	URL       string       `json:"url,omitempty"`
	Category  NewsCategory `json:"category"`
	MediaURL  string       `json:"media_url,omitempty"`
	MediaType MediaType    `json:"media_type,omitempty"`
	Tags      []string     `json:"tags"`
}

// Briefing is the normalized result of one research run. Item order is
// significant: it reflects agent-assigned relevance ranking, and the first
// item is the lead story.
type Briefing struct {
	Summary string      `json:"summary"`
	Items   []StoryItem `json:"items"`
}

// CachedBriefing is the durable record for the last completed run.
type CachedBriefing struct {
	Summary   string      `json:"summary"`
	Items     []StoryItem `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LoadKind tags the outcome of a cache read so that "malformed treated as
// absent" stays observable in tests instead of being swallowed.
type LoadKind int

const (
	LoadOk LoadKind = iota
	LoadEmpty
	LoadMalformed
)

func (k LoadKind) String() string {
	switch k {
	case LoadOk:
		return "ok"
	case LoadEmpty:
		return "empty"
	case LoadMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

package normalize

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/briefer/models"
)

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		got := Normalize(in)
		if got.Summary != "" {
			t.Fatalf("Normalize(%q) summary = %q, want empty", in, got.Summary)
		}
		if len(got.Items) != 0 {
			t.Fatalf("Normalize(%q) items = %d, want 0", in, len(got.Items))
		}
	}
}

func TestNormalizeSummaryAndLead(t *testing.T) {
	t.Parallel()
	raw := "Intro line.\n- [AI Boom](https://example.com/a) - Local [Tech] - Investment surges."
	got := Normalize(raw)
	if got.Summary != "Intro line." {
		t.Fatalf("summary = %q, want %q", got.Summary, "Intro line.")
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	want := models.StoryItem{
		Title:    "AI Boom",
		Summary:  "Investment surges.",
		URL:      "https://example.com/a",
		Category: models.CategoryLocal,
		Tags:     []string{"Tech"},
	}
	if !reflect.DeepEqual(got.Items[0], want) {
		t.Fatalf("item = %+v, want %+v", got.Items[0], want)
	}
}

func TestNormalizeSummaryStopsAtFirstBullet(t *testing.T) {
	t.Parallel()
	raw := "# Heading\nFirst line\nSecond line\n- Story one\nTrailing prose ignored\n- Story two"
	got := Normalize(raw)
	if got.Summary != "First line Second line" {
		t.Fatalf("summary = %q", got.Summary)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
}

func TestNormalizeFallbackSynthesis(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		raw       string
		wantTitle string
	}{
		{"title up to first period", "Markets rallied today. More below.", "Markets rallied today"},
		{"no period uses whole text", "Markets rallied today", "Markets rallied today"},
		{"leading period falls back", ". trailing only", "Top story"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if len(got.Items) != 1 {
				t.Fatalf("items = %d, want 1", len(got.Items))
			}
			item := got.Items[0]
			if item.Title != tt.wantTitle {
				t.Fatalf("title = %q, want %q", item.Title, tt.wantTitle)
			}
			if item.Category != models.CategoryOther {
				t.Fatalf("category = %q, want other", item.Category)
			}
			if item.Tags == nil {
				t.Fatalf("tags must never be nil")
			}
		})
	}
}

func TestNormalizeCapsItems(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	sb.WriteString("Daily roundup\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "- Story number %02d\n", i)
	}
	got := Normalize(sb.String())
	if len(got.Items) != MaxItems {
		t.Fatalf("items = %d, want %d", len(got.Items), MaxItems)
	}
	// Original relative order must be preserved.
	for i, item := range got.Items {
		want := fmt.Sprintf("Story number %02d", i)
		if item.Title != want {
			t.Fatalf("items[%d].Title = %q, want %q", i, item.Title, want)
		}
	}
}

func TestNormalizeDropsUnparseableBullets(t *testing.T) {
	t.Parallel()
	got := Normalize("Summary text\n- \n- Real story")
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	if got.Items[0].Title != "Real story" {
		t.Fatalf("title = %q", got.Items[0].Title)
	}
}

func TestParseBullet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
		want *models.StoryItem
	}{
		{
			name: "markdown link with category and tags",
			line: "- [Quake Update](https://example.com/quake) - International [Asia, Disaster] - Aftershocks continue.",
			want: &models.StoryItem{
				Title:    "Quake Update",
				Summary:  "Aftershocks continue.",
				URL:      "https://example.com/quake",
				Category: models.CategoryInternational,
				Tags:     []string{"Asia", "Disaster"},
			},
		},
		{
			name: "markdown link without summary gets default",
			line: "* [Read More](https://example.com/more)",
			want: &models.StoryItem{
				Title:    "Read More",
				Summary:  "Details in the linked source.",
				URL:      "https://example.com/more",
				Category: models.CategoryOther,
				Tags:     []string{},
			},
		},
		{
			name: "bare url trims trailing punctuation",
			line: "- Fires spread (see https://example.com/fires).",
			want: &models.StoryItem{
				Title:    "Fires spread (see",
				Summary:  "Details in the linked source.",
				URL:      "https://example.com/fires",
				Category: models.CategoryOther,
				Tags:     []string{},
			},
		},
		{
			name: "bare url with dash separated title and summary",
			line: "- Budget vote - Social [Politics] - Council splits https://example.com/vote",
			want: &models.StoryItem{
				Title:    "Budget vote",
				Summary:  "Council splits",
				URL:      "https://example.com/vote",
				Category: models.CategorySocial,
				Tags:     []string{"Politics"},
			},
		},
		{
			name: "bare url with empty title defaults",
			line: "- https://example.com/just-a-link",
			want: &models.StoryItem{
				Title:    "Source link",
				Summary:  "Details in the linked source.",
				URL:      "https://example.com/just-a-link",
				Category: models.CategoryOther,
				Tags:     []string{},
			},
		},
		{
			name: "plain text becomes title",
			line: "- Transit strike enters third day",
			want: &models.StoryItem{
				Title:    "Transit strike enters third day",
				Category: models.CategoryOther,
				Tags:     []string{},
			},
		},
		{
			name: "empty bullet dropped",
			line: "-   ",
			want: nil,
		},
		{
			name: "media tag stripped before title extraction",
			line: "- Storm landfall media: https://example.com/storm.mp4",
			want: &models.StoryItem{
				Title:     "Storm landfall",
				Category:  models.CategoryOther,
				MediaURL:  "https://example.com/storm.mp4",
				MediaType: models.MediaVideo,
				Tags:      []string{},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBullet(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ParseBullet(%q) = %+v, want nil", tt.line, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseBullet(%q) = nil, want %+v", tt.line, tt.want)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseBullet(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseBulletURLPunctuationOnly(t *testing.T) {
	t.Parallel()
	// Only ), and . may be trimmed; letters in paths must survive.
	item := ParseBullet("- Report https://example.com/a.b/report,.")
	if item == nil {
		t.Fatalf("expected item")
	}
	if item.URL != "https://example.com/a.b/report" {
		t.Fatalf("url = %q", item.URL)
	}
}

func TestExtractMedia(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		in          string
		wantURL     string
		wantType    models.MediaType
		wantCleaned string
	}{
		{
			name:        "markdown image with known suffix",
			in:          "Flood map ![map](https://example.com/map.png) released",
			wantURL:     "https://example.com/map.png",
			wantType:    models.MediaImage,
			wantCleaned: "Flood map  released",
		},
		{
			name:        "markdown image with unknown suffix keeps url without type",
			in:          "Chart ![chart](https://example.com/chart.svg)",
			wantURL:     "https://example.com/chart.svg",
			wantType:    "",
			wantCleaned: "Chart",
		},
		{
			name:        "media tag video extension",
			in:          "Storm footage media: https://example.com/clip.mp4",
			wantURL:     "https://example.com/clip.mp4",
			wantType:    models.MediaVideo,
			wantCleaned: "Storm footage",
		},
		{
			name:        "media tag video host",
			in:          "Interview media: https://youtu.be/abc123",
			wantURL:     "https://youtu.be/abc123",
			wantType:    models.MediaVideo,
			wantCleaned: "Interview",
		},
		{
			name:        "media tag trailing punctuation trimmed",
			in:          "Gallery media: https://example.com/pic.jpg).",
			wantURL:     "https://example.com/pic.jpg",
			wantType:    models.MediaImage,
			wantCleaned: "Gallery",
		},
		{
			name:        "markdown image wins over media tag",
			in:          "![lead](https://example.com/lead.jpg) media: https://example.com/alt.mp4",
			wantURL:     "https://example.com/lead.jpg",
			wantType:    models.MediaImage,
			wantCleaned: "media: https://example.com/alt.mp4",
		},
		{
			name:        "no media",
			in:          "Plain story text",
			wantURL:     "",
			wantType:    "",
			wantCleaned: "Plain story text",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMedia(tt.in)
			if got.MediaURL != tt.wantURL {
				t.Fatalf("url = %q, want %q", got.MediaURL, tt.wantURL)
			}
			if got.MediaType != tt.wantType {
				t.Fatalf("type = %q, want %q", got.MediaType, tt.wantType)
			}
			if got.CleanedText != tt.wantCleaned {
				t.Fatalf("cleaned = %q, want %q", got.CleanedText, tt.wantCleaned)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		in       string
		wantCat  models.NewsCategory
		wantSum  string
		wantTags []string
	}{
		{"empty", "", models.CategoryOther, "", []string{}},
		{"keyword with colon", "Local: rail works resume", models.CategoryLocal, "rail works resume", []string{}},
		{"keyword with pipe", "International | summit opens", models.CategoryInternational, "summit opens", []string{}},
		{"keyword with dash and tags", "Interest [Science, Space] - probe launched", models.CategoryInterest, "probe launched", []string{"Science", "Space"}},
		{"keyword case insensitive", "sOcIaL - protests grow", models.CategorySocial, "protests grow", []string{}},
		{"keyword prefix variant", "Locally sourced produce fair", models.CategoryLocal, "ly sourced produce fair", []string{}},
		{"no keyword", "City budget approved [Finance]", models.CategoryOther, "City budget approved", []string{"Finance"}},
		{"empty tags dropped", "Other news [ , Tech, ]", models.CategoryOther, "Other news", []string{"Tech"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCategory(tt.in)
			if got.Category != tt.wantCat {
				t.Fatalf("category = %q, want %q", got.Category, tt.wantCat)
			}
			if got.Summary != tt.wantSum {
				t.Fatalf("summary = %q, want %q", got.Summary, tt.wantSum)
			}
			if !reflect.DeepEqual(got.Tags, tt.wantTags) {
				t.Fatalf("tags = %v, want %v", got.Tags, tt.wantTags)
			}
		})
	}
}

func TestParseCategoryTagIdempotence(t *testing.T) {
	t.Parallel()
	first := ParseCategory("Local [Tech, AI] - chips shipped")
	if len(first.Tags) != 2 {
		t.Fatalf("tags = %v", first.Tags)
	}
	second := ParseCategory(first.Summary)
	if len(second.Tags) != 0 {
		t.Fatalf("re-running on stripped summary yielded tags %v", second.Tags)
	}
}

package briefing

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/briefer/models"
)

// BuildPrompt renders the research instruction sent to the agent service:
// the configured system prompt followed by the reader profile and today's
// date, so the agent researches current news.
func BuildPrompt(systemPrompt string, profile models.ReaderProfile) string {
	return fmt.Sprintf("%s\n\nReader profile:\nLocation: %s\nTopics: %s\nDate: %s",
		systemPrompt,
		profile.EffectiveLocation(),
		profile.Topics,
		time.Now().UTC().Format("2006-01-02"))
}

package briefing

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/briefer/internal/normalize"
	"github.com/mohammad-safakhou/briefer/models"
)

// demoCategories cycles story classification across topics so the demo feed
// looks like a plausible mixed briefing.
var demoCategories = []models.NewsCategory{
	models.CategoryLocal,
	models.CategoryInternational,
	models.CategoryInterest,
	models.CategorySocial,
}

// DemoBriefing synthesizes a deterministic briefing from the profile alone.
// It is a pure function of the profile: same topics in, same stories out.
// Used when no agent credentials are configured.
func DemoBriefing(profile models.ReaderProfile) models.Briefing {
	topics := profile.TopicList()
	if len(topics) == 0 {
		topics = []string{"headlines"}
	}
	location := profile.EffectiveLocation()

	briefing := models.Briefing{
		Summary: fmt.Sprintf("Demo briefing for %s covering %s. Connect an agent account for live research.", location, strings.Join(topics, ", ")),
		Items:   []models.StoryItem{},
	}

	for i, topic := range topics {
		if len(briefing.Items) >= normalize.MaxItems {
			break
		}
		category := demoCategories[i%len(demoCategories)]
		briefing.Items = append(briefing.Items, models.StoryItem{
			Title:    fmt.Sprintf("What to watch in %s", topic),
			Summary:  fmt.Sprintf("A sample %s story about %s, generated locally without contacting the agent service.", category, topic),
			Category: category,
			Tags:     []string{topic, "demo"},
		})
	}
	return briefing
}

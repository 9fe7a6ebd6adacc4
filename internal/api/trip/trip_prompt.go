package trip

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const itinerarySystemPrompt = `You are a seasoned travel planner. You build multi-day trip itineraries
strictly from the list of real places you are given. You never invent places and you never use
place IDs that are not in the list.`

// generateItineraryPrompt embeds a bounded slice of the catalog snapshot and
// instructs the model to answer in the pipe-delimited line grammar the parser
// expects. The catalog is truncated to placeCap entries to respect context
// limits.
func generateItineraryPrompt(destination string, catalog []types.Place, days int, preferences string, placeCap int) string {
	if placeCap > 0 && len(catalog) > placeCap {
		catalog = catalog[:placeCap]
	}

	var sb strings.Builder
	for _, place := range catalog {
		sb.WriteString(fmt.Sprintf("%s | %s | rating %.1f | %s | %s\n",
			place.ID, place.Name, place.Rating, strings.Join(place.Types, ","), place.FormattedAddress))
	}

	daysPart := ""
	if days > 0 {
		daysPart = fmt.Sprintf(" for a %d-day trip", days)
	}
	preferencesPart := ""
	if preferences != "" {
		preferencesPart = fmt.Sprintf("\n        Traveller preferences: %s.", preferences)
	}

	return fmt.Sprintf(`
        Plan an itinerary for %s%s using ONLY the places listed below.%s

        Available places (id | name | rating | types | address):
        %s
        Respond with EXACTLY one line per recommendation, in this pipe-delimited format and nothing else:
        Tip <n>: <placeId> | <category> | <description> | <duration> | <price>

        Rules:
        - <placeId> MUST be one of the ids listed above. Do not invent places.
        - <category> MUST be one of: attraction, activity, restaurant, accommodation, tip.
        - <description> is 1-2 sentences about why this place is worth visiting.
        - <duration> is the suggested time to spend, e.g. "2 hours".
        - <price> is an approximate price indication, e.g. "free" or "$$".
        - Recommend between 5 and 12 places.
        - No introduction, no closing remarks, no markdown.`,
		destination, daysPart, preferencesPart, sb.String())
}

// generateSummaryPrompt asks for a short freeform destination blurb. The
// output is used verbatim; no parsing beyond trimming.
func generateSummaryPrompt(destination string) string {
	return fmt.Sprintf(`
        Write a short, enthusiastic summary (3-4 sentences) of %s as a travel destination.
        Mention its atmosphere and what kind of traveller it suits. Plain text only, no markdown.`, destination)
}

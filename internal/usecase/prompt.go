package usecase

import (
	"fmt"
	"strings"

	"travel-itinerary-api/internal/domain/model"
)

// structuredPromptSuffix steers the free-text model toward the itinerary JSON
// shape. The model may still answer in prose; ExtractResult handles that.
const structuredPromptSuffix = `

Please provide a detailed day-by-day itinerary for this trip in JSON format with the following structure:
{
  "itineraries": [
    {
      "title": "Trip Title",
      "focus": "Main focus of the trip (e.g., Adventure, Culture, Relaxation)",
      "summary": "Brief summary of the itinerary",
      "dailySchedule": [
        {
          "day": 1,
          "date": "Date in text format",
          "morning": {"activity": "Description", "location": "Location name", "duration": "Duration in hours", "cost": 0, "distance": "Distance from previous location", "transportation": "Mode of transportation"},
          "afternoon": {"activity": "Description", "location": "Location name", "duration": "Duration in hours", "cost": 0, "distance": "Distance from previous location", "transportation": "Mode of transportation"},
          "evening": {"activity": "Description", "location": "Location name", "duration": "Duration in hours", "cost": 0, "distance": "Distance from previous location", "transportation": "Mode of transportation"},
          "meals": [{"type": "breakfast/lunch/dinner", "suggestion": "Restaurant or meal suggestion", "accommodatesRestrictions": true, "cost": 0}]
        }
      ],
      "accommodations": [{"name": "Accommodation name", "description": "Brief description", "amenities": ["amenity1"], "proximityToAttractions": "Location advantages", "costPerNight": 0, "totalAccommodationCost": 0}],
      "costBreakdown": {"activities": 0, "meals": 0, "accommodation": 0, "transportation": 0, "miscellaneous": 0, "totalEstimatedCost": 0, "comparisonToBudget": "Under/Over budget explanation", "savingsSuggestions": ["suggestion1"]},
      "localInsights": {"culturalNotes": ["note1"], "hiddenGems": ["gem1"], "crowdAvoidanceTips": ["tip1"]},
      "practicalInfo": {"weatherExpectations": "Weather description", "packingSuggestions": ["item1"], "advanceReservations": ["reservation1"], "transportationTips": ["tip1"], "safetyInfo": ["info1"]}
    }
  ]
}`

// BuildStructuredPrompt wraps the caller's prompt with the JSON-shape
// instruction block sent to either generation path.
func BuildStructuredPrompt(prompt string) string {
	return prompt + structuredPromptSuffix
}

// BuildTripPrompt renders the planner form into the base prompt text.
func BuildTripPrompt(f model.FormInputs) string {
	restrictions := f.Restrictions
	if restrictions == "" {
		restrictions = "None"
	}
	interests := f.Interests
	if interests == "" {
		interests = "General sightseeing"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Create a travel itinerary for a trip to %s for %s.\n", f.Destination, f.Dates)
	fmt.Fprintf(&b, "Number of people: %s\n", f.People)
	fmt.Fprintf(&b, "Dietary/other restrictions: %s\n", restrictions)
	fmt.Fprintf(&b, "Budget: %s\n", f.Budget)
	fmt.Fprintf(&b, "Transportation mode: %s\n", f.TransportationMode)
	fmt.Fprintf(&b, "Interests: %s", interests)
	return b.String()
}

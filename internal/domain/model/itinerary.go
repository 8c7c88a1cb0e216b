package model

// Structured itinerary payload produced when the generation service emits
// parseable JSON. The job result itself is stored as a loose map because the
// upstream model is not contractually bound to this shape; these types exist
// for consumers that want to decode the happy path.

type ItineraryResponse struct {
	Itineraries []Itinerary `json:"itineraries"`
	// TextResponse carries the raw model output when JSON extraction failed.
	TextResponse string `json:"textResponse,omitempty"`
}

type Itinerary struct {
	Title          string              `json:"title"`
	Focus          string              `json:"focus"`
	Summary        string              `json:"summary"`
	DailySchedule  []DailyScheduleItem `json:"dailySchedule"`
	Accommodations []Accommodation     `json:"accommodations"`
	CostBreakdown  CostBreakdown       `json:"costBreakdown"`
	LocalInsights  LocalInsights       `json:"localInsights"`
	PracticalInfo  PracticalInfo       `json:"practicalInfo"`
}

type DailyScheduleItem struct {
	Day       int       `json:"day"`
	Date      string    `json:"date"`
	Morning   *Activity `json:"morning,omitempty"`
	Afternoon *Activity `json:"afternoon,omitempty"`
	Evening   *Activity `json:"evening,omitempty"`
	Meals     []Meal    `json:"meals,omitempty"`
}

type Activity struct {
	Activity       string  `json:"activity"`
	Location       string  `json:"location"`
	Duration       string  `json:"duration"`
	Cost           float64 `json:"cost"`
	Distance       string  `json:"distance"`
	Transportation string  `json:"transportation"`
}

type Meal struct {
	Type                     string  `json:"type"`
	Suggestion               string  `json:"suggestion"`
	AccommodatesRestrictions bool    `json:"accommodatesRestrictions"`
	Cost                     float64 `json:"cost"`
}

type Accommodation struct {
	Name                   string   `json:"name"`
	Description            string   `json:"description"`
	Amenities              []string `json:"amenities"`
	ProximityToAttractions string   `json:"proximityToAttractions"`
	CostPerNight           float64  `json:"costPerNight"`
	TotalAccommodationCost float64  `json:"totalAccommodationCost"`
}

type CostBreakdown struct {
	Activities         float64  `json:"activities"`
	Meals              float64  `json:"meals"`
	Accommodation      float64  `json:"accommodation"`
	Transportation     float64  `json:"transportation"`
	Miscellaneous      float64  `json:"miscellaneous"`
	TotalEstimatedCost float64  `json:"totalEstimatedCost"`
	ComparisonToBudget string   `json:"comparisonToBudget"`
	SavingsSuggestions []string `json:"savingsSuggestions"`
}

type LocalInsights struct {
	CulturalNotes      []string `json:"culturalNotes"`
	HiddenGems         []string `json:"hiddenGems"`
	CrowdAvoidanceTips []string `json:"crowdAvoidanceTips"`
}

type PracticalInfo struct {
	WeatherExpectations string   `json:"weatherExpectations,omitempty"`
	PackingSuggestions  []string `json:"packingSuggestions,omitempty"`
	AdvanceReservations []string `json:"advanceReservations,omitempty"`
	TransportationTips  []string `json:"transportationTips,omitempty"`
	SafetyInfo          []string `json:"safetyInfo,omitempty"`
}

// FormInputs is the structured echo of the planner form, kept verbatim on the
// job so the caller can correlate a result with what was asked for.
type FormInputs struct {
	Destination        string `json:"destination"`
	Dates              string `json:"dates"`
	People             string `json:"people"`
	Restrictions       string `json:"restrictions"`
	Budget             string `json:"budget"`
	TransportationMode string `json:"transportationMode"`
	Interests          string `json:"interests,omitempty"`
}

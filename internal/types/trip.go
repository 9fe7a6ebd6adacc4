package types

// TipCategory is the fixed vocabulary the itinerary model is instructed to use.
type TipCategory string

const (
	CategoryAttraction    TipCategory = "attraction"
	CategoryActivity      TipCategory = "activity"
	CategoryRestaurant    TipCategory = "restaurant"
	CategoryAccommodation TipCategory = "accommodation"
	CategoryTip           TipCategory = "tip"
)

// KnownCategories is the set the parser validates category tokens against.
var KnownCategories = map[TipCategory]bool{
	CategoryAttraction:    true,
	CategoryActivity:      true,
	CategoryRestaurant:    true,
	CategoryAccommodation: true,
	CategoryTip:           true,
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a normalized catalog record built from one text-search result.
// It lives only for the duration of one trip-generation request.
type Place struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	FormattedAddress string       `json:"formatted_address"`
	Rating           float64      `json:"rating,omitempty"`
	Types            []string     `json:"types,omitempty"`
	PhotoReferences  []string     `json:"photo_references,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
}

// Tip is one parsed recommendation line from model output, pre-resolution.
// PlaceID is advisory only; the model is told to use catalog ids but nothing
// enforces that until resolution.
type Tip struct {
	PlaceID     string      `json:"place_id"`
	Category    TipCategory `json:"category"`
	Description string      `json:"description"`
	Duration    string      `json:"duration,omitempty"`
	Price       string      `json:"price,omitempty"`
}

// TripTip is a Tip enriched with resolved place metadata. ImageURL is never
// empty in the final output; the UI renders it unconditionally.
type TripTip struct {
	Tip
	Title       string       `json:"title"`
	Location    string       `json:"location,omitempty"`
	ImageURL    string       `json:"image_url"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Trip is the terminal success payload of one generation request.
type Trip struct {
	Destination string    `json:"destination"`
	Country     string    `json:"country"`
	Tips        []TripTip `json:"tips"`
	Summary     string    `json:"summary"`
}

// TripRequest is the input to StartTripGeneration.
type TripRequest struct {
	Destination string   `json:"destination"`
	Days        int      `json:"days,omitempty"`
	Preferences string   `json:"preferences,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

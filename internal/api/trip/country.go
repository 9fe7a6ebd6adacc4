package trip

import "strings"

// fallbackCountry is returned for destinations the table does not know.
const fallbackCountry = "International"

// countryByDestination covers the destinations the product sees most often.
// Anything else gets the generic fallback label.
var countryByDestination = map[string]string{
	"paris":          "France",
	"nice":           "France",
	"lyon":           "France",
	"london":         "United Kingdom",
	"edinburgh":      "United Kingdom",
	"rome":           "Italy",
	"florence":       "Italy",
	"venice":         "Italy",
	"milan":          "Italy",
	"barcelona":      "Spain",
	"madrid":         "Spain",
	"seville":        "Spain",
	"lisbon":         "Portugal",
	"porto":          "Portugal",
	"amsterdam":      "Netherlands",
	"berlin":         "Germany",
	"munich":         "Germany",
	"hamburg":        "Germany",
	"vienna":         "Austria",
	"prague":         "Czech Republic",
	"budapest":       "Hungary",
	"athens":         "Greece",
	"santorini":      "Greece",
	"zurich":         "Switzerland",
	"geneva":         "Switzerland",
	"copenhagen":     "Denmark",
	"stockholm":      "Sweden",
	"oslo":           "Norway",
	"helsinki":       "Finland",
	"dublin":         "Ireland",
	"brussels":       "Belgium",
	"warsaw":         "Poland",
	"krakow":         "Poland",
	"istanbul":       "Turkey",
	"dubai":          "United Arab Emirates",
	"new york":       "United States",
	"los angeles":    "United States",
	"san francisco":  "United States",
	"chicago":        "United States",
	"miami":          "United States",
	"toronto":        "Canada",
	"vancouver":      "Canada",
	"mexico city":    "Mexico",
	"rio de janeiro": "Brazil",
	"buenos aires":   "Argentina",
	"tokyo":          "Japan",
	"kyoto":          "Japan",
	"osaka":          "Japan",
	"seoul":          "South Korea",
	"beijing":        "China",
	"shanghai":       "China",
	"hong kong":      "Hong Kong",
	"singapore":      "Singapore",
	"bangkok":        "Thailand",
	"bali":           "Indonesia",
	"hanoi":          "Vietnam",
	"sydney":         "Australia",
	"melbourne":      "Australia",
	"auckland":       "New Zealand",
	"cape town":      "South Africa",
	"marrakech":      "Morocco",
	"cairo":          "Egypt",
	"mumbai":         "India",
	"delhi":          "India",
	"reykjavik":      "Iceland",
	"moscow":         "Russia",
}

// LookupCountry returns the country for a known destination or a generic
// region label. No failure mode beyond the fallback.
func LookupCountry(destination string) string {
	key := strings.ToLower(strings.TrimSpace(destination))
	if country, ok := countryByDestination[key]; ok {
		return country
	}
	return fallbackCountry
}

package firstworld

import "strings"

// nonFirstWorldCountries lists production countries that do not qualify a
// title on their own. A title counts as first world when at least one of its
// countries is absent from this set.
var nonFirstWorldCountries = map[string]bool{
	"Argentina":                      true,
	"Bangladesh":                     true,
	"Brazil":                         true,
	"Bulgaria":                       true,
	"Chile":                          true,
	"China":                          true,
	"Colombia":                       true,
	"Egypt":                          true,
	"Federal Republic of Yugoslavia": true,
	"India":                          true,
	"Indonesia":                      true,
	"Iran":                           true,
	"Kazakhstan":                     true,
	"Mexico":                         true,
	"Occupied Palestinian Territory": true,
	"Pakistan":                       true,
	"Philippines":                    true,
	"Romania":                        true,
	"Russia":                         true,
	"Saudi Arabia":                   true,
	"Serbia":                         true,
	"South Africa":                   true,
	"Soviet Union":                   true,
	"Sri Lanka":                      true,
	"Thailand":                       true,
	"Turkey":                         true,
	"Yugoslavia":                     true,
}

// Classify maps a comma-separated country list to a first-world verdict.
// Nil means the list was empty and the title stays unclassified.
func Classify(countries string) *bool {
	if strings.TrimSpace(countries) == "" {
		return nil
	}

	verdict := false
	for _, country := range strings.Split(countries, ",") {
		if !nonFirstWorldCountries[strings.TrimSpace(country)] {
			verdict = true
			break
		}
	}
	return &verdict
}

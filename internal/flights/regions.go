package flights

// regionHubs maps broad destination tokens to concrete airports the offer
// search can target.
var regionHubs = map[string][]string{
	"Southeast Asia":  {"BKK", "SIN", "SGN", "KUL"},
	"Thailand":        {"BKK", "HKT"},
	"Vietnam":         {"SGN", "HAN"},
	"Bali":            {"DPS"},
	"Western Europe":  {"LHR", "CDG", "AMS", "FRA"},
	"Eastern Europe":  {"WAW", "BUD", "IST", "PRG"},
	"East Asia":       {"HND", "ICN", "TPE", "HKG"},
	"Japan":           {"HND", "NRT", "KIX"},
	"Korea":           {"ICN"},
	"China":           {"PVG", "PEK", "HKG"},
	"South America":   {"GRU", "BOG", "LIM", "EZE"},
	"Central America": {"PTY", "SJO", "SAL"},
	"Mexico":          {"MEX", "CUN"},
	"Italy":           {"FCO", "MXP", "VCE"},
	"France":          {"CDG", "ORY", "NCE"},
	"UK":              {"LHR", "LGW", "MAN"},
	"Spain":           {"MAD", "BCN"},
	"Portugal":        {"LIS", "OPO"},
	"London":          {"LHR", "LGW"},
	"Paris":           {"CDG"},
	"Tokyo":           {"HND", "NRT"},
	"Bangkok":         {"BKK"},
	"Everywhere":      {"LHR", "DXB", "IST"},
}

var fallbackHubs = []string{"LHR", "IST", "DXB"}

// HubsFor resolves a destination token to airports. Known regions use the
// table, three-letter tokens are taken as airport codes, anything else gets
// the global fallback hubs.
func HubsFor(region string) []string {
	if hubs, ok := regionHubs[region]; ok {
		return append([]string(nil), hubs...)
	}
	if len(region) == 3 {
		return []string{region}
	}
	return append([]string(nil), fallbackHubs...)
}

package flights

import "strings"

// Airport is reference data for a hub airport.
type Airport struct {
	Code    string  `json:"code"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

var airports = map[string]Airport{
	"JFK": {"JFK", "New York", "USA", 40.6413, -73.7781},
	"EWR": {"EWR", "Newark", "USA", 40.6895, -74.1745},
	"LAX": {"LAX", "Los Angeles", "USA", 33.9416, -118.4085},
	"SFO": {"SFO", "San Francisco", "USA", 37.6213, -122.3790},
	"ORD": {"ORD", "Chicago", "USA", 41.9742, -87.9073},
	"ATL": {"ATL", "Atlanta", "USA", 33.6407, -84.4277},
	"DFW": {"DFW", "Dallas", "USA", 32.8998, -97.0403},
	"MIA": {"MIA", "Miami", "USA", 25.7959, -80.2870},
	"SEA": {"SEA", "Seattle", "USA", 47.4502, -122.3088},
	"BOS": {"BOS", "Boston", "USA", 42.3656, -71.0096},
	"LHR": {"LHR", "London", "UK", 51.4700, -0.4543},
	"LGW": {"LGW", "London", "UK", 51.1537, -0.1821},
	"MAN": {"MAN", "Manchester", "UK", 53.3650, -2.2728},
	"CDG": {"CDG", "Paris", "France", 49.0097, 2.5479},
	"ORY": {"ORY", "Paris", "France", 48.7262, 2.3652},
	"NCE": {"NCE", "Nice", "France", 43.6584, 7.2159},
	"AMS": {"AMS", "Amsterdam", "Netherlands", 52.3105, 4.7683},
	"FRA": {"FRA", "Frankfurt", "Germany", 50.0379, 8.5622},
	"MAD": {"MAD", "Madrid", "Spain", 40.4983, -3.5676},
	"BCN": {"BCN", "Barcelona", "Spain", 41.2974, 2.0833},
	"LIS": {"LIS", "Lisbon", "Portugal", 38.7742, -9.1342},
	"OPO": {"OPO", "Porto", "Portugal", 41.2481, -8.6814},
	"FCO": {"FCO", "Rome", "Italy", 41.8003, 12.2389},
	"MXP": {"MXP", "Milan", "Italy", 45.6306, 8.7281},
	"VCE": {"VCE", "Venice", "Italy", 45.5053, 12.3519},
	"ATH": {"ATH", "Athens", "Greece", 37.9364, 23.9445},
	"OSL": {"OSL", "Oslo", "Norway", 60.1976, 11.1004},
	"WAW": {"WAW", "Warsaw", "Poland", 52.1657, 20.9671},
	"BUD": {"BUD", "Budapest", "Hungary", 47.4369, 19.2556},
	"PRG": {"PRG", "Prague", "Czechia", 50.1008, 14.2600},
	"IST": {"IST", "Istanbul", "Turkey", 41.2753, 28.7519},
	"DXB": {"DXB", "Dubai", "UAE", 25.2532, 55.3657},
	"DOH": {"DOH", "Doha", "Qatar", 25.2731, 51.6081},
	"AUH": {"AUH", "Abu Dhabi", "UAE", 24.4330, 54.6511},
	"BKK": {"BKK", "Bangkok", "Thailand", 13.6900, 100.7501},
	"HKT": {"HKT", "Phuket", "Thailand", 8.1132, 98.3169},
	"SIN": {"SIN", "Singapore", "Singapore", 1.3644, 103.9915},
	"SGN": {"SGN", "Ho Chi Minh City", "Vietnam", 10.8188, 106.6520},
	"HAN": {"HAN", "Hanoi", "Vietnam", 21.2212, 105.8072},
	"KUL": {"KUL", "Kuala Lumpur", "Malaysia", 2.7456, 101.7072},
	"DPS": {"DPS", "Denpasar", "Indonesia", -8.7482, 115.1670},
	"HND": {"HND", "Tokyo", "Japan", 35.5494, 139.7798},
	"NRT": {"NRT", "Tokyo", "Japan", 35.7720, 140.3929},
	"KIX": {"KIX", "Osaka", "Japan", 34.4320, 135.2304},
	"ICN": {"ICN", "Seoul", "South Korea", 37.4602, 126.4407},
	"TPE": {"TPE", "Taipei", "Taiwan", 25.0797, 121.2342},
	"HKG": {"HKG", "Hong Kong", "China", 22.3080, 113.9185},
	"PVG": {"PVG", "Shanghai", "China", 31.1443, 121.8083},
	"PEK": {"PEK", "Beijing", "China", 40.0799, 116.6031},
	"GRU": {"GRU", "Sao Paulo", "Brazil", -23.4356, -46.4731},
	"BOG": {"BOG", "Bogota", "Colombia", 4.7016, -74.1469},
	"LIM": {"LIM", "Lima", "Peru", -12.0219, -77.1143},
	"EZE": {"EZE", "Buenos Aires", "Argentina", -34.8222, -58.5358},
	"PTY": {"PTY", "Panama City", "Panama", 9.0714, -79.3835},
	"SJO": {"SJO", "San Jose", "Costa Rica", 9.9939, -84.2088},
	"SAL": {"SAL", "San Salvador", "El Salvador", 13.4409, -89.0557},
	"MEX": {"MEX", "Mexico City", "Mexico", 19.4363, -99.0721},
	"CUN": {"CUN", "Cancun", "Mexico", 21.0365, -86.8771},
}

// LookupAirport returns reference data for an IATA code.
func LookupAirport(code string) (Airport, bool) {
	a, ok := airports[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

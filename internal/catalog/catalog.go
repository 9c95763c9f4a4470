// Package catalog holds the static vocabularies shared by the discovery and
// extraction pipelines: the brand list, query patterns, URL denylist, ZIP
// seeds, and the equipment/parts keyword sets. All data here is immutable;
// callers receive it by reference and must not modify it.
package catalog

// Brands is the master list of HVAC equipment brands. Used both to generate
// discovery queries and to detect brand mentions on supplier pages.
var Brands = []string{
	"Carrier", "Trane", "Lennox", "Daikin", "Mitsubishi Electric", "Goodman", "Rheem", "Ruud", "York",
	"Bryant", "American Standard", "Bosch", "LG", "Fujitsu", "Tempstar", "Payne", "ICP", "Johnson Controls",
	"Emerson/Copeland", "Danfoss", "Honeywell", "Siemens", "Schneider", "Aprilaire", "Nu-Calgon",
	"Fieldpiece", "Testo", "Amana", "Electrolux", "Panasonic", "Toshiba", "Lloyd", "Buderus", "Arcoaire",
	"Comfortmaker", "Day & Night", "Heil", "Alliance Air Products", "Daikin Applied", "Quietflex", "Fujitsu Halcyon",
	"Gree", "Champion", "Coleman", "Luxaire", "Hitachi", "AirEase", "Armstrong Air", "Concord", "Ducane", "Broan",
	"Frigidaire", "Gibson", "Intertherm", "Maytag", "Miller", "Reznor", "Sure Comfort", "WeatherKing", "Samsung",
	"Toshiba-Carrier",
}

// QueryPatterns are the discovery query templates, in priority order. The
// discovery pipeline takes the first QueriesPerBrand of these.
var QueryPatterns = []string{
	"%s HVAC distributor",
	"%s HVAC supplier",
	"%s HVAC wholesaler",
	"%s authorized dealer",
	`%s "find a dealer"`,
	`%s "where to buy"`,
	"%s sales rep",
	"%s representatives",
	"%s parts distributor",
}

// ZIPSeeds bias discovery queries toward US suppliers when ZIP variants are
// enabled.
var ZIPSeeds = []string{
	"10001", "90001", "60601", "77002", "33101",
	"85001", "80202", "98101", "19103", "30303",
}

// Denylist contains substrings that mark a search result as noise: social
// networks, job boards, marketplaces, and legal/press boilerplate paths.
// Matching is case-insensitive against the whole URL.
var Denylist = []string{
	"facebook.com", "twitter.com", "linkedin.com", "instagram.com", "youtube.com",
	"indeed.com", "glassdoor.com", "ziprecruiter.com", "wikipedia.org", "amazon.com", "ebay.com",
	"/careers", "/jobs", "/news", "/blog", "/press", "/cookie", "/privacy", "/terms", "/legal",
}

// EquipmentKeywords is the vocabulary for the "Equipment Categories Offered"
// field.
var EquipmentKeywords = []string{
	"air conditioner", "heat pump", "furnace", "boiler", "chiller", "mini split", "thermostat",
	"air handler", "ventilation", "humidifier", "dehumidifier", "controls", "packaged unit",
}

// PartsKeywords is the vocabulary for the "Key Parts and Components
// Available" field.
var PartsKeywords = []string{
	// Core mechanical components
	"compressor", "coil", "evaporator coil", "condenser coil", "heat exchanger",
	"blower", "fan", "motor", "capacitor", "contactors", "relays",

	// Controls and electronics
	"thermostat", "control board", "circuit board", "defrost control", "ignition control",
	"relay", "sensor", "pressure switch", "limit switch", "contactor",

	// Refrigerant and flow components
	"refrigerant", "expansion valve", "txv", "metering device", "solenoid valve",
	"service valve", "suction line", "liquid line", "filter drier", "sight glass",

	// Airflow and filtration
	"filter", "air filter", "pleated filter", "belt", "pulley", "sheave",
	"fan blade", "wheel", "duct", "grille", "damper",

	// Heating-specific
	"burner", "igniter", "flame sensor", "pilot assembly", "gas valve",
	"oil nozzle", "heat strip", "sequencer",

	// Cooling-specific
	"condensate pump", "drain pan", "drain line", "float switch",

	// Misc
	"gasket", "seal", "insulation", "thermocouple", "transformer",
	"humidifier pad", "uv lamp", "lamp ballast",
}

// SubpageHints are the topical path fragments that qualify a link for the
// bounded subpage crawl.
var SubpageHints = []string{
	"contact", "about", "brand", "product", "service", "part", "catalog",
}

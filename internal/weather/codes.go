package weather

// Condition is the display form of a WMO weather code.
type Condition struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var conditions = map[int]Condition{
	0:  {"Clear sky", "☀️"},
	1:  {"Mainly clear", "🌤️"},
	2:  {"Partly cloudy", "⛅"},
	3:  {"Overcast", "☁️"},
	45: {"Fog", "🌫️"},
	48: {"Depositing rime fog", "🌫️"},
	51: {"Light drizzle", "🌦️"},
	53: {"Moderate drizzle", "🌧️"},
	55: {"Heavy drizzle", "🌧️"},
	61: {"Light rain", "🌧️"},
	63: {"Moderate rain", "🌧️"},
	65: {"Heavy rain", "🌧️"},
	80: {"Rain showers", "🌦️"},
	81: {"Moderate rain showers", "🌧️"},
	82: {"Violent rain showers", "⛈️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm with hail", "⛈️"},
	99: {"Severe thunderstorm", "🌩️"},
}

// Describe maps a weather code to its label.
func Describe(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return Condition{Label: "Unknown", Icon: "❓"}
}

package types

// Settings holds user preferences consumed by the weather and holiday
// widgets.
type Settings struct {
	WeatherCity    string `json:"weatherCity"`
	WeatherCountry string `json:"weatherCountry"`
	HolidayCountry string `json:"holidayCountry"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		WeatherCity:    "Lisbon",
		WeatherCountry: "PT",
		HolidayCountry: "PT",
	}
}

// SettingsPatch lists the settings an update may change.
type SettingsPatch struct {
	WeatherCity    Field[string]
	WeatherCountry Field[string]
	HolidayCountry Field[string]
}

// ApplyTo merges the patch onto s.
func (p SettingsPatch) ApplyTo(s *Settings) {
	p.WeatherCity.Apply(&s.WeatherCity)
	p.WeatherCountry.Apply(&s.WeatherCountry)
	p.HolidayCountry.Apply(&s.HolidayCountry)
}

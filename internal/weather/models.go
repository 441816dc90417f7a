package weather

// Raw provider payloads. Every optional field is a pointer so that "absent"
// and "zero" stay distinguishable all the way to the normalizer.

// Coord is a latitude/longitude pair as reported by the provider.
type Coord struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Condition is one entry of the provider's "weather" array. A null entry
// decodes to a Condition with every field nil.
type Condition struct {
	Main        string  `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// MainBlock carries temperature, humidity and pressure readings.
type MainBlock struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Pressure  *float64 `json:"pressure"`
	Humidity  *float64 `json:"humidity"`
}

type Wind struct {
	Speed *float64 `json:"speed"`
}

type Sys struct {
	Country string `json:"country"`
	Sunrise *int64 `json:"sunrise"`
	Sunset  *int64 `json:"sunset"`
}

// CurrentConditions is the provider's raw current-weather snapshot.
type CurrentConditions struct {
	Name       string      `json:"name"`
	Coord      *Coord      `json:"coord"`
	Main       *MainBlock  `json:"main"`
	Weather    []Condition `json:"weather"`
	Wind       *Wind       `json:"wind"`
	Visibility *float64    `json:"visibility"` // meters
	Sys        *Sys        `json:"sys"`
}

// HourlySample is one entry of a primary-tier hourly series.
type HourlySample struct {
	Dt        *int64      `json:"dt"`
	Temp      *float64    `json:"temp"`
	FeelsLike *float64    `json:"feels_like"`
	Humidity  *float64    `json:"humidity"`
	WindSpeed *float64    `json:"wind_speed"`
	Weather   []Condition `json:"weather"`
}

// DailyTemp is the nested {max, min} structure of a daily sample.
type DailyTemp struct {
	Max *float64 `json:"max"`
	Min *float64 `json:"min"`
}

// DailySample is one entry of a primary-tier daily series.
type DailySample struct {
	Dt        *int64      `json:"dt"`
	Temp      *DailyTemp  `json:"temp"`
	Humidity  *float64    `json:"humidity"`
	WindSpeed *float64    `json:"wind_speed"`
	Pressure  *float64    `json:"pressure"`
	Sunrise   *int64      `json:"sunrise"`
	Sunset    *int64      `json:"sunset"`
	Weather   []Condition `json:"weather"`
}

// Forecast is the primary-tier (One Call) shape. Reshaped secondary-tier data
// uses the same type.
type Forecast struct {
	Hourly []HourlySample `json:"hourly"`
	Daily  []DailySample  `json:"daily"`
}

// ListSample is one 3-hour entry of the secondary-tier forecast list.
type ListSample struct {
	Dt      int64       `json:"dt"`
	Main    *MainBlock  `json:"main"`
	Wind    *Wind       `json:"wind"`
	Weather []Condition `json:"weather"`
}

// ForecastList is the secondary-tier response: a flat chronological list.
type ForecastList struct {
	List []ListSample   `json:"list"`
	City *ForecastCity `json:"city"`
}

type ForecastCity struct {
	Name string `json:"name"`
	// Shift from UTC in seconds.
	Timezone *int64 `json:"timezone"`
}

// HourlyPoint is one entry of NormalizedWeather.HourlyForecast.
type HourlyPoint struct {
	Dt          *int64   `json:"dt"`
	Temp        *float64 `json:"temp"`
	FeelsLike   *float64 `json:"feels_like"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// DailyPoint is one entry of NormalizedWeather.DailyForecast.
type DailyPoint struct {
	Dt          *int64   `json:"dt"`
	TempMax     *float64 `json:"temp_max"`
	TempMin     *float64 `json:"temp_min"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
	Pressure    *float64 `json:"pressure"`
	Sunrise     *int64   `json:"sunrise"`
	Sunset      *int64   `json:"sunset"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// NormalizedWeather is the response contract served to the browser. No field
// carries omitempty: absent values are encoded as null, never dropped.
type NormalizedWeather struct {
	Temperature  float64  `json:"temperature"`
	Humidity     float64  `json:"humidity"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	LocationName string   `json:"locationName"`
	Country      string   `json:"country"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	FeelsLike    *float64 `json:"feels_like"`
	WindSpeed    *float64 `json:"wind_speed"`
	Visibility   *float64 `json:"visibility"` // kilometers
	Pressure     *float64 `json:"pressure"`
	Sunrise      *int64   `json:"sunrise"`
	Sunset       *int64   `json:"sunset"`

	HourlyForecast []HourlyPoint `json:"hourlyForecast"`
	DailyForecast  []DailyPoint  `json:"dailyForecast"`
}

// Query identifies the location of a weather request: either coordinates or a city name.
type Query struct {
	Lat          *float64
	Lon          *float64
	City         string
	LocationName string
}

// HasCoordinates reports whether both coordinates were supplied.
func (q Query) HasCoordinates() bool {
	return q.Lat != nil && q.Lon != nil
}

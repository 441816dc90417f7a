package weather

import (
	"fmt"
	"math"
)

const (
	maxHourlyPoints = 24
	maxDailyPoints  = 7

	unknownDescription = "Unknown"
)

// Normalize converts a current-conditions payload, plus optional forecast
// data, into the NormalizedWeather contract. It is pure: inputs are not
// modified and no I/O happens.
//
// The only hard precondition is a main block carrying both temperature and
// humidity; everything else degrades to null (numbers) or a fixed default
// (strings). Daily forecast entry 0 is today and is skipped.
func Normalize(current *CurrentConditions, fallbackName string, forecast *Forecast) (NormalizedWeather, error) {
	if current == nil || current.Main == nil {
		return NormalizedWeather{}, fmt.Errorf("%w: missing main block", ErrNormalizationRejected)
	}
	temp := finite(current.Main.Temp)
	humidity := finite(current.Main.Humidity)
	if temp == nil || humidity == nil {
		return NormalizedWeather{}, fmt.Errorf("%w: missing temperature or humidity", ErrNormalizationRejected)
	}

	description, icon := describe(current.Weather)

	out := NormalizedWeather{
		Temperature:    *temp,
		Humidity:       *humidity,
		Description:    description,
		Icon:           icon,
		LocationName:   current.Name,
		FeelsLike:      finite(current.Main.FeelsLike),
		Pressure:       finite(current.Main.Pressure),
		HourlyForecast: []HourlyPoint{},
		DailyForecast:  []DailyPoint{},
	}
	if fallbackName != "" {
		out.LocationName = fallbackName
	}
	if current.Coord != nil {
		out.Lat = finite(current.Coord.Lat)
		out.Lon = finite(current.Coord.Lon)
	}
	if current.Wind != nil {
		out.WindSpeed = finite(current.Wind.Speed)
	}
	if v := finite(current.Visibility); v != nil {
		km := *v / 1000
		out.Visibility = &km
	}
	if current.Sys != nil {
		out.Country = current.Sys.Country
		out.Sunrise = copyInt(current.Sys.Sunrise)
		out.Sunset = copyInt(current.Sys.Sunset)
	}

	if forecast == nil {
		return out, nil
	}

	if len(forecast.Daily) > 0 {
		today := forecast.Daily[0]
		if out.Sunrise == nil {
			out.Sunrise = copyInt(today.Sunrise)
		}
		if out.Sunset == nil {
			out.Sunset = copyInt(today.Sunset)
		}
	}

	for i, h := range forecast.Hourly {
		if i >= maxHourlyPoints {
			break
		}
		out.HourlyForecast = append(out.HourlyForecast, normalizeHourly(h))
	}

	for i := 1; i < len(forecast.Daily) && i <= maxDailyPoints; i++ {
		out.DailyForecast = append(out.DailyForecast, normalizeDaily(forecast.Daily[i]))
	}

	return out, nil
}

func normalizeHourly(h HourlySample) HourlyPoint {
	description, icon := describe(h.Weather)
	return HourlyPoint{
		Dt:          copyInt(h.Dt),
		Temp:        finite(h.Temp),
		FeelsLike:   finite(h.FeelsLike),
		Humidity:    finite(h.Humidity),
		WindSpeed:   finite(h.WindSpeed),
		Description: description,
		Icon:        icon,
	}
}

func normalizeDaily(d DailySample) DailyPoint {
	description, icon := describe(d.Weather)
	p := DailyPoint{
		Dt:          copyInt(d.Dt),
		Humidity:    finite(d.Humidity),
		WindSpeed:   finite(d.WindSpeed),
		Pressure:    finite(d.Pressure),
		Sunrise:     copyInt(d.Sunrise),
		Sunset:      copyInt(d.Sunset),
		Description: description,
		Icon:        icon,
	}
	if d.Temp != nil {
		p.TempMax = finite(d.Temp.Max)
		p.TempMin = finite(d.Temp.Min)
	}
	return p
}

// describe returns the description and icon of the first condition entry,
// defaulting to "Unknown" and "" for whatever is absent.
func describe(conds []Condition) (string, string) {
	description, icon := unknownDescription, ""
	if len(conds) == 0 {
		return description, icon
	}
	if d := conds[0].Description; d != nil {
		description = *d
	}
	if i := conds[0].Icon; i != nil {
		icon = *i
	}
	return description, icon
}

// finite returns a fresh copy of v, or nil when v is absent, NaN or infinite.
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

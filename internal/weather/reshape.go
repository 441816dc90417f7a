package weather

import "time"

// Local hours whose sample stands in for the whole day.
const (
	middayFrom = 11
	middayTo   = 13
)

// Reshape converts a secondary-tier forecast list into the primary-tier
// hourly/daily shape. It returns nil when the payload carries no list.
//
// Every sample becomes an hourly entry. A daily entry is taken from the first
// sample of each local calendar day whose hour falls in [11,13]; days without
// such a sample are left out rather than synthesised. Local time uses the
// city's UTC offset when the payload provides one, UTC otherwise.
func Reshape(fl *ForecastList) *Forecast {
	if fl == nil || fl.List == nil {
		return nil
	}

	loc := time.UTC
	if fl.City != nil && fl.City.Timezone != nil {
		loc = time.FixedZone("", int(*fl.City.Timezone))
	}

	out := &Forecast{
		Hourly: make([]HourlySample, 0, len(fl.List)),
		Daily:  []DailySample{},
	}
	seenDays := make(map[string]bool)

	for _, item := range fl.List {
		dt := item.Dt

		var main MainBlock
		if item.Main != nil {
			main = *item.Main
		}
		var windSpeed *float64
		if item.Wind != nil {
			windSpeed = item.Wind.Speed
		}

		out.Hourly = append(out.Hourly, HourlySample{
			Dt:        &dt,
			Temp:      main.Temp,
			FeelsLike: main.FeelsLike,
			Humidity:  main.Humidity,
			WindSpeed: windSpeed,
			Weather:   item.Weather,
		})

		local := time.Unix(dt, 0).In(loc)
		if local.Hour() < middayFrom || local.Hour() > middayTo {
			continue
		}
		day := local.Format("2006-01-02")
		if seenDays[day] {
			continue
		}
		seenDays[day] = true

		out.Daily = append(out.Daily, DailySample{
			Dt: &dt,
			Temp: &DailyTemp{
				Max: firstPresent(main.TempMax, main.Temp),
				Min: firstPresent(main.TempMin, main.Temp),
			},
			Humidity:  main.Humidity,
			WindSpeed: windSpeed,
			Pressure:  main.Pressure,
			Weather:   item.Weather,
		})
	}

	return out
}

func firstPresent(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

package weather

// DefaultRating is written on every enriched point.
// TODO: compute a real rating from swell/wind direction against the beach position.
const DefaultRating = 1

// Enrich merges the beach identity into each of its raw points.
//
// Each output point starts from {lat, lng, name, position, rating} taken from loc,
// then every provider field is overlaid on top, so on a key collision the
// provider value wins. Order and count of points are preserved.
func Enrich(points []RawForecastPoint, loc Location) []EnrichedForecastPoint {
	enriched := make([]EnrichedForecastPoint, 0, len(points))
	for _, p := range points {
		fields := make(map[string]any, len(p.Fields)+5)
		fields[FieldLat] = loc.Lat
		fields[FieldLng] = loc.Lng
		fields[FieldName] = loc.Name
		fields[FieldPosition] = loc.Position
		fields[FieldRating] = DefaultRating

		for k, v := range p.Fields {
			fields[k] = v
		}

		enriched = append(enriched, EnrichedForecastPoint{
			Time:   p.Time,
			Fields: fields,
		})
	}
	return enriched
}

// GroupByTime regroups points into buckets keyed by their exact time string.
// Buckets appear in the order their timestamp is first seen and points keep
// their relative order inside each bucket.
func GroupByTime(points []EnrichedForecastPoint) Forecast {
	forecast := make(Forecast, 0)
	index := make(map[string]int)

	for _, p := range points {
		if i, ok := index[p.Time]; ok {
			forecast[i].Forecast = append(forecast[i].Forecast, p)
			continue
		}
		index[p.Time] = len(forecast)
		forecast = append(forecast, TimeBucket{
			Time:     p.Time,
			Forecast: []EnrichedForecastPoint{p},
		})
	}
	return forecast
}

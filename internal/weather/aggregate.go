package weather

import "time"

const (
	// HourlyEntries is the number of 3-hour samples in the hourly projection (about 24h).
	HourlyEntries = 8
	// ForecastDays is the number of calendar days covered by the daily projection.
	ForecastDays = 5

	middayFromHour = 11
	middayToHour   = 13
)

// Aggregate projects a timestamp-ascending forecast feed into hourly and
// daily views. Days are calendar days in loc, starting with the day of now.
// If no day can be projected the hourly view is dropped as well, so the
// result is either fully populated or empty. A stale feed therefore yields no
// hours here even though HourlyProjection alone would return its first
// HourlyEntries samples.
func Aggregate(samples []ForecastSample, now time.Time, loc *time.Location) ForecastResult {
	daily := DailyProjection(samples, now, loc)
	if len(daily) == 0 {
		return ForecastResult{Hourly: []HourlyEntry{}, Daily: []DayEntry{}}
	}
	return ForecastResult{
		Hourly: HourlyProjection(samples),
		Daily:  daily,
	}
}

// HourlyProjection maps the first HourlyEntries samples 1:1, preserving order.
func HourlyProjection(samples []ForecastSample) []HourlyEntry {
	n := min(len(samples), HourlyEntries)
	out := make([]HourlyEntry, 0, n)
	for _, s := range samples[:n] {
		precip := s.Precipitation()
		out = append(out, HourlyEntry{
			Time:          s.Timestamp,
			Temperature:   s.Temperature,
			Description:   s.Description,
			Precipitation: &precip,
			CloudCover:    s.CloudCover,
		})
	}
	return out
}

// DailyProjection buckets samples by local calendar day and builds one
// DayEntry per day for ForecastDays days starting today. Days without
// samples are skipped. The representative sample of a day is the first one
// whose local hour is within 11..13, or the day's first sample otherwise.
func DailyProjection(samples []ForecastSample, now time.Time, loc *time.Location) []DayEntry {
	if loc == nil {
		loc = time.Local
	}

	type dayKey string

	buckets := make(map[dayKey][]ForecastSample)
	for _, s := range samples {
		k := dayKey(s.Timestamp.In(loc).Format(time.DateOnly))
		buckets[k] = append(buckets[k], s)
	}

	today := startOfDay(now, loc)
	out := make([]DayEntry, 0, ForecastDays)
	for offset := 0; offset < ForecastDays; offset++ {
		day := today.AddDate(0, 0, offset)
		bucket := buckets[dayKey(day.Format(time.DateOnly))]
		if len(bucket) == 0 {
			continue
		}

		rep := representative(bucket, loc)
		precip := rep.Precipitation()
		out = append(out, DayEntry{
			Date:          day,
			Temperature:   rep.Temperature,
			Description:   rep.Description,
			Pressure:      rep.Pressure,
			Humidity:      rep.Humidity,
			WindSpeed:     rep.WindSpeed,
			WindDirection: CardinalDirection(rep.WindDegrees),
			Precipitation: &precip,
			CloudCover:    rep.CloudCover,
		})
	}
	return out
}

func representative(bucket []ForecastSample, loc *time.Location) ForecastSample {
	for _, s := range bucket {
		if h := s.Timestamp.In(loc).Hour(); h >= middayFromHour && h <= middayToHour {
			return s
		}
	}
	return bucket[0]
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

package util

import (
	"math"
	"time"
)

// MinutesSinceMidnight is the time of day of t in minutes, seconds included.
func MinutesSinceMidnight(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
}

// ServiceDate truncates t to midnight in its own location.
func ServiceDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMinutesToDate places a time of day given in minutes on date, rounded to
// the second.
func AddMinutesToDate(date time.Time, minutes float64) time.Time {
	seconds := int(math.Round(minutes * 60))
	midnight := ServiceDate(date)

	return midnight.Add(time.Duration(seconds) * time.Second)
}

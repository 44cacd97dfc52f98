// Package schedule maps calendar events onto the studio's hour-slot grid.
package schedule

import (
	"time"

	"github.com/rs/zerolog"
)

// Project returns the instant t as seen in the given IANA zone. An invalid
// zone identifier logs a warning and returns t unchanged: a timezone glitch
// must never block an availability query.
func Project(t time.Time, zone string, logger *zerolog.Logger) time.Time {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.Warn().Err(err).Str("zone", zone).Msg("invalid studio timezone, using original instant")
		return t
	}
	return t.In(loc)
}

// DayWindow returns the [00:00:00, 23:59:59] window of a YYYY-MM-DD date in
// local wall-clock time of the studio zone. The absolute instants are what
// the provider query wants.
func DayWindow(date, zone string) (start, end time.Time, err error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = start.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end, nil
}

package schedule

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
)

// BusyHours computes the set of busy hour slots for one day of calendar
// events. It is a pure function of its input: the same event list always
// yields the same output.
//
// A timed event occupies every hour h with startHour <= h < endHour, where
// endHour is bumped by one when the local end time has a nonzero minute —
// partial-hour occupancy still blocks the full hour. An all-day event marks
// all 24 hours. Cancelled events are excluded; events with neither a timed
// nor an all-day start are logged and skipped.
func BusyHours(events []*calendar.Event, zone string, logger *zerolog.Logger) []int {
	busy := make(map[int]bool)

	for _, ev := range events {
		if ev == nil || ev.Status == "cancelled" {
			continue
		}

		switch {
		case ev.Start != nil && ev.Start.DateTime != "":
			start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
			if err != nil {
				logger.Warn().Err(err).Str("event_id", ev.Id).Msg("unparseable event start, skipping")
				continue
			}
			if ev.End == nil || ev.End.DateTime == "" {
				logger.Warn().Str("event_id", ev.Id).Msg("timed event without end, skipping")
				continue
			}
			end, err := time.Parse(time.RFC3339, ev.End.DateTime)
			if err != nil {
				logger.Warn().Err(err).Str("event_id", ev.Id).Msg("unparseable event end, skipping")
				continue
			}

			localStart := Project(start, zone, logger)
			localEnd := Project(end, zone, logger)

			startHour := localStart.Hour()
			endHour := localEnd.Hour()
			if localEnd.Minute() != 0 {
				endHour++
			}
			for h := startHour; h < endHour; h++ {
				if h >= 0 && h <= 23 {
					busy[h] = true
				}
			}

		case ev.Start != nil && ev.Start.Date != "":
			for h := 0; h < 24; h++ {
				busy[h] = true
			}

		default:
			logger.Warn().Str("event_id", ev.Id).Msg("event with unknown time format, skipping")
		}
	}

	hours := make([]int, 0, len(busy))
	for h := range busy {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

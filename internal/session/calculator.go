// Package session implements the market session window calculator: pure
// open/closed state, time-to-transition, and window progress for a market
// at a reference instant.
//
// All window math runs on minutes-of-day. The market's local open and
// close are shifted into UTC minutes using the zone's offset at the
// reference instant, so daylight-saving changes are picked up on the next
// computation. Whether a day trades at all is judged by the weekday in the
// market's local calendar, never the UTC calendar.
package session

import (
	"math"
	"time"

	"marketclock/internal/domain"
)

const (
	minutesPerDay = 1440

	// maxSearchDays bounds the next-open scan. Two weekend days is the
	// longest possible gap, so seven is generous.
	maxSearchDays = 7
)

// Calculator computes session status for markets. It holds no mutable
// state beyond the injected resolver and is safe for concurrent use.
type Calculator struct {
	resolver Resolver
}

// New creates a Calculator. A nil resolver defaults to the host timezone
// database.
func New(resolver Resolver) *Calculator {
	if resolver == nil {
		resolver = NewZoneResolver()
	}
	return &Calculator{resolver: resolver}
}

// Compute returns the session status of m at the reference instant. It is
// deterministic for a given (market, instant) pair and never fails: if the
// market's timezone cannot be resolved, a static offset table for the
// supported markets takes over.
func (c *Calculator) Compute(m domain.Market, at time.Time) domain.Status {
	utc := at.UTC()
	local := c.localWallClock(m.Timezone, at)

	// The market table is validated at startup, so parse errors cannot
	// occur here.
	openLocal, _ := domain.ParseClock(m.LocalOpen)
	closeLocal, _ := domain.ParseClock(m.LocalClose)

	offset := offsetMinutes(local, utc)
	openUTC := wrapMinutes(openLocal - offset)
	closeUTC := wrapMinutes(closeLocal - offset)
	nowUTC := utc.Hour()*60 + utc.Minute()

	open := false
	if isTradingDay(local.Weekday) {
		if openUTC <= closeUTC {
			open = nowUTC >= openUTC && nowUTC < closeUTC
		} else {
			// Session wraps past UTC midnight.
			open = nowUTC >= openUTC || nowUTC < closeUTC
		}
	}

	if open {
		remaining := closeUTC - nowUTC
		if remaining < 0 {
			// Close is on the far side of UTC midnight.
			remaining += minutesPerDay
		}
		total := closeUTC - openUTC
		if openUTC > closeUTC {
			total += minutesPerDay
		}
		return status(false, remaining, total)
	}

	remaining := c.minutesToNextOpen(m.Timezone, at, nowUTC, openUTC)
	return status(true, remaining, minutesPerDay)
}

// minutesToNextOpen scans forward one local calendar day at a time for the
// next weekday whose open has not yet passed, accumulating a full day of
// minutes per skipped day. The scan is bounded so it always terminates.
func (c *Calculator) minutesToNextOpen(zone string, at time.Time, nowUTC, openUTC int) int {
	days := 0
	cur := nowUTC
	for i := 0; i <= maxSearchDays; i++ {
		wd := c.localWallClock(zone, at.Add(time.Duration(days)*24*time.Hour)).Weekday
		if isTradingDay(wd) {
			if days == 0 {
				if cur < openUTC {
					break
				}
				// Today's open already passed; roll to tomorrow.
				days++
				cur = -1
				continue
			}
			break
		}
		days++
		cur = -1
	}

	if days == 0 {
		return openUTC - nowUTC
	}
	return days*minutesPerDay - nowUTC + openUTC
}

// localWallClock resolves the market-local calendar fields of at, falling
// back to the static offset table when the resolver fails.
func (c *Calculator) localWallClock(zone string, at time.Time) WallClock {
	wc, err := c.resolver.Locate(at, zone)
	if err == nil {
		return wc
	}
	off := fallbackOffsetHours(zone, at)
	return wallClockIn(at.UTC().Add(time.Duration(off)*time.Hour), time.UTC)
}

// offsetMinutes is the difference between the local and UTC wall clocks at
// the same instant: the zone's UTC offset in minutes.
func offsetMinutes(local WallClock, utc time.Time) int {
	l := time.Date(local.Year, local.Month, local.Day, local.Hour, local.Minute, local.Second, 0, time.UTC)
	u := time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), utc.Minute(), utc.Second(), 0, time.UTC)
	return int(math.Round(l.Sub(u).Minutes()))
}

func wrapMinutes(m int) int {
	return ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
}

func isTradingDay(wd time.Weekday) bool {
	return wd >= time.Monday && wd <= time.Friday
}

func status(opening bool, remainingMin, totalMin int) domain.Status {
	if remainingMin < 0 {
		remainingMin = 0
	}
	progress := 0.0
	if totalMin > 0 {
		progress = 100 - float64(remainingMin)/float64(totalMin)*100
		progress = math.Max(0, math.Min(100, progress))
	}
	return domain.Status{
		Open:         !opening,
		EventOpening: opening,
		Remaining:    time.Duration(remainingMin) * time.Minute,
		Progress:     progress,
	}
}

// Package countdown turns a duration into the labeled display parts of the
// market clock countdown.
package countdown

import (
	"fmt"
	"time"
)

// Unit identifies a countdown component.
type Unit string

// Countdown units, in display order.
const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
	UnitSeconds Unit = "seconds"
)

// LabelFunc resolves the display label for a unit given its numeric count.
// The caller supplies localisation and pluralisation; the formatter treats
// it as an opaque pure function.
type LabelFunc func(unit Unit, count int) string

// Part is one value/label component of a formatted countdown.
type Part struct {
	Value string // zero-padded two-digit count
	Unit  string // resolved label
}

// Format decomposes d into days, hours, minutes, and seconds parts,
// truncating rather than rounding. The days part appears only when at
// least one full day remains; the seconds part is suppressed once the
// countdown exceeds a full day, to avoid flicker on multi-day waits.
// Order is always days, hours, minutes, seconds. Negative durations
// format as zero.
func Format(d time.Duration, lookup LabelFunc) []Part {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	parts := make([]Part, 0, 4)
	if days > 0 {
		parts = append(parts, Part{pad(days), lookup(UnitDays, days)})
	}
	parts = append(parts, Part{pad(hours), lookup(UnitHours, hours)})
	parts = append(parts, Part{pad(minutes), lookup(UnitMinutes, minutes)})
	if days == 0 {
		parts = append(parts, Part{pad(seconds), lookup(UnitSeconds, seconds)})
	}
	return parts
}

func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}

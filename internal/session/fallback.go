package session

import "time"

// fallbackOffsetHours returns a whole-hour UTC offset for the supported
// markets when timezone resolution is unavailable. Standard versus daylight
// time is guessed from the month by hemisphere, so results within a few
// days of a DST transition can be off by one hour. That is an accepted
// accuracy limitation of the degraded path, not an error.
func fallbackOffsetHours(zone string, at time.Time) int {
	month := at.UTC().Month()
	northDST := month >= time.April && month <= time.October
	southDST := month >= time.October || month <= time.March

	switch zone {
	case "Europe/London":
		if northDST {
			return 1
		}
		return 0
	case "America/New_York":
		if northDST {
			return -4
		}
		return -5
	case "Asia/Tokyo":
		return 9
	case "Australia/Sydney":
		if southDST {
			return 11
		}
		return 10
	}
	return 0
}

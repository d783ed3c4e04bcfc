package schedule

import (
	"time"
)

// Kind identifies a quick-schedule preset derived from the current weekday.
type Kind string

const (
	Tomorrow9AM   Kind = "tomorrow_9am"
	NextMonday9AM Kind = "next_monday_9am"
	Monday9AM     Kind = "monday_9am"
	RecentCustom  Kind = "recently_used_custom"
)

const quickOptionHour = 9

// Option is one entry of the quick-schedule menu. At is an absolute instant;
// Label is display text rendered in the user's zone.
type Option struct {
	Kind  Kind
	At    time.Time
	Label string
}

// Millis returns the option instant as Unix milliseconds, the unit the wire
// format and the preference store use.
func (o Option) Millis() int64 {
	return o.At.UnixMilli()
}

// ResolveQuickOptions computes the ordered quick-schedule choices for now in
// the user's zone. Every returned option is strictly in the future:
//
//	Sunday           -> tomorrow 9am
//	Monday           -> tomorrow 9am, next Monday 9am
//	Tuesday-Thursday -> tomorrow 9am, Monday 9am
//	Friday, Saturday -> Monday 9am
func ResolveQuickOptions(now time.Time, loc *time.Location) []Option {
	local := now.In(loc)

	tomorrow := Option{Kind: Tomorrow9AM, At: at9am(local.AddDate(0, 0, 1), loc)}
	tomorrow.Label = "Tomorrow at " + tomorrow.At.In(loc).Format("3:04 PM")

	monday := Option{Kind: Monday9AM, At: at9am(local.AddDate(0, 0, daysUntilNextMonday(local)), loc)}
	monday.Label = "Monday at " + monday.At.In(loc).Format("3:04 PM")

	switch local.Weekday() {
	case time.Sunday:
		return []Option{tomorrow}
	case time.Monday:
		monday.Kind = NextMonday9AM
		monday.Label = "Next " + monday.Label
		return []Option{tomorrow, monday}
	case time.Friday, time.Saturday:
		return []Option{monday}
	default:
		return []Option{tomorrow, monday}
	}
}

// daysUntilNextMonday never returns 0: on a Monday the upcoming Monday is a
// week out, even before 9am.
func daysUntilNextMonday(local time.Time) int {
	offset := (int(time.Monday) - int(local.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return offset
}

func at9am(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), quickOptionHour, 0, 0, 0, loc)
}

// FormatTeammateLocalTime renders an absolute instant as the teammate's
// wall-clock time, shown alongside direct-message quick options.
func FormatTeammateLocalTime(instantMillis int64, teammateTimezone string) (string, error) {
	loc, err := time.LoadLocation(teammateTimezone)
	if err != nil {
		return "", err
	}
	return time.UnixMilli(instantMillis).In(loc).Format("3:04 PM"), nil
}

// UserLocation resolves a stored IANA zone name, falling back to UTC when the
// name is absent or no longer resolvable. Stale zone preferences must not
// break menu resolution.
func UserLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

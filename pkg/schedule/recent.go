package schedule

import (
	"time"

	"github.com/tidwall/gjson"
)

// RecentWindow is how long a previously used custom time keeps being offered.
const RecentWindow = 30 * 24 * time.Hour

// RecentRecord is the preference-store payload written when a user schedules
// a message for a custom, non-preset time. Both fields are Unix milliseconds.
type RecentRecord struct {
	UpdateAt  int64 `json:"update_at"`
	Timestamp int64 `json:"timestamp"`
}

// ParseRecentRecord reads a stored recent-custom record. Records written by
// older clients may be missing, truncated or carry non-numeric fields; any
// such record is treated as absent rather than an error.
func ParseRecentRecord(raw string) (RecentRecord, bool) {
	if raw == "" || !gjson.Valid(raw) {
		return RecentRecord{}, false
	}
	updateAt := gjson.Get(raw, "update_at")
	timestamp := gjson.Get(raw, "timestamp")
	if updateAt.Type != gjson.Number || timestamp.Type != gjson.Number {
		return RecentRecord{}, false
	}
	return RecentRecord{UpdateAt: updateAt.Int(), Timestamp: timestamp.Int()}, true
}

// MaybeAppendRecentCustom appends a trailing recently-used entry to options
// when the stored record is usable: parseable, strictly in the future, used
// within the last RecentWindow (both bounds inclusive) and not a duplicate of
// a fixed option already in the menu.
func MaybeAppendRecentCustom(options []Option, now time.Time, raw string, loc *time.Location) []Option {
	rec, ok := ParseRecentRecord(raw)
	if !ok {
		return options
	}

	nowMillis := now.UnixMilli()
	if rec.Timestamp <= nowMillis {
		return options
	}
	if rec.UpdateAt < now.Add(-RecentWindow).UnixMilli() || rec.UpdateAt > nowMillis {
		return options
	}
	for _, opt := range options {
		if opt.Millis() == rec.Timestamp {
			return options
		}
	}

	target := time.UnixMilli(rec.Timestamp).In(loc)
	return append(options, Option{
		Kind:  RecentCustom,
		At:    target,
		Label: recentLabel(now.In(loc), target),
	})
}

// recentLabel renders the weekday name when the target falls in the same ISO
// week as now, and the month plus day otherwise.
func recentLabel(local, target time.Time) string {
	nowYear, nowWeek := local.ISOWeek()
	targetYear, targetWeek := target.ISOWeek()

	var day string
	if nowYear == targetYear && nowWeek == targetWeek {
		day = target.Format("Monday")
	} else {
		day = target.Format("January 2")
	}
	return day + " at " + target.Format("3:04 PM")
}

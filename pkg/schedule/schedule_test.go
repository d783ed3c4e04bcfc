package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nyc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestResolveQuickOptions(t *testing.T) {
	loc := nyc(t)

	tests := []struct {
		name string
		now  time.Time
		want []Option
	}{
		{
			name: "wednesday morning",
			now:  time.Date(2026, 8, 26, 10, 0, 0, 0, loc),
			want: []Option{
				{Kind: Tomorrow9AM, At: time.Date(2026, 8, 27, 9, 0, 0, 0, loc)},
				{Kind: Monday9AM, At: time.Date(2026, 8, 31, 9, 0, 0, 0, loc)},
			},
		},
		{
			name: "sunday late night only offers tomorrow",
			now:  time.Date(2026, 8, 30, 23, 0, 0, 0, loc),
			want: []Option{
				{Kind: Tomorrow9AM, At: time.Date(2026, 8, 31, 9, 0, 0, 0, loc)},
			},
		},
		{
			name: "monday before 9am still points at following monday",
			now:  time.Date(2026, 8, 31, 8, 0, 0, 0, loc),
			want: []Option{
				{Kind: Tomorrow9AM, At: time.Date(2026, 9, 1, 9, 0, 0, 0, loc)},
				{Kind: NextMonday9AM, At: time.Date(2026, 9, 7, 9, 0, 0, 0, loc)},
			},
		},
		{
			name: "friday skips tomorrow",
			now:  time.Date(2026, 8, 28, 16, 30, 0, 0, loc),
			want: []Option{
				{Kind: Monday9AM, At: time.Date(2026, 8, 31, 9, 0, 0, 0, loc)},
			},
		},
		{
			name: "saturday skips tomorrow",
			now:  time.Date(2026, 8, 29, 12, 0, 0, 0, loc),
			want: []Option{
				{Kind: Monday9AM, At: time.Date(2026, 8, 31, 9, 0, 0, 0, loc)},
			},
		},
		{
			name: "tuesday",
			now:  time.Date(2026, 8, 25, 14, 0, 0, 0, loc),
			want: []Option{
				{Kind: Tomorrow9AM, At: time.Date(2026, 8, 26, 9, 0, 0, 0, loc)},
				{Kind: Monday9AM, At: time.Date(2026, 8, 31, 9, 0, 0, 0, loc)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveQuickOptions(tt.now, loc)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Kind, got[i].Kind)
				assert.True(t, got[i].At.Equal(tt.want[i].At),
					"option %d: got %v want %v", i, got[i].At, tt.want[i].At)
				assert.True(t, got[i].At.After(tt.now), "option %d not in the future", i)
			}
		})
	}
}

func TestResolveQuickOptionsLabels(t *testing.T) {
	loc := nyc(t)

	got := ResolveQuickOptions(time.Date(2026, 8, 31, 8, 0, 0, 0, loc), loc)
	require.Len(t, got, 2)
	assert.Equal(t, "Tomorrow at 9:00 AM", got[0].Label)
	assert.Equal(t, "Next Monday at 9:00 AM", got[1].Label)
}

func TestParseRecentRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "valid", raw: `{"update_at":1700000000000,"timestamp":1700500000000}`, ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "invalid json", raw: `{"update_at":`, ok: false},
		{name: "missing timestamp", raw: `{"update_at":1700000000000}`, ok: false},
		{name: "missing update_at", raw: `{"timestamp":1700500000000}`, ok: false},
		{name: "non numeric fields", raw: `{"update_at":"soon","timestamp":"later"}`, ok: false},
		{name: "wrong shape", raw: `[1700000000000]`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseRecentRecord(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, int64(1700000000000), rec.UpdateAt)
				assert.Equal(t, int64(1700500000000), rec.Timestamp)
			}
		})
	}
}

func recentJSON(updateAt, timestamp time.Time) string {
	return fmt.Sprintf(`{"update_at":%d,"timestamp":%d}`, updateAt.UnixMilli(), timestamp.UnixMilli())
}

func TestMaybeAppendRecentCustom(t *testing.T) {
	loc := nyc(t)
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, loc)
	fixed := ResolveQuickOptions(now, loc)

	t.Run("appended when valid and recent", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.AddDate(0, 0, -5), target), loc)
		require.Len(t, got, len(fixed)+1)
		last := got[len(got)-1]
		assert.Equal(t, RecentCustom, last.Kind)
		assert.Equal(t, target.UnixMilli(), last.Millis())
	})

	t.Run("malformed record degrades to absent", func(t *testing.T) {
		got := MaybeAppendRecentCustom(fixed, now, `{"update_at":"bogus"}`, loc)
		assert.Len(t, got, len(fixed))
	})

	t.Run("past timestamp excluded", func(t *testing.T) {
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.AddDate(0, 0, -1), now.Add(-time.Hour)), loc)
		assert.Len(t, got, len(fixed))
	})

	t.Run("duplicate of fixed option excluded", func(t *testing.T) {
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.AddDate(0, 0, -1), fixed[0].At), loc)
		assert.Len(t, got, len(fixed))
	})

	t.Run("used 29 days ago included", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.Add(-29*24*time.Hour), target), loc)
		assert.Len(t, got, len(fixed)+1)
	})

	t.Run("used exactly 30 days ago included", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.Add(-RecentWindow), target), loc)
		assert.Len(t, got, len(fixed)+1)
	})

	t.Run("used 31 days ago excluded", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.Add(-31*24*time.Hour), target), loc)
		assert.Len(t, got, len(fixed))
	})

	t.Run("update_at in the future excluded", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.Add(time.Hour), target), loc)
		assert.Len(t, got, len(fixed))
	})
}

func TestRecentLabel(t *testing.T) {
	loc := nyc(t)
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, loc)
	fixed := ResolveQuickOptions(now, loc)

	t.Run("same iso week renders weekday", func(t *testing.T) {
		target := time.Date(2026, 8, 28, 21, 30, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.AddDate(0, 0, -1), target), loc)
		require.Len(t, got, len(fixed)+1)
		assert.Equal(t, "Friday at 9:30 PM", got[len(got)-1].Label)
	})

	t.Run("different week renders month and day", func(t *testing.T) {
		target := time.Date(2026, 9, 10, 8, 15, 0, 0, loc)
		got := MaybeAppendRecentCustom(fixed, now, recentJSON(now.AddDate(0, 0, -1), target), loc)
		require.Len(t, got, len(fixed)+1)
		assert.Equal(t, "September 10 at 8:15 AM", got[len(got)-1].Label)
	})
}

func TestFormatTeammateLocalTime(t *testing.T) {
	loc := nyc(t)
	instant := time.Date(2026, 8, 27, 9, 0, 0, 0, loc)

	got, err := FormatTeammateLocalTime(instant.UnixMilli(), "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "3:00 PM", got)

	_, err = FormatTeammateLocalTime(instant.UnixMilli(), "Not/AZone")
	assert.Error(t, err)
}

func TestUserLocation(t *testing.T) {
	assert.Equal(t, time.UTC, UserLocation(""))
	assert.Equal(t, time.UTC, UserLocation("Not/AZone"))
	assert.Equal(t, "America/New_York", UserLocation("America/New_York").String())
}

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func clockTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", "2024-03-15 "+value)
	require.NoError(t, err)
	return parsed
}

func TestInQuietHoursMidnightWrap(t *testing.T) {
	prefs := &Preferences{
		QuietHoursStart: strPtr("22:00"),
		QuietHoursEnd:   strPtr("06:00"),
	}

	cases := []struct {
		now  string
		want bool
	}{
		{"23:00", true},
		{"02:30", true},
		{"05:59", true},
		{"06:00", true},
		{"06:01", false},
		{"07:00", false},
		{"21:59", false},
		{"22:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.now, func(t *testing.T) {
			require.Equal(t, tc.want, InQuietHours(prefs, clockTime(t, tc.now)))
		})
	}
}

func TestInQuietHoursSameDayWindow(t *testing.T) {
	prefs := &Preferences{
		QuietHoursStart: strPtr("09:00"),
		QuietHoursEnd:   strPtr("17:00"),
	}

	require.True(t, InQuietHours(prefs, clockTime(t, "09:00")))
	require.True(t, InQuietHours(prefs, clockTime(t, "12:00")))
	require.True(t, InQuietHours(prefs, clockTime(t, "17:00")))
	require.False(t, InQuietHours(prefs, clockTime(t, "08:59")))
	require.False(t, InQuietHours(prefs, clockTime(t, "17:01")))
}

func TestInQuietHoursUnsetBounds(t *testing.T) {
	require.False(t, InQuietHours(nil, clockTime(t, "23:00")))
	require.False(t, InQuietHours(&Preferences{}, clockTime(t, "23:00")))
	require.False(t, InQuietHours(&Preferences{QuietHoursStart: strPtr("22:00")}, clockTime(t, "23:00")))
	require.False(t, InQuietHours(&Preferences{QuietHoursEnd: strPtr("06:00")}, clockTime(t, "23:00")))
}

func TestInQuietHoursInvalidClockValues(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"garbage", "bananas", "06:00"},
		{"hour out of range", "25:00", "06:00"},
		{"minute out of range", "22:61", "06:00"},
		{"missing minutes", "22", "06:00"},
		{"bad end", "22:00", "6pm"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := &Preferences{
				QuietHoursStart: strPtr(tc.start),
				QuietHoursEnd:   strPtr(tc.end),
			}
			require.False(t, InQuietHours(prefs, clockTime(t, "23:00")))
		})
	}
}

func TestInQuietHoursAppliesTimezone(t *testing.T) {
	prefs := &Preferences{
		QuietHoursStart: strPtr("22:00"),
		QuietHoursEnd:   strPtr("06:00"),
		Timezone:        "America/New_York",
	}

	// 03:00 UTC in March is 23:00 the previous day in New York.
	now := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	require.True(t, InQuietHours(prefs, now))

	// 15:00 UTC is 11:00 in New York, outside the window.
	require.False(t, InQuietHours(prefs, time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)))
}

func TestParseClock(t *testing.T) {
	minutes, err := parseClock("22:30")
	require.NoError(t, err)
	require.Equal(t, 22*60+30, minutes)

	minutes, err = parseClock(" 00:00 ")
	require.NoError(t, err)
	require.Zero(t, minutes)

	_, err = parseClock("24:00")
	require.Error(t, err)
}

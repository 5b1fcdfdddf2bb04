package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMondayOf(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2026, time.October, 19), date(2026, time.October, 19)},
		{date(2026, time.October, 21), date(2026, time.October, 19)},
		{date(2026, time.October, 25), date(2026, time.October, 19)},
		{time.Date(2026, time.November, 1, 23, 59, 0, 0, time.UTC), date(2026, time.October, 26)},
		{date(2027, time.January, 1), date(2026, time.December, 28)},
	}
	for _, tc := range cases {
		got := MondayOf(tc.in)
		assert.Equal(t, tc.want, got, tc.in.String())
		assert.Equal(t, time.Monday, got.Weekday())
	}
}

func TestMondayOfIsIdempotent(t *testing.T) {
	start := date(2026, time.January, 1)
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i).Add(time.Duration(i%24) * time.Hour)
		once := MondayOf(d)
		assert.Equal(t, once, MondayOf(once))
	}
}

func TestDateForDayOffset(t *testing.T) {
	monday := date(2026, time.October, 19)
	got, err := DateForDayOffset(monday, 6)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.October, 25), got)

	_, err = DateForDayOffset(monday, 7)
	assert.Error(t, err)
	_, err = DateForDayOffset(monday, -1)
	assert.Error(t, err)
}

func TestMinutesOfDayAndClockOf(t *testing.T) {
	m, err := MinutesOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = MinutesOfDay("9:05")
	require.NoError(t, err)
	assert.Equal(t, 545, m)

	for _, bad := range []string{"24:00", "12:60", "1230", "", "ab:cd"} {
		_, err := MinutesOfDay(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "00:00", ClockOf(0))
	assert.Equal(t, "23:59", ClockOf(MinutesPerDay-1))
	assert.Equal(t, "00:30", ClockOf(MinutesPerDay+30))
	assert.Equal(t, "23:00", ClockOf(-60))

	for minutes := 0; minutes < MinutesPerDay; minutes += 7 {
		back, err := MinutesOfDay(ClockOf(minutes))
		require.NoError(t, err)
		assert.Equal(t, minutes, back)
	}
}

func TestSnap(t *testing.T) {
	assert.Equal(t, 30, Snap(37, 15))
	assert.Equal(t, 45, Snap(38, 15))
	assert.Equal(t, 30, Snap(37, 30))
	assert.Equal(t, -30, Snap(-37, 15))
	assert.Equal(t, 0, Snap(7, 15))

	for _, step := range []int{15, 30} {
		for m := -200; m <= 200; m++ {
			s := Snap(m, step)
			assert.Zero(t, s%step)
			diff := s - m
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff*2, step)
		}
	}
}

func TestParseDateAndInWeek(t *testing.T) {
	d, err := ParseDate("2026-10-21")
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.October, 21), d)

	d, err = ParseDate("2026-10-21T22:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.October, 21), d)

	_, err = ParseDate("21/10/2026")
	assert.Error(t, err)

	monday := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.Local)
	assert.True(t, InWeek(date(2026, time.October, 19), monday))
	assert.True(t, InWeek(date(2026, time.October, 25), monday))
	assert.False(t, InWeek(date(2026, time.October, 26), monday))
	assert.False(t, InWeek(date(2026, time.October, 18), monday))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowBoundariesAreUTCMidnight(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 42, 9, 0, time.FixedZone("BRT", -3*3600))

	day := StartOfDayUTC(now)
	week := StartOfTrailingWeekUTC(now)
	month := StartOfMonthUTC(now)

	for _, boundary := range []time.Time{day, week, month} {
		assert.Equal(t, time.UTC, boundary.Location())
		assert.Equal(t, 0, boundary.Hour())
		assert.Equal(t, 0, boundary.Minute())
		assert.Equal(t, 0, boundary.Second())
	}

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), week)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), month)
}

func TestWindowsWidenMonotonically(t *testing.T) {
	// For usage confined to the current month the month window contains the
	// week window, which contains the day window, so counts never decrease
	// as the window widens.
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	day := StartOfDayUTC(now)
	week := StartOfTrailingWeekUTC(now)
	month := StartOfMonthUTC(now)

	assert.False(t, week.After(day))
	assert.False(t, month.After(week))

	usages := []time.Time{
		now.Add(-time.Hour),            // today
		now.AddDate(0, 0, -3),          // this week
		now.AddDate(0, 0, -15),         // this month only
		month.Add(30 * time.Minute),    // first day of month
		day.Add(time.Minute),           // just past midnight today
	}

	var today, weekCount, monthCount int
	for _, usage := range usages {
		if !usage.Before(day) {
			today++
		}
		if !usage.Before(week) {
			weekCount++
		}
		if !usage.Before(month) {
			monthCount++
		}
	}

	assert.LessOrEqual(t, today, weekCount)
	assert.LessOrEqual(t, weekCount, monthCount)
	assert.Equal(t, 2, today)
	assert.Equal(t, 3, weekCount)
	assert.Equal(t, 5, monthCount)
}

func TestStartOfTrailingWeekUTC_CrossesMonthStart(t *testing.T) {
	now := time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC)

	week := StartOfTrailingWeekUTC(now)
	month := StartOfMonthUTC(now)

	// Early in the month the trailing week reaches back into June; the
	// month window starts later than the week window.
	assert.Equal(t, time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), week)
	assert.True(t, month.After(week))
}

package holiday_test

import (
	"testing"
	"time"

	"Parking/internal/domain/holiday"

	"github.com/stretchr/testify/assert"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

func TestCalendarMatches(t *testing.T) {
	t.Parallel()

	rows := []*holiday.Holiday{
		{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, tehran), Name: "Republic Day", Type: holiday.TypeOfficial, IsActive: true},
		{Date: time.Date(2019, 3, 21, 0, 0, 0, 0, tehran), Name: "Nowruz", Type: holiday.TypeOfficial, IsRecurring: true, IsActive: true},
		{Date: time.Date(2026, 6, 4, 0, 0, 0, 0, tehran), Name: "disabled", Type: holiday.TypeCustom, IsActive: false},
	}
	cal := holiday.NewCalendar(rows, tehran)

	tests := []struct {
		name        string
		at          time.Time
		wantHoliday bool
		wantWeekend bool
	}{
		{name: "exact date", at: time.Date(2026, 4, 1, 12, 0, 0, 0, tehran), wantHoliday: true},
		{name: "exact date other year", at: time.Date(2027, 4, 1, 12, 0, 0, 0, tehran)},
		{name: "recurring date", at: time.Date(2030, 3, 21, 8, 0, 0, 0, tehran), wantHoliday: true},
		{name: "inactive row ignored", at: time.Date(2026, 6, 4, 8, 0, 0, 0, tehran)},
		{name: "friday", at: time.Date(2026, 10, 16, 8, 0, 0, 0, tehran), wantHoliday: true, wantWeekend: true},
		{name: "wednesday", at: time.Date(2026, 10, 14, 8, 0, 0, 0, tehran)},
		// 21:00 UTC Thursday is already Friday in Tehran
		{name: "zone shifts the date", at: time.Date(2026, 10, 15, 21, 0, 0, 0, time.UTC), wantHoliday: true, wantWeekend: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantHoliday, cal.IsHoliday(tt.at))
			assert.Equal(t, tt.wantWeekend, cal.IsWeekend(tt.at))
		})
	}
}

func TestCalendarDescribe(t *testing.T) {
	t.Parallel()

	cal := holiday.NewCalendar([]*holiday.Holiday{
		{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, tehran), Name: "Republic Day", Type: holiday.TypeOfficial, IsActive: true},
	}, tehran)

	info := cal.Describe(time.Date(2026, 4, 1, 9, 0, 0, 0, tehran))
	assert.Equal(t, "2026-04-01", info.Date)
	assert.True(t, info.IsHoliday)
	if assert.NotNil(t, info.Holiday) {
		assert.Equal(t, "Republic Day", info.Holiday.Name)
	}
}

func TestNilCalendarOnlyKnowsFridays(t *testing.T) {
	t.Parallel()

	var cal *holiday.Calendar
	assert.True(t, cal.IsHoliday(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsHoliday(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)))
}

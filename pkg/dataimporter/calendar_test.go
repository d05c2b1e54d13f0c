package dataimporter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/dataimporter"
)

func TestServiceCalendar_Runs(t *testing.T) {
	weekdays := dataimporter.Calendar{
		ServiceID: "WEEKDAY",
		Monday:    1, Tuesday: 1, Wednesday: 1, Thursday: 1, Friday: 1,
		Start: "20240101",
		End:   "20241231",
	}
	calendar := dataimporter.NewServiceCalendar(
		[]dataimporter.Calendar{weekdays},
		[]dataimporter.CalendarDate{
			{ServiceID: "WEEKDAY", Date: "20240506", ExceptionType: dataimporter.ExceptionRemoved},
			{ServiceID: "WEEKDAY", Date: "20240511", ExceptionType: dataimporter.ExceptionAdded},
			{ServiceID: "SPECIAL", Date: "20240512", ExceptionType: dataimporter.ExceptionAdded},
		},
	)

	tests := []struct {
		name    string
		service string
		date    time.Time
		runs    bool
	}{
		{"regular weekday", "WEEKDAY", time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), true},
		{"weekend", "WEEKDAY", time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), false},
		{"removed date", "WEEKDAY", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), false},
		{"added date", "WEEKDAY", time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), true},
		{"outside range", "WEEKDAY", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), false},
		{"last day of range", "WEEKDAY", time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC), true},
		{"only exceptions", "SPECIAL", time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), true},
		{"unknown service", "NIGHT", time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), false},
		{"no service", "", time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := calendar.Runs(tt.service, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.runs, runs)
		})
	}
}

func TestServiceCalendar_BadDates(t *testing.T) {
	calendar := dataimporter.NewServiceCalendar([]dataimporter.Calendar{
		{ServiceID: "A", Monday: 1, Start: "2024-01-01", End: "20241231"},
	}, nil)

	_, err := calendar.Runs("A", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		value   string
		minutes float64
		err     bool
	}{
		{"08:00", 480, false},
		{"08:00:30", 480.5, false},
		{" 00:00:00", 0, false},
		{"25:10:00", 1510, false},
		{"8", 0, true},
		{"08:60", 0, true},
		{"08:00:61", 0, true},
		{"aa:00", 0, true},
		{"-1:00", 0, true},
		{"08:00:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			minutes, err := dataimporter.ParseClock(tt.value)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.minutes, minutes, 1e-9)
		})
	}
}

func TestIDList(t *testing.T) {
	var list dataimporter.IDList
	require.NoError(t, list.UnmarshalCSV(" 12  -4 7 "))
	assert.Equal(t, dataimporter.IDList{12, -4, 7}, list)

	value, err := list.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "12 -4 7", value)

	require.NoError(t, list.UnmarshalCSV(""))
	assert.Empty(t, list)

	assert.Error(t, list.UnmarshalCSV("1 x"))
}

package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/journeyplanner/pkg/util"
)

func TestMinutesSinceMidnight(t *testing.T) {
	assert.Equal(t, 0.0, util.MinutesSinceMidnight(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 485.5, util.MinutesSinceMidnight(time.Date(2024, 5, 7, 8, 5, 30, 0, time.UTC)))
}

func TestServiceDate(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("no timezone database")
	}

	date := util.ServiceDate(time.Date(2024, 5, 7, 23, 30, 0, 0, london))
	assert.Equal(t, time.Date(2024, 5, 7, 0, 0, 0, 0, london), date)
	assert.Equal(t, london, date.Location())
}

func TestAddMinutesToDate(t *testing.T) {
	date := time.Date(2024, 5, 7, 13, 0, 0, 0, time.UTC)

	assert.True(t, util.AddMinutesToDate(date, 485.5).Equal(time.Date(2024, 5, 7, 8, 5, 30, 0, time.UTC)))
	assert.True(t, util.AddMinutesToDate(date, 1500).Equal(time.Date(2024, 5, 8, 1, 0, 0, 0, time.UTC)), "past midnight")
	assert.True(t, util.AddMinutesToDate(date, -30).Equal(time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC)))
}

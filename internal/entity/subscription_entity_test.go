// FILE: internal/entity/subscription_entity_test.go
package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyValid(t *testing.T) {
	assert.True(t, FrequencyWeekly.Valid())
	assert.True(t, FrequencyMonthly.Valid())
	assert.True(t, FrequencyQuarterly.Valid())
	assert.True(t, FrequencyYearly.Valid())

	assert.False(t, Frequency("daily").Valid())
	assert.False(t, Frequency("").Valid())
}

func TestFrequencyAdvance(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
	}

	testCases := []struct {
		name string
		freq Frequency
		from time.Time
		want time.Time
	}{
		{"weekly", FrequencyWeekly, date(2024, time.March, 1), date(2024, time.March, 8)},
		{"weekly across month boundary", FrequencyWeekly, date(2024, time.January, 29), date(2024, time.February, 5)},
		{"monthly", FrequencyMonthly, date(2024, time.March, 15), date(2024, time.April, 15)},
		// Go normalizes Jan 31 + 1 month into March; the next charge
		// lands on Mar 2 instead of a nonexistent Feb 31.
		{"monthly from jan 31 leap year", FrequencyMonthly, date(2024, time.January, 31), date(2024, time.March, 2)},
		{"monthly from jan 31 non leap year", FrequencyMonthly, date(2023, time.January, 31), date(2023, time.March, 3)},
		{"quarterly", FrequencyQuarterly, date(2024, time.January, 10), date(2024, time.April, 10)},
		{"quarterly across year boundary", FrequencyQuarterly, date(2024, time.November, 20), date(2025, time.February, 20)},
		{"yearly", FrequencyYearly, date(2024, time.June, 1), date(2025, time.June, 1)},
		{"yearly from feb 29", FrequencyYearly, date(2024, time.February, 29), date(2025, time.March, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.freq.Advance(tc.from))
		})
	}
}

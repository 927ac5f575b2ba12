package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameDay(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)

	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same morning", time.Date(2030, 1, 1, 9, 0, 0, 0, sgt), time.Date(2030, 1, 1, 10, 0, 0, 0, sgt), true},
		{"across midnight", time.Date(2030, 1, 1, 23, 0, 0, 0, sgt), time.Date(2030, 1, 2, 0, 30, 0, 0, sgt), false},
		// 2030-01-01 20:00 UTC is already 2030-01-02 04:00 in SGT
		{"zone decides the date", time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC), time.Date(2030, 1, 2, 5, 0, 0, 0, sgt), true},
		{"less than a day apart but different dates", time.Date(2030, 1, 1, 23, 59, 0, 0, sgt), time.Date(2030, 1, 2, 0, 1, 0, 0, sgt), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameDay(tt.a, tt.b, sgt))
		})
	}
}

func TestDayBounds(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	start, end := DayBounds(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), sgt)

	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, sgt), start)
	assert.Equal(t, time.Date(2030, 1, 2, 0, 0, 0, 0, sgt), end)
}

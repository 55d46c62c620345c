package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPeriod(t *testing.T) {
	tests := []struct {
		name      string
		afternoon float64
		night     float64
		expected  PatrolPeriod
	}{
		{"afternoon dominates", 3, 1, PeriodAfternoon},
		{"night dominates", 0.5, 2, PeriodNight},
		{"equal non-zero split", 1.5, 1.5, PeriodMixed},
		{"no period hours", 0, 0, PeriodOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyPeriod(tt.afternoon, tt.night))
		})
	}
}

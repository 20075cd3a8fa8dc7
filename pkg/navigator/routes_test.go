package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepFromPath(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 1},
		{"", 1},
		{"/basic-info", 1},
		{"/driver-selection", 2},
		{"/summary", 3},
		{"/summary/", 3},
		{"/app/driver-selection", 2},
		{"/nowhere", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StepFromPath(tt.path), tt.path)
	}
}

func TestRouteRoundTrip(t *testing.T) {
	for step := 1; step <= StepCount; step++ {
		assert.Equal(t, step, StepFromPath(PathForStep(step)))
	}

	_, ok := RouteForStep(0)
	assert.False(t, ok)
	_, ok = RouteForStep(StepCount + 1)
	assert.False(t, ok)
	assert.Equal(t, "/basic-info", PathForStep(42))
}

func TestStepForLabel(t *testing.T) {
	step, ok := StepForLabel("Driver Selection")
	assert.True(t, ok)
	assert.Equal(t, 2, step)

	_, ok = StepForLabel("Payment")
	assert.False(t, ok)

	assert.Equal(t, "Summary", LabelForStep(3))
	assert.Equal(t, "", LabelForStep(4))
}

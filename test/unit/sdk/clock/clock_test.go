package clock_test

import (
	"testing"

	"agentstack/pipeline/internal/sdk/clock"

	"github.com/stretchr/testify/assert"
)

func TestDurationMs_ComputesPositiveDuration(t *testing.T) {
	// Arrange
	start := int64(1_000_000_000) // 1s in ns
	end := int64(2_500_000_000)   // 2.5s in ns

	// Act
	d := clock.DurationMs(start, end)

	// Assert
	assert.EqualValues(t, 1500, d)
}

func TestDurationMs_NegativeClampsToZero(t *testing.T) {
	// Arrange & Act
	d := clock.DurationMs(2_000_000_000, 1_000_000_000)

	// Assert
	assert.EqualValues(t, 0, d)
}

func TestMonoNanos_IsMonotonicallyNonDecreasing(t *testing.T) {
	// Arrange
	first := clock.MonoNanos()

	// Act
	second := clock.MonoNanos()

	// Assert
	assert.GreaterOrEqual(t, second, first)
}

func TestWallNanos_ReturnsPlausibleEpochValue(t *testing.T) {
	// Arrange & Act
	now := clock.WallNanos()

	// Assert: any timestamp after 2020-01-01 in unix nanoseconds.
	assert.Greater(t, now, int64(1577836800000000000))
}

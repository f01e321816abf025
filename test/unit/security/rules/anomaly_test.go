package rules_test

import (
	"testing"

	"agentstack/pipeline/internal/modules/security/rules"

	"github.com/stretchr/testify/assert"
)

func TestCheckAnomaly_WithinThresholdsReturnsNoFindings(t *testing.T) {
	// Arrange & Act
	out := rules.CheckAnomaly(1000, 500)

	// Assert
	assert.Empty(t, out)
}

func TestCheckAnomaly_LongDurationFlagged(t *testing.T) {
	// Arrange & Act
	out := rules.CheckAnomaly(rules.MaxDurationSeconds*1000+1, 0)

	// Assert
	assert.Len(t, out, 1)
	assert.Equal(t, "Long-running span", out[0].RuleName)
}

func TestCheckAnomaly_HighTokenUsageFlagged(t *testing.T) {
	// Arrange & Act
	out := rules.CheckAnomaly(0, rules.MaxTotalTokens+1)

	// Assert
	assert.Len(t, out, 1)
	assert.Equal(t, "High token usage", out[0].RuleName)
}

func TestCheckAnomaly_BothThresholdsFlagged(t *testing.T) {
	// Arrange & Act
	out := rules.CheckAnomaly(rules.MaxDurationSeconds*1000+1, rules.MaxTotalTokens+1)

	// Assert
	assert.Len(t, out, 2)
}

func TestCheckAnomaly_ExactThresholdIsNotAnAnomaly(t *testing.T) {
	// Arrange & Act
	out := rules.CheckAnomaly(rules.MaxDurationSeconds*1000, rules.MaxTotalTokens)

	// Assert
	assert.Empty(t, out, "thresholds are exceeded-only, not inclusive")
}

package guardrails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyInputEmpty(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	for _, text := range []string{"", "   ", "\n\t"} {
		result := c.Classify(text, ModeInput)
		assert.False(t, result.Accepted)
		assert.True(t, result.HasReason(ReasonEmptyContent), "text %q", text)
	}
}

func TestClassifyInputTooShort(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("hi", ModeInput)
	require.False(t, result.Accepted)
	assert.True(t, result.HasReason(ReasonTooShort))
	assert.Contains(t, result.Message, "too short")
}

func TestClassifyInputTooLongTruncates(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	long := "2 + 2 " + strings.Repeat("x + ", 400)
	result := c.Classify(long, ModeInput)
	assert.True(t, result.HasReason(ReasonTooLong))
	assert.LessOrEqual(t, len(result.Text), 1000)
}

func TestClassifyInputBlockedPattern(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("How to hack into 2 + 2 systems", ModeInput)
	require.False(t, result.Accepted)
	assert.True(t, result.HasReason(ReasonBlockedPattern))
}

func TestClassifyInputPureArithmetic(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("2 + 2", ModeInput)
	require.True(t, result.Accepted)
	assert.GreaterOrEqual(t, result.Relevance, 0.5)
}

func TestClassifyInputOffDomainVeto(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("What's the weather today?", ModeInput)
	require.False(t, result.Accepted)
	assert.True(t, result.HasReason(ReasonNonMathematical))
	assert.Contains(t, result.Message, "Solve 2x + 5 = 13")
}

func TestClassifyInputMathematical(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	tests := []struct {
		name string
		text string
	}{
		{"equation", "Solve the equation 2x + 5 = 13"},
		{"derivative", "What is the derivative of x^2?"},
		{"geometry", "Find the area of a circle with radius 5"},
		{"percent", "What is 25% of 80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.text, ModeInput)
			assert.True(t, result.Accepted)
			assert.False(t, result.HasReason(ReasonNonMathematical))
			assert.Greater(t, result.Confidence, 0.5)
		})
	}
}

func TestRelevanceScore(t *testing.T) {
	high := RelevanceScore("Calculate the derivative of x^2 + 3x using calculus")
	assert.Greater(t, high, 0.3)

	low := RelevanceScore("Hello how are you then")
	assert.Less(t, low, 0.2)
}

func TestClassifyInputNormalizesText(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("solve   2x +\t5 = 13", ModeInput)
	assert.Equal(t, "solve 2x + 5 = 13", result.Text)
}

func TestClassifyOutputEmpty(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("", ModeOutput)
	require.False(t, result.Accepted)
	assert.True(t, result.HasReason(ReasonEmptyResponse))
}

func TestClassifyOutputRefusalPenalty(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("I cannot help with this request", ModeOutput)
	assert.True(t, result.HasReason(ReasonRefusalPattern))
	assert.Less(t, result.Confidence, 1.0)
}

func TestClassifyOutputHarmfulTerminal(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("Here is a long explanation of how to exploit the system for the answer", ModeOutput)
	require.False(t, result.Accepted)
	assert.True(t, result.HasReason(ReasonHarmfulContent))
	assert.Zero(t, result.Confidence)
}

func TestClassifyOutputQualityResponse(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	answer := `To solve the equation 2x + 5 = 13:
1. Subtract 5 from both sides: 2x = 8
2. Divide by 2: x = 4
Therefore, x = 4.`

	result := c.Classify(answer, ModeOutput)
	require.True(t, result.Accepted)
	assert.False(t, result.HasReason(ReasonLowQuality))
	assert.Greater(t, result.Confidence, 0.6)
}

func TestClassifyOutputShortResponseDegrades(t *testing.T) {
	c := NewClassifier(DefaultLimits())

	result := c.Classify("No.", ModeOutput)
	assert.True(t, result.HasReason(ReasonResponseShort))
	assert.Less(t, result.Confidence, 1.0)
}

func TestQualityScore(t *testing.T) {
	high := QualityScore("The solution involves calculating the derivative using the power rule: d/dx(x^2) = 2x")
	assert.Greater(t, high, 0.4)

	low := QualityScore("I don't know")
	assert.Less(t, low, 0.3)
}

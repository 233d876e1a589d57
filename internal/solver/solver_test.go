package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveLinearEquation(t *testing.T) {
	s := New()

	answer := s.Solve("2x + 5 = 13")

	require.NotEmpty(t, answer)
	assert.Contains(t, answer, "x = 4")
	assert.Contains(t, answer, "2x = 8")
	assert.Contains(t, answer, "Verify")
}

func TestSolveLinearEquationWithVerb(t *testing.T) {
	s := New()

	answer := s.Solve("Solve 3x - 6 = 9")

	assert.Contains(t, answer, "x = 5")
}

func TestSolveEquationNonLinearFallsBack(t *testing.T) {
	s := New()

	answer := s.Solve("x^2 + 2x = 8")

	require.NotEmpty(t, answer)
	assert.Contains(t, answer, "Step 1")
}

func TestSolveArithmetic(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"2 + 2", "4"},
		{"10 - 3", "7"},
		{"6 * 7", "42"},
		{"15 / 3", "5"},
		{"7 / 2", "3.5"},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			answer := s.Solve(tt.question)
			assert.Contains(t, answer, "**Answer:** "+tt.want)
		})
	}
}

func TestSolveDivisionByZero(t *testing.T) {
	s := New()

	answer := s.Solve("5 / 0")

	assert.Contains(t, answer, "Division by zero is undefined")
	assert.NotContains(t, answer, "**Answer:**")
}

func TestDispatchOrder(t *testing.T) {
	tests := []struct {
		question string
		class    string
	}{
		{"2x + 5 = 13", "equation"},
		{"2 + 2", "arithmetic"},
		{"What is the derivative of x^2?", "derivative"},
		{"Integrate x^3 dx", "integral"},
		{"Find the area of a circle with radius 3", "geometry"},
		{"What is 20% of 50?", "percentage"},
		{"Add 12 and 30 and 7", "general_arithmetic"},
		{"Prove that the square root of 2 is irrational", "default"},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.class, s.Class(tt.question))
		})
	}
}

func TestEquationTakesPrecedenceOverArithmetic(t *testing.T) {
	s := New()

	// The presence of "=" routes to the equation rule even though the
	// question also mentions arithmetic.
	assert.Equal(t, "equation", s.Class("add x so that x + 1 = 2"))
}

func TestGeometryShapeSpecialization(t *testing.T) {
	s := New()

	assert.Contains(t, s.Solve("area of a circle"), "πr^2")
	assert.Contains(t, s.Solve("area of a triangle"), "base * height")
	assert.Contains(t, s.Solve("perimeter of a rectangle"), "2 * (length + width)")
	assert.Contains(t, s.Solve("volume of a cylinder"), "πr^2 * h")
}

func TestSolveNeverEmpty(t *testing.T) {
	s := New()

	for _, q := range []string{"", "???", "tell me about math", "x"} {
		assert.True(t, strings.TrimSpace(s.Solve(q)) != "", "question %q", q)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "4", formatNumber(4))
	assert.Equal(t, "3.5", formatNumber(3.5))
	assert.Equal(t, "-2", formatNumber(-2))
}

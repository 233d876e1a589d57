package solver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Solver renders deterministic step-by-step solutions when the reasoning
// capability is unavailable. Solve always returns non-empty text.
//
// Dispatch order is a first-class artifact: rules are checked top to bottom
// and the first match wins.
type Solver struct {
	rules []dispatchRule
}

type dispatchRule struct {
	name    string
	match   func(question, lower string) bool
	handler func(question string) string
}

var (
	pureArithmeticRe = regexp.MustCompile(`^\s*\d+\s*[+\-*/×÷]\s*\d+\s*$`)
	arithmeticExprRe = regexp.MustCompile(`(\d+)\s*([+\-*/×÷])\s*(\d+)`)
	linearEquationRe = regexp.MustCompile(`(\d*)x(?:([+-])(\d+))?$`)
	equationSplitRe  = regexp.MustCompile(`([^=]+)=([^=]+)`)
)

func New() *Solver {
	s := &Solver{}
	s.rules = []dispatchRule{
		{
			name:    "equation",
			match:   func(q, _ string) bool { return strings.Contains(q, "=") },
			handler: s.solveEquation,
		},
		{
			name:    "arithmetic",
			match:   func(q, _ string) bool { return pureArithmeticRe.MatchString(q) },
			handler: s.solveArithmetic,
		},
		{
			name: "derivative",
			match: func(_, lower string) bool {
				return strings.Contains(lower, "derivative") || strings.Contains(lower, "differentiate")
			},
			handler: derivativeTemplate,
		},
		{
			name: "integral",
			match: func(_, lower string) bool {
				return strings.Contains(lower, "integral") || strings.Contains(lower, "integrate")
			},
			handler: integralTemplate,
		},
		{
			name:    "geometry",
			match:   func(_, lower string) bool { return containsAny(lower, geometryWords) },
			handler: geometryTemplate,
		},
		{
			name: "percentage",
			match: func(q, lower string) bool {
				return strings.Contains(q, "%") || strings.Contains(lower, "percent")
			},
			handler: percentageTemplate,
		},
		{
			name: "general_arithmetic",
			match: func(q, lower string) bool {
				return strings.ContainsAny(q, "+-*/×÷") || containsAny(lower, arithmeticWords)
			},
			handler: generalArithmeticTemplate,
		},
		{
			name:    "default",
			match:   func(_, _ string) bool { return true },
			handler: strategyTemplate,
		},
	}
	return s
}

var geometryWords = []string{"area", "volume", "circumference", "perimeter", "circle", "triangle", "rectangle"}

var arithmeticWords = []string{"add", "subtract", "multiply", "divide", "plus", "minus", "times"}

// Solve dispatches the question to the first matching problem class.
func (s *Solver) Solve(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range s.rules {
		if rule.match(question, lower) {
			return rule.handler(question)
		}
	}
	return strategyTemplate(question)
}

// Class reports which dispatch rule would handle the question.
func (s *Solver) Class(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range s.rules {
		if rule.match(question, lower) {
			return rule.name
		}
	}
	return "default"
}

func (s *Solver) solveEquation(question string) string {
	m := equationSplitRe.FindStringSubmatch(question)
	if m == nil {
		return strategyTemplate(question)
	}

	left := strings.TrimSpace(m[1])
	right := strings.TrimSpace(m[2])

	// A leading solve-verb phrase ("Solve 2x + 5") is tolerated: the
	// expression match anchors on the trailing linear form.
	compactLeft := strings.ReplaceAll(left, " ", "")
	loc := linearEquationRe.FindStringSubmatchIndex(compactLeft)
	if loc == nil {
		return genericEquationTemplate(question, left, right)
	}
	// Anything mathematical before the matched linear form means the
	// expression is not a plain ax+b and gets the generic walkthrough.
	if strings.ContainsAny(compactLeft[:loc[0]], "0123456789^+-*/") {
		return genericEquationTemplate(question, left, right)
	}
	lm := make([]string, 4)
	for i := 0; i < 4; i++ {
		if loc[2*i] >= 0 {
			lm[i] = compactLeft[loc[2*i]:loc[2*i+1]]
		}
	}
	left = lm[0]

	coeff := 1
	if lm[1] != "" {
		coeff, _ = strconv.Atoi(lm[1])
	}
	constant := 0
	if lm[3] != "" {
		constant, _ = strconv.Atoi(lm[3])
		if lm[2] == "-" {
			constant = -constant
		}
	}

	rightValue, err := strconv.Atoi(right)
	if err != nil || coeff == 0 {
		return genericEquationTemplate(question, left, right)
	}

	isolated := rightValue - constant
	solution := float64(isolated) / float64(coeff)
	check := float64(coeff)*solution + float64(constant)

	return fmt.Sprintf(`## Step-by-Step Solution for: %s

**Given equation:** %s = %s

**Step 1:** Isolate the variable term
Move the constant to the right side:
%dx = %d - (%d)
%dx = %d

**Step 2:** Solve for x
Divide both sides by %d:
x = %d / %d
x = %s

**Step 3:** Verify the solution
Substitute x = %s back into the original equation:
%d(%s) + (%d) = %s
%s = %d ✓

**Answer:** x = %s`,
		question,
		left, right,
		coeff, rightValue, constant,
		coeff, isolated,
		coeff,
		isolated, coeff,
		formatNumber(solution),
		formatNumber(solution),
		coeff, formatNumber(solution), constant, formatNumber(check),
		formatNumber(check), rightValue,
		formatNumber(solution))
}

func (s *Solver) solveArithmetic(question string) string {
	m := arithmeticExprRe.FindStringSubmatch(strings.TrimSpace(question))
	if m == nil {
		return generalArithmeticTemplate(question)
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[3])
	op := normalizeOperator(m[2])

	var result float64
	var operation, explanation string

	switch op {
	case "+":
		result = float64(a + b)
		operation = "addition"
		explanation = fmt.Sprintf("Add %d and %d", a, b)
	case "-":
		result = float64(a - b)
		operation = "subtraction"
		explanation = fmt.Sprintf("Subtract %d from %d", b, a)
	case "*":
		result = float64(a * b)
		operation = "multiplication"
		explanation = fmt.Sprintf("Multiply %d by %d", a, b)
	case "/":
		if b == 0 {
			return fmt.Sprintf(`## Solution for: %s

**Error:** Division by zero is undefined in mathematics.
You cannot divide any number by zero.`, question)
		}
		result = float64(a) / float64(b)
		operation = "division"
		explanation = fmt.Sprintf("Divide %d by %d", a, b)
	}

	return fmt.Sprintf(`## Step-by-Step Solution for: %s

**Problem:** %d %s %d

**Step 1:** Identify the operation
This is a %s problem.

**Step 2:** Apply the operation
%s:
%d %s %d = %s

**Step 3:** Verify the result
The calculation is correct: %s

**Answer:** %s`,
		question,
		a, op, b,
		operation,
		explanation,
		a, op, b, formatNumber(result),
		formatNumber(result),
		formatNumber(result))
}

func normalizeOperator(op string) string {
	switch op {
	case "×":
		return "*"
	case "÷":
		return "/"
	}
	return op
}

// formatNumber renders integers without a decimal point and everything else
// with the shortest exact representation.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

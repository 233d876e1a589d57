package solver

import (
	"fmt"
	"strings"
)

func genericEquationTemplate(question, left, right string) string {
	return fmt.Sprintf(`## Step-by-Step Solution for: %s

**Given equation:** %s = %s

**General approach for solving equations:**

**Step 1:** Simplify both sides
Combine like terms and clear any parentheses on each side.

**Step 2:** Collect variable terms
Move all terms containing the unknown to one side of the equation, and all constants to the other side, performing the same operation on both sides.

**Step 3:** Isolate the variable
Divide both sides by the coefficient of the variable.

**Step 4:** Verify
Substitute your solution back into the original equation and confirm that both sides are equal.

**Tip:** Whatever operation you apply to one side of the equation, apply the same operation to the other side.`, question, left, right)
}

func derivativeTemplate(question string) string {
	return fmt.Sprintf(`## Derivative Solution for: %s

**Approach for finding derivatives:**

**Step 1:** Identify the function type
- Power functions: f(x) = x^n
- Polynomial, trigonometric, exponential, or logarithmic terms

**Step 2:** Apply the appropriate rule
- Power rule: d/dx(x^n) = n*x^(n-1)
- Sum rule: d/dx(f + g) = f' + g'
- Product rule: d/dx(f*g) = f'*g + f*g'
- Chain rule: d/dx(f(g(x))) = f'(g(x)) * g'(x)

**Step 3:** Simplify the result
Combine like terms and write the derivative in its simplest form.

**Example:** d/dx(x^2) = 2x, d/dx(3x^2 + 2x) = 6x + 2

**Tip:** Differentiate term by term, then simplify.`, question)
}

func integralTemplate(question string) string {
	return fmt.Sprintf(`## Integration Solution for: %s

**Approach for evaluating integrals:**

**Step 1:** Identify the integrand form
Look for standard forms: power functions, trigonometric functions, exponentials, or compositions suggesting substitution.

**Step 2:** Apply the appropriate technique
- Power rule: ∫x^n dx = x^(n+1)/(n+1) + C, for n ≠ -1
- Substitution: set u = inner function when its derivative appears
- Integration by parts: ∫u dv = uv - ∫v du

**Step 3:** Add the constant of integration
Every indefinite integral includes + C.

**Step 4:** Verify
Differentiate your answer and confirm you recover the original integrand.

**Example:** ∫x^2 dx = x^3/3 + C`, question)
}

func geometryTemplate(question string) string {
	lower := strings.ToLower(question)

	var focus string
	switch {
	case strings.Contains(lower, "circle") || strings.Contains(lower, "circumference"):
		focus = `**Circle formulas:**
- Area: A = πr^2
- Circumference: C = 2πr
where r is the radius.`
	case strings.Contains(lower, "triangle"):
		focus = `**Triangle formulas:**
- Area: A = (1/2) * base * height
- Perimeter: sum of all three sides
- Pythagorean theorem (right triangles): a^2 + b^2 = c^2`
	case strings.Contains(lower, "rectangle"):
		focus = `**Rectangle formulas:**
- Area: A = length * width
- Perimeter: P = 2 * (length + width)`
	case strings.Contains(lower, "volume"):
		focus = `**Common volume formulas:**
- Cube: V = s^3
- Rectangular prism: V = length * width * height
- Cylinder: V = πr^2 * h
- Sphere: V = (4/3)πr^3`
	default:
		focus = `**Common formulas:**
- Rectangle area: length * width
- Triangle area: (1/2) * base * height
- Circle area: πr^2`
	}

	return fmt.Sprintf(`## Geometry Solution for: %s

**Step 1:** Identify the shape and the quantity asked for
Determine whether you need an area, perimeter, circumference, or volume.

**Step 2:** Recall the relevant formula
%s

**Step 3:** Substitute the known values
Insert the given measurements into the formula, keeping units consistent.

**Step 4:** Compute and state the units
Evaluate the expression and attach the correct units (squared for area, cubed for volume).`, question, focus)
}

func percentageTemplate(question string) string {
	return fmt.Sprintf(`## Percentage Solution for: %s

**Approach for percentage problems:**

**Step 1:** Convert the percentage to a decimal
Divide by 100: p%% = p/100.

**Step 2:** Apply the relationship
- Percentage of a number: (p/100) * number
- What percent A is of B: (A/B) * 100
- Percent change: ((new - old)/old) * 100

**Step 3:** Compute the result

**Example:** 20%% of 50 = (20/100) * 50 = 10

**Tip:** "of" means multiply; "is" marks the result.`, question)
}

func generalArithmeticTemplate(question string) string {
	return fmt.Sprintf(`## Arithmetic Solution for: %s

**Step 1:** Write out the expression
Identify all the numbers and the operations between them.

**Step 2:** Apply the order of operations
Work through PEMDAS: Parentheses, Exponents, Multiplication and Division (left to right), Addition and Subtraction (left to right).

**Step 3:** Compute one operation at a time
Simplify step by step rather than all at once.

**Step 4:** Check your result
Estimate the answer first and confirm your computed value is close to the estimate.`, question)
}

func strategyTemplate(question string) string {
	return fmt.Sprintf(`## Mathematical Problem-Solving Approach for: %s

**Step 1:** Understand the problem
Read the question carefully. Identify what is given and what is being asked.

**Step 2:** Devise a plan
Look for a relevant formula, a pattern, or a simpler version of the same problem. Consider working backwards from the desired result.

**Step 3:** Carry out the plan
Execute each step carefully, writing down intermediate results.

**Step 4:** Look back
Check your answer against the original question. Does the result make sense? Can you verify it another way?

**Tip:** Breaking a problem into smaller parts almost always makes it more approachable.`, question)
}

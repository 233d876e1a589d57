package knowledge

type seedEntry struct {
	Text        string
	Topic       string
	SourceTitle string
	SourceURL   string
}

var seedCorpus = func() []seedEntry {
	entries := []struct {
		text  string
		topic string
	}{
		{
			"To solve a linear equation of the form ax + b = c, subtract b from both sides to get ax = c - b, then divide both sides by a to isolate x. Always verify by substituting the solution back into the original equation.",
			"algebra",
		},
		{
			"The quadratic formula solves ax^2 + bx + c = 0: x = (-b ± sqrt(b^2 - 4ac)) / (2a). The discriminant b^2 - 4ac determines the nature of the roots: positive gives two real roots, zero gives one repeated root, negative gives two complex roots.",
			"algebra",
		},
		{
			"The derivative measures the instantaneous rate of change of a function. The power rule states d/dx(x^n) = n*x^(n-1). The derivative of a sum is the sum of derivatives, and constants factor out.",
			"calculus",
		},
		{
			"Integration reverses differentiation. The power rule for integration states that the integral of x^n dx is x^(n+1)/(n+1) + C for n != -1. Definite integrals compute the signed area under a curve between two bounds.",
			"calculus",
		},
		{
			"The area of a circle is A = pi * r^2 and its circumference is C = 2 * pi * r, where r is the radius. The area of a triangle is half the base times the height. The Pythagorean theorem relates the sides of a right triangle: a^2 + b^2 = c^2.",
			"geometry",
		},
		{
			"The sine, cosine, and tangent of an angle in a right triangle are the ratios opposite/hypotenuse, adjacent/hypotenuse, and opposite/adjacent respectively. The fundamental identity is sin^2(x) + cos^2(x) = 1.",
			"trigonometry",
		},
		{
			"The mean of a data set is the sum of the values divided by their count. The median is the middle value when sorted. The variance is the average squared deviation from the mean, and the standard deviation is its square root.",
			"statistics",
		},
		{
			"A matrix is a rectangular array of numbers. The determinant of a 2x2 matrix [[a, b], [c, d]] is ad - bc. A square matrix is invertible exactly when its determinant is nonzero.",
			"linear_algebra",
		},
		{
			"To compute a percentage of a number, convert the percentage to a decimal by dividing by 100 and multiply. Percent change is the difference between new and old values divided by the old value, times 100.",
			"arithmetic",
		},
		{
			"The order of operations is parentheses, exponents, multiplication and division from left to right, then addition and subtraction from left to right. Division by zero is undefined.",
			"arithmetic",
		},
	}

	out := make([]seedEntry, len(entries))
	for i, e := range entries {
		title, url := TopicReference(e.topic)
		out[i] = seedEntry{Text: e.text, Topic: e.topic, SourceTitle: title, SourceURL: url}
	}
	return out
}()

package knowledge

import "strings"

// topicRules map question vocabulary to corpus topics. First match wins, so
// the more specific subjects come before the broad ones.
var topicRules = []struct {
	topic string
	words []string
}{
	{"calculus", []string{"derivative", "differentiate", "integral", "integrate", "limit", "gradient", "differential equation"}},
	{"linear_algebra", []string{"matrix", "matrices", "determinant", "eigenvalue", "eigenvector", "vector space"}},
	{"geometry", []string{"area", "volume", "perimeter", "circumference", "triangle", "circle", "rectangle", "angle", "pythagorean"}},
	{"trigonometry", []string{"sin", "cos", "tan", "sine", "cosine", "tangent"}},
	{"statistics", []string{"mean", "median", "mode", "probability", "variance", "standard deviation"}},
	{"algebra", []string{"solve", "equation", "variable", "polynomial", "factor", "quadratic"}},
	{"arithmetic", []string{"add", "subtract", "multiply", "divide", "percent", "fraction"}},
}

// DetectTopic classifies a question into a corpus topic, or "" when no
// vocabulary matches.
func DetectTopic(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range topicRules {
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				return rule.topic
			}
		}
	}
	return ""
}

// TopicReference returns the canonical external reference for a topic, used
// when matched chunks carry no source of their own.
func TopicReference(topic string) (title, url string) {
	switch topic {
	case "calculus":
		return "Paul's Online Math Notes - Calculus", "https://tutorial.math.lamar.edu/Classes/CalcI/CalcI.aspx"
	case "linear_algebra":
		return "MIT OpenCourseWare - Linear Algebra", "https://ocw.mit.edu/courses/18-06-linear-algebra-spring-2010/"
	case "geometry":
		return "Khan Academy - Geometry", "https://www.khanacademy.org/math/geometry"
	case "trigonometry":
		return "Khan Academy - Trigonometry", "https://www.khanacademy.org/math/trigonometry"
	case "statistics":
		return "Khan Academy - Statistics and Probability", "https://www.khanacademy.org/math/statistics-probability"
	case "algebra":
		return "Khan Academy - Algebra", "https://www.khanacademy.org/math/algebra"
	case "arithmetic":
		return "Khan Academy - Arithmetic", "https://www.khanacademy.org/math/arithmetic"
	}
	return "Wolfram MathWorld", "https://mathworld.wolfram.com"
}

package web

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-agent/backend/internal/source"
)

func TestBuildQueryAppendsSubject(t *testing.T) {
	q := BuildQuery("solve 2x + 5 = 13", "")
	assert.Equal(t, "solve 2x + 5 = 13 mathematics", q)
}

func TestBuildQueryKeepsExistingSubject(t *testing.T) {
	q := BuildQuery("history of Mathematics notation", "")
	assert.Equal(t, "history of Mathematics notation", q)
}

func TestBuildQueryAppendsContext(t *testing.T) {
	q := BuildQuery("integrate x^2", "calculus integration techniques")
	assert.Equal(t, "integrate x^2 mathematics calculus integration techniques", q)
}

func TestBuildQueryTruncates(t *testing.T) {
	long := strings.Repeat("algebra ", 60)
	q := BuildQuery(long, "extra context")
	assert.Len(t, q, maxQueryLength)
}

func TestParseDuckDuckGo(t *testing.T) {
	html := `<html><body>
	<div class="result">
		<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.khanacademy.org%2Fmath%2Falgebra">Khan Academy Algebra</a>
		<a class="result__snippet" href="#">Learn algebra step by step.</a>
	</div>
	<div class="result">
		<a class="result__a" href="https://mathworld.wolfram.com/LinearEquation.html">Linear Equation</a>
		<a class="result__snippet" href="#">A linear equation has the form ax + b = c.</a>
	</div>
	<div class="result">
		<a class="result__a" href=""></a>
	</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	results := parseDuckDuckGo(doc, 5)

	require.Len(t, results, 2)
	assert.Equal(t, "Khan Academy Algebra", results[0].Title)
	assert.Equal(t, "https://www.khanacademy.org/math/algebra", results[0].URL)
	assert.Equal(t, "Learn algebra step by step.", results[0].Snippet)
	assert.Equal(t, "https://mathworld.wolfram.com/LinearEquation.html", results[1].URL)
}

func TestParseDuckDuckGoHonorsLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		sb.WriteString(`<div class="result"><a class="result__a" href="https://example.org/` +
			string(rune('a'+i)) + `">Result</a></div>`)
	}
	sb.WriteString("</body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)

	assert.Len(t, parseDuckDuckGo(doc, 3), 3)
}

func TestCleanDuckDuckGoURL(t *testing.T) {
	assert.Equal(t,
		"https://tutorial.math.lamar.edu/",
		cleanDuckDuckGoURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Ftutorial.math.lamar.edu%2F"))
	assert.Equal(t,
		"https://example.org/page",
		cleanDuckDuckGoURL("https://example.org/page"))
}

func TestDedupeByURL(t *testing.T) {
	results := dedupeByURL([]source.WebResult{
		{Title: "A", URL: "https://example.org/x"},
		{Title: "B", URL: "https://example.org/x/"},
		{Title: "C", URL: "https://example.org/y"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Title)
	assert.Equal(t, "C", results[1].Title)
}

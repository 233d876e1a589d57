package guardrails

import "regexp"

// Rule is one entry in a classification catalogue. Catalogues are data, the
// scorer in classifier.go is the only control flow that reads them.
type Rule struct {
	Pattern  *regexp.Regexp
	Weight   float64
	Category string
}

// Blocked-intent patterns. Any match is a terminal input rejection.
var blockedRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)\b(hack|exploit|attack|malicious)\b`), Category: "intent"},
	{Pattern: regexp.MustCompile(`(?i)\b(personal|private|confidential)\s+information\b`), Category: "privacy"},
	{Pattern: regexp.MustCompile(`(?i)\b(generate|create)\s+(virus|malware|harmful)\b`), Category: "malware"},
}

// Off-domain indicators. A single match vetoes the relevance score outright.
var offDomainRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)\b(weather|temperature|climate|rain|snow|sunny|cloudy)\b`), Category: "weather"},
	{Pattern: regexp.MustCompile(`(?i)\b(cook|recipe|food|eat|drink|restaurant|kitchen)\b`), Category: "cooking"},
	{Pattern: regexp.MustCompile(`(?i)\b(movie|film|actor|actress|cinema|theater)\b`), Category: "entertainment"},
	{Pattern: regexp.MustCompile(`(?i)\b(music|song|singer|band|album|concert)\b`), Category: "entertainment"},
	{Pattern: regexp.MustCompile(`(?i)\b(car|drive|traffic|road|highway|parking)\b`), Category: "transport"},
	{Pattern: regexp.MustCompile(`(?i)\b(health|doctor|medicine|hospital|sick|disease)\b`), Category: "health"},
	{Pattern: regexp.MustCompile(`(?i)\b(politics|government|president|election|vote)\b`), Category: "politics"},
	{Pattern: regexp.MustCompile(`(?i)\b(sports|football|basketball|soccer|tennis)\b`), Category: "sports"},
	{Pattern: regexp.MustCompile(`(?i)\b(travel|vacation|hotel|flight|airport|tourist)\b`), Category: "travel"},
	{Pattern: regexp.MustCompile(`(?i)\b(shopping|store|buy|sell|price|dollar)\b`), Category: "commerce"},
	{Pattern: regexp.MustCompile(`(?i)\b(job|career|office|business|company)\b`), Category: "work"},
	{Pattern: regexp.MustCompile(`(?i)\b(family|friend|relationship|love|marriage)\b`), Category: "personal"},
	{Pattern: regexp.MustCompile(`(?i)\b(software|internet|website|email)\b`), Category: "computing"},
	{Pattern: regexp.MustCompile(`(?i)\b(story|novel|author)\b`), Category: "literature"},
}

// Domain indicators. The relevance base score is the matched fraction of this
// catalogue.
var domainRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)\b(solve|calculate|compute|find|derive|integrate|differentiate|evaluate|simplify|determine)\b`), Category: "verb"},
	{Pattern: regexp.MustCompile(`(?i)\b(equation|formula|function|theorem|proof|graph|matrix|vector|expression)\b`), Category: "noun"},
	{Pattern: regexp.MustCompile(`(?i)\b(algebra|calculus|geometry|trigonometry|statistics|probability|arithmetic|mathematics)\b`), Category: "subfield"},
	{Pattern: regexp.MustCompile(`[+\-*/=<>{}\[\]()^%]`), Category: "operator"},
	{Pattern: regexp.MustCompile(`[×÷±≤≥≠≈∫∑∏√π∞]`), Category: "operator"},
	{Pattern: regexp.MustCompile(`\b\d+\b`), Category: "numeral"},
	{Pattern: regexp.MustCompile(`\d+\s*[+\-*/^×÷%]\s*\d+`), Category: "arithmetic"},
	{Pattern: regexp.MustCompile(`(?i)\b(sin|cos|tan|log|ln|exp|sqrt|abs|floor|ceil|round)\b`), Category: "function"},
	{Pattern: regexp.MustCompile(`(?i)\b(sum|integral|derivative|limit|factorial|permutation|combination)\b`), Category: "function"},
	{Pattern: regexp.MustCompile(`(?i)\b(differential|partial|transform|laplace|fourier|tensor)\b`), Category: "advanced"},
	{Pattern: regexp.MustCompile(`(?i)\b(eigenvalue|eigenvector|determinant|inverse|transpose|orthogonal)\b`), Category: "linalg"},
	{Pattern: regexp.MustCompile(`(?i)\b(convergence|divergence|series|sequence|continuity|differentiable)\b`), Category: "analysis"},
	{Pattern: regexp.MustCompile(`(?i)\b(polynomial|quadratic|linear|exponential|logarithmic|rational|irrational)\b`), Category: "algebra"},
	{Pattern: regexp.MustCompile(`(?i)\b(area|volume|perimeter|circumference|radius|diameter|angle|triangle|circle|square|rectangle)\b`), Category: "geometry"},
	{Pattern: regexp.MustCompile(`(?i)\b(mean|median|mode|variance|standard\s+deviation|correlation)\b`), Category: "statistics"},
	{Pattern: regexp.MustCompile(`\b[a-z]\s*[=+\-*/^]`), Category: "variable"},
	{Pattern: regexp.MustCompile(`\b\d*[a-z]\s*[+\-*/^]`), Category: "variable"},
	{Pattern: regexp.MustCompile(`(?i)\b(what\s+is|how\s+much\s+is|calculate)\s+\d+`), Category: "question"},
	{Pattern: regexp.MustCompile(`\d+/\d+`), Category: "fraction"},
	{Pattern: regexp.MustCompile(`\d+\.\d+`), Category: "decimal"},
	{Pattern: regexp.MustCompile(`(?i)\d+\s*%|\bpercent\b`), Category: "percent"},
	{Pattern: regexp.MustCompile(`(?i)\b(degrees?|radians?|meters?|feet|inches?|cm|mm|kg|grams?|seconds?|minutes?|hours?)\b`), Category: "unit"},
}

// High-confidence compound patterns add a fixed bonus to the relevance score.
var bonusRules = []Rule{
	{Pattern: regexp.MustCompile(`^\s*\d+\s*[+\-*/×÷]\s*\d+\s*$`), Weight: 0.5, Category: "pure_arithmetic"},
	{Pattern: regexp.MustCompile(`\d+\s*[+\-*/×÷]\s*\d+`), Weight: 0.3, Category: "arithmetic"},
	{Pattern: regexp.MustCompile(`(?i)\b(solve|calculate|find)\b.*=`), Weight: 0.4, Category: "equation"},
	{Pattern: regexp.MustCompile(`\b[a-z]\s*[=+\-*/^]`), Weight: 0.3, Category: "variable"},
	{Pattern: regexp.MustCompile(`(?i)\b(derivative|integral|limit|sum)\b`), Weight: 0.4, Category: "calculus"},
	{Pattern: regexp.MustCompile(`(?i)\b(differential|partial)\b.*\bequation\b`), Weight: 0.5, Category: "diff_eq"},
	{Pattern: regexp.MustCompile(`(?i)\b(laplace|fourier|transform)\b`), Weight: 0.4, Category: "transform"},
	{Pattern: regexp.MustCompile(`(?i)\b(matrix|vector|eigenvalue|determinant)\b`), Weight: 0.4, Category: "linalg"},
	{Pattern: regexp.MustCompile(`(?i)\b(area|volume|perimeter)\b.*\b(circle|triangle|rectangle)\b`), Weight: 0.3, Category: "geometry"},
	{Pattern: regexp.MustCompile(`(?i)\d+\s*%|\bpercent\b`), Weight: 0.2, Category: "percent"},
}

// Refusal phrases degrade output confidence without forcing rejection.
var refusalPhrases = []string{
	"i cannot help with",
	"i'm not able to assist",
	"this request violates",
	"i can't provide information about",
}

// Harmful-content patterns force output rejection with zero confidence.
var harmfulRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)\b(personal|private|confidential)\s+information\b`), Category: "privacy"},
	{Pattern: regexp.MustCompile(`(?i)\b(hack|exploit|attack)\b`), Category: "intent"},
	{Pattern: regexp.MustCompile(`(?i)\b(illegal|unlawful|criminal)\b`), Category: "legality"},
}

// Solution-vocabulary indicators for output quality scoring.
var qualityRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)\b(solution|answer|result|calculation)\b`), Category: "vocabulary"},
	{Pattern: regexp.MustCompile(`(?i)\b(step|method|approach|process)\b`), Category: "vocabulary"},
	{Pattern: regexp.MustCompile(`(?i)\b(therefore|thus|hence|so)\b`), Category: "connective"},
	{Pattern: regexp.MustCompile(`[+\-*/=]`), Category: "operator"},
	{Pattern: regexp.MustCompile(`\b\d+\b`), Category: "numeral"},
}

var (
	structureBonus   = regexp.MustCompile(`(\d+\.|•|\*)\s+`)
	notationBonus    = regexp.MustCompile(`[+\-*/=<>{}\[\]()]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	blankLineRun     = regexp.MustCompile(`\n{3,}`)
	spaceRun         = regexp.MustCompile(` {2,}`)
	disallowedInput  = regexp.MustCompile(`[^\w\s+\-*/=<>(){}\[\].,?!^%]`)
	specialCharCount = regexp.MustCompile(`[^a-zA-Z0-9\s+\-*/=<>(){}\[\].,?!]`)
)

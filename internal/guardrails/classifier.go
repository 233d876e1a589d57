package guardrails

import (
	"strings"

	"go.uber.org/zap"

	"github.com/math-agent/backend/pkg/logger"
)

// Mode selects which rule set a classification runs against.
type Mode int

const (
	ModeInput Mode = iota
	ModeOutput
)

// Reason codes carried on rejections.
const (
	ReasonEmptyContent    = "empty_content"
	ReasonTooShort        = "content_too_short"
	ReasonTooLong         = "content_too_long"
	ReasonBlockedPattern  = "blocked_pattern"
	ReasonNonMathematical = "non_mathematical"
	ReasonSpecialChars    = "excessive_special_chars"
	ReasonEmptyResponse   = "empty_response"
	ReasonResponseShort   = "response_too_short"
	ReasonResponseLong    = "response_too_long"
	ReasonRefusalPattern  = "refusal_pattern"
	ReasonLowQuality      = "low_quality"
	ReasonHarmfulContent  = "harmful_content"
	ReasonInternalFault   = "internal_fault"
)

// ExampleSuggestion accompanies non_mathematical rejections so callers can
// show the user a usable query format.
const ExampleSuggestion = "Try asking questions like 'Solve 2x + 5 = 13' or 'What is the derivative of x^2?'"

// Result of classifying one piece of text. Text always carries the
// normalized copy, accepted or not.
type Result struct {
	Accepted   bool
	Text       string
	Message    string
	Reasons    []string
	Confidence float64
	Relevance  float64
}

func (r Result) HasReason(code string) bool {
	for _, reason := range r.Reasons {
		if reason == code {
			return true
		}
	}
	return false
}

// Limits bound input and output text sizes.
type Limits struct {
	MaxQueryLength  int
	MinQueryLength  int
	MaxAnswerLength int
}

func DefaultLimits() Limits {
	return Limits{
		MaxQueryLength:  1000,
		MinQueryLength:  3,
		MaxAnswerLength: 2000,
	}
}

const minAnswerLength = 20

// Classifier gates questions on the way in and generated answers on the way
// out. All pattern knowledge lives in the rule tables in rules.go; the
// methods here only walk them.
type Classifier struct {
	limits Limits
}

func NewClassifier(limits Limits) *Classifier {
	if limits.MaxQueryLength == 0 {
		limits = DefaultLimits()
	}
	return &Classifier{limits: limits}
}

// Classify never panics past this boundary: an internal fault degrades to a
// rejection with a diagnostic reason.
func (c *Classifier) Classify(text string, mode Mode) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Classifier panicked", zap.Any("panic", r))
			result = Result{
				Accepted: false,
				Text:     text,
				Message:  "Classification failed internally",
				Reasons:  []string{ReasonInternalFault},
			}
		}
	}()

	if mode == ModeOutput {
		return c.classifyOutput(text)
	}
	return c.classifyInput(text)
}

func (c *Classifier) classifyInput(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			Accepted:   false,
			Text:       "",
			Message:    "Empty query is not allowed",
			Reasons:    []string{ReasonEmptyContent},
			Confidence: 1.0,
		}
	}

	text = strings.TrimSpace(text)
	reasons := []string{}
	confidence := 1.0

	if len(text) > c.limits.MaxQueryLength {
		reasons = append(reasons, ReasonTooLong)
		text = text[:c.limits.MaxQueryLength]
		confidence -= 0.1
	}

	if len(text) < c.limits.MinQueryLength {
		return Result{
			Accepted:   false,
			Text:       text,
			Message:    "Query is too short",
			Reasons:    []string{ReasonTooShort},
			Confidence: 1.0,
		}
	}

	for _, rule := range blockedRules {
		if rule.Pattern.MatchString(text) {
			return Result{
				Accepted:   false,
				Text:       text,
				Message:    "Query contains potentially harmful content",
				Reasons:    []string{ReasonBlockedPattern},
				Confidence: 1.0,
			}
		}
	}

	relevance := RelevanceScore(text)
	if relevance < 0.2 {
		return Result{
			Accepted:   false,
			Text:       text,
			Message:    "Please enter a valid math question. Only mathematical questions are allowed. " + ExampleSuggestion,
			Reasons:    []string{ReasonNonMathematical},
			Confidence: 0.0,
			Relevance:  relevance,
		}
	}

	if excessiveSpecialChars(text) {
		reasons = append(reasons, ReasonSpecialChars)
		confidence -= 0.2
	}

	cleaned := normalizeInput(text)
	accepted := confidence > 0.5

	message := "Content passed safety checks"
	if !accepted {
		message = "Content failed safety checks"
	}

	return Result{
		Accepted:   accepted,
		Text:       cleaned,
		Message:    message,
		Reasons:    reasons,
		Confidence: clamp(confidence),
		Relevance:  relevance,
	}
}

func (c *Classifier) classifyOutput(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			Accepted:   false,
			Text:       "",
			Message:    "Empty response is not allowed",
			Reasons:    []string{ReasonEmptyResponse},
			Confidence: 1.0,
		}
	}

	text = strings.TrimSpace(text)
	reasons := []string{}
	confidence := 1.0

	if len(text) < minAnswerLength {
		reasons = append(reasons, ReasonResponseShort)
		confidence -= 0.3
	}

	if len(text) > c.limits.MaxAnswerLength {
		reasons = append(reasons, ReasonResponseLong)
		text = text[:c.limits.MaxAnswerLength] + "..."
		confidence -= 0.1
	}

	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			reasons = append(reasons, ReasonRefusalPattern)
			confidence -= 0.4
			break
		}
	}

	quality := QualityScore(text)
	if quality < 0.3 {
		reasons = append(reasons, ReasonLowQuality)
		confidence -= 0.3
	}

	for _, rule := range harmfulRules {
		if rule.Pattern.MatchString(text) {
			return Result{
				Accepted:   false,
				Text:       text,
				Message:    "Response contains potentially harmful content",
				Reasons:    append(reasons, ReasonHarmfulContent),
				Confidence: 0.0,
				Relevance:  quality,
			}
		}
	}

	cleaned := normalizeOutput(text)
	accepted := confidence > 0.4

	message := "Response passed safety checks"
	if !accepted {
		message = "Response has quality or safety issues"
	}

	return Result{
		Accepted:   accepted,
		Text:       cleaned,
		Message:    message,
		Reasons:    reasons,
		Confidence: clamp(confidence),
		Relevance:  quality,
	}
}

// RelevanceScore rates how mathematical a question looks, in [0,1]. Any
// off-domain indicator is an absolute veto, not a weighted deduction.
func RelevanceScore(text string) float64 {
	lower := strings.ToLower(text)

	for _, rule := range offDomainRules {
		if rule.Pattern.MatchString(lower) {
			return 0.0
		}
	}

	matches := 0
	for _, rule := range domainRules {
		if rule.Pattern.MatchString(lower) {
			matches++
		}
	}
	score := float64(matches) / float64(len(domainRules))

	for _, rule := range bonusRules {
		if rule.Pattern.MatchString(text) || rule.Pattern.MatchString(lower) {
			score += rule.Weight
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// QualityScore rates a generated answer by solution vocabulary, operators,
// and structural markers, in [0,1].
func QualityScore(text string) float64 {
	matches := 0
	for _, rule := range qualityRules {
		if rule.Pattern.MatchString(text) {
			matches++
		}
	}
	score := float64(matches) / float64(len(qualityRules))

	if structureBonus.MatchString(text) {
		score += 0.2
	}
	if notationBonus.MatchString(text) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func excessiveSpecialChars(text string) bool {
	count := len(specialCharCount.FindAllString(text, -1))
	return float64(count) > float64(len(text))*0.3
}

func normalizeInput(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = disallowedInput.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func normalizeOutput(text string) string {
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package models

import "time"

// AnswerRecord is one resolved query as persisted in query_logs.
type AnswerRecord struct {
	ID                  string    `json:"id"`
	Question            string    `json:"question"`
	Answer              string    `json:"answer"`
	SourceKind          string    `json:"sourceKind"`
	Confidence          float64   `json:"confidence"`
	KnowledgeConfidence float64   `json:"knowledgeConfidence"`
	WebSearchUsed       bool      `json:"webSearchUsed"`
	ReasoningTrace      []string  `json:"reasoningTrace,omitempty"`
	UserID              string    `json:"userId,omitempty"`
	LatencyMS           int       `json:"latencyMs"`
	CreatedAt           time.Time `json:"createdAt"`
}

// AnswerSource is one reference attached to a stored answer.
type AnswerSource struct {
	ID      int    `json:"id"`
	QueryID string `json:"queryId"`
	Origin  string `json:"origin"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// FeedbackRecord is one piece of user feedback on a stored answer.
type FeedbackRecord struct {
	ID               string    `json:"id"`
	QueryID          string    `json:"queryId"`
	Type             string    `json:"type"`
	Text             string    `json:"text,omitempty"`
	CorrectedAnswer  string    `json:"correctedAnswer,omitempty"`
	AnswerConfidence float64   `json:"answerConfidence"`
	Processed        bool      `json:"processed"`
	Actions          []string  `json:"actions,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FeedbackStats summarizes accumulated feedback for the analytics endpoint.
type FeedbackStats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"byType"`
	Processed  int            `json:"processed"`
	Escalated  int            `json:"escalated"`
	RecentWeek int            `json:"recentWeek"`
}

package source

// Kind identifies which capability produced a Result. Confidence values are
// source-local and only comparable through the router's fixed thresholds.
type Kind string

const (
	KindKnowledgeStore Kind = "knowledge_store"
	KindWebSearch      Kind = "web_search"
	KindReasoning      Kind = "reasoning"
	KindFallback       Kind = "fallback"
)

// Origin marks where a Reference came from.
type Origin string

const (
	OriginKnowledgeStore Origin = "knowledge_store"
	OriginWebSearch      Origin = "web_search"
)

// Reference is a citation attached to an answer. Equality for deduplication
// is by normalized URL+title, see internal/citation.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Origin  Origin `json:"origin"`
	Snippet string `json:"snippet,omitempty"`
}

// Result is the uniform shape every source adapter returns.
type Result struct {
	Kind        Kind
	Answer      string
	Confidence  float64
	References  []Reference
	Diagnostics []string
}

// WebResult is one ranked hit from a web search engine.
type WebResult struct {
	Title   string
	Snippet string
	URL     string
}

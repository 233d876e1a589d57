package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/citation"
	"github.com/math-agent/backend/internal/guardrails"
	"github.com/math-agent/backend/internal/knowledge"
	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/internal/source"
	"github.com/math-agent/backend/internal/storage/models"
	"github.com/math-agent/backend/pkg/logger"
	"github.com/math-agent/backend/pkg/utils"
)

const (
	// Below this knowledge-store confidence the router widens retrieval to
	// web search.
	webSearchThreshold = 0.7

	reasoningConfidence = 0.90
	fallbackConfidence  = 0.75

	maxWebSnippets = 3
)

type KnowledgeStore interface {
	Query(ctx context.Context, question string) (*knowledge.Lookup, error)
}

type WebSearcher interface {
	Search(ctx context.Context, question, topicContext string) ([]source.WebResult, error)
}

type Reasoner interface {
	Generate(ctx context.Context, question, mathContext string) (string, error)
}

type FallbackSolver interface {
	Solve(question string) string
	Class(question string) string
}

type AnswerStore interface {
	InsertAnswerRecord(record *models.AnswerRecord) error
	InsertAnswerSource(src *models.AnswerSource) error
}

type AnswerCache interface {
	GetAnswer(ctx context.Context, questionHash string, answer interface{}) (bool, error)
	SetAnswer(ctx context.Context, questionHash string, answer interface{}, ttl time.Duration) error
}

type FeedbackRegistrar interface {
	RegisterAnswer(queryID, question, answer string, confidence float64)
}

// Engine runs the full resolution pipeline: classify the question, consult
// the knowledge store, widen to web search below the confidence threshold,
// generate an answer, fall back to the deterministic solver on generation
// failure, classify the output, and assemble references. It always produces
// a non-empty answer for an accepted question.
type Engine struct {
	classifier *guardrails.Classifier
	knowledge  KnowledgeStore
	web        WebSearcher
	reasoner   Reasoner
	solver     FallbackSolver
	assembler  *citation.Assembler
	store      AnswerStore
	cache      AnswerCache
	feedback   FeedbackRegistrar
	cacheTTL   time.Duration
}

type Options struct {
	Classifier *guardrails.Classifier
	Knowledge  KnowledgeStore
	Web        WebSearcher
	Reasoner   Reasoner
	Solver     FallbackSolver
	Store      AnswerStore
	Cache      AnswerCache
	Feedback   FeedbackRegistrar
	CacheTTL   time.Duration
}

func NewEngine(opts Options) *Engine {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Hour
	}
	return &Engine{
		classifier: opts.Classifier,
		knowledge:  opts.Knowledge,
		web:        opts.Web,
		reasoner:   opts.Reasoner,
		solver:     opts.Solver,
		assembler:  citation.NewAssembler(),
		store:      opts.Store,
		cache:      opts.Cache,
		feedback:   opts.Feedback,
		cacheTTL:   opts.CacheTTL,
	}
}

type Request struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

type Response struct {
	ID                  string             `json:"id"`
	Question            string             `json:"question"`
	Answer              string             `json:"answer,omitempty"`
	SourceKind          source.Kind        `json:"sourceKind,omitempty"`
	Confidence          float64            `json:"confidence"`
	KnowledgeConfidence float64            `json:"knowledgeConfidence"`
	WebSearchUsed       bool               `json:"webSearchUsed"`
	WebResultCount      int                `json:"webResultCount"`
	ReasoningTrace      []string           `json:"reasoningTrace,omitempty"`
	References          []source.Reference `json:"references,omitempty"`
	Diagnostics         []string           `json:"diagnostics,omitempty"`
	Rejected            bool               `json:"rejected,omitempty"`
	Message             string             `json:"message,omitempty"`
	Reasons             []string           `json:"reasons,omitempty"`
	Cached              bool               `json:"cached,omitempty"`
	LatencyMS           int                `json:"latencyMs"`
}

// Resolve runs the pipeline for one question. Adapter failures degrade to
// diagnostics; only a rejected question short-circuits.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()
	queryID := uuid.New().String()

	logger.Info("Resolving query",
		zap.String("query_id", queryID),
		zap.String("question", req.Question),
	)

	input := e.classifier.Classify(req.Question, guardrails.ModeInput)
	if !input.Accepted {
		logger.Info("Question rejected",
			zap.String("query_id", queryID),
			zap.Strings("reasons", input.Reasons),
		)
		return &Response{
			ID:        queryID,
			Question:  req.Question,
			Rejected:  true,
			Message:   input.Message,
			Reasons:   input.Reasons,
			LatencyMS: int(time.Since(startTime).Milliseconds()),
		}, nil
	}
	question := input.Text

	questionHash := utils.HashString(strings.ToLower(question + "|" + req.Context))
	if cached := e.checkCache(ctx, questionHash); cached != nil {
		cached.LatencyMS = int(time.Since(startTime).Milliseconds())
		return cached, nil
	}

	var diagnostics []string
	var trace []string

	lookup, err := e.knowledge.Query(ctx, question)
	if err != nil {
		logger.Warn("Knowledge lookup failed", zap.String("query_id", queryID), zap.Error(err))
		diagnostics = append(diagnostics, fmt.Sprintf("knowledge_lookup_failed: %v", err))
		lookup = &knowledge.Lookup{}
	}
	trace = append(trace, fmt.Sprintf("searched knowledge base (confidence %.2f)", lookup.Confidence))

	var webResults []source.WebResult
	webSearchUsed := false
	if lookup.Confidence < webSearchThreshold {
		webSearchUsed = true
		searchContext := strings.TrimSpace(knowledge.DetectTopic(question) + " " + req.Context)
		webResults, err = e.web.Search(ctx, question, searchContext)
		if err != nil {
			logger.Warn("Web search failed", zap.String("query_id", queryID), zap.Error(err))
			diagnostics = append(diagnostics, fmt.Sprintf("web_search_failed: %v", err))
			webResults = nil
		}
		trace = append(trace, fmt.Sprintf("searched web (%d results)", len(webResults)))
	}

	mathContext := combinedContext(req.Context, lookup.Context, webResults)

	answer, kind, confidence := e.generate(ctx, queryID, question, mathContext, &diagnostics)

	output := e.classifier.Classify(answer, guardrails.ModeOutput)
	if !output.Accepted && kind == source.KindReasoning {
		logger.Warn("Generated answer rejected, using fallback solution",
			zap.String("query_id", queryID),
			zap.Strings("reasons", output.Reasons),
		)
		diagnostics = append(diagnostics, "generated_answer_rejected: "+strings.Join(output.Reasons, ","))
		answer = e.solver.Solve(question)
		kind = source.KindFallback
		confidence = fallbackConfidence
		output = e.classifier.Classify(answer, guardrails.ModeOutput)
	}
	answer = output.Text

	if kind == source.KindFallback {
		trace = append(trace, fmt.Sprintf("applied fallback solver (%s)", e.solver.Class(question)))
	} else {
		trace = append(trace, "generated solution with reasoning model")
	}
	trace = append(trace, "verified generated answer")

	references := e.assembler.Assemble(lookup.References, webReferences(webResults))

	latency := int(time.Since(startTime).Milliseconds())
	resp := &Response{
		ID:                  queryID,
		Question:            question,
		Answer:              answer,
		SourceKind:          kind,
		Confidence:          confidence,
		KnowledgeConfidence: lookup.Confidence,
		WebSearchUsed:       webSearchUsed,
		WebResultCount:      len(webResults),
		ReasoningTrace:      trace,
		References:          references,
		Diagnostics:         diagnostics,
		LatencyMS:           latency,
	}

	e.persist(resp, req.UserID)
	if e.feedback != nil {
		e.feedback.RegisterAnswer(queryID, question, answer, confidence)
	}
	e.storeCache(ctx, questionHash, resp)

	logger.Info("Query resolved",
		zap.String("query_id", queryID),
		zap.String("source", string(kind)),
		zap.Float64("confidence", confidence),
		zap.Float64("knowledge_confidence", lookup.Confidence),
		zap.Bool("web_search_used", webSearchUsed),
		zap.Int("latency_ms", latency),
	)

	return resp, nil
}

func (e *Engine) generate(ctx context.Context, queryID, question, mathContext string, diagnostics *[]string) (string, source.Kind, float64) {
	answer, err := e.reasoner.Generate(ctx, question, mathContext)
	if err == nil && strings.TrimSpace(answer) != "" {
		return answer, source.KindReasoning, reasoningConfidence
	}

	if err != nil {
		logger.Warn("Answer generation failed, using fallback solver",
			zap.String("query_id", queryID),
			zap.Error(err),
		)
		*diagnostics = append(*diagnostics, fmt.Sprintf("reasoning_failed: %v", err))
	} else {
		*diagnostics = append(*diagnostics, "reasoning_returned_empty")
	}

	return e.solver.Solve(question), source.KindFallback, fallbackConfidence
}

func (e *Engine) checkCache(ctx context.Context, questionHash string) *Response {
	if e.cache == nil {
		return nil
	}
	var cached Response
	hit, err := e.cache.GetAnswer(ctx, questionHash, &cached)
	if err != nil {
		logger.Warn("Cache lookup failed", zap.Error(err))
		return nil
	}
	if !hit {
		metrics.CacheMisses.WithLabelValues("answer").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("answer").Inc()
	cached.Cached = true
	return &cached
}

func (e *Engine) storeCache(ctx context.Context, questionHash string, resp *Response) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetAnswer(ctx, questionHash, resp, e.cacheTTL); err != nil {
		logger.Warn("Cache store failed", zap.Error(err))
	}
}

func (e *Engine) persist(resp *Response, userID string) {
	if e.store == nil {
		return
	}

	record := &models.AnswerRecord{
		ID:                  resp.ID,
		Question:            resp.Question,
		Answer:              resp.Answer,
		SourceKind:          string(resp.SourceKind),
		Confidence:          resp.Confidence,
		KnowledgeConfidence: resp.KnowledgeConfidence,
		WebSearchUsed:       resp.WebSearchUsed,
		ReasoningTrace:      resp.ReasoningTrace,
		UserID:              userID,
		LatencyMS:           resp.LatencyMS,
		CreatedAt:           time.Now(),
	}
	if err := e.store.InsertAnswerRecord(record); err != nil {
		logger.Error("Failed to persist answer record", zap.String("query_id", resp.ID), zap.Error(err))
		return
	}

	for _, ref := range resp.References {
		err := e.store.InsertAnswerSource(&models.AnswerSource{
			QueryID: resp.ID,
			Origin:  string(ref.Origin),
			Title:   ref.Title,
			URL:     ref.URL,
			Snippet: ref.Snippet,
		})
		if err != nil {
			logger.Warn("Failed to persist answer source", zap.String("query_id", resp.ID), zap.Error(err))
		}
	}
}

func combinedContext(priorContext, kbContext string, webResults []source.WebResult) string {
	var parts []string
	if priorContext != "" {
		parts = append(parts, "Additional context from the user:\n"+priorContext)
	}
	if kbContext != "" {
		parts = append(parts, "Knowledge base context:\n"+kbContext)
	}

	if len(webResults) > 0 {
		var sb strings.Builder
		sb.WriteString("Web search context:\n")
		for i, r := range webResults {
			if i >= maxWebSnippets {
				break
			}
			sb.WriteString(fmt.Sprintf("[%d] %s: %s\n", i+1, r.Title, r.Snippet))
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n\n")
}

func webReferences(results []source.WebResult) []source.Reference {
	refs := make([]source.Reference, 0, len(results))
	for _, r := range results {
		refs = append(refs, source.Reference{
			Title:   r.Title,
			URL:     r.URL,
			Origin:  source.OriginWebSearch,
			Snippet: r.Snippet,
		})
	}
	return refs
}

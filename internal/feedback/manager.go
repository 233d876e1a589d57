package feedback

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/storage/models"
	"github.com/math-agent/backend/pkg/logger"
)

// Type is the kind of feedback a user can submit on an answer.
type Type string

const (
	TypePositive      Type = "positive"
	TypeNegative      Type = "negative"
	TypeCorrection    Type = "correction"
	TypeClarification Type = "clarification"
)

// Actions emitted by the typed handlers.
const (
	ActionLogPositive      = "log_positive_signal"
	ActionLogNegative      = "log_negative_signal"
	ActionEscalate         = "escalate_for_review"
	ActionStoreCorrection  = "store_correction"
	ActionFlagSources      = "flag_sources_for_review"
	ActionLogClarification = "log_clarification_request"
)

const (
	// A confident answer that still drew negative feedback is the case
	// worth a human look.
	escalationThreshold = 0.7
	// Corrections against confident answers also implicate the sources
	// that backed them.
	sourceReviewThreshold = 0.6
)

// Store persists feedback durably and resolves answers that predate the
// in-memory registry, such as records from before a restart.
type Store interface {
	StoreFeedback(record *models.FeedbackRecord) (string, error)
	ListFeedback(queryID string) ([]models.FeedbackRecord, error)
	FeedbackStats() (*models.FeedbackStats, error)
	GetAnswerRecord(id string) (*models.AnswerRecord, error)
}

// Submission is one piece of user feedback on a resolved query.
type Submission struct {
	QueryID         string `json:"queryId"`
	Type            Type   `json:"type"`
	Text            string `json:"text,omitempty"`
	CorrectedAnswer string `json:"correctedAnswer,omitempty"`
}

// Result reports what the feedback loop did with a submission. Processed is
// true only when the typed handler and the store both succeeded.
type Result struct {
	FeedbackID string   `json:"feedbackId,omitempty"`
	Processed  bool     `json:"processed"`
	Actions    []string `json:"actions,omitempty"`
	Message    string   `json:"message,omitempty"`
}

type answerEntry struct {
	question   string
	answer     string
	confidence float64
}

type Manager struct {
	mu      sync.RWMutex
	answers map[string]answerEntry
	store   Store
}

func NewManager(store Store) *Manager {
	return &Manager{
		answers: make(map[string]answerEntry),
		store:   store,
	}
}

// RegisterAnswer records a resolved query so later feedback can be matched
// to it. Re-registering an id keeps the first entry.
func (m *Manager) RegisterAnswer(queryID, question, answer string, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.answers[queryID]; exists {
		return
	}
	m.answers[queryID] = answerEntry{
		question:   question,
		answer:     answer,
		confidence: confidence,
	}
}

// Submit routes a submission to its typed handler. Every failure mode,
// including handler panics, comes back as an unprocessed Result rather than
// an error to the transport.
func (m *Manager) Submit(sub Submission) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Feedback handler fault", zap.Any("panic", r), zap.String("query_id", sub.QueryID))
			result = &Result{Message: "internal fault while processing feedback"}
		}
	}()

	if strings.TrimSpace(sub.QueryID) == "" {
		return &Result{Message: "queryId is required"}
	}

	entry, known := m.resolveAnswer(sub.QueryID)
	if !known {
		return &Result{Message: fmt.Sprintf("unknown query id %q", sub.QueryID)}
	}

	var actions []string
	var err error
	switch sub.Type {
	case TypePositive:
		actions, err = m.handlePositive(sub, entry)
	case TypeNegative:
		actions, err = m.handleNegative(sub, entry)
	case TypeCorrection:
		actions, err = m.handleCorrection(sub, entry)
	case TypeClarification:
		actions, err = m.handleClarification(sub, entry)
	default:
		return &Result{Message: fmt.Sprintf("unknown feedback type %q", sub.Type)}
	}
	if err != nil {
		return &Result{Message: err.Error()}
	}

	record := &models.FeedbackRecord{
		QueryID:          sub.QueryID,
		Type:             string(sub.Type),
		Text:             sub.Text,
		CorrectedAnswer:  sub.CorrectedAnswer,
		AnswerConfidence: entry.confidence,
		Processed:        true,
		Actions:          actions,
		CreatedAt:        time.Now(),
	}
	feedbackID, err := m.store.StoreFeedback(record)
	if err != nil {
		logger.Error("Failed to persist feedback", zap.Error(err), zap.String("query_id", sub.QueryID))
		return &Result{Message: "failed to persist feedback"}
	}

	logger.Info("Feedback processed",
		zap.String("feedback_id", feedbackID),
		zap.String("query_id", sub.QueryID),
		zap.String("type", string(sub.Type)),
		zap.Strings("actions", actions),
	)

	return &Result{FeedbackID: feedbackID, Processed: true, Actions: actions}
}

// resolveAnswer looks the query up in the in-memory registry first, then in
// the persistent store, so answers recorded before a restart still accept
// feedback. Store hits are cached back into the registry.
func (m *Manager) resolveAnswer(queryID string) (answerEntry, bool) {
	m.mu.RLock()
	entry, known := m.answers[queryID]
	m.mu.RUnlock()
	if known {
		return entry, true
	}

	record, err := m.store.GetAnswerRecord(queryID)
	if err != nil {
		logger.Error("Failed to look up answer record", zap.Error(err), zap.String("query_id", queryID))
		return answerEntry{}, false
	}
	if record == nil {
		return answerEntry{}, false
	}

	m.RegisterAnswer(record.ID, record.Question, record.Answer, record.Confidence)
	return answerEntry{
		question:   record.Question,
		answer:     record.Answer,
		confidence: record.Confidence,
	}, true
}

func (m *Manager) handlePositive(_ Submission, _ answerEntry) ([]string, error) {
	return []string{ActionLogPositive}, nil
}

func (m *Manager) handleNegative(_ Submission, entry answerEntry) ([]string, error) {
	actions := []string{ActionLogNegative}
	if entry.confidence > escalationThreshold {
		actions = append(actions, ActionEscalate)
	}
	return actions, nil
}

func (m *Manager) handleCorrection(sub Submission, entry answerEntry) ([]string, error) {
	if strings.TrimSpace(sub.CorrectedAnswer) == "" {
		return nil, fmt.Errorf("correction feedback requires a correctedAnswer")
	}
	actions := []string{ActionStoreCorrection}
	if entry.confidence > sourceReviewThreshold {
		actions = append(actions, ActionFlagSources)
	}
	return actions, nil
}

func (m *Manager) handleClarification(sub Submission, _ answerEntry) ([]string, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, fmt.Errorf("clarification feedback requires text")
	}
	return []string{ActionLogClarification}, nil
}

// ListForQuery returns the stored feedback for a query id, oldest first.
func (m *Manager) ListForQuery(queryID string) ([]models.FeedbackRecord, error) {
	return m.store.ListFeedback(queryID)
}

// Stats returns the aggregate feedback counters.
func (m *Manager) Stats() (*models.FeedbackStats, error) {
	return m.store.FeedbackStats()
}

package feedback

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-agent/backend/internal/storage/models"
)

type fakeStore struct {
	records []*models.FeedbackRecord
	answers map[string]*models.AnswerRecord
	err     error
}

func (f *fakeStore) StoreFeedback(record *models.FeedbackRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if record.ID == "" {
		record.ID = fmt.Sprintf("fb-%d", len(f.records)+1)
	}
	f.records = append(f.records, record)
	return record.ID, nil
}

func (f *fakeStore) GetAnswerRecord(id string) (*models.AnswerRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[id], nil
}

func (f *fakeStore) ListFeedback(queryID string) ([]models.FeedbackRecord, error) {
	var out []models.FeedbackRecord
	for _, r := range f.records {
		if r.QueryID == queryID {
			out = append(out, *r)
		}
	}
	return out, f.err
}

func (f *fakeStore) FeedbackStats() (*models.FeedbackStats, error) {
	return &models.FeedbackStats{Total: len(f.records)}, f.err
}

func newManagerWithAnswer(confidence float64) (*Manager, *fakeStore) {
	store := &fakeStore{}
	m := NewManager(store)
	m.RegisterAnswer("q1", "Solve 2x + 5 = 13", "x = 4", confidence)
	return m, store
}

func TestSubmitPositive(t *testing.T) {
	m, store := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: TypePositive})

	assert.True(t, result.Processed)
	assert.NotEmpty(t, result.FeedbackID)
	assert.Equal(t, []string{ActionLogPositive}, result.Actions)
	require.Len(t, store.records, 1)
	assert.True(t, store.records[0].Processed)
	assert.Equal(t, result.FeedbackID, store.records[0].ID)
}

func TestSubmitNegativeEscalatesConfidentAnswer(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeNegative, Text: "wrong"})

	assert.True(t, result.Processed)
	assert.Contains(t, result.Actions, ActionEscalate)
}

func TestSubmitNegativeLowConfidenceNoEscalation(t *testing.T) {
	m, _ := newManagerWithAnswer(0.5)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeNegative})

	assert.True(t, result.Processed)
	assert.Equal(t, []string{ActionLogNegative}, result.Actions)
}

func TestSubmitCorrectionRequiresCorrectedAnswer(t *testing.T) {
	m, store := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeCorrection})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "correctedAnswer")
	assert.Empty(t, store.records)
}

func TestSubmitCorrectionFlagsSources(t *testing.T) {
	m, _ := newManagerWithAnswer(0.75)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeCorrection, CorrectedAnswer: "x = 5"})

	assert.True(t, result.Processed)
	assert.Equal(t, []string{ActionStoreCorrection, ActionFlagSources}, result.Actions)
}

func TestSubmitCorrectionLowConfidenceNoSourceFlag(t *testing.T) {
	m, _ := newManagerWithAnswer(0.4)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeCorrection, CorrectedAnswer: "x = 5"})

	assert.True(t, result.Processed)
	assert.Equal(t, []string{ActionStoreCorrection}, result.Actions)
}

func TestSubmitClarificationRequiresText(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeClarification})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "text")
}

func TestSubmitUnknownQuery(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "missing", Type: TypePositive})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "unknown query id")
}

func TestSubmitResolvesPersistedAnswer(t *testing.T) {
	// An answer only present in the store, as after a restart, still
	// accepts feedback and keeps its stored confidence for escalation.
	store := &fakeStore{answers: map[string]*models.AnswerRecord{
		"persisted-q1": {ID: "persisted-q1", Question: "Solve 2x + 5 = 13", Answer: "x = 4", Confidence: 0.9},
	}}
	m := NewManager(store)

	result := m.Submit(Submission{QueryID: "persisted-q1", Type: TypeNegative, Text: "wrong"})

	assert.True(t, result.Processed)
	assert.Contains(t, result.Actions, ActionEscalate)
	require.Len(t, store.records, 1)
	assert.Equal(t, "persisted-q1", store.records[0].QueryID)
}

func TestSubmitAnswerLookupFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db locked")}
	m := NewManager(store)

	result := m.Submit(Submission{QueryID: "q1", Type: TypePositive})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "unknown query id")
}

func TestSubmitUnknownType(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: "rant"})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "unknown feedback type")
}

func TestSubmitStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	m := NewManager(store)
	m.RegisterAnswer("q1", "2 + 2", "4", 0.9)

	result := m.Submit(Submission{QueryID: "q1", Type: TypePositive})

	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "persist")
}

func TestRegisterAnswerIdempotent(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)

	// Replayed registration keeps the original confidence.
	m.RegisterAnswer("q1", "Solve 2x + 5 = 13", "x = 4", 0.1)

	result := m.Submit(Submission{QueryID: "q1", Type: TypeNegative})
	assert.Contains(t, result.Actions, ActionEscalate)
}

func TestListForQuery(t *testing.T) {
	m, _ := newManagerWithAnswer(0.9)
	m.Submit(Submission{QueryID: "q1", Type: TypePositive})
	m.Submit(Submission{QueryID: "q1", Type: TypeNegative})

	records, err := m.ListForQuery("q1")

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

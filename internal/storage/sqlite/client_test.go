package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-agent/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(":memory:")
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleRecord(id string) *models.AnswerRecord {
	return &models.AnswerRecord{
		ID:                  id,
		Question:            "Solve 2x + 5 = 13",
		Answer:              "x = 4",
		SourceKind:          "reasoning",
		Confidence:          0.9,
		KnowledgeConfidence: 0.55,
		WebSearchUsed:       true,
		ReasoningTrace:      []string{"searched knowledge base (confidence 0.55)", "generated solution with reasoning model"},
		UserID:              "user-7",
		LatencyMS:           120,
		CreatedAt:           time.Now(),
	}
}

func TestInsertAndGetAnswerRecord(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.InsertAnswerRecord(sampleRecord("q1")))

	got, err := c.GetAnswerRecord("q1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Solve 2x + 5 = 13", got.Question)
	assert.Equal(t, "reasoning", got.SourceKind)
	assert.True(t, got.WebSearchUsed)
	assert.InDelta(t, 0.55, got.KnowledgeConfidence, 1e-9)
	assert.Equal(t, "user-7", got.UserID)
	require.Len(t, got.ReasoningTrace, 2)
	assert.Equal(t, "searched knowledge base (confidence 0.55)", got.ReasoningTrace[0])
}

func TestInsertAnswerRecordIdempotent(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.InsertAnswerRecord(sampleRecord("q1")))

	dup := sampleRecord("q1")
	dup.Answer = "something else"
	require.NoError(t, c.InsertAnswerRecord(dup))

	got, err := c.GetAnswerRecord("q1")
	require.NoError(t, err)
	assert.Equal(t, "x = 4", got.Answer)
}

func TestGetAnswerRecordMissing(t *testing.T) {
	c := newTestClient(t)

	got, err := c.GetAnswerRecord("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAnswerSources(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.InsertAnswerRecord(sampleRecord("q1")))

	require.NoError(t, c.InsertAnswerSource(&models.AnswerSource{
		QueryID: "q1", Origin: "web_search", Title: "Khan Academy", URL: "https://khanacademy.org",
	}))
	require.NoError(t, c.InsertAnswerSource(&models.AnswerSource{
		QueryID: "q1", Origin: "knowledge_store", Title: "Algebra Notes", URL: "https://example.org",
	}))

	sources, err := c.GetAnswerSources("q1")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "web_search", sources[0].Origin)
	assert.Equal(t, "Algebra Notes", sources[1].Title)
}

func TestFeedbackRoundTrip(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.InsertAnswerRecord(sampleRecord("q1")))

	id, err := c.StoreFeedback(&models.FeedbackRecord{
		QueryID:          "q1",
		Type:             "negative",
		Text:             "The final step is wrong",
		AnswerConfidence: 0.9,
		Processed:        true,
		Actions:          []string{"log_negative", "escalate_for_review"},
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := c.ListFeedback("q1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "negative", records[0].Type)
	assert.True(t, records[0].Processed)
	assert.Equal(t, []string{"log_negative", "escalate_for_review"}, records[0].Actions)
}

func TestFeedbackStats(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.InsertAnswerRecord(sampleRecord("q1")))

	for _, rec := range []*models.FeedbackRecord{
		{QueryID: "q1", Type: "positive", Processed: true, CreatedAt: time.Now()},
		{QueryID: "q1", Type: "negative", Processed: true, Actions: []string{"escalate_for_review"}, CreatedAt: time.Now()},
		{QueryID: "q1", Type: "negative", CreatedAt: time.Now().AddDate(0, 0, -10)},
	} {
		_, err := c.StoreFeedback(rec)
		require.NoError(t, err)
	}

	stats, err := c.FeedbackStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByType["negative"])
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Escalated)
	assert.Equal(t, 2, stats.RecentWeek)
}

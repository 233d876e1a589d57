package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/storage/models"
	"github.com/math-agent/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_logs (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		confidence REAL NOT NULL,
		knowledge_confidence REAL NOT NULL,
		web_search_used INTEGER DEFAULT 0,
		reasoning_trace TEXT,
		user_id TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_logs_created ON query_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_query_logs_source ON query_logs(source_kind);

	CREATE TABLE IF NOT EXISTS answer_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		origin TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		snippet TEXT,
		FOREIGN KEY (query_id) REFERENCES query_logs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_sources_query ON answer_sources(query_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		query_id TEXT NOT NULL,
		type TEXT NOT NULL,
		text TEXT,
		corrected_answer TEXT,
		answer_confidence REAL,
		processed INTEGER DEFAULT 0,
		actions TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_logs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_type ON feedback(type);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertAnswerRecord stores a resolved query. Replays of the same query id
// are ignored so resolution stays idempotent.
func (c *Client) InsertAnswerRecord(record *models.AnswerRecord) error {
	query := `
		INSERT OR IGNORE INTO query_logs (id, question, answer, source_kind, confidence,
			knowledge_confidence, web_search_used, reasoning_trace, user_id, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	webSearchUsed := 0
	if record.WebSearchUsed {
		webSearchUsed = 1
	}

	traceJSON, _ := json.Marshal(record.ReasoningTrace)

	_, err := c.db.Exec(
		query,
		record.ID,
		record.Question,
		record.Answer,
		record.SourceKind,
		record.Confidence,
		record.KnowledgeConfidence,
		webSearchUsed,
		string(traceJSON),
		record.UserID,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert answer record: %w", err)
	}

	logger.Info("Answer recorded",
		zap.String("query_id", record.ID),
		zap.String("source", record.SourceKind),
		zap.Float64("confidence", record.Confidence),
	)

	return nil
}

func (c *Client) InsertAnswerSource(src *models.AnswerSource) error {
	query := `INSERT INTO answer_sources (query_id, origin, title, url, snippet) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		src.QueryID,
		src.Origin,
		src.Title,
		src.URL,
		src.Snippet,
	)

	if err != nil {
		return fmt.Errorf("failed to insert answer source: %w", err)
	}

	return nil
}

func (c *Client) GetAnswerRecord(id string) (*models.AnswerRecord, error) {
	query := `
		SELECT id, question, answer, source_kind, confidence, knowledge_confidence,
			web_search_used, reasoning_trace, user_id, latency_ms, created_at
		FROM query_logs WHERE id = ?
	`

	var r models.AnswerRecord
	var webSearchUsed int
	var traceJSON sql.NullString
	var userID sql.NullString
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&r.ID,
		&r.Question,
		&r.Answer,
		&r.SourceKind,
		&r.Confidence,
		&r.KnowledgeConfidence,
		&webSearchUsed,
		&traceJSON,
		&userID,
		&r.LatencyMS,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer record: %w", err)
	}

	r.WebSearchUsed = webSearchUsed == 1
	if traceJSON.Valid {
		json.Unmarshal([]byte(traceJSON.String), &r.ReasoningTrace)
	}
	r.UserID = userID.String
	r.CreatedAt = time.Unix(createdAt, 0)

	return &r, nil
}

func (c *Client) GetAnswerSources(queryID string) ([]models.AnswerSource, error) {
	query := `SELECT id, query_id, origin, title, url, snippet FROM answer_sources WHERE query_id = ? ORDER BY id`

	rows, err := c.db.Query(query, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer sources: %w", err)
	}
	defer rows.Close()

	var sources []models.AnswerSource
	for rows.Next() {
		var s models.AnswerSource
		if err := rows.Scan(&s.ID, &s.QueryID, &s.Origin, &s.Title, &s.URL, &s.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

func (c *Client) GetRecentAnswers(limit int) ([]models.AnswerRecord, error) {
	query := `
		SELECT id, question, answer, source_kind, confidence, created_at
		FROM query_logs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	var records []models.AnswerRecord
	for rows.Next() {
		var r models.AnswerRecord
		var createdAt int64

		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &r.SourceKind, &r.Confidence, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

// StoreFeedback persists a feedback record and returns its id, generating
// one when the record does not already carry it.
func (c *Client) StoreFeedback(record *models.FeedbackRecord) (string, error) {
	actionsJSON, _ := json.Marshal(record.Actions)

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	processed := 0
	if record.Processed {
		processed = 1
	}

	query := `
		INSERT INTO feedback (id, query_id, type, text, corrected_answer, answer_confidence, processed, actions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.QueryID,
		record.Type,
		record.Text,
		record.CorrectedAnswer,
		record.AnswerConfidence,
		processed,
		string(actionsJSON),
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return "", fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("feedback_id", record.ID),
		zap.String("query_id", record.QueryID),
		zap.String("type", record.Type),
	)

	return record.ID, nil
}

func (c *Client) ListFeedback(queryID string) ([]models.FeedbackRecord, error) {
	query := `
		SELECT id, query_id, type, text, corrected_answer, answer_confidence, processed, actions, created_at
		FROM feedback
		WHERE query_id = ?
		ORDER BY created_at
	`

	rows, err := c.db.Query(query, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var records []models.FeedbackRecord
	for rows.Next() {
		var r models.FeedbackRecord
		var processed int
		var actionsJSON string
		var createdAt int64

		if err := rows.Scan(&r.ID, &r.QueryID, &r.Type, &r.Text, &r.CorrectedAnswer,
			&r.AnswerConfidence, &processed, &actionsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Processed = processed == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		json.Unmarshal([]byte(actionsJSON), &r.Actions)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) FeedbackStats() (*models.FeedbackStats, error) {
	stats := &models.FeedbackStats{ByType: make(map[string]int)}

	rows, err := c.db.Query(`SELECT type, COUNT(*) FROM feedback GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var feedbackType string
		var count int
		if err := rows.Scan(&feedbackType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats.ByType[feedbackType] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = c.db.QueryRow(`SELECT COUNT(*) FROM feedback WHERE processed = 1`).Scan(&stats.Processed)
	if err != nil {
		return nil, fmt.Errorf("failed to count processed feedback: %w", err)
	}

	err = c.db.QueryRow(`SELECT COUNT(*) FROM feedback WHERE actions LIKE '%escalate%'`).Scan(&stats.Escalated)
	if err != nil {
		return nil, fmt.Errorf("failed to count escalations: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7).Unix()
	err = c.db.QueryRow(`SELECT COUNT(*) FROM feedback WHERE created_at >= ?`, weekAgo).Scan(&stats.RecentWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent feedback: %w", err)
	}

	return stats, nil
}

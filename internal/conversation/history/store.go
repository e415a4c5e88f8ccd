// Package history persists chat turns so later messages can be analyzed with
// their recent context.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/models"
)

// Store reads and appends conversation turns.
type Store interface {
	Append(ctx context.Context, turn models.ConversationTurn) (models.ConversationTurn, error)
	Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error)
}

// Schema creates the turns table. It is applied by migrations or by tests
// against a live database.
const Schema = `
CREATE TABLE IF NOT EXISTS conversation_turns (
	id          UUID PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	role        TEXT        NOT NULL,
	content     TEXT        NOT NULL,
	attachments JSONB,
	summary     JSONB,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversation_turns_session_idx ON conversation_turns (session_id, created_at DESC);`

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Append stores turn, assigning an id and timestamp when they are missing.
func (s *PostgresStore) Append(ctx context.Context, turn models.ConversationTurn) (models.ConversationTurn, error) {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now().UTC()
	}

	attachments, err := marshalNullable(turn.Attachments, len(turn.Attachments) == 0)
	if err != nil {
		return turn, apperrors.NewHistoryWriteFailedError(fmt.Errorf("marshal attachments: %w", err))
	}
	summary, err := marshalNullable(turn.Summary, turn.Summary == nil)
	if err != nil {
		return turn, apperrors.NewHistoryWriteFailedError(fmt.Errorf("marshal summary: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, session_id, role, content, attachments, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		turn.ID,
		turn.SessionID,
		turn.Role,
		turn.Content,
		attachments,
		summary,
		turn.CreatedAt,
	)
	if err != nil {
		return turn, apperrors.NewHistoryWriteFailedError(err)
	}
	return turn, nil
}

// Recent returns the last n turns of a session, oldest first.
func (s *PostgresStore) Recent(ctx context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, attachments, summary, created_at
		FROM conversation_turns
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, n)
	if err != nil {
		return nil, apperrors.NewHistoryReadFailedError(err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var (
			turn                 models.ConversationTurn
			attachments, summary []byte
		)
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Content, &attachments, &summary, &turn.CreatedAt); err != nil {
			return nil, apperrors.NewHistoryReadFailedError(err)
		}
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &turn.Attachments); err != nil {
				return nil, apperrors.NewHistoryReadFailedError(fmt.Errorf("decode attachments: %w", err))
			}
		}
		if len(summary) > 0 {
			turn.Summary = &models.IntentResult{}
			if err := json.Unmarshal(summary, turn.Summary); err != nil {
				return nil, apperrors.NewHistoryReadFailedError(fmt.Errorf("decode summary: %w", err))
			}
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewHistoryReadFailedError(err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func marshalNullable(v interface{}, empty bool) (interface{}, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}

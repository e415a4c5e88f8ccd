package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/models"
)

var turnColumns = []string{"id", "session_id", "role", "content", "attachments", "summary", "created_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewPostgresStore(db)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return store, mock
}

// ==========================
// Append
// ==========================

func TestPostgresStore_Append(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO conversation_turns`).
		WithArgs(
			sqlmock.AnyArg(), // generated id
			"session-1",
			models.RoleUser,
			"laptop öner",
			nil,
			nil,
			time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	turn, err := store.Append(context.Background(), models.ConversationTurn{
		SessionID: "session-1",
		Role:      models.RoleUser,
		Content:   "laptop öner",
	})

	require.NoError(t, err)
	assert.Len(t, turn.ID, 36)
	assert.False(t, turn.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendWithAttachments(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO conversation_turns`).
		WithArgs("turn-1", "session-1", models.RoleAssistant, "2 ürün buldum", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := store.Append(context.Background(), models.ConversationTurn{
		ID:          "turn-1",
		SessionID:   "session-1",
		Role:        models.RoleAssistant,
		Content:     "2 ürün buldum",
		Attachments: []models.Product{{ID: "p1", Title: "Laptop"}},
		Summary:     &models.IntentResult{Intent: models.IntentShopping, Query: "laptop"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO conversation_turns`).WillReturnError(errors.New("connection reset"))

	_, err := store.Append(context.Background(), models.ConversationTurn{SessionID: "s", Role: models.RoleUser, Content: "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryWriteFailed, apperrors.CodeOf(err))
}

// ==========================
// Recent
// ==========================

func TestPostgresStore_RecentOldestFirst(t *testing.T) {
	store, mock := newMockStore(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(turnColumns).
		AddRow("t3", "session-1", "assistant", "İşte laptoplar", []byte(`[{"id":"p1","title":"Laptop"}]`),
			[]byte(`{"intent":"shopping","query":"laptop","response":"Bakıyorum"}`), base.Add(2*time.Minute)).
		AddRow("t2", "session-1", "user", "laptop öner", nil, nil, base.Add(time.Minute))

	mock.ExpectQuery(`SELECT id, session_id, role, content, attachments, summary, created_at`).
		WithArgs("session-1", 2).
		WillReturnRows(rows)

	turns, err := store.Recent(context.Background(), "session-1", 2)

	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "t2", turns[0].ID)
	assert.Nil(t, turns[0].Attachments)
	assert.Nil(t, turns[0].Summary)
	assert.Equal(t, "t3", turns[1].ID)
	require.Len(t, turns[1].Attachments, 1)
	assert.Equal(t, "Laptop", turns[1].Attachments[0].Title)
	require.NotNil(t, turns[1].Summary)
	assert.Equal(t, "laptop", turns[1].Summary.Query)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecentZeroTurns(t *testing.T) {
	store, mock := newMockStore(t)

	turns, err := store.Recent(context.Background(), "session-1", 0)

	assert.NoError(t, err)
	assert.Empty(t, turns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecentQueryFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id`).WillReturnError(errors.New("relation does not exist"))

	_, err := store.Recent(context.Background(), "session-1", 3)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryReadFailed, apperrors.CodeOf(err))
}

func TestPostgresStore_RecentCorruptSummary(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows(turnColumns).
		AddRow("t1", "session-1", "assistant", "x", nil, []byte(`not json`), time.Now())
	mock.ExpectQuery(`SELECT id`).WillReturnRows(rows)

	_, err := store.Recent(context.Background(), "session-1", 3)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryReadFailed, apperrors.CodeOf(err))
}

package analyzeusermessage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finda-workers/internal/assistant/fallback"
	"finda-workers/internal/assistant/intent"
	apperrors "finda-workers/internal/common/errors"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeAnalyzer struct {
	analysis    intent.Analysis
	gotMessage  string
	gotHistory  []models.ConversationTurn
	invocations int
}

func (f *fakeAnalyzer) Resolve(_ context.Context, message string, history []models.ConversationTurn) intent.Analysis {
	f.invocations++
	f.gotMessage = message
	f.gotHistory = history
	return f.analysis
}

type fakeHistory struct {
	turns   []models.ConversationTurn
	err     error
	gotID   string
	gotN    int
	invoked bool
}

func (f *fakeHistory) Recent(_ context.Context, sessionID string, n int) ([]models.ConversationTurn, error) {
	f.invoked = true
	f.gotID = sessionID
	f.gotN = n
	return f.turns, f.err
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, HistoryTurns: 3}
}

func shoppingAnalysis(query string) intent.Analysis {
	return intent.Analysis{
		Result: models.IntentResult{Intent: models.IntentShopping, Query: query, Response: "Bakıyorum"},
		Source: "gemini",
		Model:  "gemini-2.5-flash",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		analysis       intent.Analysis
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name:     "shopping with query searches",
			analysis: shoppingAnalysis("laptop"),
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, models.IntentShopping, out.Intent)
				assert.Equal(t, "laptop", out.Query)
				assert.True(t, out.ShouldSearch)
				assert.Equal(t, "gemini", out.Source)
				assert.Equal(t, "gemini-2.5-flash", out.Model)
			},
		},
		{
			name: "shopping without query answers not found",
			analysis: intent.Analysis{
				Result: models.IntentResult{Intent: models.IntentShopping, Query: "  ", Response: "Bakıyorum"},
				Source: "gemini",
			},
			validateOutput: func(t *testing.T, out *Output) {
				assert.False(t, out.ShouldSearch)
				assert.Equal(t, models.ErrEmptyQuery, out.Error)
				assert.Equal(t, `"bir şey" için ürün bulunamadı. Başka bir şey aramak ister misiniz?`, out.Response)
				assert.NotContains(t, out.Response, "Bakıyorum")
			},
		},
		{
			name: "chat does not search",
			analysis: intent.Analysis{
				Result: models.IntentResult{Intent: models.IntentChat, Query: "ignored", Response: "Merhaba!"},
				Source: intent.SourceSmallTalk,
			},
			validateOutput: func(t *testing.T, out *Output) {
				assert.False(t, out.ShouldSearch)
				assert.Equal(t, "Merhaba!", out.Response)
				assert.Empty(t, out.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{analysis: tt.analysis}
			handler := NewHandler(createTestConfig(), analyzer, nil, logger.NewTestLogger(t))

			out, err := handler.Execute(context.Background(), &Input{Message: "bir şey"})

			require.NoError(t, err)
			tt.validateOutput(t, out)
		})
	}
}

func TestHandler_Execute_EmptyMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	handler := NewHandler(createTestConfig(), analyzer, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Message: "   "})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	assert.Equal(t, 0, analyzer.invocations)
}

// ==========================
// History Tests
// ==========================

func TestHandler_Execute_LoadsSessionHistory(t *testing.T) {
	stored := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "laptop öner"},
		{Role: models.RoleAssistant, Content: "Hangi bütçe?"},
	}
	history := &fakeHistory{turns: stored}
	analyzer := &fakeAnalyzer{analysis: shoppingAnalysis("laptop")}
	handler := NewHandler(createTestConfig(), analyzer, history, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Message: "20 bin altı", SessionID: "session-1"})

	require.NoError(t, err)
	assert.Equal(t, "session-1", history.gotID)
	assert.Equal(t, 3, history.gotN)
	assert.Equal(t, stored, analyzer.gotHistory)
}

func TestHandler_Execute_InlineHistoryWins(t *testing.T) {
	history := &fakeHistory{}
	analyzer := &fakeAnalyzer{analysis: shoppingAnalysis("laptop")}
	handler := NewHandler(createTestConfig(), analyzer, history, logger.NewTestLogger(t))

	inline := []models.ConversationTurn{{Role: models.RoleUser, Content: "merhaba"}}
	_, err := handler.Execute(context.Background(), &Input{Message: "laptop", SessionID: "s", History: inline})

	require.NoError(t, err)
	assert.False(t, history.invoked)
	assert.Equal(t, inline, analyzer.gotHistory)
}

func TestHandler_Execute_HistoryFailure(t *testing.T) {
	history := &fakeHistory{err: apperrors.NewHistoryReadFailedError(errors.New("connection refused"))}
	analyzer := &fakeAnalyzer{}
	handler := NewHandler(createTestConfig(), analyzer, history, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Message: "laptop", SessionID: "s"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryReadFailed, apperrors.CodeOf(err))
	assert.Equal(t, 0, analyzer.invocations)
}

// ==========================
// Integration with the orchestrator
// ==========================

func TestHandler_Execute_OfflineOrchestrator(t *testing.T) {
	orch := intent.NewOrchestrator(nil, intent.Options{}, logger.NewTestLogger(t))
	handler := NewHandler(createTestConfig(), orch, nil, logger.NewTestLogger(t))

	out, err := handler.Execute(context.Background(), &Input{Message: "merhaba"})
	require.NoError(t, err)
	assert.Equal(t, models.IntentChat, out.Intent)
	assert.Equal(t, intent.SourceSmallTalk, out.Source)

	out, err = handler.Execute(context.Background(), &Input{Message: "laptop öneri"})
	require.NoError(t, err)
	assert.Equal(t, models.IntentShopping, out.Intent)
	assert.Equal(t, "laptop", out.Query)
	assert.True(t, out.ShouldSearch)
	assert.Equal(t, intent.SourceFallback, out.Source)
	assert.Contains(t, out.Response, "Kısıtlı Mod")
}

func TestHandler_Execute_FallbackPrompt(t *testing.T) {
	orch := intent.NewOrchestrator(nil, intent.Options{}, logger.NewTestLogger(t))
	handler := NewHandler(createTestConfig(), orch, nil, logger.NewTestLogger(t))

	out, err := handler.Execute(context.Background(), &Input{Message: "bugün hava çok güzel"})

	require.NoError(t, err)
	assert.Equal(t, fallback.PromptReply, out.Response)
	assert.False(t, out.ShouldSearch)
}

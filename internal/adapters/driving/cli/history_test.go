package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrimonia-labs/sitechat/internal/core/domain"
	"github.com/patrimonia-labs/sitechat/internal/core/ports/driven"
)

func TestHistoryListCmd_Empty(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations found.")
}

func TestHistoryListCmd_PrintsSummaries(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()
	history.summaries = []domain.ConversationSummary{
		{ID: "conv-1", Title: "Punic ports", TurnCount: 4, UpdatedAt: time.Now()},
	}

	out, err := execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "conv-1")
	assert.Contains(t, out, "Punic ports")
	assert.Contains(t, out, "4 turns")
}

func TestHistoryShowCmd_PrintsTurns(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()
	history.turns = []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "ports?"},
		{Role: domain.RoleAssistant, Content: "South of Byrsa.",
			Sources: []domain.SourceRef{{DocumentID: 1, Site: "Carthage", Relevance: 0.9}}},
	}

	out, err := execute(t, "history", "show", "conv-1")
	require.NoError(t, err)
	assert.Contains(t, out, "You: ports?")
	assert.Contains(t, out, "Assistant: South of Byrsa.")
	assert.Contains(t, out, "Carthage")
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()
	history.err = domain.ErrNotFound

	_, err := execute(t, "history", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation not found")
}

func TestHistoryRenameCmd(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history", "rename", "conv-1", "New title")
	require.NoError(t, err)
	assert.Equal(t, "New title", history.renamed["conv-1"])
	assert.Contains(t, out, "Renamed.")
}

func TestHistoryDeleteCmd(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history", "delete", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"conv-1"}, history.deleted)
	assert.Contains(t, out, "Deleted.")
}

func TestHistoryStatsCmd(t *testing.T) {
	_, _, history, cleanup := setupTestServices()
	defer cleanup()
	history.stats = driven.HistoryStats{Conversations: 3, Turns: 12}

	out, err := execute(t, "history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversations: 3")
	assert.Contains(t, out, "Turns:         12")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitechat version")
}

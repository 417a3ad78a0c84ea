package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/llm"
	"github.com/hyperdoc/kotae/internal/models"
	"github.com/hyperdoc/kotae/internal/search"
	"github.com/hyperdoc/kotae/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient returns a fixed response and records the messages it was given.
type scriptedClient struct {
	response string
	err      error
	messages []models.ChatTurn
	maxTok   int
}

func (c *scriptedClient) Generate(ctx context.Context, messages []models.ChatTurn, maxTokens int) (string, error) {
	c.messages = messages
	c.maxTok = maxTokens
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newAssembler(t *testing.T, client llm.ChatClient, texts ...string) *Assembler {
	t.Helper()
	embedder := embedding.NewHashEmbedder(384, 100)
	s := store.New(embedder, zap.NewNop())
	pages := make([]models.PageText, len(texts))
	for i, text := range texts {
		pages[i] = models.PageText{PageNumber: i + 1, Text: text}
	}
	_, err := s.AddDocument(context.Background(), "doc-1", pages, models.Metadata{})
	require.NoError(t, err)
	return NewAssembler(search.NewRetriever(s, embedder), client, Options{}, zap.NewNop())
}

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []int
	}{
		{"dedupe and case", "See [page 2] and [PAGE 2] and [page 1].", []int{1, 2}},
		{"none", "No citations here.", []int{}},
		{"sorted ascending", "First [page 7], then [page 3], then [page 5].", []int{3, 5, 7}},
		{"mixed case single", "[Page 4] covers it.", []int{4}},
		{"ignores malformed", "[page ] and [page abc] and [page 12]", []int{12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCitations(tt.response))
		})
	}
}

func TestAssembler_Answer(t *testing.T) {
	client := &scriptedClient{response: "The risks are competition [page 2]."}
	a := newAssembler(t, client, "Revenue grew 10%", "Risks include competition")

	answer, err := a.Answer(context.Background(), "doc-1", "What were the risks", nil)
	require.NoError(t, err)

	assert.Equal(t, "The risks are competition [page 2].", answer.Response)
	assert.Equal(t, []int{2}, answer.Citations)
	require.Len(t, answer.RelevantPages, 2)
	// Relevant pages mirror retrieval order (descending similarity), not citations.
	assert.Equal(t, 2, answer.RelevantPages[0].PageNumber)
	assert.True(t, strings.HasSuffix(answer.RelevantPages[0].Preview, "..."))
	assert.Equal(t, 1000, client.maxTok)
}

func TestAssembler_MessageSequence(t *testing.T) {
	client := &scriptedClient{response: "ok"}
	a := newAssembler(t, client, "alpha page", "beta page")

	history := []models.ChatTurn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}
	_, err := a.Answer(context.Background(), "doc-1", "alpha", history)
	require.NoError(t, err)

	require.Len(t, client.messages, 4)
	system := client.messages[0]
	assert.Equal(t, models.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "[page X]")
	assert.Contains(t, system.Content, "[Page 1]\nalpha page")
	assert.Contains(t, system.Content, "\n\n---\n\n")
	// Context blocks appear in descending-similarity order: "alpha" matches page 1.
	assert.Less(t,
		strings.Index(system.Content, "[Page 1]"),
		strings.Index(system.Content, "[Page 2]"),
	)
	assert.Equal(t, history[0], client.messages[1])
	assert.Equal(t, history[1], client.messages[2])
	assert.Equal(t, models.ChatTurn{Role: models.RoleUser, Content: "alpha"}, client.messages[3])
}

func TestAssembler_PreviewLength(t *testing.T) {
	long := strings.Repeat("word ", 100) // 500 chars
	client := &scriptedClient{response: "ok"}
	a := newAssembler(t, client, long)

	answer, err := a.Answer(context.Background(), "doc-1", "word", nil)
	require.NoError(t, err)
	require.Len(t, answer.RelevantPages, 1)
	preview := answer.RelevantPages[0].Preview
	assert.Len(t, preview, 203) // 200 chars + "..."
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestAssembler_GenerationFailed(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("%w: rate limited", llm.ErrGenerationFailed)}
	a := newAssembler(t, client, "some page")

	_, err := a.Answer(context.Background(), "doc-1", "anything", nil)
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
}

func TestAssembler_UnknownDocument(t *testing.T) {
	client := &scriptedClient{response: "ok"}
	a := newAssembler(t, client, "some page")

	_, err := a.Answer(context.Background(), "nonexistent-id", "anything", nil)
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestAssembler_InvalidHistory(t *testing.T) {
	client := &scriptedClient{response: "ok"}
	a := newAssembler(t, client, "some page")

	bad := []models.ChatTurn{{Role: "narrator", Content: "meanwhile"}}
	_, err := a.Answer(context.Background(), "doc-1", "anything", bad)
	assert.ErrorIs(t, err, models.ErrMissingField)

	empty := []models.ChatTurn{{Role: models.RoleUser, Content: ""}}
	_, err = a.Answer(context.Background(), "doc-1", "anything", empty)
	assert.ErrorIs(t, err, models.ErrMissingField)

	assert.Nil(t, client.messages, "generation should not run with invalid history")
}

func TestSuggestions(t *testing.T) {
	s := Suggestions()
	require.NotEmpty(t, s)
	assert.Equal(t, "What is the main topic of this document?", s[0])
}

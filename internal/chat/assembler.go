// Package chat assembles cited answers from retrieved pages and a chat model.
package chat

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperdoc/kotae/internal/llm"
	"github.com/hyperdoc/kotae/internal/models"
	"github.com/hyperdoc/kotae/internal/search"
	"github.com/hyperdoc/kotae/pkg/utils"
	"go.uber.org/zap"
)

// citationPattern matches in-text page citations like "[page 3]", case-insensitively.
var citationPattern = regexp.MustCompile(`(?i)\[page (\d+)\]`)

const systemPromptFormat = `You are a helpful AI assistant that answers questions about documents.

Guidelines:
- Provide accurate, concise answers based on the provided context
- Always cite the specific page numbers where you found the information
- Use the format [page X] to cite pages in your response
- If the answer is not in the context, say so clearly
- Be conversational but professional
- Keep responses focused and relevant to the question

Context from the document:
%s`

// Options tunes answer assembly. Zero values fall back to the defaults used
// by DefaultOptions.
type Options struct {
	// TopK is how many pages are retrieved as context.
	TopK int
	// MaxTokens is the generation token budget.
	MaxTokens int
	// PreviewLength is how many characters of each relevant page are echoed
	// back with the answer.
	PreviewLength int
}

// DefaultOptions returns the reference assembly parameters.
func DefaultOptions() Options {
	return Options{TopK: 3, MaxTokens: 1000, PreviewLength: 200}
}

// Assembler answers questions about a stored document: it retrieves the most
// relevant pages, prompts the chat model with them, and extracts page
// citations from the response. It holds no mutable state.
type Assembler struct {
	retriever *search.Retriever
	client    llm.ChatClient
	opts      Options
	logger    *zap.Logger
}

// NewAssembler creates an assembler over the given retriever and chat client.
func NewAssembler(retriever *search.Retriever, client llm.ChatClient, opts Options, logger *zap.Logger) *Assembler {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = def.PreviewLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{retriever: retriever, client: client, opts: opts, logger: logger}
}

// Answer resolves query against documentID: retrieves the top pages, invokes
// the chat model with the context block plus the caller's conversation
// history, and reports the cited page numbers and the retrieved pages.
// Retrieval and citation are independent; the model may cite a page that was
// not retrieved or skip one that was.
func (a *Assembler) Answer(ctx context.Context, documentID, query string, history []models.ChatTurn) (*models.Answer, error) {
	for _, turn := range history {
		if err := turn.Validate(); err != nil {
			return nil, fmt.Errorf("conversation history: %w", err)
		}
	}

	relevant, err := a.retriever.Search(ctx, documentID, query, a.opts.TopK)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("retrieved context pages",
		zap.String("document_id", documentID),
		zap.Int("pages", len(relevant)),
	)

	messages := a.buildMessages(query, relevant, history)
	response, err := a.client.Generate(ctx, messages, a.opts.MaxTokens)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		Response:      response,
		Citations:     ExtractCitations(response),
		RelevantPages: make([]models.RelevantPage, len(relevant)),
	}
	for i, page := range relevant {
		answer.RelevantPages[i] = models.RelevantPage{
			PageNumber: page.PageNumber,
			Similarity: page.Similarity,
			Preview:    utils.Preview(page.Text, a.opts.PreviewLength),
		}
	}
	a.logger.Debug("answer assembled",
		zap.String("document_id", documentID),
		zap.Int("citations", len(answer.Citations)),
	)
	return answer, nil
}

// buildMessages constructs the prompt: one system turn with the context block,
// the caller's history verbatim, then the raw query as the final user turn.
func (a *Assembler) buildMessages(query string, relevant []models.SearchResult, history []models.ChatTurn) []models.ChatTurn {
	blocks := make([]string, len(relevant))
	for i, page := range relevant {
		blocks[i] = fmt.Sprintf("[Page %d]\n%s", page.PageNumber, page.Text)
	}
	contextBlock := strings.Join(blocks, "\n\n---\n\n")

	messages := make([]models.ChatTurn, 0, len(history)+2)
	messages = append(messages, models.ChatTurn{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, contextBlock),
	})
	messages = append(messages, history...)
	messages = append(messages, models.ChatTurn{Role: models.RoleUser, Content: query})
	return messages
}

// ExtractCitations scans response text for "[page N]" markers and returns the
// distinct page numbers in ascending order. Matching is case-insensitive and
// best-effort: it depends on the model following the citation format.
func ExtractCitations(response string) []int {
	seen := make(map[int]bool)
	citations := make([]int, 0)
	for _, match := range citationPattern.FindAllStringSubmatch(response, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		citations = append(citations, n)
	}
	sort.Ints(citations)
	return citations
}

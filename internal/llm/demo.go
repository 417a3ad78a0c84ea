package llm

import (
	"context"
	"fmt"

	"github.com/hyperdoc/kotae/internal/models"
)

// DemoClient produces canned cited responses without any API key. The
// response is picked deterministically from the query so tests and local
// runs are reproducible.
type DemoClient struct{}

// NewDemoClient returns a demo chat client.
func NewDemoClient() *DemoClient {
	return &DemoClient{}
}

var demoResponses = []string{
	`Based on the document, I found relevant information about %q. The document discusses this topic in detail across multiple sections. [page 1]`,
	`According to the PDF content, %s is mentioned in the context of the main subject matter. You can find more details on [page 2] and [page 3].`,
	`The document provides insights about %s. This information appears in several places throughout the text. See [page 1] for the primary discussion.`,
	`Regarding %q, the document explains this concept thoroughly. The key points are outlined on [page 2] with supporting details on [page 3].`,
	`I found information related to %s in the document. The content suggests this is an important aspect covered in [page 1] and elaborated further in [page 2].`,
}

// Generate returns a canned response referencing the final user message.
func (c *DemoClient) Generate(ctx context.Context, messages []models.ChatTurn, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	query := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			query = messages[i].Content
			break
		}
	}
	var sum int
	for _, r := range query {
		sum += int(r)
	}
	return fmt.Sprintf(demoResponses[sum%len(demoResponses)], query), nil
}

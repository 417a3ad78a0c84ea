package models

import (
	"errors"
	"fmt"
)

// Chat roles accepted in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMissingField indicates a request field that is required but absent or malformed.
var ErrMissingField = errors.New("missing required field")

// ChatTurn is one message of a conversation. Conversations are supplied by the
// caller per request and are not persisted.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validate checks that the turn has a known role and non-empty content.
func (t ChatTurn) Validate() error {
	switch t.Role {
	case RoleSystem, RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("%w: invalid role %q", ErrMissingField, t.Role)
	}
	if t.Content == "" {
		return fmt.Errorf("%w: content", ErrMissingField)
	}
	return nil
}

// RelevantPage is a retrieved page reported alongside an answer, independent
// of whether the model actually cited it.
type RelevantPage struct {
	PageNumber int     `json:"pageNumber"`
	Similarity float64 `json:"similarity"`
	Preview    string  `json:"preview"`
}

// Answer is the assembled response to a question: the generated text, the
// page numbers cited in it, and the pages retrieval considered relevant.
type Answer struct {
	Response      string         `json:"response"`
	Citations     []int          `json:"citations"`
	RelevantPages []RelevantPage `json:"relevantPages"`
}

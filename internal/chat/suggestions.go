package chat

// Suggestions returns prompt suggestions for a document. The list is static;
// callers are expected to check document existence first.
func Suggestions() []string {
	return []string{
		"What is the main topic of this document?",
		"Can you summarize the key points?",
		"What are the conclusions or recommendations?",
		"Explain the main concepts discussed",
	}
}

package prompt

import (
	"fmt"
	"strings"

	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/store"
)

// HistoryWindow is the default bound on how many past turns are replayed
// into the prompt.
const HistoryWindow = 6

// Builder assembles a grounded prompt from retrieved chunks and recent
// conversation history.
type Builder struct {
	question string
	chunks   []store.RetrievedChunk
	history  []store.ChatMessage
	window   int
}

func NewBuilder(question string, chunks []store.RetrievedChunk, history []store.ChatMessage, window int) *Builder {
	if window <= 0 {
		window = HistoryWindow
	}
	return &Builder{
		question: question,
		chunks:   chunks,
		history:  history,
		window:   window,
	}
}

// System returns the instruction block constraining the model to the
// supplied context.
func (b *Builder) System() string {
	return `You are a helpful AI assistant that answers questions based on the provided documents.
Rules:
- Only use information from the provided context
- If the answer isn't in the context, say "I don't have that information in the uploaded documents"
- Be concise and helpful
- Cite sources when possible`
}

// User returns the grounded user prompt: context blocks labeled by source,
// the recent history window and the question.
func (b *Builder) User() string {
	var sb strings.Builder

	sb.WriteString("Context from documents:\n")
	sb.WriteString(b.contextBlock())
	sb.WriteString("\n\n")

	if h := b.historyBlock(); h != "" {
		sb.WriteString("Previous conversation:\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(b.question)
	sb.WriteString("\n\nAnswer based on the context above:")
	return sb.String()
}

// History converts the bounded history window into provider messages.
func (b *Builder) History() []llm.Message {
	recent := b.recentHistory()
	messages := make([]llm.Message, 0, len(recent))
	for _, m := range recent {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

func (b *Builder) contextBlock() string {
	if len(b.chunks) == 0 {
		return "No documents uploaded yet."
	}
	parts := make([]string, 0, len(b.chunks))
	for _, c := range b.chunks {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", c.Source, c.Text))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Builder) historyBlock() string {
	recent := b.recentHistory()
	if len(recent) == 0 {
		return ""
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		speaker := "Assistant"
		if m.Role == store.RoleUser {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}
	return strings.Join(lines, "\n")
}

func (b *Builder) recentHistory() []store.ChatMessage {
	if len(b.history) <= b.window {
		return b.history
	}
	return b.history[len(b.history)-b.window:]
}

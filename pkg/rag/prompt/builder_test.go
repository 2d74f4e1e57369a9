package prompt

import (
	"fmt"
	"strings"
	"testing"

	"doc-assistant-be/pkg/store"
)

func TestUserPromptWithContext(t *testing.T) {
	chunks := []store.RetrievedChunk{
		{Chunk: store.Chunk{Source: "mammals.txt", Text: "Mammals nurse their young."}, Score: 0.9},
		{Chunk: store.Chunk{Source: "whales.txt", Text: "Whales are marine mammals."}, Score: 0.7},
	}
	b := NewBuilder("what is a mammal?", chunks, nil, 0)

	got := b.User()
	if !strings.Contains(got, "[Source: mammals.txt]\nMammals nurse their young.") {
		t.Errorf("missing first source block:\n%s", got)
	}
	if !strings.Contains(got, "[Source: whales.txt]") {
		t.Errorf("missing second source block:\n%s", got)
	}
	if !strings.Contains(got, "Question: what is a mammal?") {
		t.Errorf("missing question:\n%s", got)
	}
	if strings.Contains(got, "Previous conversation:") {
		t.Errorf("empty history must not render a history block:\n%s", got)
	}
}

func TestUserPromptWithoutDocuments(t *testing.T) {
	b := NewBuilder("hello", nil, nil, 0)

	got := b.User()
	if !strings.Contains(got, "No documents uploaded yet.") {
		t.Errorf("missing empty-context marker:\n%s", got)
	}
}

func TestUserPromptHistoryWindow(t *testing.T) {
	var history []store.ChatMessage
	for i := 0; i < 10; i++ {
		history = append(history,
			store.ChatMessage{Role: store.RoleUser, Content: fmt.Sprintf("question %d", i)},
			store.ChatMessage{Role: store.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}
	b := NewBuilder("latest question", nil, history, 0)

	got := b.User()
	if !strings.Contains(got, "Previous conversation:") {
		t.Fatalf("missing history block:\n%s", got)
	}
	// Only the last 6 entries survive: questions 7-9 and answers 7-9.
	if !strings.Contains(got, "User: question 9") || !strings.Contains(got, "Assistant: answer 7") {
		t.Errorf("recent turns missing:\n%s", got)
	}
	if strings.Contains(got, "question 6") {
		t.Errorf("turns beyond the window leaked in:\n%s", got)
	}
}

func TestHistoryMessagesMatchWindow(t *testing.T) {
	var history []store.ChatMessage
	for i := 0; i < 8; i++ {
		history = append(history, store.ChatMessage{Role: store.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	b := NewBuilder("q", nil, history, 0)

	msgs := b.History()
	if len(msgs) != HistoryWindow {
		t.Fatalf("got %d messages, want %d", len(msgs), HistoryWindow)
	}
	if msgs[0].Content != "m2" || msgs[len(msgs)-1].Content != "m7" {
		t.Errorf("window = [%s .. %s], want [m2 .. m7]", msgs[0].Content, msgs[len(msgs)-1].Content)
	}
}

// A configured window larger than the default must be honored, not capped
// back to the default.
func TestConfiguredWindowOverridesDefault(t *testing.T) {
	var history []store.ChatMessage
	for i := 0; i < 10; i++ {
		history = append(history, store.ChatMessage{Role: store.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	wide := NewBuilder("q", nil, history, 8)
	if msgs := wide.History(); len(msgs) != 8 || msgs[0].Content != "m2" {
		t.Errorf("window 8 kept %d messages starting at %q, want 8 from m2", len(msgs), msgs[0].Content)
	}

	narrow := NewBuilder("q", nil, history, 2)
	if msgs := narrow.History(); len(msgs) != 2 || msgs[0].Content != "m8" {
		t.Errorf("window 2 kept %d messages starting at %q, want 2 from m8", len(msgs), msgs[0].Content)
	}
}

func TestSystemPromptConstrainsToContext(t *testing.T) {
	b := NewBuilder("q", nil, nil, 0)

	got := b.System()
	if !strings.Contains(got, "Only use information from the provided context") {
		t.Errorf("system prompt missing grounding rule:\n%s", got)
	}
}

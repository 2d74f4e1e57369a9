package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/errs"
	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/internal/repository/memory"
	"doc-assistant-be/pkg/chunker"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/llm/factory"
	"doc-assistant-be/pkg/rag/response"
	"doc-assistant-be/pkg/rag/retriever"
	"doc-assistant-be/pkg/rag/session"
)

// fakeProvider satisfies the provider capability set for tests. It records
// the last completion request and can be primed to fail.
type fakeProvider struct {
	answer   string
	err      error
	calls    int
	lastReq  llm.CompletionRequest
	failures int // fail this many calls before succeeding
}

func (p *fakeProvider) Name() string         { return "fake" }
func (p *fakeProvider) DefaultModel() string { return "fake-model" }

func (p *fakeProvider) ListModels(ctx context.Context, apiKey string) ([]llm.Model, error) {
	return []llm.Model{{ID: "fake-model", Name: "Fake Model"}}, nil
}

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil && (p.failures == 0 || p.calls <= p.failures) {
		return "", p.err
	}
	return p.answer, nil
}

type testEnv struct {
	svc      IAssistantService
	sessions *session.Manager
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Session: config.SessionConfig{TTL: time.Minute, SweepInterval: time.Minute},
		Rag: config.RagConfig{
			ChunkSize:     500,
			ChunkOverlap:  50,
			TopK:          3,
			EmbeddingDim:  256,
			MaxUploadMB:   1,
			HistoryWindow: 6,
		},
	}
	log := logger.NewNopLogger()

	provider := &fakeProvider{answer: "Mammals are warm-blooded animals."}
	registry := factory.NewRegistry("groq")
	registry.Register(provider)

	embedder := embedding.NewHashingProvider(cfg.Rag.EmbeddingDim)
	generator := response.NewGenerator(registry, nil, time.Second, log)

	repo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.SweepInterval)
	sessions := session.NewManager(repo, log)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	svc := NewAssistantService(
		cfg,
		sessions,
		chunker.New(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap),
		embedder,
		retriever.New(embedder, cfg.Rag.TopK),
		generator,
		registry,
		NewPublisherService(pubSub, log),
		log,
	)

	return &testEnv{svc: svc, sessions: sessions, provider: provider}
}

func (e *testEnv) upload(t *testing.T, sessionID, filename, text string) *dto.DocumentResponse {
	t.Helper()
	doc, err := e.svc.Upload(context.Background(), sessionID, filename, []byte(text))
	require.NoError(t, err)
	return doc
}

func chatReq(message string) *dto.ChatRequest {
	return &dto.ChatRequest{Message: message, Provider: "fake", APIKey: "test-key"}
}

func TestUploadRegistersDocument(t *testing.T) {
	env := newTestEnv(t)

	doc := env.upload(t, "tab-1", "mammals.txt",
		"Mammals are warm-blooded vertebrates that nurse their young with milk.")

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "mammals.txt", doc.Filename)
	assert.Equal(t, "txt", doc.Type)
	assert.Equal(t, 1, doc.ChunkCount)

	list := env.svc.ListDocuments(context.Background(), "tab-1")
	require.Len(t, list.Documents, 1)
	assert.Equal(t, doc.ID, list.Documents[0].ID)
}

func TestUploadRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Upload(context.Background(), "tab-1", "virus.exe", []byte("x"))
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	_, err = env.svc.Upload(context.Background(), "tab-1", "big.txt", make([]byte, 2*1024*1024))
	assert.ErrorIs(t, err, errs.ErrFileTooLarge)

	_, err = env.svc.Upload(context.Background(), "tab-1", "empty.txt", []byte("   \n"))
	assert.ErrorIs(t, err, errs.ErrEmptyFile)

	// Nothing registered by any of the failures.
	assert.Empty(t, env.svc.ListDocuments(context.Background(), "tab-1").Documents)
}

func TestListDocumentsUnknownSessionIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	list := env.svc.ListDocuments(context.Background(), "never-seen")
	assert.Empty(t, list.Documents)

	// Reads do not reserve the identifier.
	_, found := env.sessions.Load("never-seen")
	assert.False(t, found)
}

func TestChatAnswersFromRelevantDocuments(t *testing.T) {
	env := newTestEnv(t)

	env.upload(t, "tab-1", "mammals.txt",
		"Mammals are warm-blooded vertebrates that nurse their young with milk.")
	env.upload(t, "tab-1", "whales.txt",
		"Whales are large marine mammals that breathe air through blowholes.")
	env.upload(t, "tab-1", "planets.txt",
		"Jupiter is the largest planet in the solar system, a gas giant.")

	res, err := env.svc.Chat(context.Background(), "tab-1", chatReq("What is a mammal?"))
	require.NoError(t, err)

	assert.Equal(t, "Mammals are warm-blooded animals.", res.Answer)
	require.NotEmpty(t, res.SourceFiles)
	assert.Contains(t, res.SourceFiles, "mammals.txt")
	assert.NotContains(t, res.SourceFiles, "planets.txt")

	// The grounded prompt reached the provider with labeled context.
	assert.Contains(t, env.provider.lastReq.Prompt, "[Source: mammals.txt]")
	assert.Contains(t, env.provider.lastReq.Prompt, "Question: What is a mammal?")

	// The exchange is recorded in history.
	sess, found := env.sessions.Load("tab-1")
	require.True(t, found)
	sess.Lock()
	defer sess.Unlock()
	require.Len(t, sess.History, 2)
	assert.Equal(t, "What is a mammal?", sess.History[0].Content)
	assert.Equal(t, res.Answer, sess.History[1].Content)
}

func TestDeletedDocumentNeverRetrieved(t *testing.T) {
	env := newTestEnv(t)

	mammals := env.upload(t, "tab-1", "mammals.txt",
		"Mammals are warm-blooded vertebrates that nurse their young with milk.")
	env.upload(t, "tab-1", "planets.txt",
		"Jupiter is the largest planet in the solar system.")

	require.NoError(t, env.svc.DeleteDocument(context.Background(), "tab-1", mammals.ID))

	res, err := env.svc.Chat(context.Background(), "tab-1", chatReq("What is a mammal?"))
	require.NoError(t, err)
	assert.NotContains(t, res.SourceFiles, "mammals.txt")

	// Deleting again is a 404.
	err = env.svc.DeleteDocument(context.Background(), "tab-1", mammals.ID)
	assert.ErrorIs(t, err, errs.ErrDocumentNotFound)
}

func TestDeleteDocumentUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	// No session registered under the id at all.
	err := env.svc.DeleteDocument(context.Background(), "never-seen", "some-id")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)

	// An ended session counts as unknown too.
	doc := env.upload(t, "tab-1", "a.txt", "some text here")
	env.svc.EndSession(context.Background(), "tab-1")
	err = env.svc.DeleteDocument(context.Background(), "tab-1", doc.ID)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestChatWithoutDocuments(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.svc.Chat(context.Background(), "tab-1", chatReq("hello"))
	require.NoError(t, err)
	assert.Empty(t, res.Sources)
	assert.Empty(t, res.SourceFiles)
	assert.Contains(t, env.provider.lastReq.Prompt, "No documents uploaded yet.")
}

func TestChatProviderFailureDegradesToFallback(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = llm.NewProviderError("fake", 500, "backend exploded")

	env.upload(t, "tab-1", "mammals.txt",
		"Mammals are warm-blooded vertebrates that nurse their young.")

	res, err := env.svc.Chat(context.Background(), "tab-1", chatReq("What is a mammal?"))
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "Sorry, I couldn't generate an answer")

	// Transient failure earns exactly one retry.
	assert.Equal(t, 2, env.provider.calls)

	// Session state is intact and the fallback turn is recorded.
	sess, found := env.sessions.Load("tab-1")
	require.True(t, found)
	sess.Lock()
	defer sess.Unlock()
	assert.Len(t, sess.Documents, 1)
	assert.Equal(t, 1, sess.Index.Len())
	require.Len(t, sess.History, 2)
	assert.Equal(t, res.Answer, sess.History[1].Content)
}

func TestChatAuthFailureIsNotRetried(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = llm.NewProviderError("fake", 401, "bad key")

	res, err := env.svc.Chat(context.Background(), "tab-1", chatReq("hello"))
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "Sorry, I couldn't generate an answer")
	assert.Equal(t, 1, env.provider.calls)
}

func TestChatMissingAPIKeyYieldsHint(t *testing.T) {
	env := newTestEnv(t)

	req := &dto.ChatRequest{Message: "hello", Provider: "fake"} // no key anywhere
	res, err := env.svc.Chat(context.Background(), "tab-1", req)
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "API key not provided")
	assert.Zero(t, env.provider.calls)
}

func TestChatUnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	req := &dto.ChatRequest{Message: "hello", Provider: "nonexistent", APIKey: "k"}
	_, err := env.svc.Chat(context.Background(), "tab-1", req)
	assert.ErrorIs(t, err, errs.ErrUnknownProvider)
}

func TestChatHistoryWindowFeedsProvider(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		_, err := env.svc.Chat(context.Background(), "tab-1", chatReq("question"))
		require.NoError(t, err)
	}

	// 8 prior turns exist; only the last 6 reach the provider.
	assert.Len(t, env.provider.lastReq.History, 6)
}

func TestEndSessionReleasesState(t *testing.T) {
	env := newTestEnv(t)

	env.upload(t, "tab-1", "mammals.txt", "Mammals nurse their young with milk.")
	env.svc.EndSession(context.Background(), "tab-1")

	_, found := env.sessions.Load("tab-1")
	assert.False(t, found)

	// Idempotent.
	env.svc.EndSession(context.Background(), "tab-1")

	// The id is immediately reusable with fresh state.
	list := env.svc.ListDocuments(context.Background(), "tab-1")
	assert.Empty(t, list.Documents)
}

func TestHealthReportsActiveSessions(t *testing.T) {
	env := newTestEnv(t)

	env.upload(t, "tab-1", "a.txt", "some text here")
	env.upload(t, "tab-2", "b.txt", "other text here")

	res := env.svc.Health(context.Background())
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, 2, res.ActiveSessions)
}

func TestModelsListsRegisteredProvider(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.svc.Models(context.Background(), &dto.ModelsRequest{Provider: "fake", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "fake", res.Provider)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "fake-model", res.Models[0].ID)

	_, err = env.svc.Models(context.Background(), &dto.ModelsRequest{Provider: "nope"})
	var appErr *errs.Error
	require.True(t, errors.As(err, &appErr))
	assert.ErrorIs(t, err, errs.ErrUnknownProvider)
}

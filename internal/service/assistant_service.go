package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/dto"
	"doc-assistant-be/internal/errs"
	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/pkg/chunker"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/events"
	"doc-assistant-be/pkg/llm/factory"
	"doc-assistant-be/pkg/loader"
	"doc-assistant-be/pkg/rag/response"
	"doc-assistant-be/pkg/rag/retriever"
	"doc-assistant-be/pkg/rag/session"
	"doc-assistant-be/pkg/store"
)

type IAssistantService interface {
	Health(ctx context.Context) *dto.HealthResponse
	Models(ctx context.Context, req *dto.ModelsRequest) (*dto.ModelsResponse, error)
	Upload(ctx context.Context, sessionID, filename string, data []byte) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, sessionID string) *dto.DocumentListResponse
	DeleteDocument(ctx context.Context, sessionID, documentID string) error
	Chat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	EndSession(ctx context.Context, sessionID string)
}

type assistantService struct {
	sessions  *session.Manager
	chunker   *chunker.Chunker
	embedder  embedding.Provider
	retriever *retriever.Retriever
	generator *response.Generator
	registry  *factory.Registry
	publisher IPublisherService
	logger    logger.ILogger

	maxUploadBytes int
	historyWindow  int
}

func NewAssistantService(
	cfg *config.Config,
	sessions *session.Manager,
	chk *chunker.Chunker,
	embedder embedding.Provider,
	rtr *retriever.Retriever,
	generator *response.Generator,
	registry *factory.Registry,
	publisher IPublisherService,
	log logger.ILogger,
) IAssistantService {
	svc := &assistantService{
		sessions:       sessions,
		chunker:        chk,
		embedder:       embedder,
		retriever:      rtr,
		generator:      generator,
		registry:       registry,
		publisher:      publisher,
		logger:         log,
		maxUploadBytes: cfg.Rag.MaxUploadMB * 1024 * 1024,
		historyWindow:  cfg.Rag.HistoryWindow,
	}

	// Session teardown is observed here so the event flows through the same
	// bus as ingestion, whether the trigger was TTL expiry or an explicit end.
	sessions.SetDestroyHook(func(sessionID string, documents, messages int, reason string) {
		svc.publisher.Publish(events.TopicSessionDestroyed, events.SessionDestroyed{
			SessionID:  sessionID,
			Reason:     reason,
			Documents:  documents,
			Messages:   messages,
			OccurredAt: time.Now(),
		})
	})

	return svc
}

func (s *assistantService) Health(ctx context.Context) *dto.HealthResponse {
	s.sessions.Sweep()
	return &dto.HealthResponse{
		Status:         "ok",
		ActiveSessions: s.sessions.Count(),
	}
}

func (s *assistantService) Models(ctx context.Context, req *dto.ModelsRequest) (*dto.ModelsResponse, error) {
	provider, err := s.registry.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	models, err := s.registry.Models(ctx, req.Provider, req.APIKey)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.ModelInfo, 0, len(models))
	for _, m := range models {
		infos = append(infos, dto.ModelInfo{ID: m.ID, Name: m.Name})
	}
	return &dto.ModelsResponse{Provider: provider.Name(), Models: infos}, nil
}

// Upload runs the full ingestion pipeline: validate, extract, chunk, embed,
// then commit to the session under its lock. Extraction and embedding happen
// outside the lock; a failure at any point leaves the session unchanged.
func (s *assistantService) Upload(ctx context.Context, sessionID, filename string, data []byte) (*dto.DocumentResponse, error) {
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !loader.Supported(fileType) {
		return nil, errs.ErrUnsupportedFormat.WithDetail("%s (supported: %s)", fileType, strings.Join(loader.Extensions(), ", "))
	}
	if len(data) > s.maxUploadBytes {
		return nil, errs.ErrFileTooLarge.WithDetail("%d bytes (limit %d)", len(data), s.maxUploadBytes)
	}

	text, err := loader.Load(filename, fileType, data)
	if err != nil {
		return nil, err
	}

	doc := &store.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Type:       fileType,
		Text:       text,
		UploadedAt: time.Now(),
	}

	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		return nil, errs.ErrEmptyFile.WithDetail("%s", filename)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(texts)
	if err != nil {
		return nil, err
	}
	doc.ChunkIDs = make([]string, len(chunks))
	for i, c := range chunks {
		doc.ChunkIDs[i] = c.ID
	}

	sess := s.lockLiveSession(sessionID)
	if err := sess.Index.Add(chunks, vectors); err != nil {
		sess.Unlock()
		return nil, errs.ErrIndexInconsistent.WithCause(err)
	}
	sess.Documents = append(sess.Documents, doc)
	s.sessions.Touch(sess)
	sess.Unlock()

	s.logger.Info("assistant", "document uploaded", map[string]interface{}{
		"session_id":  sessionID,
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"chunks":      len(chunks),
	})
	s.publisher.Publish(events.TopicDocumentIngested, events.DocumentIngested{
		SessionID:  sessionID,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: len(chunks),
		OccurredAt: time.Now(),
	})

	return documentDTO(doc), nil
}

func (s *assistantService) ListDocuments(ctx context.Context, sessionID string) *dto.DocumentListResponse {
	res := &dto.DocumentListResponse{Documents: []dto.DocumentResponse{}}

	sess, found := s.sessions.Load(sessionID)
	if !found {
		return res
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.Destroyed() {
		return res
	}
	for _, doc := range sess.Documents {
		res.Documents = append(res.Documents, *documentDTO(doc))
	}
	return res
}

func (s *assistantService) DeleteDocument(ctx context.Context, sessionID, documentID string) error {
	sess, found := s.sessions.Load(sessionID)
	if !found {
		return errs.ErrSessionNotFound.WithDetail("%s", sessionID)
	}

	sess.Lock()
	if sess.Destroyed() {
		sess.Unlock()
		return errs.ErrSessionNotFound.WithDetail("%s", sessionID)
	}
	if !sess.RemoveDocument(documentID) {
		sess.Unlock()
		return errs.ErrDocumentNotFound.WithDetail("%s", documentID)
	}
	s.sessions.Touch(sess)
	remaining := sess.Index.Len()
	sess.Unlock()

	s.logger.Info("assistant", "document removed", map[string]interface{}{
		"session_id":   sessionID,
		"document_id":  documentID,
		"index_chunks": remaining,
	})
	return nil
}

// Chat retrieves grounding chunks under the session lock, generates the
// answer outside it, then appends the exchange to history. A provider failure
// degrades to the generator's fallback answer and leaves documents and index
// untouched; the fallback is still recorded as an assistant turn.
func (s *assistantService) Chat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sess := s.lockLiveSession(sessionID)
	retrieval, err := s.retriever.Retrieve(sess.Index, req.Message)
	if err != nil {
		sess.Unlock()
		return nil, err
	}
	history := historyWindow(sess.History, s.historyWindow)
	s.sessions.Touch(sess)
	sess.Unlock()

	answer, genErr := s.generator.Answer(ctx, response.Request{
		Question:      req.Message,
		Chunks:        retrieval.Chunks,
		History:       history,
		HistoryWindow: s.historyWindow,
		Provider:      req.Provider,
		Model:         req.Model,
		APIKey:        req.APIKey,
	})
	if genErr != nil && answer == "" {
		// Unknown provider, or the client went away mid-request.
		return nil, genErr
	}

	sess.Lock()
	if !sess.Destroyed() {
		sess.History = append(sess.History,
			store.ChatMessage{Role: store.RoleUser, Content: req.Message},
			store.ChatMessage{Role: store.RoleAssistant, Content: answer},
		)
		s.sessions.Touch(sess)
	}
	sess.Unlock()

	res := &dto.ChatResponse{
		Answer:      answer,
		Sources:     []dto.ChatSource{},
		SourceFiles: retrieval.Sources,
	}
	if res.SourceFiles == nil {
		res.SourceFiles = []string{}
	}
	for _, c := range retrieval.Chunks {
		res.Sources = append(res.Sources, dto.ChatSource{
			ID:       c.ID,
			Filename: c.Source,
			Text:     c.Text,
			Score:    c.Score,
		})
	}
	return res, nil
}

func (s *assistantService) EndSession(ctx context.Context, sessionID string) {
	s.sessions.End(sessionID)
}

// lockLiveSession returns the session for the id with its lock held,
// re-creating when teardown raced the lookup.
func (s *assistantService) lockLiveSession(sessionID string) *session.Session {
	for {
		sess := s.sessions.LoadOrCreate(sessionID)
		sess.Lock()
		if !sess.Destroyed() {
			return sess
		}
		sess.Unlock()
	}
}

func historyWindow(history []store.ChatMessage, window int) []store.ChatMessage {
	if window <= 0 || len(history) <= window {
		return append([]store.ChatMessage(nil), history...)
	}
	return append([]store.ChatMessage(nil), history[len(history)-window:]...)
}

func documentDTO(doc *store.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Type:       doc.Type,
		ChunkCount: len(doc.ChunkIDs),
		UploadedAt: doc.UploadedAt,
	}
}

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"docquery/internal/engine"
	"docquery/internal/model"
	"docquery/internal/registry"
	"docquery/internal/repository"
)

// AsyncMessagePublisher enqueues transcript messages for the persist worker.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// HistoryCache is the Redis-backed transcript cache.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// QueryService routes questions to per-document engines and keeps the durable
// session state (sessions table, message log, history cache) in step with the
// in-process transcripts.
type QueryService struct {
	docRepo      *repository.DocumentRepository
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	registry     *registry.Registry
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
}

func NewQueryService(
	docRepo *repository.DocumentRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	reg *registry.Registry,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
) *QueryService {
	return &QueryService{
		docRepo:      docRepo,
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		registry:     reg,
		publisher:    publisher,
		historyCache: historyCache,
	}
}

type QueryInput struct {
	DocumentID string
	SessionID  string
	Question   string
}

type QueryResult struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

// Query answers one question against a document with conversational memory.
// Nothing is appended to the transcript or the message log when the engine
// call fails.
func (s *QueryService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	doc, err := s.docRepo.GetByID(input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	eng, err := s.registry.GetOrCreate(ctx, doc)
	if err != nil {
		return nil, err
	}

	session, err := s.resolveSession(doc.ID, input.SessionID)
	if err != nil {
		return nil, err
	}

	result, err := eng.Answer(ctx, session.ID, question)
	if err != nil {
		return nil, err
	}

	s.recordTurn(ctx, session.ID, question, result.Answer)

	return &QueryResult{
		Answer:    result.Answer,
		Sources:   result.Sources,
		SessionID: session.ID,
	}, nil
}

// resolveSession implements the session routing contract: no id means a new
// session; an unknown id is created as given; an id bound to another document
// gets a fresh id so a session never spans documents.
func (s *QueryService) resolveSession(documentID, sessionID string) (*model.Session, error) {
	if sessionID != "" {
		existing, err := s.sessionRepo.GetByID(sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.DocumentID == documentID {
			return existing, nil
		}
		if existing != nil {
			sessionID = uuid.NewString()
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	session := &model.Session{
		ID:           sessionID,
		DocumentID:   documentID,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// recordTurn mirrors a completed turn into the durable stores. The answer has
// already been produced and the in-process transcript updated, so failures
// here are logged rather than surfaced.
func (s *QueryService) recordTurn(ctx context.Context, sessionID, question, answer string) {
	userAt := time.Now()
	assistantAt := userAt.Add(time.Millisecond)

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}

	if s.publisher != nil {
		userMsg := model.Message{
			SessionID: sessionID,
			Role:      engine.RoleUser,
			Content:   question,
			Timestamp: userAt,
		}
		assistantMsg := model.Message{
			SessionID: sessionID,
			Role:      engine.RoleAssistant,
			Content:   answer,
			Timestamp: assistantAt,
		}
		if err := s.publisher.Publish(ctx, userMsg); err != nil {
			log.Printf("enqueue user message failed: %v", err)
		} else if err := s.publisher.Publish(ctx, assistantMsg); err != nil {
			log.Printf("enqueue assistant message failed: %v", err)
		}
	}

	if err := s.sessionRepo.Touch(sessionID, assistantAt); err != nil {
		log.Printf("touch session failed: %v", err)
	}
}

func (s *QueryService) ListSessions(documentID string) ([]model.Session, error) {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return s.sessionRepo.ListByDocumentID(documentID)
}

// GetHistory returns the persisted transcript, served from the cache when it
// is present and not marked dirty by an in-flight persist.
func (s *QueryService) GetHistory(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

// ClearSession removes the session's persisted messages, its in-process
// transcript, and its cache entry. The session row and the document's vector
// index survive.
func (s *QueryService) ClearSession(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if eng, ok := s.registry.Get(session.DocumentID); ok {
		eng.ClearMemory(sessionID)
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	return nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docquery/internal/ingest"
	"docquery/internal/memory"
	"docquery/internal/model"
	"docquery/internal/registry"
	"docquery/internal/repository"
)

// DocumentService owns the document lifecycle: store the uploaded file, build
// the query engine, persist metadata, and cascade-delete everything on
// removal.
type DocumentService struct {
	docRepo      *repository.DocumentRepository
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	registry     *registry.Registry
	historyCache HistoryCache
	memory       *memory.Store
	uploadDir    string
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	reg *registry.Registry,
	historyCache HistoryCache,
	mem *memory.Store,
	uploadDir string,
) *DocumentService {
	return &DocumentService{
		docRepo:      docRepo,
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		registry:     reg,
		historyCache: historyCache,
		memory:       mem,
		uploadDir:    uploadDir,
	}
}

// Upload stores the file, builds its vector index eagerly, and records the
// document. The stored file is removed again if indexing or the DB write
// fails, so a document row always has a working file behind it.
func (s *DocumentService) Upload(ctx context.Context, filename string, src io.Reader) (*model.Document, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidInput)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, err := ingest.ForExtension(ext); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(s.uploadDir, id+"_"+filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("write upload failed: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload failed: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload failed: %w", err)
	}

	doc := &model.Document{
		ID:       id,
		Filename: filename,
		FilePath: path,
		FileType: strings.TrimPrefix(ext, "."),
	}

	if _, err := s.registry.GetOrCreate(ctx, doc); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	if err := s.docRepo.Create(doc); err != nil {
		s.registry.Remove(id)
		_ = os.Remove(path)
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) List() ([]model.Document, error) {
	return s.docRepo.List()
}

func (s *DocumentService) Get(id string) (*model.Document, error) {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes the stored file, the document row, and all dependent
// sessions, messages, transcripts, and cached history.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}

	sessionIDs, err := s.sessionRepo.ListIDsByDocumentID(id)
	if err != nil {
		return err
	}
	if err := s.messageRepo.DeleteBySessionIDs(sessionIDs); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByDocumentID(id); err != nil {
		return err
	}
	if err := s.docRepo.Delete(id); err != nil {
		return err
	}

	s.clearSessionState(ctx, sessionIDs)
	s.registry.Remove(id)

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file failed: %w", err)
	}
	return nil
}

// clearSessionState drops the in-process transcripts and cached history of
// the given sessions. The memory store is shared across all engines, so a
// deleted document's transcripts must go here too; otherwise a reused session
// id would condition answers about another document.
func (s *DocumentService) clearSessionState(ctx context.Context, sessionIDs []string) {
	for _, sid := range sessionIDs {
		if s.memory != nil {
			s.memory.Clear(sid)
		}
		if s.historyCache != nil {
			_ = s.historyCache.DeleteHistory(ctx, sid)
		}
	}
}

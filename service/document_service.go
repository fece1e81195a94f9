package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"auditease-backend/models"
	"auditease-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// MaxUploadBytes is the largest accepted document
const MaxUploadBytes = 10 << 20

// DocumentService handles uploads and access to user documents
type DocumentService struct {
	repo    DocumentStore
	storage storage.Storage
	now     func() time.Time
	logger  *zap.Logger
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// WithDocumentStore sets the document repository
func WithDocumentStore(repo DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.repo = repo
	}
}

// WithFileStorage sets the object storage backend
func WithFileStorage(st storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.storage = st
	}
}

// WithDocumentClock overrides the time source used in object keys
func WithDocumentClock(now func() time.Time) DocumentServiceOption {
	return func(s *DocumentService) {
		s.now = now
	}
}

// WithDocumentLogger sets the logger
func WithDocumentLogger(logger *zap.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentService) ready() error {
	if s.repo == nil {
		return errors.New("document repository not set")
	}
	if s.storage == nil {
		return errors.New("storage not set")
	}
	return nil
}

// UploadRequest represents a document upload. ExtractedText is produced by
// the client; this service does not parse PDFs.
type UploadRequest struct {
	UserID        uuid.UUID
	Filename      string
	Size          int64
	DocumentType  models.DocumentType
	ExtractedText string
	Body          io.Reader
}

// ValidateUpload checks the file name, size and type before any I/O
func ValidateUpload(filename string, size int64, docType models.DocumentType) error {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return ErrInvalidFileType
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	if !docType.Valid() {
		return ErrInvalidDocumentType
	}
	return nil
}

// Upload stores the file and records the document. The stored object is
// removed again when the row cannot be written.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := ValidateUpload(req.Filename, req.Size, req.DocumentType); err != nil {
		return nil, err
	}

	key := storage.ObjectKey(req.UserID, req.Filename, s.now())
	body := io.LimitReader(req.Body, MaxUploadBytes+1)
	if err := s.storage.Upload(ctx, key, body, req.Size, storage.ContentType(req.Filename)); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc := &models.Document{
		UserID:       req.UserID,
		Name:         filepath.Base(req.Filename),
		DocumentType: req.DocumentType,
		FilePath:     key,
	}
	if req.Size > 0 {
		size := req.Size
		doc.FileSize = &size
	}
	if text := strings.TrimSpace(req.ExtractedText); text != "" {
		doc.ExtractedText = &text
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("document_type", string(doc.DocumentType)),
		zap.Int64("size", req.Size),
	)
	return doc, nil
}

// List returns the user's documents, newest first
func (s *DocumentService) List(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	if s.repo == nil {
		return nil, errors.New("document repository not set")
	}
	docs, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	return docs, nil
}

// Get returns one of the user's documents
func (s *DocumentService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Document, error) {
	if s.repo == nil {
		return nil, errors.New("document repository not set")
	}
	return ownedDocument(ctx, s.repo, userID, id)
}

// ownedDocument loads a document and hides other users' documents as missing
func ownedDocument(ctx context.Context, repo DocumentStore, userID, id uuid.UUID) (*models.Document, error) {
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Download opens the stored file of one of the user's documents
func (s *DocumentService) Download(ctx context.Context, userID, id uuid.UUID) (*models.Document, io.ReadCloser, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return doc, rc, nil
}

// Delete removes the row, then the stored file
func (s *DocumentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.storage.Delete(ctx, doc.FilePath); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("key", doc.FilePath), zap.Error(err))
	}
	return nil
}

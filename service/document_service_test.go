package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auditease-backend/models"
	"auditease-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *fakeDocuments, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	docs := newFakeDocuments()
	svc := NewDocumentService(
		WithDocumentStore(docs),
		WithFileStorage(store),
		WithDocumentClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	return svc, docs, dir
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		docType  models.DocumentType
		want     error
	}{
		{"valid", "contract.pdf", 1024, models.DocumentTypeSubject, nil},
		{"upper case extension", "CONTRACT.PDF", 1024, models.DocumentTypeStandard, nil},
		{"exactly the limit", "big.pdf", MaxUploadBytes, models.DocumentTypeSubject, nil},
		{"not a pdf", "contract.docx", 1024, models.DocumentTypeSubject, ErrInvalidFileType},
		{"pdf in the middle", "contract.pdf.exe", 1024, models.DocumentTypeSubject, ErrInvalidFileType},
		{"too large", "big.pdf", MaxUploadBytes + 1, models.DocumentTypeSubject, ErrFileTooLarge},
		{"unknown type", "contract.pdf", 1024, "evidence", ErrInvalidDocumentType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size, tt.docType)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUploadStoresFileAndRow(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newDocumentFixture(t)
	user := uuid.New()
	body := "%PDF-1.7 master services agreement"

	doc, err := svc.Upload(ctx, UploadRequest{
		UserID:        user,
		Filename:      "Master Services.pdf",
		Size:          int64(len(body)),
		DocumentType:  models.DocumentTypeSubject,
		ExtractedText: "  Section 1. Services.  ",
		Body:          strings.NewReader(body),
	})
	require.NoError(t, err)

	assert.Equal(t, user.String()+"/1700000000000_Master_Services.pdf", doc.FilePath)
	assert.Equal(t, "Master Services.pdf", doc.Name)
	assert.Equal(t, "Section 1. Services.", doc.Text())
	require.NotNil(t, doc.FileSize)
	assert.Equal(t, int64(len(body)), *doc.FileSize)

	data, err := os.ReadFile(filepath.Join(dir, doc.FilePath))
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	got, rc, err := svc.Download(ctx, user, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	downloaded, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, body, string(downloaded))
}

func TestUploadRejectsBeforeStoring(t *testing.T) {
	svc, _, dir := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), UploadRequest{
		UserID:       uuid.New(),
		Filename:     "notes.txt",
		Size:         10,
		DocumentType: models.DocumentTypeSubject,
		Body:         strings.NewReader("0123456789"),
	})
	assert.ErrorIs(t, err, ErrInvalidFileType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRemovesFileWhenRowFails(t *testing.T) {
	svc, docs, dir := newDocumentFixture(t)
	docs.err = errBoom
	user := uuid.New()

	_, err := svc.Upload(context.Background(), UploadRequest{
		UserID:       user,
		Filename:     "contract.pdf",
		Size:         4,
		DocumentType: models.DocumentTypeSubject,
		Body:         strings.NewReader("%PDF"),
	})
	assert.ErrorIs(t, err, errBoom)

	_, statErr := os.Stat(filepath.Join(dir, user.String(), "1700000000000_contract.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocumentsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, docs, _ := newDocumentFixture(t)
	owner, other := uuid.New(), uuid.New()
	doc := docs.add(owner, models.DocumentTypeStandard, "policy.pdf", "policy text")

	_, err := svc.Get(ctx, other, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other, doc.ID), ErrDocumentNotFound)

	got, err := svc.Get(ctx, owner, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "policy text", got.Text())

	list, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newDocumentFixture(t)
	user := uuid.New()

	doc, err := svc.Upload(ctx, UploadRequest{
		UserID:       user,
		Filename:     "gdpr.pdf",
		Size:         4,
		DocumentType: models.DocumentTypeStandard,
		Body:         strings.NewReader("%PDF"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user, doc.ID))

	_, err = svc.Get(ctx, user, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	_, statErr := os.Stat(filepath.Join(dir, doc.FilePath))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadMissingObject(t *testing.T) {
	svc, docs, _ := newDocumentFixture(t)
	user := uuid.New()
	doc := docs.add(user, models.DocumentTypeSubject, "gone.pdf", "")

	_, _, err := svc.Download(context.Background(), user, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	userID := uuid.MustParse("6f1c1d9e-0000-4000-8000-000000000001")
	now := time.UnixMilli(1718000000123)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "contract.pdf", "6f1c1d9e-0000-4000-8000-000000000001/1718000000123_contract.pdf"},
		{"spaces", "Master Services.pdf", "6f1c1d9e-0000-4000-8000-000000000001/1718000000123_Master_Services.pdf"},
		{"unix path", "../../etc/passwd.pdf", "6f1c1d9e-0000-4000-8000-000000000001/1718000000123_passwd.pdf"},
		{"windows path", `C:\Users\me\nda.pdf`, "6f1c1d9e-0000-4000-8000-000000000001/1718000000123_nda.pdf"},
		{"empty", "", "6f1c1d9e-0000-4000-8000-000000000001/1718000000123_document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(userID, tt.filename, now))
		})
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := "user/1_contract.pdf"
	body := "%PDF-1.4 fake"
	require.NoError(t, store.Upload(ctx, key, strings.NewReader(body), int64(len(body)), "application/pdf"))

	rc, err := store.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.pdf", "a/../../b.pdf", "", "/abs.pdf"} {
		err := store.Upload(ctx, key, strings.NewReader("x"), 1, "text/plain")
		assert.Error(t, err, key)
	}
}

func TestNewStorageValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewStorage(ctx, Config{Type: StorageTypeS3})
	assert.ErrorContains(t, err, "AWS_S3_BUCKET")

	_, err = NewStorage(ctx, Config{Type: StorageTypeMinIO})
	assert.ErrorContains(t, err, "MINIO_ENDPOINT")

	_, err = NewStorage(ctx, Config{Type: "ftp"})
	assert.ErrorContains(t, err, "unknown storage type")

	store, err := NewStorage(ctx, Config{Type: StorageTypeLocal, LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, store)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "text/plain", ContentType("notes.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}

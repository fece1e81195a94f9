package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType distinguishes the baseline standard from the contract being audited
type DocumentType string

const (
	DocumentTypeStandard DocumentType = "standard"
	DocumentTypeSubject  DocumentType = "subject"
)

// Valid reports whether t is a known document type
func (t DocumentType) Valid() bool {
	return t == DocumentTypeStandard || t == DocumentTypeSubject
}

// Document represents an uploaded file and its extracted text
type Document struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	Name          string       `json:"name"`
	DocumentType  DocumentType `json:"document_type"`
	FilePath      string       `json:"file_path"`
	FileSize      *int64       `json:"file_size,omitempty"`
	ExtractedText *string      `json:"extracted_text,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Text returns the extracted text or an empty string
func (d *Document) Text() string {
	if d == nil || d.ExtractedText == nil {
		return ""
	}
	return *d.ExtractedText
}

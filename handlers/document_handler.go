package handlers

import (
	"fmt"
	"net/http"

	"auditease-backend/models"
	"auditease-backend/service"
	"auditease-backend/storage"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form fields next to the file
const multipartOverhead = 1 << 20

// DocumentHandler handles HTTP requests for documents
type DocumentHandler struct {
	documents Documents
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents Documents) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// UploadDocument handles POST /api/documents. The form carries the PDF in
// "file", its type in "document_type" and the text extracted by the client
// in "extracted_text".
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	// extracted text is sent alongside the file, so allow for both
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*service.MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondFail(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}

	docType := models.DocumentType(c.PostForm("document_type"))
	if err := service.ValidateUpload(fileHeader.Filename, fileHeader.Size, docType); err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondFail(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), service.UploadRequest{
		UserID:        callerFrom(c).UserID,
		Filename:      fileHeader.Filename,
		Size:          fileHeader.Size,
		DocumentType:  docType,
		ExtractedText: c.PostForm("extracted_text"),
		Body:          file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, doc)
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, docs)
}

// GetDocument handles GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), callerFrom(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, doc)
}

// DownloadDocument handles GET /api/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, rc, err := h.documents.Download(c.Request.Context(), callerFrom(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	size := int64(-1)
	if doc.FileSize != nil {
		size = *doc.FileSize
	}
	c.DataFromReader(http.StatusOK, size, storage.ContentType(doc.Name), rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.Name),
	})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), callerFrom(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

package handlers

import (
	"net/http"

	"auditease-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for document and support chat
type ChatHandler struct {
	chats Chats
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats Chats) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// DocumentChatRequest represents a question about a document
type DocumentChatRequest struct {
	DocumentID string                `json:"document_id" binding:"required"`
	Question   string                `json:"question" binding:"required"`
	History    []service.ChatMessage `json:"history"`
}

// AskDocument handles POST /api/chat/document
func (h *ChatHandler) AskDocument(c *gin.Context) {
	var req DocumentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid document_id format")
		return
	}

	answer, err := h.chats.AskDocument(c.Request.Context(), service.DocumentChatRequest{
		UserID:     callerFrom(c).UserID,
		DocumentID: docID,
		Question:   req.Question,
		History:    req.History,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, answer)
}

// SupportChatRequest represents a product question
type SupportChatRequest struct {
	Question string                `json:"question" binding:"required"`
	History  []service.ChatMessage `json:"history"`
}

// AskSupport handles POST /api/chat/support
func (h *ChatHandler) AskSupport(c *gin.Context) {
	var req SupportChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	answer, err := h.chats.AskSupport(c.Request.Context(), service.SupportChatRequest{
		Question: req.Question,
		History:  req.History,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, answer)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auditease-backend/analysis"
	"auditease-backend/llm"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxChatDocumentRunes bounds the document text embedded in a chat prompt
	MaxChatDocumentRunes = 20000
	// maxHistoryMessages keeps prompts bounded on long conversations
	maxHistoryMessages = 20

	chatTemperature        = 0.3
	chatMaxOutputTokens    = 1024
	supportTemperature     = 0.3
	supportMaxOutputTokens = 1024

	SupportConnectionErrorReply = "I'm sorry, I encountered a connection error. Please try again later or contact support@auditease.ai"
	SupportEmptyReply           = "I'm having trouble connecting to support right now. Please email support@auditease.ai"
)

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatAnswer is the reply to a question. Offline is set when the answer is
// canned because the model could not be reached.
type ChatAnswer struct {
	Answer  string `json:"answer"`
	Offline bool   `json:"offline"`
}

// ChatService answers questions about a document and about the product
type ChatService struct {
	documents DocumentStore
	llmClient llm.Client
	logger    *zap.Logger
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// WithChatDocumentStore sets the document repository
func WithChatDocumentStore(repo DocumentStore) ChatServiceOption {
	return func(s *ChatService) {
		s.documents = repo
	}
}

// WithChatLLMClient sets the model client
func WithChatLLMClient(client llm.Client) ChatServiceOption {
	return func(s *ChatService) {
		s.llmClient = client
	}
}

// WithChatLogger sets the logger
func WithChatLogger(logger *zap.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentChatRequest is a question about one of the user's documents
type DocumentChatRequest struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
	Question   string
	History    []ChatMessage
}

// AskDocument answers a question grounded in the document text. Model
// failures produce a canned answer rather than an error.
func (s *ChatService) AskDocument(ctx context.Context, req DocumentChatRequest) (*ChatAnswer, error) {
	if s.documents == nil || s.llmClient == nil {
		return nil, errors.New("chat service not configured")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	doc, err := ownedDocument(ctx, s.documents, req.UserID, req.DocumentID)
	if err != nil {
		return nil, err
	}

	prompt := documentChatPrompt(doc.Name, doc.Text(), req.History, question)
	answer, err := s.llmClient.Generate(ctx, prompt, llm.Settings(chatTemperature, chatMaxOutputTokens))
	if err == nil && strings.TrimSpace(answer) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		s.logger.Warn("document chat fell back to offline answer",
			zap.String("document_id", req.DocumentID.String()),
			zap.Error(err),
		)
		return &ChatAnswer{Answer: offlineDocumentAnswer(doc.Name, question), Offline: true}, nil
	}

	return &ChatAnswer{Answer: strings.TrimSpace(answer)}, nil
}

// SupportChatRequest is a product question
type SupportChatRequest struct {
	Question string
	History  []ChatMessage
}

// AskSupport answers product and pricing questions
func (s *ChatService) AskSupport(ctx context.Context, req SupportChatRequest) (*ChatAnswer, error) {
	if s.llmClient == nil {
		return nil, errors.New("chat service not configured")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	prompt := supportPrompt(req.History, question)
	answer, err := s.llmClient.Generate(ctx, prompt, llm.Settings(supportTemperature, supportMaxOutputTokens))
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		return &ChatAnswer{Answer: SupportEmptyReply, Offline: true}, nil
	case err != nil:
		s.logger.Warn("support chat failed", zap.Error(err))
		return &ChatAnswer{Answer: SupportConnectionErrorReply, Offline: true}, nil
	case strings.TrimSpace(answer) == "":
		return &ChatAnswer{Answer: SupportEmptyReply, Offline: true}, nil
	}

	return &ChatAnswer{Answer: strings.TrimSpace(answer)}, nil
}

func formatHistory(history []ChatMessage) string {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "Assistant"
		if strings.EqualFold(m.Role, "user") {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, strings.TrimSpace(m.Content)))
	}
	return strings.Join(lines, "\n")
}

func documentChatPrompt(name, text string, history []ChatMessage, question string) string {
	return fmt.Sprintf(`Context:
One of the user's documents named %q contains the following text:
"""
%s
"""

History:
%s

User Question: %s

Instructions:
You are a legal AI assistant. Answer the user's question specifically based on the document provided.
If the answer is not in the document, say so.
Be professional, concise, and helpful.
Cite specific sections if possible.`,
		name, analysis.Clip(text, MaxChatDocumentRunes), formatHistory(history), question)
}

func supportPrompt(history []ChatMessage, question string) string {
	return fmt.Sprintf(`You are the AI Customer Support Agent for "AuditEase", a premium compliance audit platform.

CONTEXT:
AuditEase helps companies automate compliance audits (SOC 2, GDPR, HIPAA, etc.) using AI.
- Free Plan: 10 audits
- Pro Plan: $49/month (unlimited)
- Enterprise: Custom pricing
- Users create audits by uploading PDFs and selecting standards.
- We use bank-grade AES-256 encryption.

INSTRUCTIONS:
- Answer the user's question helpfully and concisely.
- Use a friendly, professional tone.
- If you don't know something, ask them to contact support@auditease.ai.
- Prioritize promoting the Pro Plan if asked about limits.

CHAT HISTORY:
%s

USER QUESTION:
%s

Your Response:`, formatHistory(history), question)
}

// offlineDocumentAnswer picks a canned answer by topic
func offlineDocumentAnswer(docName, question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "liability") || strings.Contains(q, "liable"):
		return fmt.Sprintf("**Liability Analysis for %s:**\n\nAI analysis is currently unavailable.\n\n"+
			"**Common liability sections to review:**\n- Limitation of liability clauses\n- Indemnification provisions\n"+
			"- Insurance requirements\n- Warranty disclaimers", docName)
	case strings.Contains(q, "termination") || strings.Contains(q, "cancel"):
		return fmt.Sprintf("**Termination Analysis for %s:**\n\nAI analysis is currently unavailable.\n\n"+
			"**Key termination aspects to check:**\n- Notice period requirements\n- Termination for cause vs. convenience\n"+
			"- Post-termination obligations\n- Survival clauses", docName)
	case strings.Contains(q, "privacy") || strings.Contains(q, "data") || strings.Contains(q, "gdpr"):
		return fmt.Sprintf("**Privacy & Data Analysis for %s:**\n\nAI analysis is currently unavailable.\n\n"+
			"**Important privacy elements:**\n- Data processing provisions\n- GDPR/CCPA compliance clauses\n"+
			"- Data security requirements\n- Data retention policies", docName)
	default:
		return fmt.Sprintf("**Analysis for %q:**\n\nAI chat is currently unavailable because the model API key is not "+
			"configured or has expired.\n\nIn the meantime, you can:\n- Review the full audit report\n"+
			"- Check specific compliance standards\n- Export the document analysis", question)
	}
}

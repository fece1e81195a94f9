package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the router serves
type Services struct {
	Audits        Audits
	Documents     Documents
	Chats         Chats
	Shares        Shares
	Subscriptions Subscriptions
	Profiles      Profiles
}

// RouterConfig tunes the router middleware
type RouterConfig struct {
	Logger         *zap.Logger
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the gin engine with every API route
func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	auditHandler := NewAuditHandler(svc.Audits)
	documentHandler := NewDocumentHandler(svc.Documents)
	chatHandler := NewChatHandler(svc.Chats)
	shareHandler := NewShareHandler(svc.Shares)
	accountHandler := NewAccountHandler(svc.Subscriptions, svc.Profiles)
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	public := r.Group("/api")
	{
		public.GET("/standards", ListStandards)
		public.GET("/shares/:id", shareHandler.ResolveShare)
	}

	api := r.Group("/api", Identity())
	{
		// Document endpoints
		api.POST("/documents", documentHandler.UploadDocument)
		api.GET("/documents", documentHandler.ListDocuments)
		api.GET("/documents/:id", documentHandler.GetDocument)
		api.GET("/documents/:id/download", documentHandler.DownloadDocument)
		api.DELETE("/documents/:id", documentHandler.DeleteDocument)

		// Audit endpoints
		api.POST("/audits", limiter.Middleware(), auditHandler.CreateAudit)
		api.GET("/audits", auditHandler.ListAudits)
		api.GET("/audits/compare", auditHandler.CompareAudits)
		api.GET("/audits/:id", auditHandler.GetAudit)
		api.POST("/audits/:id/rewrite", auditHandler.RewriteContract)
		api.PATCH("/gaps/:id", auditHandler.UpdateGap)
		api.GET("/dashboard", auditHandler.Dashboard)

		// Share endpoints
		api.POST("/audits/:id/shares", shareHandler.Invite)
		api.GET("/audits/:id/shares", shareHandler.ListShares)
		api.DELETE("/shares/:id", shareHandler.RemoveShare)

		// Chat endpoints
		chat := api.Group("/chat", limiter.Middleware())
		chat.POST("/document", chatHandler.AskDocument)
		chat.POST("/support", chatHandler.AskSupport)

		// Account endpoints
		api.GET("/subscription", accountHandler.GetSubscription)
		api.POST("/subscription/upgrade", accountHandler.Upgrade)
		api.GET("/profile", accountHandler.GetProfile)
		api.PUT("/profile", accountHandler.UpdateProfile)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/Asantha20535/docuverify-sub000/internal/api/handlers"
	"github.com/Asantha20535/docuverify-sub000/internal/api/middleware"
	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	engine          *gin.Engine
	logger          *zap.Logger
	metrics         *metrics.Collector
	authHandler     *handlers.AuthHandler
	docHandler      *handlers.DocumentHandler
	workflowHandler *handlers.WorkflowHandler
	templateHandler *handlers.TemplateHandler
	verifyHandler   *handlers.VerificationHandler
	userHandler     *handlers.UserHandler
	authMiddleware  *middleware.AuthMiddleware
	reqMiddleware   *middleware.RequestMiddleware
}

type RouterDeps struct {
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	DB        *gorm.DB
	Sessions  *services.SessionService
	Documents *services.DocumentService
	Templates *services.TemplateService
	Engine    *workflow.Engine
	Gateway   *workflow.Gateway
	MaxUpload int64
}

func NewRouter(deps RouterDeps) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(deps.Logger)
	authMiddleware := middleware.NewAuthMiddleware(deps.Sessions, deps.DB)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())

	return &Router{
		engine:          engine,
		logger:          deps.Logger,
		metrics:         deps.Metrics,
		authHandler:     handlers.NewAuthHandler(deps.Sessions, deps.DB, deps.Logger),
		docHandler:      handlers.NewDocumentHandler(deps.Documents, deps.MaxUpload, deps.DB, deps.Logger),
		workflowHandler: handlers.NewWorkflowHandler(deps.Engine, deps.Logger),
		templateHandler: handlers.NewTemplateHandler(deps.Templates, deps.Logger),
		verifyHandler:   handlers.NewVerificationHandler(deps.Gateway, deps.Logger),
		userHandler:     handlers.NewUserHandler(deps.DB, deps.Logger),
		authMiddleware:  authMiddleware,
		reqMiddleware:   reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "docuverify"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	r.engine.POST("/api/login", r.authHandler.Login)
	r.engine.POST("/api/logout", r.authHandler.Logout)

	// Public verification: anyone holding a hash may check it.
	r.engine.GET("/verify/:hash", r.verifyHandler.Verify)

	authorized := r.engine.Group("/api")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.GET("/profile", r.userHandler.Profile)
		authorized.GET("/documents", r.docHandler.ListDocuments)
		authorized.POST("/documents", r.docHandler.UploadDocument)
		authorized.POST("/documents/request", r.docHandler.RequestDocument)
		authorized.GET("/documents/:id", r.docHandler.GetDocument)
		authorized.GET("/documents/:id/download", r.docHandler.DownloadDocument)
		authorized.POST("/documents/:id/submit", r.docHandler.SubmitForReview)
		authorized.DELETE("/documents/:id", r.docHandler.DeleteDocument)
		authorized.POST("/workflows/:id/actions", r.workflowHandler.SubmitAction)

		admin := authorized.Group("/")
		admin.Use(r.authMiddleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", r.userHandler.ListUsers)
			admin.GET("/templates", r.templateHandler.ListTemplates)
			admin.POST("/templates", r.templateHandler.UpsertTemplate)
			admin.GET("/templates/:docType", r.templateHandler.GetTemplate)
			admin.DELETE("/templates/:docType", r.templateHandler.DeleteTemplate)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}

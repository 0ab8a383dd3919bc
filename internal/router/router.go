package router

import (
	"codema-service/internal/audit"
	"codema-service/internal/auth"
	"codema-service/internal/config"
	"codema-service/internal/councilor"
	"codema-service/internal/denuncia"
	"codema-service/internal/document"
	"codema-service/internal/meeting"
	"codema-service/internal/middleware"
	"codema-service/internal/notification"
	"codema-service/internal/realtime"
	"codema-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps carries the shared collaborators the feature packages are wired
// around.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Hub     *realtime.Hub
	Auditor audit.Emitter
	Store   document.ObjectStore
}

// New assembles the gin engine with all feature routes registered.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config

	// Repository
	authRepo := auth.NewAuthRepository(deps.DB)
	councilorRepo := councilor.NewCouncilorRepository(deps.DB)
	sessionRepo := session.NewSessionRepository(deps.DB)
	denunciaRepo := denuncia.NewDenunciaRepository(deps.DB)
	meetingRepo := meeting.NewMeetingRepository(deps.DB)

	// Service
	authService := auth.NewAuthService(authRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	councilorService := councilor.NewCouncilorService(councilorRepo)
	sessionService := session.NewSessionService(sessionRepo, councilorRepo, cfg.Voting, deps.Hub, deps.Auditor)
	denunciaService := denuncia.NewDenunciaService(denunciaRepo, cfg.Voting, deps.Hub, deps.Auditor)
	meetingService := meeting.NewMeetingService(meetingRepo)
	documentService := document.NewDocumentService(deps.DB, deps.Store, deps.Auditor)
	notificationService := notification.NewNotificationService(deps.Redis)

	// Handler
	authHandler := auth.NewAuthHandler(authService)
	councilorHandler := councilor.NewCouncilorHandler(councilorService)
	sessionHandler := session.NewSessionHandler(sessionService)
	denunciaHandler := denuncia.NewDenunciaHandler(denunciaService)
	meetingHandler := meeting.NewMeetingHandler(meetingService)
	documentHandler := document.NewDocumentHandler(documentService)
	notificationHandler := notification.NewNotificationHandler(notificationService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.LogAPI())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		denunciaHandler.RegisterPublicRoutes(public)
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/register", authHandler.Register)
		protected.GET("/ws", realtime.ServeWs(deps.Hub))

		councilorHandler.RegisterRoutes(protected)
		sessionHandler.RegisterRoutes(protected)
		denunciaHandler.RegisterRoutes(protected)
		meetingHandler.RegisterRoutes(protected)
		documentHandler.RegisterRoutes(protected)
		notificationHandler.RegisterRoutes(protected)
	}

	return router
}

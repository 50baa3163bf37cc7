package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "docquery/internal/app"
	"docquery/internal/bootstrap"
	"docquery/internal/repository"
	"docquery/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	docRepo := repository.NewDocumentRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	docService := appsvc.NewDocumentService(
		docRepo, sessionRepo, messageRepo,
		app.Registry, app.HistoryCache, app.Memory,
		app.Config.Storage.UploadDir,
	)
	queryService := appsvc.NewQueryService(
		docRepo, sessionRepo, messageRepo,
		app.Registry, app.Publisher, app.HistoryCache,
	)

	docHandler := handler.NewDocumentHandler(docService)
	queryHandler := handler.NewQueryHandler(queryService)
	sessionHandler := handler.NewSessionHandler(queryService)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/health", healthHandler.Check)

	router.POST("/upload/", docHandler.Upload)
	router.GET("/documents/", docHandler.List)
	router.DELETE("/documents/:document_id", docHandler.Delete)

	router.POST("/query/:document_id", queryHandler.Query)

	sessions := router.Group("/sessions")
	sessions.GET("/:document_id", sessionHandler.ListByDocument)
	// Matches GET /sessions/history/:session_id; see SessionHandler.History.
	sessions.GET("/:document_id/:session_id", sessionHandler.History)
	sessions.DELETE("/:session_id", sessionHandler.Clear)

	return router
}

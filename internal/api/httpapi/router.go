package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/osa030/19player/internal/app/session"
	"github.com/osa030/19player/internal/infra/config"
)

// NewRouter builds the HTTP router for the player API.
func NewRouter(cfg *config.Config, manager *session.Manager) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(RequestLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "session_id": manager.SessionID()})
	})

	if cfg.MockCatalog.Enabled {
		router.GET("/mock/catalog/:kind", MockCatalog)
	}

	api := router.Group("/api/v1")
	api.Use(TokenAuth(cfg.Server.APIToken))
	SetupRoutes(api, NewHandler(manager))

	return router
}

// SetupRoutes registers the player routes on group.
func SetupRoutes(group *gin.RouterGroup, h *Handler) {
	group.GET("/state", h.GetState)
	group.GET("/events", h.Events)
	group.GET("/sources", h.ListSources)
	group.GET("/position", h.GetPosition)

	group.POST("/source", h.SetSource)
	group.POST("/play", h.Play)
	group.POST("/pause", h.Pause)
	group.POST("/stop", h.Stop)
	group.POST("/skip", h.Skip)
	group.POST("/previous", h.Previous)
	group.POST("/seek", h.Seek)
	group.POST("/clear-error", h.ClearError)

	queue := group.Group("/queue")
	{
		queue.POST("", h.AddToQueue)
		queue.DELETE("", h.ClearQueue)
		queue.POST("/reorder", h.ReorderQueue)
		queue.DELETE("/:index", h.RemoveFromQueue)
		queue.POST("/:index/play", h.PlaySong)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", TokenHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

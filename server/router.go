package server

import (
	"net/http"
	"time"

	httpHandler "viral-clips/interfaces/http"
	"viral-clips/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(discoveryHandler httpHandler.IDiscoveryHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://tulus.tech", "http://localhost:4200", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Identity())

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/discover", discoveryHandler.Discover)
	router.GET("/videos/:videoId", discoveryHandler.GetVideoDetails)
	router.GET("/clips/preview/:videoId", discoveryHandler.GetClipPreview)

	youtube := router.Group("/youtube")
	{
		youtube.GET("/cache-stats", discoveryHandler.CacheStats)
		youtube.POST("/clear-cache", discoveryHandler.ClearCache)
	}

	return router
}

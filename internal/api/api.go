package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/homecooks/profitboard/internal/api/handlers"
	"github.com/homecooks/profitboard/internal/cache"
	"github.com/homecooks/profitboard/internal/service"
)

func NewRouter(engine *service.Engine, views cache.ViewCache, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	viewsHandler := handlers.NewViewsHandler(engine, views)

	apiGroup := router.Group("/api/v1")
	{
		viewsGroup := apiGroup.Group("/views")
		{
			viewsGroup.GET("/d2c", viewsHandler.GetD2CView)
			viewsGroup.GET("/retail", viewsHandler.GetRetailView)
			viewsGroup.GET("/gopuff", viewsHandler.GetGoPuffView)
		}

		cacheGroup := apiGroup.Group("/cache")
		{
			cacheGroup.POST("/clear", viewsHandler.ClearCache)
			cacheGroup.GET("/status", viewsHandler.CacheStatus)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, true
		}
		normalized = append(normalized, strings.TrimSuffix(origin, "/"))
	}
	return normalized, false
}

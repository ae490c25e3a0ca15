package http

import (
	"github.com/gin-gonic/gin"

	"github.com/trolley/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		sizes := v1.Group("/sizes")
		{
			sizes.POST("/parse", handler.ParseSize)
			sizes.POST("/normalize", handler.NormalizeSize)
			sizes.POST("/compare", handler.CompareSizes)
			sizes.POST("/closest", handler.FindClosest)
			sizes.POST("/convert", handler.ConvertSize)
			sizes.POST("/rank", handler.RankSizes)
			sizes.POST("/group", handler.GroupSizes)
			sizes.POST("/suggest", handler.SuggestSize)
			sizes.POST("/price-per-unit", handler.PricePerUnit)
			sizes.POST("/extract", handler.ExtractSize)
			sizes.POST("/best-value", handler.BestValue)
		}

		lists := v1.Group("/lists")
		{
			lists.POST("", handler.CreateList)
			lists.GET("/:id", handler.GetList)
			lists.POST("/:id/switch-store", handler.SwitchStore)
		}

		v1.PUT("/stores/:storeId/prices", handler.ReplaceStorePrices)
	}

	return router
}

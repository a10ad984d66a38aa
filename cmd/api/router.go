package main

import (
	"strings"

	"aksara-bali-backend/internal/shared/middleware"
	"aksara-bali-backend/internal/shared/response"
	"aksara-bali-backend/pkg/container"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
		middleware.Metrics(c.Metrics),
		// model .obj stream thẳng từ store, không nén
		gzip.Gzip(gzip.DefaultCompression,
			gzip.WithExcludedPaths([]string{"/metrics"}),
			gzip.WithExcludedPathsRegexs([]string{`^/api/aksara/[^/]+/model$`}),
		),
	)

	router.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("", c.SystemHandler.Index)
		api.GET("/health", c.SystemHandler.Health)
		api.GET("/db-test", c.SystemHandler.DBTest)

		setupAksaraRoutes(api, c)
		setupCatalogRoutes(api, c)
	}

	router.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api") {
			c.SystemHandler.NotFound(ctx)
			return
		}
		response.NotFound(ctx, "Not found")
	})

	return router
}

// ========================================
// AKSARA ROUTES
// ========================================
func setupAksaraRoutes(api *gin.RouterGroup, c *container.Container) {
	aksara := api.Group("/aksara")
	{
		aksara.GET("", c.AksaraHandler.ListAksara)
		aksara.GET("/search", c.AksaraHandler.SearchAksara)
		aksara.POST("", c.AksaraHandler.CreateAksara)
		aksara.GET("/:id", c.AksaraHandler.GetAksara)
		aksara.PUT("/:id", c.AksaraHandler.UpdateAksara)
		aksara.DELETE("/:id", c.AksaraHandler.DeleteAksara)

		aksara.GET("/:id/model", c.AksaraHandler.DownloadModel)
		aksara.POST("/:id/model", c.AksaraHandler.UploadModel)
	}

	api.GET("/models/reconcile", c.AksaraHandler.ReconcileModels)
}

// ========================================
// CATEGORIES / STATS / RANDOM
// ========================================
func setupCatalogRoutes(api *gin.RouterGroup, c *container.Container) {
	categories := api.Group("/categories")
	{
		categories.GET("", c.AksaraHandler.GetCategories)
		categories.GET("/stats", c.AksaraHandler.GetCategoryStats)
	}

	api.GET("/stats", c.AksaraHandler.GetStats)
	api.GET("/random", c.AksaraHandler.GetRandom)
}

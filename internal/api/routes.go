package api

import (
	"github.com/gin-gonic/gin"
)

type RouteConfig struct {
	JWTSecret    string
	JWTIssuer    string
	RateLimitRPS float64
}

func SetupRoutes(cfg RouteConfig, handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/documents", handler.CreateDocument)
		api.DELETE("/documents/:id", handler.DeleteDocument)
		api.POST("/documents/:id/evaluate", handler.Evaluate)
		api.GET("/documents/:id/status", handler.Status)
		api.GET("/documents/:id/evaluation", handler.GetEvaluation)

		api.GET("/corpus/stats", handler.CorpusStats)
		api.POST("/plagiarism/check", handler.CheckPlagiarism)
		api.POST("/plagiarism/compare", handler.Compare)
	}

	return router
}

// Package routes assembles the gin engine.
package routes

import (
	"log/slog"

	"article-api/handlers"
	"article-api/helper"
	"article-api/metrics"
	"article-api/middleware"
	"article-api/rbac"
	"article-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Logger *slog.Logger
	Helper *helper.HTTPHelper

	Gate        *rbac.Gate
	AuthService services.AuthService

	ArticleHandler *handlers.ArticleHandler
	AuthHandler    *handlers.AuthHandler
	HealthHandler  *handlers.HealthHandler

	RateLimiter *middleware.RateLimiter
	Recorder    metrics.Recorder
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	// UploadDir is served read-only at /uploads when set.
	UploadDir string
}

func Setup(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Logger),
		middleware.Metrics(d.Recorder),
		middleware.Recovery(d.Logger, d.Helper),
		middleware.CORS(),
	)

	router.GET("/health", d.HealthHandler.Health)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}
	if d.UploadDir != "" {
		router.Static("/uploads", d.UploadDir)
	}

	v1 := router.Group("/v1")
	if d.RateLimiter != nil {
		v1.Use(d.RateLimiter.Middleware(d.Helper, d.Recorder))
	}
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(d.AuthService, d.Helper))
		{
			protected.GET("/profile", d.AuthHandler.GetProfile)

			allow := func(action rbac.Action) gin.HandlerFunc {
				return middleware.RequirePermission(d.Gate, action, d.Helper, d.Recorder)
			}

			articles := protected.Group("/articles")
			{
				articles.POST("", allow(rbac.CreateArticles), d.ArticleHandler.CreateArticle)
				articles.GET("", allow(rbac.GetArticles), d.ArticleHandler.GetArticles)
				articles.GET("/:id", allow(rbac.GetArticles), d.ArticleHandler.GetArticle)
				articles.PATCH("/:id", allow(rbac.UpdateArticles), d.ArticleHandler.UpdateArticle)
				articles.DELETE("/:id", allow(rbac.DeleteArticles), d.ArticleHandler.DeleteArticle)
			}
		}
	}

	return router
}

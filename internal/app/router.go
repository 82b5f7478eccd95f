package app

import (
	"spanish_learning_backend/internal/config"
	"spanish_learning_backend/internal/middleware"
	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/lexicon", c.lexicon.Get)

		curriculum := public.Group("/curriculum")
		{
			curriculum.GET("/tracks", c.curriculum.ListTracks)
			curriculum.GET("/tracks/:id/lessons", c.curriculum.ListLessons)
			curriculum.GET("/lessons/:id", c.curriculum.GetLesson)
			curriculum.GET("/lessons/:id/sentences", c.curriculum.LessonSentences)
		}

		public.POST("/sentences/generate", c.sentence.Generate)
		public.GET("/sentences/:id", c.sentence.Get)
		public.POST("/idioms/generate", c.idiom.Generate)

		conversation := public.Group("/conversation")
		{
			conversation.POST("/feedback", c.conversation.Feedback)
			conversation.POST("/stream", c.conversation.Stream)
		}
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	progress := group.Group("/progress")
	{
		progress.GET("", c.progress.GetSummary)
		progress.PUT("/lessons/:id", c.progress.UpdateLesson)
		progress.POST("/attempts", c.progress.RecordAttempt)
		progress.POST("/words", c.progress.AddWords)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.RoleMiddleware(model.Admin),
		middleware.ActivityMiddleware(repos.user),
	)
	{
		admin.POST("/curriculum/seed", c.admin.Seed)
		admin.POST("/lessons/:id/populate", c.admin.PopulateLesson)
		admin.PUT("/lessons/:id/order", c.admin.ReorderLesson)
		admin.DELETE("/lessons/:id/sentences/:sentenceId", c.admin.RemoveLessonSentence)
		admin.POST("/tracks/:id/generate", c.admin.GenerateTrack)
		admin.PUT("/sentences/:id", c.sentence.Update)
		admin.DELETE("/sentences/:id", c.sentence.Delete)
		admin.GET("/events", c.admin.ListEvents)
	}
}

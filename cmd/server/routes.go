package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	r.GET("/health", svc.healthHandler.Health)
	r.GET("/health/detail", svc.healthHandler.CheckHealth)
	r.GET("/metrics", svc.metricsHandler.Metrics)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public board reads
		public := api.Group("", middleware.OptionalAuth())
		{
			public.GET("/projects/:id/tasks", svc.taskHandler.ListByProject)
			public.GET("/tasks/:id", svc.taskHandler.GetByID)
			public.GET("/tasks/:id/comments", svc.commentHandler.ListByTask)
		}

		// Live updates; token may also come from ?token=
		streams := api.Group("", middleware.StreamAuthRequired())
		{
			streams.GET("/events/projects/:id/tasks", svc.sseHandler.StreamTaskUpdates)
			streams.GET("/events/tasks/:id/comments", svc.sseHandler.StreamCommentAdded)
			streams.GET("/ws", svc.wsHandler.Serve)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.GET("/users", svc.userHandler.List)
			protected.GET("/me/tasks", svc.taskHandler.ListMine)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.POST("/projects/:id/members", svc.projectMemberHandler.Add)
			protected.DELETE("/projects/:id/members/:userId", svc.projectMemberHandler.Remove)

			// Tasks
			protected.POST("/tasks", svc.taskHandler.Create)
			protected.PUT("/tasks/:id", svc.taskHandler.Update)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)
			protected.POST("/tasks/:id/move", svc.taskHandler.Move)

			// Comments
			protected.POST("/comments", svc.commentHandler.Create)
			protected.PUT("/comments/:id", svc.commentHandler.Update)
			protected.DELETE("/comments/:id", svc.commentHandler.Delete)
		}
	}
}

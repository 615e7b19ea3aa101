package routes

import (
	"context"
	"net/http"
	"time"

	"todo-api/internal/auth"
	"todo-api/internal/config"
	"todo-api/internal/handlers"
	"todo-api/internal/middleware"
	"todo-api/internal/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps is everything the router needs. Auth, Users and Sessions are nil when
// the configured store has no accounts.
type Deps struct {
	Config   *config.Config
	Log      *logrus.Logger
	Tasks    *services.TaskService
	Auth     *services.AuthService
	Users    *services.UserService
	Sessions *auth.SessionManager
}

func (d Deps) authEnabled() bool {
	return d.Auth != nil && d.Users != nil && d.Sessions != nil
}

func SetupRoutes(d Deps) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(middleware.RequestLogger(d.Log))
	if d.Config.SentryDSN != "" {
		ginRouter.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	ginRouter.Use(gin.Recovery())

	// CORS middleware (for frontend integration)
	ginRouter.Use(middleware.CORS(d.Config.CORSOrigins))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		store := "ok"
		if err := d.Tasks.Ping(ctx); err != nil {
			d.Log.WithError(err).Warn("health check: store unavailable")
			store = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"store":     store,
		})
	})

	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Log)
	taskRoutes := ginRouter.Group("/tasks")

	if d.authEnabled() {
		sessionAuth := middleware.SessionAuth(d.Sessions, d.Config.SessionCookie)
		authHandler := handlers.NewAuthHandler(d.Auth, handlers.CookieConfig{
			Name:   d.Config.SessionCookie,
			Secure: d.Config.CookieSecure,
			MaxAge: d.Config.SessionTTL,
		}, d.Log)
		adminHandler := handlers.NewAdminHandler(d.Users, d.Log)

		// Public routes (no authentication required)
		authRoutes := ginRouter.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", sessionAuth, authHandler.Logout)
			authRoutes.GET("/me", sessionAuth, authHandler.Me)
		}

		adminRoutes := ginRouter.Group("/admin")
		adminRoutes.Use(sessionAuth, middleware.RequireAdmin())
		{
			adminRoutes.GET("/users", adminHandler.GetAllUsers)
			adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)
		}

		taskRoutes.Use(sessionAuth)
	}

	{
		taskRoutes.GET("", taskHandler.GetTasks)
		taskRoutes.GET("/stats", taskHandler.GetStats)
		taskRoutes.GET("/export", taskHandler.ExportTasks)
		taskRoutes.POST("/import", taskHandler.ImportTasks)
		taskRoutes.GET("/:id", taskHandler.GetTaskByID)
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.PUT("/:id", taskHandler.UpdateTask)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
	}

	return ginRouter
}

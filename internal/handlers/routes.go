package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/middleware"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

// RegisterRoutes mounts the health check, the JSON API under /api and the
// presentation endpoints under /admin. Sessions middleware must already be
// installed on r.
func RegisterRoutes(r *gin.Engine, auth *services.AuthService, q *queries.Queries) {
	authHandler := NewAuthHandler(auth)
	orgHandler := NewOrganizationHandler(q)
	userHandler := NewUserHandler(q)
	courseHandler := NewCourseHandler(q)
	videoHandler := NewVideoHandler(q)
	enrollmentHandler := NewEnrollmentHandler(q)
	dashboardHandler := NewDashboardHandler(q)
	adminHandler := NewAdminHandler(q)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Learning Admin API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())

		orgs := protected.Group("/organizations")
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("/:id", orgHandler.GetOrganization)
			orgs.PATCH("/:id", orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", orgHandler.DeleteOrganization)
		}

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.GET("/:id/memberships", userHandler.ListMemberships)
			users.POST("/:id/memberships", userHandler.AddMembership)
			users.DELETE("/:id/memberships/:membershipId", userHandler.RemoveMembership)
		}

		courses := protected.Group("/courses")
		{
			courses.GET("", courseHandler.ListCourses)
			courses.POST("", courseHandler.CreateCourse)
			courses.GET("/:id", courseHandler.GetCourse)
			courses.PATCH("/:id", courseHandler.UpdateCourse)
			courses.DELETE("/:id", courseHandler.DeleteCourse)
		}

		videos := protected.Group("/videos")
		{
			videos.GET("", videoHandler.ListVideos)
			videos.POST("", videoHandler.CreateVideo)
			videos.GET("/:id", videoHandler.GetVideo)
			videos.PATCH("/:id", videoHandler.UpdateVideo)
			videos.DELETE("/:id", videoHandler.DeleteVideo)
			videos.GET("/:id/playback", videoHandler.GetPlayback)
		}

		enrollments := protected.Group("/enrollments")
		{
			enrollments.GET("", enrollmentHandler.ListEnrollments)
			enrollments.POST("", enrollmentHandler.CreateEnrollment)
			enrollments.GET("/:id", enrollmentHandler.GetEnrollment)
			enrollments.PATCH("/:id", enrollmentHandler.UpdateEnrollment)
			enrollments.DELETE("/:id", enrollmentHandler.DeleteEnrollment)
			enrollments.GET("/:id/progress", enrollmentHandler.GetProgress)
			enrollments.PUT("/:id/progress/:videoId", enrollmentHandler.RecordProgress)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/metrics", dashboardHandler.GetMetrics)
			dashboard.GET("/recent-progress", dashboardHandler.GetRecentProgress)
		}
	}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/organizations", adminHandler.Organizations)
		admin.GET("/users", adminHandler.Users)
		admin.GET("/courses", adminHandler.Courses)
		admin.GET("/enrollments", adminHandler.Enrollments)
		admin.GET("/progress/:enrollmentId", adminHandler.Progress)
	}
}

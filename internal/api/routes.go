package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Auth                service.AuthService
	Accounts            service.AccountService
	Routines            service.RoutineService // coached namespace
	IndependentRoutines service.RoutineService
	Workouts            service.WorkoutService
	Exercises           service.ExerciseService
	Branding            service.BrandingService
	Audit               service.AuditService
}

func SetupRoutes(router *gin.Engine, s Services) {
	authHandler := NewAuthHandler(s.Auth, s.Accounts)
	userHandler := NewUserHandler(s.Accounts)
	routineHandler := NewRoutineHandler(s.Routines)
	independentHandler := NewRoutineHandler(s.IndependentRoutines)
	workoutHandler := NewWorkoutHandler(s.Workouts)
	exerciseHandler := NewExerciseHandler(s.Exercises)
	brandingHandler := NewBrandingHandler(s.Branding)
	auditHandler := NewAuditHandler(s.Audit)

	staffOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleCoach)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/branding", brandingHandler.GetBranding)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/social", authHandler.SocialLogin)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(s.Auth))
	{
		// --- Self service ---
		me := protected.Group("/me")
		{
			me.GET("", authHandler.Me)
			me.POST("/password", authHandler.ChangePassword)
			me.GET("/routines/active", routineHandler.ActiveMine)

			me.GET("/independent-routines", independentHandler.ListMine)
			me.GET("/independent-routines/active", independentHandler.ActiveMine)
			me.POST("/independent-routines", independentHandler.Publish)
			me.PATCH("/independent-routines/:id", independentHandler.Patch)
			me.DELETE("/independent-routines/:id", independentHandler.Delete)

			me.GET("/workouts", workoutHandler.ListMine)
			me.POST("/workouts", workoutHandler.LogWorkout)
			me.GET("/workouts/completed", workoutHandler.CompletedThisWeek)
		}

		// --- Accounts (admin) ---
		users := protected.Group("/users")
		{
			users.GET("", adminOnly, userHandler.ListUsers)
			users.POST("", adminOnly, userHandler.CreateUser)
			users.GET("/:id", adminOnly, userHandler.GetUser)
			users.PATCH("/:id", adminOnly, userHandler.UpdateUser)
			users.DELETE("/:id", adminOnly, userHandler.DeleteUser)
			users.POST("/:id/subscription", adminOnly, userHandler.ExtendSubscription)

			// staff or the user themselves, checked by the service
			users.GET("/:id/routines", routineHandler.ListForUser)
			users.GET("/:id/routines/active", routineHandler.ActiveForUser)
		}

		// --- Coached routines ---
		routines := protected.Group("/routines")
		{
			routines.POST("", staffOnly, routineHandler.Publish)
			routines.GET("/:id", routineHandler.Get)
			routines.PATCH("/:id", staffOnly, routineHandler.Patch)
			routines.DELETE("/:id", staffOnly, routineHandler.Delete)
		}

		protected.PATCH("/workouts/:id", staffOnly, workoutHandler.CorrectLog)

		// --- Exercise media bank ---
		exercises := protected.Group("/exercises")
		{
			exercises.GET("", exerciseHandler.ListExercises)
			exercises.GET("/:id", exerciseHandler.GetExercise)
			exercises.POST("", staffOnly, exerciseHandler.CreateExercise)
			exercises.PATCH("/:id", staffOnly, exerciseHandler.UpdateExercise)
			exercises.DELETE("/:id", staffOnly, exerciseHandler.DeleteExercise)
			exercises.POST("/:id/media-url", staffOnly, exerciseHandler.RequestMediaUploadURL)
			exercises.POST("/:id/media", staffOnly, exerciseHandler.ConfirmMedia)
		}

		protected.PUT("/branding", adminOnly, brandingHandler.UpdateBranding)
		protected.POST("/branding/logo-url", adminOnly, brandingHandler.RequestLogoUploadURL)
		protected.GET("/audit", adminOnly, auditHandler.ListAudit)
	}
}

package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/config"
	"github.com/ymgta/time-tracker-api/internal/database"
	"github.com/ymgta/time-tracker-api/internal/handlers"
	"github.com/ymgta/time-tracker-api/internal/middleware"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"github.com/ymgta/time-tracker-api/internal/services"
	"github.com/ymgta/time-tracker-api/internal/sweeper"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	entryRepo := repository.NewTrackerEntryRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo)
	customerService := services.NewCustomerService(customerRepo)
	projectService := services.NewProjectService(projectRepo, customerRepo)
	trackerService := services.NewTrackerService(entryRepo)

	// Start the stale-timer sweep
	sw := sweeper.New(entryRepo)
	if err := sw.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sw.Stop()

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("tracker_session", store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	projectHandler := handlers.NewProjectHandler(projectService)
	trackerHandler := handlers.NewTrackerHandler(trackerService)
	reportHandler := handlers.NewReportHandler(trackerService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Time Tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth())
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.POST("/join", teamHandler.JoinTeam)
			teams.GET("/:id", middleware.RequireTeamAccess(), teamHandler.GetTeam)
			teams.PUT("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.UpdateTeam)
			teams.DELETE("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.DeleteTeam)
			teams.POST("/:id/regenerate-code", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.RegenerateInviteCode)
			teams.DELETE("/:id/members/:user_id", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.RemoveMember)

			// Team-scoped resources
			scoped := teams.Group("/:id")
			scoped.Use(middleware.RequireTeamAccess())
			{
				scoped.GET("/customers", customerHandler.ListCustomers)
				scoped.POST("/customers", customerHandler.CreateCustomer)
				scoped.GET("/customers/:customer_id", customerHandler.GetCustomer)
				scoped.PUT("/customers/:customer_id", customerHandler.UpdateCustomer)
				scoped.DELETE("/customers/:customer_id", customerHandler.DeleteCustomer)

				scoped.GET("/projects", projectHandler.ListProjects)
				scoped.POST("/projects", projectHandler.CreateProject)
				scoped.GET("/projects/:project_id", projectHandler.GetProject)
				scoped.PUT("/projects/:project_id", projectHandler.UpdateProject)
				scoped.POST("/projects/:project_id/complete", projectHandler.CompleteProject)
				scoped.DELETE("/projects/:project_id", projectHandler.DeleteProject)

				scoped.GET("/tracker-entries", trackerHandler.ListEntries)
				scoped.POST("/tracker-entries", trackerHandler.UpsertEntries)
				scoped.POST("/tracker-entries/bulk", trackerHandler.BulkCreateEntries)
				scoped.DELETE("/tracker-entries/:entry_id", trackerHandler.DeleteEntry)
				scoped.GET("/tracker-entries/paused", trackerHandler.PausedEntries)

				scoped.POST("/timer/start", trackerHandler.StartTimer)
				scoped.POST("/timer/stop", trackerHandler.StopTimer)
				scoped.POST("/timer/pause", trackerHandler.PauseTimer)
				scoped.GET("/timer/current", trackerHandler.CurrentTimer)
				scoped.GET("/timer/status", trackerHandler.TimerStatus)

				scoped.GET("/reports/tracked-time", reportHandler.TrackedTime)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Quokka/config"
	"github.com/lshigami/Quokka/database"
	_ "github.com/lshigami/Quokka/docs" // Swagger docs - auto-generated
	adminctrl "github.com/lshigami/Quokka/internal/controller/admin"
	studentctrl "github.com/lshigami/Quokka/internal/controller/student"
	"github.com/lshigami/Quokka/internal/logger"
	"github.com/lshigami/Quokka/internal/model"
	"github.com/lshigami/Quokka/internal/repository"
	"github.com/lshigami/Quokka/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Timed Quiz Session API
// @version 1.0
// @description API for running timed, proctored quiz sessions with live countdown, violation tracking and sealed attempt review.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewQuizRepository,
			repository.NewSessionRepository,
			repository.NewAttemptRepository,
			repository.NewSessionStore, // session.Store over the repositories
		),

		// Services Layer
		fx.Provide(
			service.NewAdminQuizService,
			service.NewQuizService,
			service.NewAttemptService,
			service.NewSessionService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminQuizController,
			studentctrl.NewQuizController,
			studentctrl.NewSessionController,
			studentctrl.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	r := gin.New()

	// Request logging through the global zerolog instance
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminQuizCtrl *adminctrl.AdminQuizController,
	quizCtrl *studentctrl.QuizController,
	sessionCtrl *studentctrl.SessionController,
	attemptCtrl *studentctrl.AttemptController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		quizzesAdminGroup := adminAPIGroup.Group("/quizzes")
		quizzesAdminGroup.POST("", adminQuizCtrl.CreateQuiz)
	}

	// Student Routes (prefixed with /api/v1)
	apiGroup := router.Group("/api/v1")
	{
		// Quiz listing and details
		apiGroup.GET("/quizzes", quizCtrl.GetAllQuizzes)
		apiGroup.GET("/quizzes/:quiz_id", quizCtrl.GetQuizDetails)

		// Live sessions
		apiGroup.POST("/quizzes/:quiz_id/sessions", sessionCtrl.StartSession)
		apiGroup.GET("/sessions/:session_id", sessionCtrl.GetSession)
		apiGroup.PUT("/sessions/:session_id/answer", sessionCtrl.UpdateAnswer)
		apiGroup.PUT("/sessions/:session_id/flag", sessionCtrl.ToggleFlag)
		apiGroup.PUT("/sessions/:session_id/position", sessionCtrl.UpdatePosition)
		apiGroup.POST("/sessions/:session_id/events", sessionCtrl.ReportSignal)
		apiGroup.POST("/sessions/:session_id/submit", sessionCtrl.SubmitSession)

		// Sealed attempts
		apiGroup.GET("/attempts/:attempt_id", attemptCtrl.GetAttemptDetails)
		apiGroup.GET("/quizzes/:quiz_id/my-attempts", attemptCtrl.GetMyAttempt)
		apiGroup.GET("/quizzes/:quiz_id/stats", attemptCtrl.GetQuizStats)
		apiGroup.GET("/students/:student_id/attempts", attemptCtrl.GetStudentHistory)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quiz session API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Quiz{},
		&model.Question{},
		&model.Session{},
		&model.Attempt{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/psymetrics/sessioncore/config"
	"github.com/psymetrics/sessioncore/database"
	_ "github.com/psymetrics/sessioncore/docs" // Swagger docs
	adminctrl "github.com/psymetrics/sessioncore/internal/controller/admin"
	userctrl "github.com/psymetrics/sessioncore/internal/controller/user"
	"github.com/psymetrics/sessioncore/internal/logger"
	"github.com/psymetrics/sessioncore/internal/model"
	"github.com/psymetrics/sessioncore/internal/repository"
	"github.com/psymetrics/sessioncore/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Session Core API
// @version 1.0
// @description Test-session temporal state machine and live progress/scoring engine for proctored psychometric test sessions.
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
			repository.NewSessionRepository,
			repository.NewParticipantRepository,
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewTestAttemptRepository,
			repository.NewAnswerRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewSessionService,
			service.NewParticipantService,
			service.NewScoringService,
			service.NewAttemptService,
			service.NewLiveStatsService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewSessionController,
			adminctrl.NewMonitorController,
			userctrl.NewParticipantController,
			userctrl.NewAttemptController,
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

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the
// HTTP server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionCtrl *adminctrl.SessionController,
	monitorCtrl *adminctrl.MonitorController,
	participantCtrl *userctrl.ParticipantController,
	attemptCtrl *userctrl.AttemptController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		sessionsAdminGroup := adminAPIGroup.Group("/sessions")
		sessionsAdminGroup.POST("", sessionCtrl.CreateSession)
		sessionsAdminGroup.GET("/:session_id", sessionCtrl.GetSession)
		sessionsAdminGroup.POST("/:session_id/activate", sessionCtrl.Activate)
		sessionsAdminGroup.POST("/:session_id/complete", sessionCtrl.Complete)
		sessionsAdminGroup.POST("/:session_id/cancel", sessionCtrl.Cancel)

		sessionsAdminGroup.GET("/:session_id/live-test/stats", monitorCtrl.GetLiveStats)
		sessionsAdminGroup.GET("/:session_id/live-test/participants", monitorCtrl.GetLiveParticipants)
		adminAPIGroup.GET("/live-test/overview", monitorCtrl.GetOverview)
	}

	// User Routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.POST("/sessions/:session_id/participants", participantCtrl.Register)
		userAPIGroup.POST("/sessions/:session_id/tests/:test_id/attempts/start", attemptCtrl.StartAttempt)
		userAPIGroup.POST("/attempts/:attempt_id/answers", attemptCtrl.SubmitAnswer)
		userAPIGroup.POST("/attempts/:attempt_id/finish", attemptCtrl.FinishAttempt)
		userAPIGroup.GET("/attempts/:attempt_id", attemptCtrl.GetAttempt)
		userAPIGroup.GET("/attempts/:attempt_id/score", attemptCtrl.GetScore)
		userAPIGroup.GET("/users/:user_id/score-summary", attemptCtrl.GetUserScoreSummary)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Session Core API server starting on port %s", cfg.Server.Port)
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
		&model.Test{},
		&model.Question{},
		&model.Session{},
		&model.SessionModule{},
		&model.SessionParticipant{},
		&model.TestAttempt{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/icodsa/conference-api/api/swagger"
	"github.com/icodsa/conference-api/internal/handler"
	"github.com/icodsa/conference-api/internal/middleware"
	"github.com/icodsa/conference-api/internal/models"
	"github.com/icodsa/conference-api/internal/repository"
	"github.com/icodsa/conference-api/internal/service"
	"github.com/icodsa/conference-api/pkg/cache"
	"github.com/icodsa/conference-api/pkg/config"
	"github.com/icodsa/conference-api/pkg/database"
	"github.com/icodsa/conference-api/pkg/jobs"
	"github.com/icodsa/conference-api/pkg/logger"
	corsmiddleware "github.com/icodsa/conference-api/pkg/middleware/cors"
	reqidmiddleware "github.com/icodsa/conference-api/pkg/middleware/requestid"
	"github.com/icodsa/conference-api/pkg/storage"
)

// @title Conference API
// @version 1.0.0
// @description Schedule and program management for the ICoDSA and ICICyTA conference series
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	conferenceRepo := repository.NewConferenceRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	trackRepo := repository.NewTrackRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	bookRepo := repository.NewProgramBookRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Grid.CacheTTL, logr, cfg.Grid.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	conferenceSvc := service.NewConferenceService(conferenceRepo, userRepo, cacheSvc, nil, logr)
	scheduleSvc := service.NewScheduleService(slotRepo, conferenceRepo, cacheSvc, nil, logr)
	roomSvc := service.NewRoomService(roomRepo, slotRepo, trackRepo, conferenceRepo, cacheSvc, nil, logr)
	trackSvc := service.NewTrackService(trackRepo, conferenceRepo, cacheSvc, nil, logr)
	sessionSvc := service.NewSessionService(sessionRepo, trackRepo, conferenceRepo, nil, logr)
	gridSvc := service.NewGridService(conferenceRepo, nil, cacheSvc, metricsSvc, cfg.Grid.CacheTTL, logr)
	exportSvc := service.NewExportService(gridSvc, conferenceRepo, cfg.Exports.Enabled, logr)

	bookStore, err := storage.NewLocalStorage(cfg.ProgramBooks.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare program book storage", "error", err)
	}
	bookSigner := storage.NewSignedURLSigner(cfg.ProgramBooks.SignedURLSecret, cfg.ProgramBooks.SignedURLTTL)
	bookSvc := service.NewProgramBookService(bookRepo, conferenceRepo, gridSvc, trackRepo, sessionRepo, bookStore, bookSigner, metricsSvc, cfg.ProgramBooks.Enabled, logr)

	bookQueue := jobs.NewQueue("program-books", bookSvc.Process, jobs.QueueConfig{
		Workers:    cfg.ProgramBooks.WorkerConcurrency,
		MaxRetries: cfg.ProgramBooks.WorkerRetries,
		Logger:     logr,
	})
	bookSvc.SetQueue(bookQueue)
	bookQueue.Start(ctx)
	defer bookQueue.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	conferenceHandler := handler.NewConferenceHandler(conferenceSvc, gridSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	trackHandler := handler.NewTrackHandler(trackSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	bookHandler := handler.NewProgramBookHandler(bookSvc)
	publicHandler := handler.NewPublicHandler(conferenceSvc, gridSvc, sessionSvc, exportSvc, bookSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/internal/metrics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin), metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerPublicRoutes(r, publicHandler)
	registerAPIRoutes(r, cfg.APIPrefix, authSvc, userRepo, authHandler, userHandler, conferenceHandler, scheduleHandler, roomHandler, trackHandler, sessionHandler, bookHandler)

	if cfg.Maintenance.Enabled {
		scheduler := startMaintenance(ctx, cfg, logr, userRepo, bookSvc, gridSvc)
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerPublicRoutes(r *gin.Engine, public *handler.PublicHandler) {
	group := r.Group("/public")
	group.GET("/conferences", public.Conferences)
	group.GET("/conferences/:id/days", public.Grid)
	group.GET("/conferences/:id/days/:day", public.Day)
	group.GET("/conferences/:id/days/:day/export", public.ExportDay)
	group.GET("/tracks/:id/sessions", public.TrackSessions)
	group.GET("/program-books/download", public.DownloadProgramBook)
}

func registerAPIRoutes(
	r *gin.Engine,
	prefix string,
	authSvc *service.AuthService,
	userRepo *repository.UserRepository,
	auth *handler.AuthHandler,
	users *handler.UserHandler,
	conferences *handler.ConferenceHandler,
	schedules *handler.ScheduleHandler,
	rooms *handler.RoomHandler,
	tracks *handler.TrackHandler,
	sessions *handler.SessionHandler,
	books *handler.ProgramBookHandler,
) {
	api := r.Group(prefix)

	api.POST("/auth/login", auth.Login)
	api.POST("/auth/refresh", auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", auth.Logout)
	authed.POST("/auth/change-password", auth.ChangePassword)
	authed.GET("/auth/me", auth.Me)

	superOnly := middleware.RequireRoles(models.RoleSuperAdmin)
	admins := middleware.RequireAdmins()

	authed.GET("/users", superOnly, users.List)
	authed.POST("/users", superOnly, users.Create)
	authed.GET("/users/:id", middleware.RBAC(string(models.RoleSuperAdmin), "SELF"), users.Get)
	authed.PUT("/users/:id", middleware.RBAC(string(models.RoleSuperAdmin), "SELF"), users.Update)
	authed.DELETE("/users/:id", superOnly, users.Delete)

	authed.GET("/conferences", admins, conferences.List)
	authed.POST("/conferences", admins, conferences.Create)
	authed.GET("/conferences/:id", admins, conferences.Get)
	authed.PUT("/conferences/:id", admins, conferences.Update)
	authed.DELETE("/conferences/:id", admins, conferences.Delete)
	authed.POST("/conferences/:id/activate", admins, conferences.Activate)
	authed.GET("/conferences/:id/day-dates", admins, conferences.DayDates)
	authed.GET("/conferences/:id/grid", admins, conferences.Grid)

	// Conference mutations are audited with old/new values inside the
	// service; schedule-level mutations get the request-scoped audit
	// middleware instead.
	authed.GET("/conferences/:id/slots", admins, schedules.List)
	authed.POST("/conferences/:id/slots", admins, middleware.Audit(userRepo, "CREATE", "time_slot"), schedules.Create)
	authed.GET("/slots/:id", admins, schedules.Get)
	authed.PUT("/slots/:id", admins, middleware.Audit(userRepo, "UPDATE", "time_slot"), schedules.Update)
	authed.DELETE("/slots/:id", admins, middleware.Audit(userRepo, "DELETE", "time_slot"), schedules.Delete)

	authed.GET("/slots/:id/rooms", admins, rooms.ListBySlot)
	authed.POST("/slots/:id/rooms", admins, middleware.Audit(userRepo, "CREATE", "room"), rooms.Create)
	authed.GET("/rooms/:id", admins, rooms.Get)
	authed.PUT("/rooms/:id", admins, middleware.Audit(userRepo, "UPDATE", "room"), rooms.Update)
	authed.DELETE("/rooms/:id", admins, middleware.Audit(userRepo, "DELETE", "room"), rooms.Delete)

	authed.GET("/conferences/:id/tracks", admins, tracks.ListByConference)
	authed.GET("/tracks/:id", admins, tracks.Get)
	authed.PUT("/tracks/:id", admins, middleware.Audit(userRepo, "UPDATE", "track"), tracks.Update)
	authed.DELETE("/tracks/:id", admins, middleware.Audit(userRepo, "DELETE", "track"), tracks.Delete)

	authed.GET("/tracks/:id/sessions", admins, sessions.List)
	authed.POST("/tracks/:id/sessions", admins, middleware.Audit(userRepo, "CREATE", "track_session"), sessions.Create)
	authed.GET("/sessions/:id", admins, sessions.Get)
	authed.PUT("/sessions/:id", admins, middleware.Audit(userRepo, "UPDATE", "track_session"), sessions.Update)
	authed.DELETE("/sessions/:id", admins, middleware.Audit(userRepo, "DELETE", "track_session"), sessions.Delete)

	authed.POST("/conferences/:id/program-books", admins, middleware.Audit(userRepo, "GENERATE", "program_book"), books.Create)
	authed.GET("/conferences/:id/program-books", admins, books.List)
	authed.GET("/program-books/:id", admins, books.Status)
}

func startMaintenance(
	ctx context.Context,
	cfg *config.Config,
	logr *zap.Logger,
	userRepo *repository.UserRepository,
	bookSvc *service.ProgramBookService,
	gridSvc *service.GridService,
) *cron.Cron {
	scheduler := cron.New()
	sugar := logr.Sugar()

	if _, err := scheduler.AddFunc(cfg.Maintenance.TokenPurgeSpec, func() {
		purged, err := userRepo.PurgeExpiredRefreshTokens(ctx, time.Now().UTC())
		if err != nil {
			sugar.Warnw("refresh token purge failed", "error", err)
			return
		}
		if purged > 0 {
			sugar.Infow("purged expired refresh tokens", "count", purged)
		}
	}); err != nil {
		sugar.Warnw("invalid token purge schedule", "spec", cfg.Maintenance.TokenPurgeSpec, "error", err)
	}

	if _, err := scheduler.AddFunc(cfg.Maintenance.ArtifactCleanSpec, func() {
		bookSvc.CleanupArtifacts(cfg.Maintenance.ArtifactTTL)
	}); err != nil {
		sugar.Warnw("invalid artifact clean schedule", "spec", cfg.Maintenance.ArtifactCleanSpec, "error", err)
	}

	if cfg.Maintenance.WarmActiveSchedule {
		if _, err := scheduler.AddFunc(cfg.Maintenance.CacheWarmSpec, func() {
			if err := gridSvc.WarmActive(ctx); err != nil {
				sugar.Warnw("grid cache warm failed", "error", err)
			}
		}); err != nil {
			sugar.Warnw("invalid cache warm schedule", "spec", cfg.Maintenance.CacheWarmSpec, "error", err)
		}
	}

	scheduler.Start()
	sugar.Infow("maintenance scheduler started")
	return scheduler
}

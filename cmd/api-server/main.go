package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/barbershop-api/api/swagger"
	"github.com/noah-isme/barbershop-api/internal/handler"
	internalmiddleware "github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/repository"
	"github.com/noah-isme/barbershop-api/internal/service"
	"github.com/noah-isme/barbershop-api/pkg/cache"
	"github.com/noah-isme/barbershop-api/pkg/config"
	"github.com/noah-isme/barbershop-api/pkg/database"
	"github.com/noah-isme/barbershop-api/pkg/events"
	"github.com/noah-isme/barbershop-api/pkg/export"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
	"github.com/noah-isme/barbershop-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/barbershop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/barbershop-api/pkg/middleware/requestid"
)

// @title Barbershop API
// @version 1.0.0
// @description Slot availability and appointment booking for barbershops
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache and slot locks", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := buildApp(cfg, logr, db, redisClient)
	// Workers outlive the signal context so buffered events drain during shutdown.
	app.queue.Start(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}
	app.queue.Stop()
	if err := app.publisher.Close(); err != nil {
		logr.Warn("event publisher close failed", zap.Error(err))
	}
}

type application struct {
	router    *gin.Engine
	queue     *jobs.Queue
	publisher events.Publisher
}

func buildApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *application {
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	barbershopRepo := repository.NewBarbershopRepository(db)
	barberRepo := repository.NewBarberRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr, service.CacheOptions{
		Namespace:  cfg.Redis.KeyPrefix,
		DefaultTTL: cfg.Booking.AvailabilityCacheTTL,
		Enabled:    redisClient != nil,
	})

	publisher := newPublisher(cfg.Events, logr)
	eventSvc := service.NewEventService(publisher, auditRepo, metricsSvc, logr)
	jobRouter := jobs.NewRouter()
	eventSvc.Register(jobRouter)
	queue := jobs.NewQueue("appointment-events", jobRouter.Handle, jobs.QueueConfig{
		Workers:       cfg.Jobs.Workers,
		BufferSize:    cfg.Jobs.BufferSize,
		MaxRetries:    cfg.Jobs.MaxRetries,
		RetryDelay:    cfg.Jobs.RetryDelay,
		MaxRetryDelay: cfg.Jobs.MaxRetryDelay,
		OnDrop: func(job jobs.Job, _ error) {
			metricsSvc.RecordDroppedJob(job.Type)
		},
		Logger: logr,
	})

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	availabilitySvc := service.NewAvailabilityService(barbershopRepo, barberRepo, scheduleRepo, appointmentRepo, cacheSvc, metricsSvc, logr, service.AvailabilityConfig{
		MatchTolerance:   cfg.Booking.MatchTolerance,
		CacheTTL:         cfg.Booking.AvailabilityCacheTTL,
		MaxLookaheadDays: cfg.Booking.MaxLookaheadDays,
		DefaultTimezone:  cfg.Booking.DefaultTimezone,
	})
	bookingParams := service.BookingServiceParams{
		Barbershops:  barbershopRepo,
		Barbers:      barberRepo,
		Catalog:      catalogRepo,
		Appointments: appointmentRepo,
		Availability: availabilitySvc,
		Queue:        queue,
		Metrics:      metricsSvc,
		Validator:    validate,
		Logger:       logr,
		LockTTL:      cfg.Booking.LockTTL,
	}
	if redisClient != nil {
		bookingParams.Locker = cache.NewRedisLocker(redisClient, lockPrefix(cfg.Redis.KeyPrefix))
	}
	bookingSvc := service.NewBookingService(bookingParams)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, queue, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, barbershopRepo, barberRepo, availabilitySvc, validate, logr)
	exportSvc := service.NewExportService(barbershopRepo, barberRepo, catalogRepo, appointmentRepo, availabilitySvc, export.Renderers(), logr)

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	appointmentHandler := handler.NewAppointmentHandler(bookingSvc, appointmentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	agendaHandler := handler.NewAgendaHandler(exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authMW := internalmiddleware.JWT(authSvc)

	authGroup := api.Group("/auth")
	authGroup.GET("/me", authMW, authHandler.Me)
	if cfg.Env != config.EnvProduction {
		authGroup.POST("/dev-token", authHandler.IssueToken)
	}

	api.GET("/metrics/summary", authMW, internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleOwner), metricsHandler.Summary)

	shop := api.Group("/barbershops/:shopId")

	public := shop.Group("/barbers/:barberId", internalmiddleware.Tenant())
	public.GET("/availability", availabilityHandler.Day)
	public.GET("/availability/week", availabilityHandler.Week)

	secured := shop.Group("", authMW, internalmiddleware.Tenant())

	limiter := internalmiddleware.NewRateLimiter(cfg.Booking.RateLimitPerMinute, cfg.Booking.RateLimitBurst)
	appointments := secured.Group("/appointments")
	appointments.POST("", internalmiddleware.RateLimit(limiter), appointmentHandler.Book)
	appointments.GET("", appointmentHandler.List)
	appointments.GET("/:id", appointmentHandler.Get)
	appointments.POST("/:id/complete", internalmiddleware.RequireStaff(), appointmentHandler.Complete)
	appointments.POST("/:id/cancel", appointmentHandler.Cancel)

	staff := secured.Group("", internalmiddleware.RequireStaff())
	staff.GET("/schedules", scheduleHandler.List)
	staff.PUT("/schedules", internalmiddleware.Audit(auditRepo, models.AuditActionScheduleUpsert, "schedule"), scheduleHandler.Upsert)
	staff.DELETE("/schedules/:id", internalmiddleware.Audit(auditRepo, models.AuditActionScheduleDelete, "schedule"), scheduleHandler.Delete)
	staff.PUT("/slot-duration", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleOwner), internalmiddleware.Audit(auditRepo, models.AuditActionSlotDurationUpdate, "barbershop"), scheduleHandler.UpdateSlotDuration)

	agenda := shop.Group("/barbers/:barberId", authMW, internalmiddleware.Tenant(), internalmiddleware.RequireStaff())
	agenda.GET("/agenda", agendaHandler.Export)

	return &application{router: r, queue: queue, publisher: publisher}
}

func newPublisher(cfg config.EventsConfig, logr *zap.Logger) events.Publisher {
	if !cfg.Enabled {
		return events.NewLogPublisher(logr)
	}
	publisher, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		logr.Warn("kafka publisher unavailable, logging events instead", zap.Error(err))
		return events.NewLogPublisher(logr)
	}
	return publisher
}

func lockPrefix(namespace string) string {
	if namespace == "" {
		return "slot-lock"
	}
	return namespace + ":slot-lock"
}

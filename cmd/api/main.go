package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/marktrack/marktrack-api/internal/handler"
	"github.com/marktrack/marktrack-api/internal/repository"
	"github.com/marktrack/marktrack-api/internal/router"
	"github.com/marktrack/marktrack-api/internal/service"
	"github.com/marktrack/marktrack-api/pkg/cache"
	"github.com/marktrack/marktrack-api/pkg/config"
	"github.com/marktrack/marktrack-api/pkg/database"
	"github.com/marktrack/marktrack-api/pkg/logger"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	markRepo := repository.NewMarkRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	roleSvc := service.NewRoleService(userRepo, sessionRepo, authSvc, validate, logr, cfg.Onboarding)
	profileSvc := service.NewProfileService(userRepo, studentRepo, teacherRepo, subjectRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, studentRepo, metricsSvc, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, classRepo, markRepo, absenceRepo, subjectRepo, notificationSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, markRepo, absenceRepo, logr)
	adminSvc := service.NewAdminService(subjectRepo, classRepo, studentRepo, teacherRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, metricsSvc),
		Role:         handler.NewRoleHandler(roleSvc),
		Profile:      handler.NewProfileHandler(profileSvc),
		Teacher:      handler.NewTeacherHandler(teacherSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Notification: handler.NewNotificationHandler(notificationSvc),
		Admin:        handler.NewAdminHandler(adminSvc),
		Metrics:      handler.NewMetricsHandler(metricsSvc),
	}

	engine := router.New(cfg, logr, handlers, router.Services{
		Auth:        authSvc,
		Metrics:     metricsSvc,
		RateCounter: sessionRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
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
		logr.Sugar().Errorw("shutdown error", "error", err)
	}
}

package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/handler"
	"github.com/marktrack/marktrack-api/internal/middleware"
	"github.com/marktrack/marktrack-api/internal/models"
	"github.com/marktrack/marktrack-api/internal/service"
	"github.com/marktrack/marktrack-api/pkg/config"
	"github.com/marktrack/marktrack-api/pkg/logger"
	corsmiddleware "github.com/marktrack/marktrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/marktrack/marktrack-api/pkg/middleware/requestid"
)

// Handlers aggregates every HTTP handler mounted by the router.
type Handlers struct {
	Auth         *handler.AuthHandler
	Role         *handler.RoleHandler
	Profile      *handler.ProfileHandler
	Teacher      *handler.TeacherHandler
	Student      *handler.StudentHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
	Metrics      *handler.MetricsHandler
}

// Services carries the cross-cutting services the router itself consumes.
type Services struct {
	Auth        *service.AuthService
	Metrics     *service.MetricsService
	RateCounter middleware.AttemptCounter
}

// New assembles the gin engine with all middleware and routes.
func New(cfg *config.Config, logr *zap.Logger, h Handlers, svc Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		login := h.Auth.Login
		register := h.Auth.Register
		if cfg.RateLimit.Enabled && svc.RateCounter != nil {
			auth.POST("/login", middleware.RateLimit(svc.RateCounter, "login", cfg.RateLimit.LoginPerMin, svc.Metrics, logr), login)
			auth.POST("/register", middleware.RateLimit(svc.RateCounter, "register", cfg.RateLimit.RegisterPerMin, svc.Metrics, logr), register)
		} else {
			auth.POST("/login", login)
			auth.POST("/register", register)
		}

		secured := auth.Group("", middleware.JWT(svc.Auth))
		secured.POST("/logout", h.Auth.Logout)
		secured.GET("/verify-token", h.Auth.VerifyToken)
		secured.GET("/me", h.Auth.Me)
	}

	roles := api.Group("/roles", middleware.JWT(svc.Auth))
	{
		roles.POST("/assign-role", h.Role.AssignRole)
	}

	profiles := api.Group("/profiles", middleware.JWT(svc.Auth))
	{
		profiles.POST("/complete-student-details", middleware.RequireRoles(models.RoleStudent), h.Profile.CompleteStudent)
		profiles.POST("/complete-teacher-details", middleware.RequireRoles(models.RoleTeacher), h.Profile.CompleteTeacher)
		profiles.GET("/student", middleware.RequireRoles(models.RoleStudent), middleware.RequireActive(), h.Profile.StudentProfile)
		profiles.GET("/teacher", middleware.RequireRoles(models.RoleTeacher), middleware.RequireActive(), h.Profile.TeacherProfile)
	}

	notifications := api.Group("/notifications", middleware.JWT(svc.Auth), middleware.RequireRoles(models.RoleStudent), middleware.RequireActive())
	{
		notifications.GET("", h.Notification.Feed)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	teacher := api.Group("/teacher", middleware.JWT(svc.Auth), middleware.RequireRoles(models.RoleTeacher), middleware.RequireActive())
	{
		teacher.GET("/classes", h.Teacher.Classes)
		teacher.GET("/classes/:id/roster", h.Teacher.Roster)
		if cfg.Exports.Enabled {
			teacher.GET("/classes/:id/report", h.Teacher.ExportRoster)
		}
		teacher.POST("/marks", h.Teacher.AddMark)
		teacher.PATCH("/marks/:id", h.Teacher.UpdateMark)
		teacher.DELETE("/marks/:id", h.Teacher.DeleteMark)
		teacher.POST("/absences", h.Teacher.AddAbsence)
		teacher.PATCH("/absences/:id", h.Teacher.UpdateAbsence)
		teacher.DELETE("/absences/:id", h.Teacher.DeleteAbsence)
	}

	student := api.Group("/student", middleware.JWT(svc.Auth), middleware.RequireRoles(models.RoleStudent), middleware.RequireActive())
	{
		student.GET("/subjects", h.Student.Subjects)
		student.GET("/class", h.Student.Class)
		student.GET("/subjects/:id/record", h.Student.SubjectRecord)
	}

	admin := api.Group("/admin", middleware.JWT(svc.Auth), middleware.RequireRoles(models.RoleAdmin), middleware.RequireActive())
	{
		admin.GET("/subjects", h.Admin.ListSubjects)
		admin.POST("/subjects", h.Admin.CreateSubject)
		admin.DELETE("/subjects/:id", h.Admin.DeleteSubject)

		admin.GET("/classes", h.Admin.ListClasses)
		admin.POST("/classes", h.Admin.CreateClass)
		admin.DELETE("/classes/:id", h.Admin.DeleteClass)
		admin.GET("/classes/:id/students", h.Admin.ClassStudents)
		admin.POST("/classes/:id/students", h.Admin.AssignStudents)
		admin.DELETE("/classes/:id/students/:studentId", h.Admin.RemoveStudent)
		admin.POST("/classes/:id/subjects", h.Admin.AssignSubject)
		admin.DELETE("/classes/:id/subjects/:subjectId", h.Admin.RemoveSubject)

		admin.GET("/teachers", h.Admin.ListTeachers)
		admin.GET("/students", h.Admin.ListStudents)
	}

	return r
}

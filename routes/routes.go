package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schooldesk/schooldesk/blob"
	"github.com/schooldesk/schooldesk/config"
	"github.com/schooldesk/schooldesk/handlers"
	"github.com/schooldesk/schooldesk/middlewares"
	"github.com/schooldesk/schooldesk/models"
	"github.com/schooldesk/schooldesk/session"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, mgr *session.Manager, blobs blob.Store, cfg *config.Config) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler(mgr, cfg.AuthSecret)
	users := handlers.NewUserHandler(cfg.AuthSecret)
	std := handlers.NewStudentHandler()
	tch := handlers.NewTeacherHandler()
	par := handlers.NewParentHandler()
	sub := handlers.NewSubjectHandler()
	hr := handlers.NewHomeroomHandler()
	asg := handlers.NewAssignmentHandler()
	enr := handlers.NewEnrollmentHandler()
	ses := handlers.NewSessionHandler()
	att := handlers.NewAttendanceHandler()
	jst := handlers.NewJustificationHandler(blobs, cfg.MaxUploadBytes)
	doc := handlers.NewDocumentHandler(blobs)
	grd := handlers.NewGradeHandler()
	rep := handlers.NewReportHandler()
	dash := handlers.NewDashboardHandler()

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/set-password", auth.SetPassword)

	// ===== Authenticated =====
	authMW := middlewares.RequireSession(mgr)
	csrfMW := middlewares.RequireCSRF()

	authed := e.Group("", authMW, csrfMW)
	authed.GET("/auth/me", auth.Me)
	authed.POST("/auth/logout", auth.Logout)

	// Aggregation reporters: available to every role, scoped inside
	authed.GET("/reports/attendance", rep.Attendance)
	authed.GET("/reports/averages", rep.Averages)

	// ===== Admin portal =====
	admin := e.Group("/admin", authMW, middlewares.RequireRole(models.RoleAdmin), csrfMW)

	admin.GET("/users", users.List)
	admin.POST("/users", users.Create)
	admin.PUT("/users/:id", users.Update)
	admin.DELETE("/users/:id", users.Deactivate)
	admin.POST("/users/:id/reset-token", users.ResetToken)

	admin.GET("/students", std.List)
	admin.POST("/students", std.Create)
	admin.PUT("/students/:id", std.Update)

	admin.GET("/teachers", tch.List)
	admin.POST("/teachers", tch.Create)
	admin.PUT("/teachers/:id", tch.Update)

	admin.GET("/parents", par.List)
	admin.POST("/parents", par.Create)
	admin.POST("/parents/:id/students", par.LinkStudent)
	admin.DELETE("/parents/:id/students/:student_id", par.UnlinkStudent)

	admin.GET("/subjects", sub.List)
	admin.POST("/subjects", sub.Create)
	admin.DELETE("/subjects/:id", sub.Delete)

	admin.GET("/homerooms", hr.List)
	admin.POST("/homerooms", hr.Create)
	admin.PUT("/homerooms/:id", hr.Update)

	admin.GET("/assignments", asg.List)
	admin.POST("/assignments", asg.Create)
	admin.DELETE("/assignments/:id", asg.Delete)

	admin.GET("/enrollments", enr.List)
	admin.POST("/enrollments", enr.Create)
	admin.DELETE("/enrollments/:id", enr.Delete)

	admin.GET("/dashboard/summary", dash.Summary)

	// ===== Teacher portal =====
	teacher := e.Group("/teacher", authMW, middlewares.RequireRole(models.RoleTeacher), csrfMW)

	teacher.GET("/assignments", asg.Mine)
	teacher.GET("/sessions", ses.List)
	teacher.POST("/sessions", ses.Create)

	teacher.GET("/attendance", att.List)
	teacher.POST("/attendance", att.Mark)
	teacher.POST("/attendance/:id/decision", jst.Decide)
	teacher.GET("/attendance/:id/document", doc.Download)
	teacher.GET("/justifications/pending-count", jst.PendingCount)

	teacher.GET("/grade-items", grd.ListItems)
	teacher.POST("/grade-items", grd.CreateItem)
	teacher.PUT("/grades", grd.RecordGrade)
	teacher.GET("/assignments/:id/average", grd.ClassAverage)

	// ===== Student / parent portal =====
	// justification submission is shared: the handler checks ownership
	portal := e.Group("/portal", authMW, csrfMW)
	portal.POST("/attendance/:id/justification", jst.Submit)
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Aanchal7915/holy-heart-backend/internal/handler"
	"github.com/Aanchal7915/holy-heart-backend/internal/middleware"
)

// Handlers bundles everything the route table needs. Auth itself
// (register/login/token issuance) lives in a separate identity
// service; this API only verifies the tokens it issued.
type Handlers struct {
	Booking  *handler.BookingHandler
	Admin    *handler.AdminAppointmentHandler
	Service  *handler.ServiceHandler
	Schedule *handler.ScheduleHandler
}

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance: the health check and the public
// catalog and schedule browse endpoints patients use before logging
// in. The optional middleware (response caching) applies to the
// public browse endpoints only; cached entries are keyed by route
// and query, so it must never wrap authenticated routes.
func RegisterRoutes(e *echo.Echo, h Handlers, browse ...echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Public catalog: every active service, and single-service detail.
	e.GET("/v1/services", h.Service.List, browse...)
	e.GET("/v1/services/:id", h.Service.Get, browse...)

	// Public schedule view: a doctor's bookable windows for one
	// service over the rolling search window, with claimed slots
	// overlaid.
	e.GET("/v1/doctors/:id/schedule", h.Schedule.ScheduleView, browse...)
}

// RegisterProtected registers every authenticated route. JWTAuth
// verifies the bearer token; per-group RequireRole narrows access to
// the roles that may act on each surface.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Patient booking surface. Admins share it so support staff can
	// book and cancel on a patient's behalf.
	patient := auth.Group("", middleware.RequireRole(middleware.RolePatient, middleware.RoleAdmin))
	patient.POST("/appointments/book", h.Booking.Book)
	patient.POST("/appointments/:id/confirm", h.Booking.Confirm)
	patient.POST("/appointments/:id/cancel", h.Booking.Cancel)
	patient.GET("/my-appointments", h.Booking.MyAppointments)

	// Appointment detail: any authenticated role; patients are
	// restricted to their own records inside the handler.
	all := auth.Group("", middleware.RequireRole(middleware.RolePatient, middleware.RoleDoctor, middleware.RoleAdmin))
	all.GET("/appointments/:id", h.Booking.Get)

	// Staff surface: filtered listing, completion, and the free-form
	// admin status override.
	staff := auth.Group("", middleware.RequireRole(middleware.RoleDoctor, middleware.RoleAdmin))
	staff.GET("/appointments", h.Admin.List)
	staff.POST("/appointments/:id/complete", h.Admin.Complete)
	staff.PATCH("/appointments/:id/status", h.Admin.UpdateStatus, middleware.RequireRole(middleware.RoleAdmin))

	// Doctor schedule management. Doctors manage their own schedule;
	// admins may manage any doctor's via the path parameter.
	schedule := auth.Group("/doctors/:doctor_id", middleware.RequireRole(middleware.RoleDoctor, middleware.RoleAdmin))
	schedule.POST("/services", h.Schedule.AssignService)
	schedule.DELETE("/services/:id", h.Schedule.RemoveService)
	schedule.POST("/slots", h.Schedule.AddTemplate)
	schedule.DELETE("/slots/:id", h.Schedule.DeleteTemplate)

	// Catalog administration, admin only. DELETE withdraws rather
	// than removing the row: the service stays for history and every
	// active appointment referencing it is cancelled in cascade.
	admin := auth.Group("/services", middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("", h.Service.Create)
	admin.PATCH("/:id", h.Service.Update)
	admin.DELETE("/:id", h.Service.Withdraw)
}

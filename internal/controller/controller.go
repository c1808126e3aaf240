package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/auth"
	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/notification"
	"github.com/vagago/internmatch/internal/service"
)

// Controller wires the HTTP surface to the services.
type Controller struct {
	users        *service.UserService
	internships  *service.InternshipService
	reservations *service.ReservationService
	stats        *service.StatsService
	tokens       *auth.TokenManager
	hub          *notification.Hub
	logger       *zap.Logger
}

func New(
	users *service.UserService,
	internships *service.InternshipService,
	reservations *service.ReservationService,
	stats *service.StatsService,
	tokens *auth.TokenManager,
	hub *notification.Hub,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		users:        users,
		internships:  internships,
		reservations: reservations,
		stats:        stats,
		tokens:       tokens,
		hub:          hub,
		logger:       logger,
	}
}

// Router builds the full route tree.
func (c *Controller) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(c.requestLogger)
	r.Use(c.recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", c.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register/student", c.handleRegisterStudent)
			r.Post("/register/institution", c.handleRegisterInstitution)
			r.Post("/login", c.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(c.authenticate)
				r.Get("/me", c.handleMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(c.authenticate)

			r.Get("/events", c.handleEvents)

			r.Route("/internships", func(r chi.Router) {
				r.Get("/", c.handleListOpenInternships)
				r.Get("/{id}", c.handleGetInternship)

				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleStudent))
					r.Use(c.requireApproved)
					r.Post("/{id}/reservations", c.handleReserve)
				})
			})

			r.Route("/reservations", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleStudent))
					r.Get("/", c.handleMyReservations)
				})
				r.With(c.requireApproved).Delete("/{id}", c.handleRelease)

				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleInstitution, model.RoleAdmin))
					r.Use(c.requireApproved)
					r.Post("/{id}/approve", c.handleApprove)
					r.Post("/{id}/reject", c.handleReject)
					r.Post("/{id}/complete", c.handleComplete)
				})
			})

			r.Route("/institution", func(r chi.Router) {
				r.Use(c.requireRole(model.RoleInstitution))
				r.Use(c.requireApproved)

				r.Route("/internships", func(r chi.Router) {
					r.Get("/", c.handleMyInternships)
					r.Post("/", c.handleCreateInternship)
					r.Put("/{id}", c.handleUpdateInternship)
					r.Delete("/{id}", c.handleDeleteInternship)
					r.Get("/{id}/students", c.handleInternshipStudents)
					r.Get("/{id}/students/export", c.handleExportStudents)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(c.requireRole(model.RoleAdmin))

				r.Get("/", c.handleListUsers)
				r.Post("/", c.handleAdminCreateUser)
				r.Get("/{id}", c.handleGetUser)
				r.Put("/{id}", c.handleUpdateUser)
				r.Delete("/{id}", c.handleDeleteUser)
				r.Post("/{id}/approve", c.handleApproveUser)
				r.Post("/{id}/reject", c.handleRejectUser)
				r.Post("/{id}/reset-password", c.handleResetPassword)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleAdmin))
					r.Get("/admin/stats", c.handleAdminDashboard)
					r.Get("/admin/charts", c.handleAdminCharts)
				})
				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleInstitution))
					r.Get("/institution/stats", c.handleInstitutionDashboard)
				})
				r.Group(func(r chi.Router) {
					r.Use(c.requireRole(model.RoleStudent))
					r.Get("/student/stats", c.handleStudentDashboard)
				})
			})
		})
	})

	return r
}

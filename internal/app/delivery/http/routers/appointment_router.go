package routers

import (
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	patient := middlewares.RequireRoles(constvars.RolePatient)
	doctor := middlewares.RequireRoles(constvars.RoleDoctor)
	admin := middlewares.RequireRoles(constvars.RoleAdmin)

	router.With(patient).Post("/", appointmentController.Book)
	router.With(admin).Get("/", appointmentController.FindAll)
	router.With(middlewares.RequireRoles(constvars.RolePatient, constvars.RoleDoctor)).Get("/mine", appointmentController.FindMine)
	router.Get("/{id}", appointmentController.FindByID)
	router.With(doctor).Put("/{id}/accept", appointmentController.Accept)
	router.With(doctor).Put("/{id}/reject", appointmentController.Reject)
	router.With(middlewares.RequireRoles(constvars.RoleDoctor, constvars.RoleAdmin)).Put("/{id}/reschedule", appointmentController.Reschedule)
	router.With(doctor).Put("/{id}/complete", appointmentController.Complete)
	router.With(middlewares.RequireRoles(constvars.RolePatient, constvars.RoleAdmin)).Put("/{id}/cancel", appointmentController.Cancel)
	router.With(doctor).Put("/{id}/prescription", appointmentController.CompletePrescription)
	router.With(doctor).Put("/{id}/notes", appointmentController.UpdateNotes)
}

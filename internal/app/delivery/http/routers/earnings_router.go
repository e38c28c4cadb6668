package routers

import (
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachEarningsRoutes(router chi.Router, middlewares *middlewares.Middlewares, earningsController *controllers.EarningsController) {
	admin := middlewares.RequireRoles(constvars.RoleAdmin)

	router.With(middlewares.RequireRoles(constvars.RoleDoctor)).Get("/me", earningsController.FindMine)
	router.With(admin).Get("/doctors/{doctorId}", earningsController.FindByDoctorID)
	router.With(admin).Get("/platform", earningsController.FindPlatform)
}

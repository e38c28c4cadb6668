package routers

import (
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachWithdrawalRoutes(router chi.Router, middlewares *middlewares.Middlewares, money *moneyGuard, withdrawalController *controllers.WithdrawalController) {
	doctor := middlewares.RequireRoles(constvars.RoleDoctor)
	admin := middlewares.RequireRoles(constvars.RoleAdmin)

	router.With(doctor, money.For("withdrawals")).Post("/", withdrawalController.Request)
	router.With(doctor).Get("/mine", withdrawalController.FindMine)
	router.With(admin).Get("/", withdrawalController.FindAll)
	router.With(admin, money.For("withdrawal-decisions")).Put("/{id}/approve", withdrawalController.Approve)
	router.With(admin).Put("/{id}/reject", withdrawalController.Reject)
}

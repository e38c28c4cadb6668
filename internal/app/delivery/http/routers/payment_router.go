package routers

import (
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, money *moneyGuard, paymentController *controllers.PaymentController) {
	patient := middlewares.RequireRoles(constvars.RolePatient)

	router.With(patient, money.For("payments")).Post("/orders", paymentController.CreateOrder)
	router.With(patient, money.For("payments")).Post("/verify", paymentController.VerifyPayment)
	router.With(middlewares.RequireRoles(constvars.RoleAdmin), money.For("refunds")).Post("/refunds/{appointmentId}", paymentController.ProcessRefund)
}

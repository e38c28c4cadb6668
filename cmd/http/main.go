package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/app/delivery/http/routers"
	"telemed-service/internal/app/drivers/database"
	"telemed-service/internal/app/drivers/logger"
	"telemed-service/internal/app/drivers/messaging"
	"telemed-service/internal/app/drivers/storage"
	"telemed-service/internal/app/services/core/appointments"
	"telemed-service/internal/app/services/core/doctors"
	"telemed-service/internal/app/services/core/earnings"
	"telemed-service/internal/app/services/core/payments"
	"telemed-service/internal/app/services/core/settings"
	"telemed-service/internal/app/services/core/withdrawals"
	"telemed-service/internal/app/services/shared/jwtmanager"
	"telemed-service/internal/app/services/shared/locker"
	"telemed-service/internal/app/services/shared/notification"
	"telemed-service/internal/app/services/shared/payment_gateway"
	"telemed-service/internal/app/services/shared/ratelimiter"
	"telemed-service/internal/app/services/shared/redis"
	minioStorage "telemed-service/internal/app/services/shared/storage"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatal("Error loading location", zap.String("timezone", internalConfig.App.Timezone), zap.Error(err))
	}
	time.Local = location

	mongoDB := database.NewMongoDB(driverConfig, log)
	redisClient := database.NewRedisClient(driverConfig, log)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig, log)
	minioClient := storage.NewMinio(driverConfig, internalConfig.Minio.BucketName, log)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              internalConfig.App.Port,
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server started", zap.String("address", internalConfig.App.Port))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to close drivers", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap config.Bootstrap) error {
	dbName := bootstrap.DriverConfig.MongoDB.DbName
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Shared
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	paymentGateway := payment_gateway.NewRazorpayService(internalConfig, log)
	invoiceStorage := minioStorage.NewMinioStorage(bootstrap.Minio, internalConfig.Minio.BucketName, internalConfig.Minio.PublicUrl, log)
	notifier, err := notification.NewRabbitMQNotificationService(bootstrap.RabbitMQ, internalConfig.RabbitMQ.Queue, internalConfig.RabbitMQ.PublishMaxRetries, log)
	if err != nil {
		return err
	}
	jwtManager, err := jwtmanager.NewJWTManager(internalConfig, log)
	if err != nil {
		return err
	}
	resourceLimiter := ratelimiter.NewResourceLimiter(redisRepository, log)

	// Repositories
	appointmentRepository := appointments.NewAppointmentMongoRepository(bootstrap.MongoDB, dbName)
	doctorRepository := doctors.NewDoctorMongoRepository(bootstrap.MongoDB, dbName)
	withdrawalRepository := withdrawals.NewWithdrawalMongoRepository(bootstrap.MongoDB, dbName)
	settingsRepository := settings.NewPlatformSettingsMongoRepository(bootstrap.MongoDB, dbName)

	// Usecases
	settingsUsecase := settings.NewSettingsUsecase(settingsRepository, redisRepository, internalConfig, log)
	appointmentUsecase := appointments.NewAppointmentUsecase(appointmentRepository, doctorRepository, settingsUsecase, paymentGateway, notifier, internalConfig, log)
	paymentUsecase := payments.NewPaymentUsecase(appointmentRepository, paymentGateway, settingsUsecase, lockService, notifier, internalConfig, log)
	earningsUsecase := earnings.NewEarningsUsecase(appointmentRepository, withdrawalRepository, settingsUsecase, log)
	withdrawalUsecase := withdrawals.NewWithdrawalUsecase(
		withdrawalRepository,
		doctorRepository,
		earningsUsecase,
		settingsUsecase,
		redisRepository,
		lockService,
		withdrawals.NewInvoiceGenerator(invoiceStorage, log),
		notifier,
		internalConfig,
		log,
	)

	// Delivery
	middlewares := middlewares.NewMiddlewares(log, internalConfig, jwtManager, resourceLimiter)
	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewares, routers.Controllers{
		Appointment: controllers.NewAppointmentController(log, appointmentUsecase),
		Payment:     controllers.NewPaymentController(log, paymentUsecase),
		Earnings:    controllers.NewEarningsController(log, earningsUsecase),
		Withdrawal:  controllers.NewWithdrawalController(log, withdrawalUsecase),
		Settings:    controllers.NewSettingsController(log, settingsUsecase),
	})

	if !paymentGateway.IsConfigured() {
		log.Warn("Payment gateway credentials are missing, refunds fall back to manual records")
	}
	return nil
}

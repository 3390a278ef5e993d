package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juazsh/ata-portal-sub001/internal/config"
	"github.com/juazsh/ata-portal-sub001/internal/handlers"
	"github.com/juazsh/ata-portal-sub001/internal/middleware"
	"github.com/juazsh/ata-portal-sub001/internal/models"
	"github.com/juazsh/ata-portal-sub001/internal/payments"
	"github.com/juazsh/ata-portal-sub001/internal/repository"
	"github.com/juazsh/ata-portal-sub001/internal/services"
	seatws "github.com/juazsh/ata-portal-sub001/internal/websocket"
	"go.uber.org/zap"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) error {
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	programRepo := repository.NewProgramRepository(db)
	classSessionRepo := repository.NewClassSessionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	discountRepo := repository.NewDiscountCodeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	var cardGateway payments.CardGateway
	if cfg.StripeSecretKey != "" {
		cardGateway = payments.NewStripeGateway(cfg.StripeSecretKey)
	}
	var redirectGateway payments.RedirectGateway
	if cfg.PayPalClientID != "" && cfg.PayPalSecret != "" {
		gateway, err := payments.NewPayPalGateway(
			cfg.PayPalClientID,
			cfg.PayPalSecret,
			cfg.PayPalLive,
			cfg.PayPalReturnURL,
			cfg.PayPalCancelURL,
		)
		if err != nil {
			return err
		}
		redirectGateway = gateway
	}

	seatHub := seatws.NewHub()
	go seatHub.Run()

	userService := services.NewUserService(userRepo, storageService, logger)
	progressService := services.NewProgressService(progressRepo, programRepo, userRepo)
	offeringService := services.NewOfferingService(offeringRepo, programRepo)
	programService := services.NewProgramService(programRepo, offeringRepo)
	classSessionService := services.NewClassSessionService(db, classSessionRepo)
	scheduleService := services.NewScheduleService(db, scheduleRepo, offeringRepo, programRepo)
	discountService := services.NewDiscountService(discountRepo)
	paymentMethodService := services.NewPaymentMethodService(db, methodRepo, userRepo, cardGateway, logger)
	enrollmentService := services.NewEnrollmentService(
		db,
		enrollmentRepo,
		paymentRepo,
		scheduleRepo,
		offeringRepo,
		programRepo,
		userRepo,
		methodRepo,
		cardGateway,
		redirectGateway,
		seatHub,
		logger,
	)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userService, userRepo)
	studentHandler := handlers.NewStudentHandler(userService, progressService)
	locationHandler := handlers.NewLocationHandler(locationRepo)
	offeringHandler := handlers.NewOfferingHandler(offeringService)
	programHandler := handlers.NewProgramHandler(programService)
	classSessionHandler := handlers.NewClassSessionHandler(classSessionService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(paymentMethodService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	wsHandler := handlers.NewWSHandler(seatHub, cfg.JWTSecret)

	staffOnly := middleware.RequireRoles(models.RoleOwner, models.RoleAdmin)
	ownerOnly := middleware.RequireRoles(models.RoleOwner)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("/profile", userHandler.GetProfile)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Post("/profile/avatar", userHandler.UploadAvatar)
	users.Post("/verify/email", userHandler.VerifyEmail)
	users.Post("", ownerOnly, userHandler.CreateStaff)

	students := authProtected.Group("/students")
	students.Post("", studentHandler.CreateStudent)
	students.Get("", studentHandler.ListStudents)
	students.Get("/:id/progress", studentHandler.GetProgress)
	students.Post("/:id/progress", studentHandler.SetTopicProgress)

	locations := authProtected.Group("/locations")
	locations.Get("", locationHandler.List)
	locations.Get("/:id", locationHandler.Get)
	locations.Post("", staffOnly, locationHandler.Create)
	locations.Put("/:id", staffOnly, locationHandler.Update)
	locations.Delete("/:id", staffOnly, locationHandler.Delete)

	offerings := authProtected.Group("/offerings")
	offerings.Get("", offeringHandler.List)
	offerings.Get("/:id", offeringHandler.Get)
	offerings.Post("", staffOnly, offeringHandler.Create)
	offerings.Put("/:id", staffOnly, offeringHandler.Update)
	offerings.Delete("/:id", staffOnly, offeringHandler.Delete)
	offerings.Post("/:id/plans", staffOnly, offeringHandler.CreatePlan)
	offerings.Put("/:id/plans/:planID", staffOnly, offeringHandler.UpdatePlan)
	offerings.Delete("/:id/plans/:planID", staffOnly, offeringHandler.DeletePlan)

	programs := authProtected.Group("/programs")
	programs.Get("", programHandler.List)
	programs.Get("/:id", programHandler.Get)
	programs.Get("/:id/topics", programHandler.ListTopics)
	programs.Post("", staffOnly, programHandler.Create)
	programs.Put("/:id", staffOnly, programHandler.Update)
	programs.Delete("/:id", staffOnly, programHandler.Delete)
	programs.Post("/:id/modules", staffOnly, programHandler.CreateModule)
	programs.Put("/:id/modules/:moduleID", staffOnly, programHandler.UpdateModule)
	programs.Delete("/:id/modules/:moduleID", staffOnly, programHandler.DeleteModule)
	programs.Post("/topics", staffOnly, programHandler.CreateTopic)
	programs.Put("/topics/:topicID", staffOnly, programHandler.UpdateTopic)
	programs.Delete("/topics/:topicID", staffOnly, programHandler.DeleteTopic)

	classSessions := authProtected.Group("/class-sessions")
	classSessions.Get("", classSessionHandler.List)
	classSessions.Get("/:id", classSessionHandler.Get)
	classSessions.Post("", staffOnly, classSessionHandler.Create)
	classSessions.Put("/:id", staffOnly, classSessionHandler.Update)
	classSessions.Put("/:id/capacity", staffOnly, classSessionHandler.UpdateCapacities)
	classSessions.Delete("/:id", staffOnly, classSessionHandler.Delete)

	schedules := authProtected.Group("/schedules")
	schedules.Get("", scheduleHandler.List)
	schedules.Get("/:id", scheduleHandler.Get)
	schedules.Post("", staffOnly, scheduleHandler.Create)
	schedules.Put("/:id", staffOnly, scheduleHandler.Update)
	schedules.Put("/:id/capacity", staffOnly, scheduleHandler.UpdateCapacities)
	schedules.Delete("/:id", staffOnly, scheduleHandler.Delete)

	discounts := authProtected.Group("/discount-codes")
	discounts.Get("/validate", discountHandler.Validate)
	discounts.Get("", staffOnly, discountHandler.List)
	discounts.Get("/:id", staffOnly, discountHandler.Get)
	discounts.Post("", staffOnly, discountHandler.Create)
	discounts.Put("/:id", staffOnly, discountHandler.Update)
	discounts.Delete("/:id", staffOnly, discountHandler.Delete)

	paymentMethods := authProtected.Group("/payment-methods")
	paymentMethods.Get("", paymentMethodHandler.List)
	paymentMethods.Post("", paymentMethodHandler.RegisterCard)
	paymentMethods.Put("/:id/default", paymentMethodHandler.SetDefault)
	paymentMethods.Delete("/:id", paymentMethodHandler.Delete)

	enrollments := authProtected.Group("/enrollments")
	enrollments.Post("", enrollmentHandler.Enroll)
	enrollments.Get("", enrollmentHandler.List)
	enrollments.Get("/:id", enrollmentHandler.Get)
	enrollments.Post("/:id/process-payment", enrollmentHandler.ProcessPayment)
	enrollments.Post("/:id/capture", enrollmentHandler.CapturePayment)
	enrollments.Post("/:id/cancel", enrollmentHandler.Cancel)
	enrollments.Get("/:id/payments", enrollmentHandler.ListPayments)

	api.Use("/v1/ws", wsHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(wsHandler.HandleWebSocket))

	return registerDocsRoutes(app, cfg)
}

package router

import (
	"mealmate/config"
	"mealmate/internal/auth"
	"mealmate/internal/handler"
	"mealmate/internal/i18n"
	"mealmate/internal/middleware"
	"mealmate/internal/repository"
	"mealmate/internal/service"
	"mealmate/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine. The
// returned limiter must be swept by the caller (see InMemoryRateLimiter.Run).
func Setup(cfg *config.Config, db *gorm.DB, rail payment.Rail) (*gin.Engine, *middleware.InMemoryRateLimiter) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if !cfg.IsProduction() {
		r.Use(gin.Logger())
	}
	tr := i18n.NewTranslator(cfg.I18n.DefaultLocale)
	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	r.Use(middleware.Locale(tr))

	// Repositories
	meetupRepo := repository.NewMeetupRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	meetupSvc := service.NewMeetupService(db, meetupRepo, participantRepo)
	participationSvc := service.NewParticipationService(db, meetupRepo, participantRepo)
	ledger := service.NewPointsLedger(db, pointsRepo)
	escrow := service.NewDepositEscrow(db, depositRepo, meetupRepo, participantRepo, ledger, rail)
	verifier := service.NewAttendanceVerifier(db, meetupRepo, participantRepo, attendanceRepo,
		auth.NewCheckinTokens(&cfg.Checkin), cfg.Checkin.GeofenceRadiusMeters)
	penalties := service.NewNoShowPenaltyProcessor(db, meetupRepo, participantRepo, penaltyRepo, userRepo, escrow, cfg.Penalty.NoShowPoints)

	// Handlers
	meetupHandler := handler.NewMeetupHandler(tr, meetupSvc, participationSvc)
	attendanceHandler := handler.NewAttendanceHandler(tr, verifier)
	depositHandler := handler.NewDepositHandler(tr, escrow)
	pointsHandler := handler.NewPointsHandler(tr, ledger)
	penaltyHandler := handler.NewPenaltyHandler(tr, penalties)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(&cfg.JWT), middleware.RateLimit(limiter))
	{
		meetups := api.Group("/meetups")
		{
			meetups.POST("", meetupHandler.Create)
			meetups.GET("/:id", meetupHandler.Get)
			meetups.PATCH("/:id", meetupHandler.Update)
			meetups.POST("/:id/status", meetupHandler.SetStatus)

			meetups.POST("/:id/join", meetupHandler.Join)
			meetups.DELETE("/:id/membership", meetupHandler.Leave)
			meetups.GET("/:id/participants", meetupHandler.ListParticipants)
			meetups.PUT("/:id/participants/:user_id/status", meetupHandler.SetParticipantStatus)

			meetups.POST("/:id/checkin/gps", attendanceHandler.GPSCheckIn)
			meetups.POST("/:id/checkin/qr-token", attendanceHandler.IssueQRToken)
			meetups.POST("/:id/checkin/qr", attendanceHandler.QRCheckIn)
			meetups.POST("/:id/participants/:user_id/attendance", attendanceHandler.HostConfirm)
			meetups.POST("/:id/participants/:user_id/mutual-confirm", attendanceHandler.MutualConfirm)
			meetups.GET("/:id/attendance", attendanceHandler.Summary)

			meetups.POST("/:id/deposits", depositHandler.Pay)
			meetups.POST("/:id/no-show-penalties", penaltyHandler.Apply)
			meetups.GET("/:id/penalties", penaltyHandler.List)
		}

		api.POST("/deposits/:id/refund", depositHandler.Refund)
		api.POST("/deposits/:id/convert", depositHandler.Convert)

		me := api.Group("/me")
		{
			me.GET("/points", pointsHandler.Balance)
			me.GET("/points/transactions", pointsHandler.Transactions)
			me.GET("/deposits", depositHandler.ListMine)
		}
	}
	return r, limiter
}

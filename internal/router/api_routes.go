package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"examtrack/internal/config"
	"examtrack/internal/handler"
	"examtrack/internal/middleware"
	"examtrack/internal/repository"
	"examtrack/internal/service"
)

func SetupAPIRoutes(router fiber.Router, db *sqlx.DB, cfg *config.Config) {
	sessionRepo := repository.NewSessionRepository(db)
	excelService := service.NewExcelService()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.AsynqRedisAddr,
		Password: cfg.AsynqRedisPassword,
		DB:       cfg.AsynqRedisDB,
	})

	importHandler := handler.NewImportHandler(sessionRepo, excelService, asynqClient, cfg)

	protected := router.Group("", middleware.AuthMiddleware(cfg))

	imports := protected.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Get("/", importHandler.GetSessions)
	imports.Get("/:id", importHandler.GetSession)
	imports.Get("/:id/report", importHandler.DownloadReport)

	protected.Get("/templates/:examType", importHandler.DownloadTemplate)
}

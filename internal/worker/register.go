package worker

import (
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"examtrack/internal/repository"
	"examtrack/internal/service"
	"examtrack/internal/utils"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB) {
	log := utils.GetLogger()

	sessionRepo := repository.NewSessionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	importer := service.NewImportService(studentRepo, resultRepo, log)

	importHandler := NewImportTaskHandler(sessionRepo, importer, log)
	mux.HandleFunc(TaskImportProcess, importHandler.Handle)
}

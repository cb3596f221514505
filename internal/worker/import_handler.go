package worker

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"examtrack/internal/repository"
	"examtrack/internal/schema"
	"examtrack/internal/service"
)

// ImportTaskHandler executes queued imports: it loads the session, runs
// the pipeline over the stored file and records the outcome back on the
// session.
type ImportTaskHandler struct {
	sessions *repository.SessionRepository
	importer *service.ImportService
	log      *logrus.Logger
}

func NewImportTaskHandler(sessions *repository.SessionRepository, importer *service.ImportService, log *logrus.Logger) *ImportTaskHandler {
	return &ImportTaskHandler{sessions: sessions, importer: importer, log: log}
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	log := h.log.WithField("session_code", payload.SessionCode)

	session, err := h.sessions.GetSessionByID(payload.SessionID)
	if err != nil {
		return err
	}
	if err := h.sessions.MarkProcessing(session.ID); err != nil {
		return err
	}

	report, err := h.importer.ImportFile(ctx, session.FilePath, service.ImportParams{
		SchoolID:  session.SchoolID,
		ClassID:   session.ClassID,
		ExamType:  schema.ExamType(session.ExamType),
		ExamDate:  session.ExamDate,
		Overwrite: session.Overwrite,
	})
	if err != nil {
		// File-level fault: the session failed as a whole, there is no
		// report to store. The fault is terminal, not retryable by asynq.
		log.WithError(err).Warn("import failed")
		if markErr := h.sessions.MarkFailed(session.ID, err.Error()); markErr != nil {
			return markErr
		}
		return nil
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}
	if err := h.sessions.MarkCompleted(session.ID, report.TotalRows, report.Succeeded, report.Failed, string(reportJSON)); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("import completed")
	return nil
}

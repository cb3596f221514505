package handler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"examtrack/internal/config"
	"examtrack/internal/models"
	"examtrack/internal/repository"
	"examtrack/internal/schema"
	"examtrack/internal/service"
	"examtrack/internal/utils"
	"examtrack/internal/worker"
)

type ImportHandler struct {
	sessionRepo  *repository.SessionRepository
	excelService *service.ExcelService
	asynqClient  *asynq.Client
	cfg          *config.Config
}

func NewImportHandler(
	sessionRepo *repository.SessionRepository,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		sessionRepo:  sessionRepo,
		excelService: excelService,
		asynqClient:  asynqClient,
		cfg:          cfg,
	}
}

// UploadFile accepts a result workbook plus the sitting parameters,
// stores the file, creates an import session and enqueues background
// processing.
func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	examType := schema.ExamType(c.FormValue("exam_type"))
	if _, err := schema.DefinitionFor(examType); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown exam type", err)
	}
	examDate, err := time.Parse("2006-01-02", c.FormValue("exam_date"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "exam_date must be YYYY-MM-DD", err)
	}
	schoolID, err := strconv.Atoi(c.FormValue("school_id"))
	if err != nil || schoolID <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "school_id is required", err)
	}
	var classID *int
	if v := c.FormValue("class_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "class_id must be numeric", err)
		}
		classID = &id
	}
	overwrite := c.FormValue("overwrite") == "true" || c.FormValue("overwrite") == "1"

	sessionCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, ext))
	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", err)
	}
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	session := &models.ImportSession{
		SessionCode: sessionCode,
		UserID:      userID,
		SchoolID:    schoolID,
		ClassID:     classID,
		ExamType:    string(examType),
		ExamDate:    examDate,
		Overwrite:   overwrite,
		Filename:    file.Filename,
		FilePath:    filePath,
		Status:      models.ImportStatusUploaded,
	}
	if err := h.sessionRepo.CreateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import session", err)
	}

	payload, _ := json.Marshal(worker.ImportPayload{SessionID: session.ID, SessionCode: sessionCode})
	if _, err := h.asynqClient.Enqueue(asynq.NewTask(worker.TaskImportProcess, payload)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue import", err)
	}

	return utils.SuccessResponse(c, "File uploaded, import queued", fiber.Map{
		"session": session,
	})
}

func (h *ImportHandler) GetSessions(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	schoolID, _ := strconv.Atoi(c.Query("school_id", "0"))

	sessions, total, err := h.sessionRepo.GetSessions(params.Limit, offset, schoolID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sessions", err)
	}
	return utils.SuccessResponse(c, "Sessions retrieved", fiber.Map{
		"sessions":   sessions,
		"pagination": utils.CalculatePagination(params.Page, params.Limit, int64(total)),
	})
}

func (h *ImportHandler) GetSession(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session id", err)
	}
	session, err := h.sessionRepo.GetSessionByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", err)
	}

	data := fiber.Map{"session": session}
	if session.Report != "" {
		var report models.ImportReport
		if err := json.Unmarshal([]byte(session.Report), &report); err == nil {
			data["report"] = report
		}
	}
	return utils.SuccessResponse(c, "Session retrieved", data)
}

// DownloadReport renders the session's import report as a workbook.
func (h *ImportHandler) DownloadReport(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session id", err)
	}
	session, err := h.sessionRepo.GetSessionByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", err)
	}
	if session.Report == "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Session has no report yet", nil)
	}
	var report models.ImportReport
	if err := json.Unmarshal([]byte(session.Report), &report); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Stored report is unreadable", err)
	}

	outputPath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s-report.xlsx", session.SessionCode))
	if err := h.excelService.GenerateReportWorkbook(&report, outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate report", err)
	}
	return c.Download(outputPath, fmt.Sprintf("%s-report.xlsx", session.SessionCode))
}

// DownloadTemplate serves a blank processed template for an exam type.
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	examType := schema.ExamType(c.Params("examType"))
	if _, err := schema.DefinitionFor(examType); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown exam type", err)
	}
	outputPath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("template-%s.xlsx", examType))
	if err := h.excelService.GenerateTemplate(examType, outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}
	return c.Download(outputPath, fmt.Sprintf("%s-sablon.xlsx", examType))
}

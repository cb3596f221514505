package worker

// TaskImportProcess runs one uploaded file through the import pipeline.
const TaskImportProcess = "import:process"

type ImportPayload struct {
	SessionID   int    `json:"session_id"`
	SessionCode string `json:"session_code"`
}

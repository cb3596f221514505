package models

import "time"

// Row error reasons recorded in an ImportReport.
const (
	ReasonCellDecode        = "cell_decode_fault"
	ReasonResolverNotFound  = "resolver_not_found"
	ReasonResolverAmbiguous = "resolver_ambiguous"
	ReasonScoreMismatch     = "score_mismatch"
	ReasonCountMismatch     = "count_mismatch"
)

// RowError attributes a failure or warning to one worksheet row.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

// ImportReport summarizes one import invocation. Immutable once returned.
type ImportReport struct {
	TotalRows   int        `json:"total_rows"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	RowErrors   []RowError `json:"row_errors"`
	RowWarnings []RowError `json:"row_warnings"`
}

// Import session statuses.
const (
	ImportStatusUploaded   = "uploaded"
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// ImportSession tracks one uploaded result file through background
// processing. Report holds the serialized ImportReport once completed.
type ImportSession struct {
	ID            int       `db:"id" json:"id"`
	SessionCode   string    `db:"session_code" json:"session_code"`
	UserID        int       `db:"user_id" json:"user_id"`
	SchoolID      int       `db:"school_id" json:"school_id"`
	ClassID       *int      `db:"class_id" json:"class_id"`
	ExamType      string    `db:"exam_type" json:"exam_type"`
	ExamDate      time.Time `db:"exam_date" json:"exam_date"`
	Overwrite     bool      `db:"overwrite" json:"overwrite"`
	Filename      string    `db:"filename" json:"filename"`
	FilePath      string    `db:"file_path" json:"file_path"`
	TotalRows     int       `db:"total_rows" json:"total_rows"`
	SucceededRows int       `db:"succeeded_rows" json:"succeeded_rows"`
	FailedRows    int       `db:"failed_rows" json:"failed_rows"`
	Status        string    `db:"status" json:"status"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	Report        string    `db:"report" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

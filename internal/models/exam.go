package models

import (
	"time"

	"github.com/shopspring/decimal"

	"examtrack/internal/schema"
)

// LessonScore is the scored outcome of one lesson for one student.
// Blank is nil when the template does not supply a blank count.
type LessonScore struct {
	ID         int64           `db:"id" json:"id"`
	ResultID   int64           `db:"result_id" json:"result_id"`
	LessonName string          `db:"lesson_name" json:"lesson_name"`
	Correct    int             `db:"correct" json:"correct"`
	Wrong      int             `db:"wrong" json:"wrong"`
	Blank      *int            `db:"blank" json:"blank"`
	Net        decimal.Decimal `db:"net" json:"net"`
}

// ExamResult is the canonical per-student outcome of one exam sitting.
// Identity key for idempotency: (SchoolID, ExamType, ExamDate, StudentID).
type ExamResult struct {
	ID           int64           `db:"id" json:"id"`
	SchoolID     int             `db:"school_id" json:"school_id"`
	StudentID    int             `db:"student_id" json:"student_id"`
	ExamType     schema.ExamType `db:"exam_type" json:"exam_type"`
	ExamDate     time.Time       `db:"exam_date" json:"exam_date"`
	TotalNet     decimal.Decimal `db:"total_net" json:"total_net"`
	LessonScores []LessonScore   `db:"-" json:"lesson_scores"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

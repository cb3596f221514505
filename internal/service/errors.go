package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"examtrack/internal/schema"
)

// File-level faults abort the whole import before (or instead of) any row
// processing. Row-level conditions never surface as errors from the
// pipeline; they accumulate in the ImportReport.
var (
	// ErrDuplicateImport is returned when a sitting was already committed
	// and the caller did not request overwrite.
	ErrDuplicateImport = errors.New("results for this exam sitting already exist")
)

// UnreadableFileError wraps a workbook that cannot be opened or read.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable workbook %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// TemplateMismatchError reports that no known template fingerprint could
// resolve every required column role.
type TemplateMismatchError struct {
	ExamType     schema.ExamType
	MissingRoles []schema.ColumnRole
}

func (e *TemplateMismatchError) Error() string {
	names := make([]string, len(e.MissingRoles))
	for i, r := range e.MissingRoles {
		names[i] = r.String()
	}
	return fmt.Sprintf("template does not match any known %s layout, unresolved columns: %s",
		e.ExamType, strings.Join(names, ", "))
}

// RosterFault wraps a roster-store infrastructure failure. Unlike a
// not-found or ambiguous outcome it aborts the whole file: committing the
// rows that happened to resolve before an outage would leave a retry
// tripping over DuplicateImport.
type RosterFault struct {
	Err error
}

func (e *RosterFault) Error() string {
	return fmt.Sprintf("roster fault: %v", e.Err)
}

func (e *RosterFault) Unwrap() error { return e.Err }

// PersistenceFault wraps a failure of the commit call. The pending batch
// is rolled back by the store; the caller may retry the whole import.
type PersistenceFault struct {
	Err error
}

func (e *PersistenceFault) Error() string {
	return fmt.Sprintf("persistence fault: %v", e.Err)
}

func (e *PersistenceFault) Unwrap() error { return e.Err }

// AmbiguousStudentError is the resolver outcome when more than one roster
// entry matches a row's identity. Row-level only.
type AmbiguousStudentError struct {
	CandidateIDs []int
}

func (e *AmbiguousStudentError) Error() string {
	return fmt.Sprintf("%d roster entries match", len(e.CandidateIDs))
}

// ErrStudentNotFound is the resolver outcome when no roster entry
// matches. Row-level only.
var ErrStudentNotFound = errors.New("no roster entry matches")

func sittingKey(schoolID int, examType schema.ExamType, examDate time.Time) string {
	return fmt.Sprintf("%d/%s/%s", schoolID, examType, examDate.Format("2006-01-02"))
}

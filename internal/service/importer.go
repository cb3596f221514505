package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"examtrack/internal/models"
	"examtrack/internal/schema"
)

// ResultStore is the persistence collaborator. CommitBatch must be
// atomic: either every result in the batch lands or none do, rolling back
// on fault. With overwrite it replaces prior rows for matching identity
// keys and leaves unrelated keys untouched.
type ResultStore interface {
	ExistsResult(ctx context.Context, schoolID int, examType schema.ExamType, examDate time.Time, studentID int) (bool, error)
	CommitBatch(ctx context.Context, results []models.ExamResult, overwrite bool) error
}

// ImportParams are the caller-declared facts about one uploaded file.
type ImportParams struct {
	SchoolID  int
	ClassID   *int
	ExamType  schema.ExamType
	ExamDate  time.Time
	Overwrite bool
}

// ImportService drives the pipeline end to end over one file: normalize
// the template, stream rows, score and resolve each, then commit the
// surviving batch as one unit. Safe for concurrent use; imports of the
// same sitting serialize at the commit boundary.
type ImportService struct {
	resolver *StudentResolver
	results  ResultStore
	log      *logrus.Logger

	mu       sync.Mutex
	sittings map[string]*sync.Mutex
}

func NewImportService(roster RosterStore, results ResultStore, log *logrus.Logger) *ImportService {
	return &ImportService{
		resolver: NewStudentResolver(roster),
		results:  results,
		log:      log,
		sittings: make(map[string]*sync.Mutex),
	}
}

// ImportFile runs one import invocation. File-level faults
// (UnknownExamTypeError, UnreadableFileError, TemplateMismatchError,
// ErrDuplicateImport, RosterFault, PersistenceFault) return a nil report;
// row-level faults never propagate past their row and accumulate in the
// report.
func (s *ImportService) ImportFile(ctx context.Context, path string, p ImportParams) (*models.ImportReport, error) {
	def, err := schema.DefinitionFor(p.ExamType)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &UnreadableFileError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &UnreadableFileError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &UnreadableFileError{Path: path, Err: err}
	}
	return s.importRows(ctx, rows, def, p)
}

func (s *ImportService) importRows(ctx context.Context, rows [][]string, def schema.ExamTypeDefinition, p ImportParams) (*models.ImportReport, error) {
	mapping, err := NormalizeTemplate(rows, def)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"exam_type": def.Key,
		"variant":   mapping.Variant,
		"columns":   len(mapping.Columns),
	}).Info("template normalized")

	report := &models.ImportReport{}
	var pending []models.ExamResult

	it := NewRowIterator(rows, mapping, def)
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		report.TotalRows++

		if len(row.Faults) > 0 {
			f := row.Faults[0]
			report.RowErrors = append(report.RowErrors, models.RowError{
				RowNumber: row.Number,
				Reason:    models.ReasonCellDecode,
				Detail:    fmt.Sprintf("%s: %q: %v", f.Role, f.Value, f.Err),
			})
			continue
		}

		student, err := s.resolver.Resolve(ctx, p.SchoolID, p.ClassID, row.StudentNumber, row.FirstName, row.LastName)
		if err != nil {
			var ambiguous *AmbiguousStudentError
			switch {
			case errors.Is(err, ErrStudentNotFound):
				report.RowErrors = append(report.RowErrors, models.RowError{
					RowNumber: row.Number,
					Reason:    models.ReasonResolverNotFound,
					Detail:    err.Error(),
				})
			case errors.As(err, &ambiguous):
				report.RowErrors = append(report.RowErrors, models.RowError{
					RowNumber: row.Number,
					Reason:    models.ReasonResolverAmbiguous,
					Detail:    err.Error(),
				})
			default:
				// Store infrastructure failure, not a row outcome.
				return nil, &RosterFault{Err: err}
			}
			continue
		}

		result := models.ExamResult{
			SchoolID:  p.SchoolID,
			StudentID: student.ID,
			ExamType:  def.Key,
			ExamDate:  p.ExamDate,
		}
		for _, lesson := range def.Lessons {
			cells := row.Lessons[lesson.Name]
			score, mismatch := ComputeLessonScore(lesson.Name, cells)
			if mismatch {
				report.RowWarnings = append(report.RowWarnings, models.RowError{
					RowNumber: row.Number,
					Reason:    models.ReasonScoreMismatch,
					Detail:    fmt.Sprintf("%s: sheet net %s diverges from %d correct / %d wrong", lesson.Name, score.Net, score.Correct, score.Wrong),
				})
			}
			if w := checkCounts(lesson, cells); w != "" {
				report.RowWarnings = append(report.RowWarnings, models.RowError{
					RowNumber: row.Number,
					Reason:    models.ReasonCountMismatch,
					Detail:    w,
				})
			}
			result.LessonScores = append(result.LessonScores, score)
		}
		result.TotalNet = TotalNet(result.LessonScores)
		pending = append(pending, result)
	}

	if err := s.commit(ctx, pending, p); err != nil {
		return nil, err
	}

	report.Succeeded = len(pending)
	report.Failed = len(report.RowErrors)
	s.log.WithFields(logrus.Fields{
		"total":     report.TotalRows,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("import finished")
	return report, nil
}

// commit runs the duplicate check and the batch commit under the sitting
// lock, closing the check-then-act window between two imports of the same
// sitting.
func (s *ImportService) commit(ctx context.Context, pending []models.ExamResult, p ImportParams) error {
	if len(pending) == 0 {
		return nil
	}
	lock := s.sittingLock(sittingKey(p.SchoolID, p.ExamType, p.ExamDate))
	lock.Lock()
	defer lock.Unlock()

	if !p.Overwrite {
		for i := range pending {
			exists, err := s.results.ExistsResult(ctx, p.SchoolID, p.ExamType, p.ExamDate, pending[i].StudentID)
			if err != nil {
				return &PersistenceFault{Err: err}
			}
			if exists {
				return ErrDuplicateImport
			}
		}
	}
	if err := s.results.CommitBatch(ctx, pending, p.Overwrite); err != nil {
		return &PersistenceFault{Err: err}
	}
	return nil
}

func (s *ImportService) sittingLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sittings[key]
	if !ok {
		lock = &sync.Mutex{}
		s.sittings[key] = lock
	}
	return lock
}

// checkCounts validates correct+wrong+blank against the lesson's question
// count when the template supplied a blank column.
func checkCounts(lesson schema.LessonDefinition, cells LessonCells) string {
	if cells.Blank == nil {
		return ""
	}
	if sum := cells.Correct + cells.Wrong + *cells.Blank; sum != lesson.Questions {
		return fmt.Sprintf("%s: %d correct + %d wrong + %d blank != %d questions",
			lesson.Name, cells.Correct, cells.Wrong, *cells.Blank, lesson.Questions)
	}
	return ""
}

package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"examtrack/internal/models"
	"examtrack/internal/schema"
)

// ResultRepository persists committed exam results. It satisfies
// service.ResultStore.
type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) ExistsResult(ctx context.Context, schoolID int, examType schema.ExamType, examDate time.Time, studentID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM exam_results
	          WHERE school_id = ? AND exam_type = ? AND exam_date = ? AND student_id = ?)`
	err := r.db.GetContext(ctx, &exists, query, schoolID, examType, examDate.Format("2006-01-02"), studentID)
	return exists, err
}

// CommitBatch writes the whole batch in one transaction. With overwrite,
// prior results for each batch row's identity key are deleted first; rows
// for other keys are untouched. Any failure rolls the transaction back.
func (r *ResultRepository) CommitBatch(ctx context.Context, results []models.ExamResult, overwrite bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range results {
		res := &results[i]
		if overwrite {
			if err := r.deleteExisting(ctx, tx, res); err != nil {
				return err
			}
		}
		insert := `INSERT INTO exam_results (school_id, student_id, exam_type, exam_date, total_net)
		           VALUES (?, ?, ?, ?, ?)`
		out, err := tx.ExecContext(ctx, insert,
			res.SchoolID, res.StudentID, res.ExamType, res.ExamDate.Format("2006-01-02"), res.TotalNet)
		if err != nil {
			return err
		}
		id, err := out.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = id

		for j := range res.LessonScores {
			ls := &res.LessonScores[j]
			ls.ResultID = id
			_, err := tx.ExecContext(ctx,
				`INSERT INTO exam_lesson_scores (result_id, lesson_name, correct, wrong, blank, net)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				ls.ResultID, ls.LessonName, ls.Correct, ls.Wrong, ls.Blank, ls.Net)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *ResultRepository) deleteExisting(ctx context.Context, tx *sqlx.Tx, res *models.ExamResult) error {
	_, err := tx.ExecContext(ctx,
		`DELETE ls FROM exam_lesson_scores ls
		 JOIN exam_results er ON er.id = ls.result_id
		 WHERE er.school_id = ? AND er.exam_type = ? AND er.exam_date = ? AND er.student_id = ?`,
		res.SchoolID, res.ExamType, res.ExamDate.Format("2006-01-02"), res.StudentID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM exam_results
		 WHERE school_id = ? AND exam_type = ? AND exam_date = ? AND student_id = ?`,
		res.SchoolID, res.ExamType, res.ExamDate.Format("2006-01-02"), res.StudentID)
	return err
}

// GetResultsBySitting returns committed results for one sitting, lesson
// scores included, ordered by student.
func (r *ResultRepository) GetResultsBySitting(ctx context.Context, schoolID int, examType schema.ExamType, examDate time.Time) ([]models.ExamResult, error) {
	var results []models.ExamResult
	err := r.db.SelectContext(ctx, &results,
		`SELECT * FROM exam_results
		 WHERE school_id = ? AND exam_type = ? AND exam_date = ?
		 ORDER BY student_id`,
		schoolID, examType, examDate.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	for i := range results {
		err := r.db.SelectContext(ctx, &results[i].LessonScores,
			"SELECT * FROM exam_lesson_scores WHERE result_id = ? ORDER BY id", results[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

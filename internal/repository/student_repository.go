package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"examtrack/internal/models"
)

// StudentRepository is the sqlx-backed roster lookup. It satisfies
// service.RosterStore.
type StudentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) FindByNumber(ctx context.Context, schoolID int, classID *int, number string) (*models.Student, error) {
	var student models.Student
	query := "SELECT * FROM students WHERE school_id = ? AND student_number = ?"
	args := []interface{}{schoolID, number}
	if classID != nil {
		query += " AND class_id = ?"
		args = append(args, *classID)
	}
	query += " LIMIT 1"

	err := r.db.GetContext(ctx, &student, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) FindByName(ctx context.Context, schoolID int, classID *int, name string) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT * FROM students WHERE school_id = ? AND normalized_name = ?"
	args := []interface{}{schoolID, name}
	if classID != nil {
		query += " AND class_id = ?"
		args = append(args, *classID)
	}

	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, err
	}
	return students, nil
}

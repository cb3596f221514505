package repository

import (
	"github.com/jmoiron/sqlx"

	"examtrack/internal/models"
)

// SessionRepository tracks import sessions.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions (session_code, user_id, school_id, class_id,
	          exam_type, exam_date, overwrite, filename, file_path, status)
	          VALUES (:session_code, :user_id, :school_id, :class_id,
	          :exam_type, :exam_date, :overwrite, :filename, :file_path, :status)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *SessionRepository) GetSessionByID(id int) (*models.ImportSession, error) {
	var session models.ImportSession
	err := r.db.Get(&session, "SELECT * FROM import_sessions WHERE id = ? LIMIT 1", id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetSessionByCode(code string) (*models.ImportSession, error) {
	var session models.ImportSession
	err := r.db.Get(&session, "SELECT * FROM import_sessions WHERE session_code = ? LIMIT 1", code)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetSessions(limit, offset int, schoolID int) ([]models.ImportSession, int, error) {
	var sessions []models.ImportSession
	var total int

	whereClause := ""
	args := []interface{}{}
	if schoolID > 0 {
		whereClause = "WHERE school_id = ?"
		args = append(args, schoolID)
	}

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_sessions "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_sessions " + whereClause + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	if err := r.db.Select(&sessions, query, args...); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *SessionRepository) MarkProcessing(id int) error {
	_, err := r.db.Exec("UPDATE import_sessions SET status = ?, updated_at = NOW() WHERE id = ?",
		models.ImportStatusProcessing, id)
	return err
}

// MarkCompleted stores the outcome counts and the serialized report.
func (r *SessionRepository) MarkCompleted(id, totalRows, succeeded, failed int, reportJSON string) error {
	_, err := r.db.Exec(
		`UPDATE import_sessions SET status = ?, total_rows = ?, succeeded_rows = ?,
		 failed_rows = ?, report = ?, updated_at = NOW() WHERE id = ?`,
		models.ImportStatusCompleted, totalRows, succeeded, failed, reportJSON, id)
	return err
}

func (r *SessionRepository) MarkFailed(id int, message string) error {
	_, err := r.db.Exec("UPDATE import_sessions SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?",
		models.ImportStatusFailed, message, id)
	return err
}

package models

// Student is a roster entry. The roster is read-only input to the
// pipeline; enrollment is an external responsibility. NormalizedName is
// maintained by enrollment (folded, whitespace-collapsed full name) and
// backs the resolver's name fallback.
type Student struct {
	ID             int    `db:"id" json:"id"`
	SchoolID       int    `db:"school_id" json:"school_id"`
	ClassID        int    `db:"class_id" json:"class_id"`
	StudentNumber  string `db:"student_number" json:"student_number"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	NormalizedName string `db:"normalized_name" json:"-"`
}

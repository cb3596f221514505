package service

import (
	"context"
	"strings"

	"examtrack/internal/models"
	"examtrack/internal/utils"
)

// RosterStore is the roster-lookup collaborator. Both lookups are scoped
// to a school and, when classID is non-nil, to one class. name is the
// normalized full name (see utils.NormalizeName).
type RosterStore interface {
	FindByNumber(ctx context.Context, schoolID int, classID *int, number string) (*models.Student, error)
	FindByName(ctx context.Context, schoolID int, classID *int, name string) ([]models.Student, error)
}

// StudentResolver matches row identities against the roster. It never
// creates roster entries; enrollment is external.
type StudentResolver struct {
	roster RosterStore
}

func NewStudentResolver(roster RosterStore) *StudentResolver {
	return &StudentResolver{roster: roster}
}

// Resolve finds the roster entry for an extracted row identity. An exact
// student-number match within scope wins; otherwise a normalized full-name
// match is attempted. Returns ErrStudentNotFound or AmbiguousStudentError
// when the roster gives zero or several answers; both are row-level
// conditions, never file-level.
func (r *StudentResolver) Resolve(ctx context.Context, schoolID int, classID *int, number, firstName, lastName string) (*models.Student, error) {
	if n := strings.TrimSpace(number); n != "" {
		student, err := r.roster.FindByNumber(ctx, schoolID, classID, n)
		if err != nil {
			return nil, err
		}
		if student != nil {
			return student, nil
		}
	}

	name := utils.NormalizeName(firstName + " " + lastName)
	if name == "" {
		return nil, ErrStudentNotFound
	}
	matches, err := r.roster.FindByName(ctx, schoolID, classID, name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrStudentNotFound
	case 1:
		return &matches[0], nil
	default:
		ids := make([]int, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, &AmbiguousStudentError{CandidateIDs: ids}
	}
}

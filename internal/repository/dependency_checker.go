package repository

import "context"

// DependencyChecker combines the two counts the identity service needs
// before deleting an account.
type DependencyChecker struct {
	internships  *InternshipRepository
	reservations *ReservationRepository
}

func NewDependencyChecker(internships *InternshipRepository, reservations *ReservationRepository) *DependencyChecker {
	return &DependencyChecker{internships: internships, reservations: reservations}
}

func (d *DependencyChecker) CountByInstitution(ctx context.Context, institutionID int64) (int, error) {
	return d.internships.CountByInstitution(ctx, institutionID)
}

func (d *DependencyChecker) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	return d.reservations.CountActiveByStudent(ctx, studentID)
}

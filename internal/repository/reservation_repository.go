package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/repository/base"
)

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

const reservationColumns = `r.id, r.student_id, r.internship_id, r.status, r.created_at, r.resolved_at`

func scanReservation(row pgx.Row, extra ...any) (*model.Reservation, error) {
	var res model.Reservation
	dest := []any{
		&res.ID,
		&res.StudentID,
		&res.InternshipID,
		&res.Status,
		&res.CreatedAt,
		&res.ResolvedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserts a reservation. A unique-violation means a concurrent
// writer beat us to one of the active-reservation constraints.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (student_id, internship_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		res.StudentID,
		res.InternshipID,
		res.Status,
	).Scan(&res.ID, &res.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return reservationUniqueError(err)
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// reservationUniqueError maps the two partial unique indexes to their
// ledger errors: a second hold on the same internship is a duplicate, a
// hold elsewhere trips the one-active-reservation limit.
func reservationUniqueError(err error) error {
	if base.ConstraintName(err) == "reservations_active_per_student_idx" {
		return model.ErrReservationLimit
	}
	return model.ErrDuplicateReservation
}

// GetByID returns the reservation or nil when missing.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`

	res, err := scanReservation(r.DB(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return res, nil
}

// FindActive returns the student's active reservation for an internship,
// or nil.
func (r *ReservationRepository) FindActive(ctx context.Context, studentID, internshipID int64) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.student_id = $1 AND r.internship_id = $2 AND r.status IN ('pending', 'approved')
	`

	res, err := scanReservation(r.DB(ctx).QueryRow(ctx, query, studentID, internshipID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active reservation: %w", err)
	}

	return res, nil
}

// CountActiveByStudent counts the student's active reservations across all
// internships.
func (r *ReservationRepository) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE student_id = $1 AND status IN ('pending', 'approved')`

	var count int
	if err := r.DB(ctx).QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations by student: %w", err)
	}

	return count, nil
}

// CountActiveByInternship counts active reservations holding spots on an
// internship.
func (r *ReservationRepository) CountActiveByInternship(ctx context.Context, internshipID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE internship_id = $1 AND status IN ('pending', 'approved')`

	var count int
	if err := r.DB(ctx).QueryRow(ctx, query, internshipID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations by internship: %w", err)
	}

	return count, nil
}

// UpdateStatus moves a reservation to a new state, stamping resolved_at
// for terminal states.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus, resolvedAt *time.Time) error {
	query := `UPDATE reservations SET status = $1, resolved_at = $2 WHERE id = $3`

	tag, err := r.DB(ctx).Exec(ctx, query, status, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReservationNotFound
	}

	return nil
}

// ListByStudent returns the student's reservations with internship and
// institution details, newest first.
func (r *ReservationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `, i.title, u.name
		FROM reservations r
		JOIN internships i ON r.internship_id = i.id
		JOIN users u ON i.institution_id = u.id
		WHERE r.student_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.DB(ctx).Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by student: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var title, institution string
		res, err := scanReservation(rows, &title, &institution)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.InternshipTitle = title
		res.InstitutionName = institution
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

// ListByInternship returns the internship's reservations with student
// details, newest first.
func (r *ReservationRepository) ListByInternship(ctx context.Context, internshipID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `, u.name, u.email, u.course, u.class_name
		FROM reservations r
		JOIN users u ON r.student_id = u.id
		WHERE r.internship_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.DB(ctx).Query(ctx, query, internshipID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by internship: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var name, email, course, class string
		res, err := scanReservation(rows, &name, &email, &course, &class)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.StudentName = name
		res.StudentEmail = email
		res.StudentCourse = course
		res.StudentClass = class
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

// ListExpiredPending returns pending reservations created before the
// cutoff, oldest first.
func (r *ReservationRepository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.status = 'pending' AND r.created_at < $1
		ORDER BY r.created_at ASC
	`

	rows, err := r.DB(ctx).Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired pending reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

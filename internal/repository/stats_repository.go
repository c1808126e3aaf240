package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/repository/base"
)

// StatsRepository serves the read-only dashboard aggregates. It never
// writes capacity fields.
type StatsRepository struct {
	*base.Repository
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{Repository: base.NewRepository(pool)}
}

func (r *StatsRepository) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM users WHERE role = 'institution'),
			(SELECT COUNT(*) FROM internships WHERE status = 'active'),
			(SELECT COUNT(*) FROM reservations WHERE status IN ('pending', 'approved')),
			(SELECT COALESCE(SUM(total_spots), 0) FROM internships WHERE status = 'active'),
			(SELECT COALESCE(SUM(available_spots), 0) FROM internships WHERE status = 'active')
	`

	var s model.AdminStats
	err := r.DB(ctx).QueryRow(ctx, query).Scan(
		&s.TotalStudents,
		&s.TotalInstitutions,
		&s.ActiveInternships,
		&s.ActiveReservations,
		&s.TotalSpots,
		&s.AvailableSpots,
	)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}

	s.OccupiedSpots = s.TotalSpots - s.AvailableSpots
	return &s, nil
}

func (r *StatsRepository) ReservationsByMonth(ctx context.Context) ([]model.MonthCount, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM reservations
		WHERE created_at >= now() - INTERVAL '12 months'
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reservations by month: %w", err)
	}
	defer rows.Close()

	var out []model.MonthCount
	for rows.Next() {
		var mc model.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan month count: %w", err)
		}
		out = append(out, mc)
	}

	return out, rows.Err()
}

func (r *StatsRepository) InternshipsByArea(ctx context.Context) ([]model.AreaCount, error) {
	query := `
		SELECT area, COUNT(*)
		FROM internships
		WHERE status = 'active'
		GROUP BY area
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("internships by area: %w", err)
	}
	defer rows.Close()

	var out []model.AreaCount
	for rows.Next() {
		var ac model.AreaCount
		if err := rows.Scan(&ac.Area, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan area count: %w", err)
		}
		out = append(out, ac)
	}

	return out, rows.Err()
}

func (r *StatsRepository) MostActiveInstitutions(ctx context.Context) ([]model.InstitutionActivity, error) {
	query := `
		SELECT u.name, COUNT(i.id), COALESCE(SUM(i.total_spots - i.available_spots), 0)
		FROM users u
		LEFT JOIN internships i ON u.id = i.institution_id AND i.status = 'active'
		WHERE u.role = 'institution'
		GROUP BY u.id, u.name
		ORDER BY COUNT(i.id) DESC
		LIMIT 10
	`

	rows, err := r.DB(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("most active institutions: %w", err)
	}
	defer rows.Close()

	var out []model.InstitutionActivity
	for rows.Next() {
		var ia model.InstitutionActivity
		if err := rows.Scan(&ia.Name, &ia.InternshipsCount, &ia.ReservedSpots); err != nil {
			return nil, fmt.Errorf("scan institution activity: %w", err)
		}
		out = append(out, ia)
	}

	return out, rows.Err()
}

func (r *StatsRepository) InstitutionStats(ctx context.Context, institutionID int64) (*model.InstitutionStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM internships WHERE institution_id = $1),
			(SELECT COUNT(*) FROM internships WHERE institution_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM reservations r
				JOIN internships i ON r.internship_id = i.id
				WHERE i.institution_id = $1 AND r.status IN ('pending', 'approved')),
			(SELECT COALESCE(SUM(total_spots), 0) FROM internships WHERE institution_id = $1 AND status = 'active'),
			(SELECT COALESCE(SUM(available_spots), 0) FROM internships WHERE institution_id = $1 AND status = 'active')
	`

	var s model.InstitutionStats
	err := r.DB(ctx).QueryRow(ctx, query, institutionID).Scan(
		&s.TotalInternships,
		&s.ActiveInternships,
		&s.ActiveReservations,
		&s.TotalSpots,
		&s.AvailableSpots,
	)
	if err != nil {
		return nil, fmt.Errorf("institution stats: %w", err)
	}

	s.OccupiedSpots = s.TotalSpots - s.AvailableSpots
	return &s, nil
}

func (r *StatsRepository) StudentStats(ctx context.Context, studentID int64) (*model.StudentStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM reservations WHERE student_id = $1 AND status IN ('pending', 'approved')),
			(SELECT COUNT(*) FROM reservations WHERE student_id = $1 AND status = 'completed'),
			(SELECT COUNT(*) FROM reservations WHERE student_id = $1 AND status IN ('cancelled', 'rejected'))
	`

	var s model.StudentStats
	err := r.DB(ctx).QueryRow(ctx, query, studentID).Scan(
		&s.ActiveReservations,
		&s.CompletedReservations,
		&s.CancelledReservations,
	)
	if err != nil {
		return nil, fmt.Errorf("student stats: %w", err)
	}

	s.TotalReservations = s.ActiveReservations + s.CompletedReservations + s.CancelledReservations
	return &s, nil
}

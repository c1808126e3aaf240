package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/repository/base"
)

type InternshipRepository struct {
	*base.Repository
}

func NewInternshipRepository(pool *pgxpool.Pool) *InternshipRepository {
	return &InternshipRepository{Repository: base.NewRepository(pool)}
}

const internshipColumns = `i.id, i.institution_id, i.title, i.description, i.total_spots, i.available_spots,
	i.period, i.shift, i.month_year, i.address, i.city, i.area, i.status, i.created_at, i.updated_at`

func scanInternship(row pgx.Row, extra ...any) (*model.Internship, error) {
	var i model.Internship
	dest := []any{
		&i.ID,
		&i.InstitutionID,
		&i.Title,
		&i.Description,
		&i.TotalSpots,
		&i.AvailableSpots,
		&i.Period,
		&i.Shift,
		&i.MonthYear,
		&i.Address,
		&i.City,
		&i.Area,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts an internship with all spots available.
func (r *InternshipRepository) Create(ctx context.Context, in *model.Internship) error {
	query := `
		INSERT INTO internships (institution_id, title, description, total_spots, available_spots,
			period, shift, month_year, address, city, area, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		in.InstitutionID,
		in.Title,
		in.Description,
		in.TotalSpots,
		in.AvailableSpots,
		in.Period,
		in.Shift,
		in.MonthYear,
		in.Address,
		in.City,
		in.Area,
		in.Status,
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create internship: %w", err)
	}

	return nil
}

// GetByID returns the internship joined with its institution, or nil.
func (r *InternshipRepository) GetByID(ctx context.Context, id int64) (*model.Internship, error) {
	query := `
		SELECT ` + internshipColumns + `, u.name, u.address, u.phone
		FROM internships i
		JOIN users u ON i.institution_id = u.id
		WHERE i.id = $1
	`

	var name, address, phone string
	in, err := scanInternship(r.DB(ctx).QueryRow(ctx, query, id), &name, &address, &phone)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get internship by id: %w", err)
	}

	in.InstitutionName = name
	in.InstitutionAddress = address
	in.InstitutionPhone = phone
	return in, nil
}

// GetForUpdate locks the internship row for the duration of the enclosing
// transaction. Must be called inside WithTx.
func (r *InternshipRepository) GetForUpdate(ctx context.Context, id int64) (*model.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships i WHERE i.id = $1 FOR UPDATE`

	in, err := scanInternship(r.DB(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get internship for update: %w", err)
	}

	return in, nil
}

// ListOpen returns active internships with spots left, matching the filter.
func (r *InternshipRepository) ListOpen(ctx context.Context, filter model.InternshipFilter) ([]*model.Internship, error) {
	query := `
		SELECT ` + internshipColumns + `, u.name, u.address
		FROM internships i
		JOIN users u ON i.institution_id = u.id
		WHERE i.status = 'active' AND i.available_spots > 0
	`
	var args []any

	if filter.City != "" {
		args = append(args, "%"+filter.City+"%")
		query += fmt.Sprintf(" AND i.city ILIKE $%d", len(args))
	}
	if filter.Area != "" {
		args = append(args, "%"+filter.Area+"%")
		query += fmt.Sprintf(" AND i.area ILIKE $%d", len(args))
	}
	if filter.MonthYear != "" {
		args = append(args, filter.MonthYear)
		query += fmt.Sprintf(" AND i.month_year = $%d", len(args))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		query += fmt.Sprintf(" AND i.period = $%d", len(args))
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list open internships: %w", err)
	}
	defer rows.Close()

	var internships []*model.Internship
	for rows.Next() {
		var name, address string
		in, err := scanInternship(rows, &name, &address)
		if err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		in.InstitutionName = name
		in.InstitutionAddress = address
		internships = append(internships, in)
	}

	return internships, rows.Err()
}

// ListByInstitution returns all internships owned by an institution.
func (r *InternshipRepository) ListByInstitution(ctx context.Context, institutionID int64) ([]*model.Internship, error) {
	query := `
		SELECT ` + internshipColumns + `
		FROM internships i
		WHERE i.institution_id = $1
		ORDER BY i.created_at DESC
	`

	rows, err := r.DB(ctx).Query(ctx, query, institutionID)
	if err != nil {
		return nil, fmt.Errorf("list internships by institution: %w", err)
	}
	defer rows.Close()

	var internships []*model.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		internships = append(internships, in)
	}

	return internships, rows.Err()
}

// Update persists metadata, capacity and status changes.
func (r *InternshipRepository) Update(ctx context.Context, in *model.Internship) error {
	query := `
		UPDATE internships
		SET title = $1, description = $2, total_spots = $3, available_spots = $4,
			period = $5, shift = $6, month_year = $7, address = $8, city = $9, area = $10,
			status = $11, updated_at = now()
		WHERE id = $12
		RETURNING updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		in.Title,
		in.Description,
		in.TotalSpots,
		in.AvailableSpots,
		in.Period,
		in.Shift,
		in.MonthYear,
		in.Address,
		in.City,
		in.Area,
		in.Status,
		in.ID,
	).Scan(&in.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return model.ErrInternshipNotFound
		}
		return fmt.Errorf("update internship: %w", err)
	}

	return nil
}

// UpdateSpots writes the capacity counters. Only the reservation ledger
// may call this, and only under the FOR UPDATE row lock.
func (r *InternshipRepository) UpdateSpots(ctx context.Context, id int64, totalSpots, availableSpots int) error {
	query := `
		UPDATE internships
		SET total_spots = $1, available_spots = $2, updated_at = now()
		WHERE id = $3
	`

	tag, err := r.DB(ctx).Exec(ctx, query, totalSpots, availableSpots, id)
	if err != nil {
		return fmt.Errorf("update internship spots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInternshipNotFound
	}

	return nil
}

// Delete removes an internship row.
func (r *InternshipRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM internships WHERE id = $1`

	tag, err := r.DB(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInternshipNotFound
	}

	return nil
}

// CountByInstitution reports how many internships an institution owns.
func (r *InternshipRepository) CountByInstitution(ctx context.Context, institutionID int64) (int, error) {
	var count int
	err := r.DB(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM internships WHERE institution_id = $1`, institutionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count internships by institution: %w", err)
	}
	return count, nil
}

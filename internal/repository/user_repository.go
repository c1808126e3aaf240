package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

const userColumns = `id, email, password_hash, name, role, status, course, class_name, cnpj, address, phone, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Status,
		&u.Course,
		&u.ClassName,
		&u.CNPJ,
		&u.Address,
		&u.Phone,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills the generated fields.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, role, status, course, class_name, cnpj, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Status,
		user.Course,
		user.ClassName,
		user.CNPJ,
		user.Address,
		user.Phone,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return userUniqueError(err)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// userUniqueError tells the two unique constraints on users apart.
func userUniqueError(err error) error {
	if base.ConstraintName(err) == "users_cnpj_idx" {
		return model.ErrCNPJTaken
	}
	return model.ErrEmailTaken
}

// GetByID returns the user or nil when missing.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.DB(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail returns the user or nil when missing.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.DB(ctx).QueryRow(ctx, query, email))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// List returns users filtered by role and/or name-or-email search.
func (r *UserRepository) List(ctx context.Context, role model.Role, search string) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	var args []any

	if role != "" {
		args = append(args, role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update persists the editable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, name = $2, course = $3, class_name = $4, cnpj = $5, address = $6, phone = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.DB(ctx).QueryRow(
		ctx, query,
		user.Email,
		user.Name,
		user.Course,
		user.ClassName,
		user.CNPJ,
		user.Address,
		user.Phone,
		user.ID,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return model.ErrUserNotFound
		}
		if base.IsUniqueViolation(err) {
			return userUniqueError(err)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// UpdateStatus moves an account through the approval workflow.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	query := `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`

	tag, err := r.DB(ctx).Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	tag, err := r.DB(ctx).Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// Delete removes a user row.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	tag, err := r.DB(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// CountByCNPJ reports whether an institution with this CNPJ already exists.
func (r *UserRepository) CountByCNPJ(ctx context.Context, cnpj string) (int, error) {
	var count int
	err := r.DB(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE cnpj = $1 AND cnpj <> ''`, cnpj).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by cnpj: %w", err)
	}
	return count, nil
}

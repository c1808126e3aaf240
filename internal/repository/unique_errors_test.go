package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/repository/base"
)

func uniqueViolation(constraint string) error {
	return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

func TestUserUniqueError(t *testing.T) {
	assert.ErrorIs(t, userUniqueError(uniqueViolation("users_email_key")), model.ErrEmailTaken)
	assert.ErrorIs(t, userUniqueError(uniqueViolation("users_cnpj_idx")), model.ErrCNPJTaken)
}

func TestReservationUniqueError(t *testing.T) {
	assert.ErrorIs(t,
		reservationUniqueError(uniqueViolation("reservations_active_per_internship_idx")),
		model.ErrDuplicateReservation)
	assert.ErrorIs(t,
		reservationUniqueError(uniqueViolation("reservations_active_per_student_idx")),
		model.ErrReservationLimit)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, base.IsUniqueViolation(uniqueViolation("users_email_key")))
	assert.False(t, base.IsUniqueViolation(fmt.Errorf("connection reset")))
	assert.Equal(t, "users_cnpj_idx", base.ConstraintName(uniqueViolation("users_cnpj_idx")))
	assert.Equal(t, "", base.ConstraintName(fmt.Errorf("connection reset")))
}

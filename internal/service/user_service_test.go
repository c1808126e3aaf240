package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagago/internmatch/internal/auth"
	"github.com/vagago/internmatch/internal/model"
)

func newUserService(store *fakeUserStore) *UserService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(store, store, tokens, testLogger())
}

func studentInput() RegisterStudentInput {
	return RegisterStudentInput{
		Email:     "ana@example.com",
		Password:  "secret1",
		Name:      "Ana",
		Course:    "nursing",
		ClassName: "3A",
	}
}

func institutionInput() RegisterInstitutionInput {
	return RegisterInstitutionInput{
		Email:    "hospital@example.com",
		Password: "secret1",
		Name:     "Hospital Central",
		CNPJ:     "12.345.678/0001-90",
		Address:  "Rua A 1",
		Phone:    "19 99999-0000",
	}
}

func TestRegisterStudent(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newUserService(store)

	result, err := svc.RegisterStudent(ctx, studentInput())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.RoleStudent, result.User.Role)
	assert.Equal(t, model.AccountPending, result.User.Status)
	assert.NotEqual(t, "secret1", result.User.PasswordHash)
}

func TestRegisterStudentValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	t.Run("missing fields", func(t *testing.T) {
		in := studentInput()
		in.Course = ""
		_, err := svc.RegisterStudent(ctx, in)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		in := studentInput()
		in.Password = "abc"
		_, err := svc.RegisterStudent(ctx, in)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	_, err := svc.RegisterStudent(ctx, studentInput())
	require.NoError(t, err)

	_, err = svc.RegisterStudent(ctx, studentInput())
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestRegisterInstitution(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	result, err := svc.RegisterInstitution(ctx, institutionInput())
	require.NoError(t, err)
	assert.Equal(t, model.RoleInstitution, result.User.Role)
	assert.Equal(t, model.AccountPending, result.User.Status)

	t.Run("cnpj already registered", func(t *testing.T) {
		in := institutionInput()
		in.Email = "other@example.com"
		_, err := svc.RegisterInstitution(ctx, in)
		assert.ErrorIs(t, err, model.ErrCNPJTaken)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	_, err := svc.RegisterStudent(ctx, studentInput())
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		result, err := svc.Authenticate(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("case and whitespace insensitive email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "  Ana@Example.com ", "secret1")
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ana@example.com", "nope12")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestRateLimiting(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	var limited bool
	for i := 0; i < 20; i++ {
		_, err := svc.Authenticate(ctx, "ghost@example.com", "secret1")
		if errors.Is(err, model.ErrRateLimited) {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected the shared limiter to kick in")
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newUserService(store)

	result, err := svc.RegisterInstitution(ctx, institutionInput())
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, result.User.ID, model.AccountApproved))

	user, err := svc.Get(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccountApproved, user.Status)
}

func TestAdminCreate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	user, err := svc.AdminCreate(ctx, AdminCreateUserInput{
		Email:    "coord@example.com",
		Password: "secret1",
		Name:     "Coordinator",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccountApproved, user.Status)

	_, err = svc.AdminCreate(ctx, AdminCreateUserInput{
		Email:    "x@example.com",
		Password: "secret1",
		Name:     "X",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newUserService(store)

	admin := model.Principal{UserID: 999, Role: model.RoleAdmin}

	student, err := svc.RegisterStudent(ctx, studentInput())
	require.NoError(t, err)
	institution, err := svc.RegisterInstitution(ctx, institutionInput())
	require.NoError(t, err)

	t.Run("self delete refused", func(t *testing.T) {
		err := svc.Delete(ctx, student.User.ID, model.Principal{UserID: student.User.ID, Role: model.RoleStudent})
		assert.ErrorIs(t, err, model.ErrSelfDelete)
	})

	t.Run("institution with postings refused", func(t *testing.T) {
		store.mu.Lock()
		store.institutionCounts[institution.User.ID] = 2
		store.mu.Unlock()

		err := svc.Delete(ctx, institution.User.ID, admin)
		assert.ErrorIs(t, err, model.ErrUserHasDependencies)
	})

	t.Run("student with active reservation refused", func(t *testing.T) {
		store.mu.Lock()
		store.reservationCounts[student.User.ID] = 1
		store.mu.Unlock()

		err := svc.Delete(ctx, student.User.ID, admin)
		assert.ErrorIs(t, err, model.ErrUserHasDependencies)
	})

	t.Run("unencumbered account deleted", func(t *testing.T) {
		store.mu.Lock()
		store.reservationCounts[student.User.ID] = 0
		store.mu.Unlock()

		require.NoError(t, svc.Delete(ctx, student.User.ID, admin))

		_, err := svc.Get(ctx, student.User.ID)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newUserService(store)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@sistema.com", "admin123"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@sistema.com", "admin123"))

	admins, err := svc.List(ctx, model.RoleAdmin, "")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, model.AccountApproved, admins[0].Status)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newFakeUserStore())

	result, err := svc.RegisterStudent(ctx, studentInput())
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, result.User.ID, "newpass1"))

	_, err = svc.Authenticate(ctx, "ana@example.com", "newpass1")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ana@example.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

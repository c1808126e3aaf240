package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/vagago/internmatch/internal/auth"
	"github.com/vagago/internmatch/internal/model"
)

// UserStore is the identity persistence surface.
// *repository.UserRepository implements it.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, role model.Role, search string) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateStatus(ctx context.Context, id int64, status model.AccountStatus) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	CountByCNPJ(ctx context.Context, cnpj string) (int, error)
}

// UserDependencyChecker guards admin deletes: institutions with postings
// and students with active reservations cannot be removed.
type UserDependencyChecker interface {
	CountByInstitution(ctx context.Context, institutionID int64) (int, error)
	CountActiveByStudent(ctx context.Context, studentID int64) (int, error)
}

type RegisterStudentInput struct {
	Email     string
	Password  string
	Name      string
	Course    string
	ClassName string
}

type RegisterInstitutionInput struct {
	Email    string
	Password string
	Name     string
	CNPJ     string
	Address  string
	Phone    string
}

type AdminCreateUserInput struct {
	Email     string
	Password  string
	Name      string
	Role      model.Role
	Course    string
	ClassName string
	CNPJ      string
	Address   string
	Phone     string
}

type UpdateUserInput struct {
	Email     string
	Name      string
	Course    string
	ClassName string
	CNPJ      string
	Address   string
	Phone     string
}

type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// UserService is the identity collaborator: registration, authentication
// and the admin account-approval workflow.
type UserService struct {
	users       UserStore
	deps        UserDependencyChecker
	tokens      *auth.TokenManager
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

func NewUserService(
	users UserStore,
	deps UserDependencyChecker,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:  users,
		deps:   deps,
		tokens: tokens,
		// Registration and login share one limiter, 30 attempts per
		// minute with a small burst.
		rateLimiter: rate.NewLimiter(rate.Limit(0.5), 10),
		logger:      logger,
	}
}

const minPasswordLength = 6

func (s *UserService) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", model.ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// RegisterStudent creates a pending student account and logs it in.
func (s *UserService) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*AuthResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, model.ErrRateLimited
	}
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Course == "" || in.ClassName == "" {
		return nil, fmt.Errorf("%w: all fields are required", model.ErrValidation)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Name:         in.Name,
		Role:         model.RoleStudent,
		Status:       model.AccountPending,
		Course:       in.Course,
		ClassName:    in.ClassName,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("student registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return s.login(user)
}

// RegisterInstitution creates a pending institution account and logs it in.
func (s *UserService) RegisterInstitution(ctx context.Context, in RegisterInstitutionInput) (*AuthResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, model.ErrRateLimited
	}
	if in.Email == "" || in.Password == "" || in.Name == "" || in.CNPJ == "" {
		return nil, fmt.Errorf("%w: email, password, name and cnpj are required", model.ErrValidation)
	}

	taken, err := s.users.CountByCNPJ(ctx, in.CNPJ)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, model.ErrCNPJTaken
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Name:         in.Name,
		Role:         model.RoleInstitution,
		Status:       model.AccountPending,
		CNPJ:         in.CNPJ,
		Address:      in.Address,
		Phone:        in.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("institution registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return s.login(user)
}

// Authenticate checks credentials and issues a token. Pending accounts
// may log in; write operations are gated separately on approval.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, model.ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.login(user)
}

func (s *UserService) login(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// List returns users filtered by role and search string. Admin only.
func (s *UserService) List(ctx context.Context, role model.Role, search string) ([]*model.User, error) {
	return s.users.List(ctx, role, search)
}

// AdminCreate creates an account in any role, already approved.
func (s *UserService) AdminCreate(ctx context.Context, in AdminCreateUserInput) (*model.User, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", model.ErrValidation)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", model.ErrValidation, in.Role)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
		Status:       model.AccountApproved,
		Course:       in.Course,
		ClassName:    in.ClassName,
		CNPJ:         in.CNPJ,
		Address:      in.Address,
		Phone:        in.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created by admin",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Update edits profile fields. Admin only.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error) {
	if in.Email == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: email and name are required", model.ErrValidation)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	user.Name = in.Name
	user.Course = in.Course
	user.ClassName = in.ClassName
	user.CNPJ = in.CNPJ
	user.Address = in.Address
	user.Phone = in.Phone

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetStatus moves an account through the approval workflow. Admin only.
func (s *UserService) SetStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("account status changed",
		zap.Int64("user_id", id),
		zap.String("status", string(status)),
	)

	return nil
}

// ResetPassword sets a new password for a user. Admin only.
func (s *UserService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, id, hash)
}

// Delete removes an account. Refused for the caller's own account and for
// accounts that still own internships or hold active reservations.
func (s *UserService) Delete(ctx context.Context, id int64, principal model.Principal) error {
	if id == principal.UserID {
		return model.ErrSelfDelete
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	switch user.Role {
	case model.RoleInstitution:
		count, err := s.deps.CountByInstitution(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return model.ErrUserHasDependencies
		}
	case model.RoleStudent:
		count, err := s.deps.CountActiveByStudent(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return model.ErrUserHasDependencies
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.Int64("user_id", id),
		zap.Int64("deleted_by", principal.UserID),
	)

	return nil
}

// EnsureAdmin creates the default admin account on first boot.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		Status:       model.AccountApproved,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("default admin account created", zap.String("email", email))
	return nil
}

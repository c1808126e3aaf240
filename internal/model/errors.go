package model

import "errors"

// Ledger errors. Every capacity-affecting operation returns one of these
// so the transport layer can map them to status codes in a single place.
var (
	ErrInternshipUnavailable = errors.New("internship is not available")
	ErrDuplicateReservation  = errors.New("student already has an active reservation for this internship")
	ErrReservationLimit      = errors.New("student already has an active reservation")
	ErrAlreadyApproved       = errors.New("reservation was approved and can no longer be cancelled by the student")
	ErrAlreadyResolved       = errors.New("reservation is already resolved")
	ErrInvalidTransition     = errors.New("reservation is not in a valid state for this operation")
	ErrNotOwner              = errors.New("internship belongs to another institution")
	ErrHasActiveReservations = errors.New("internship has active reservations")
)

// ErrValidation wraps bad-input failures so the transport can map them
// all to a 400 without enumerating messages.
var ErrValidation = errors.New("validation failed")

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInternshipNotFound  = errors.New("internship not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrCNPJTaken           = errors.New("cnpj is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotApproved  = errors.New("account is awaiting approval")
	ErrRateLimited         = errors.New("too many requests")
	ErrUserHasDependencies = errors.New("user has internships or active reservations")
	ErrSelfDelete          = errors.New("cannot delete own account")
)

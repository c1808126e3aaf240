package model

import "time"

type Role string

const (
	RoleStudent     Role = "student"
	RoleInstitution Role = "institution"
	RoleAdmin       Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstitution, RoleAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountPending  AccountStatus = "pending" // awaiting admin approval
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

type User struct {
	ID           int64         `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	Status       AccountStatus `json:"status"`

	// Student fields
	Course    string `json:"course,omitempty"`
	ClassName string `json:"class_name,omitempty"`

	// Institution fields
	CNPJ    string `json:"cnpj,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated caller as seen by the services. It is
// extracted from the access token; services trust it without re-validating
// credentials.
type Principal struct {
	UserID int64
	Role   Role
}

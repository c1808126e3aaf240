package model

import "time"

type InternshipStatus string

const (
	InternshipActive    InternshipStatus = "active"
	InternshipClosed    InternshipStatus = "closed"
	InternshipCancelled InternshipStatus = "cancelled"
)

func (s InternshipStatus) Valid() bool {
	switch s {
	case InternshipActive, InternshipClosed, InternshipCancelled:
		return true
	}
	return false
}

// Internship is a posting with a finite number of reservable spots.
// AvailableSpots is only ever mutated inside a reservation-ledger
// transaction and always satisfies 0 <= available <= total.
type Internship struct {
	ID             int64            `json:"id"`
	InstitutionID  int64            `json:"institution_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	TotalSpots     int              `json:"total_spots"`
	AvailableSpots int              `json:"available_spots"`
	Period         string           `json:"period"`
	Shift          string           `json:"shift"`
	MonthYear      string           `json:"month_year"`
	Address        string           `json:"address"`
	City           string           `json:"city"`
	Area           string           `json:"area"`
	Status         InternshipStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Joined for listings, not stored on the row.
	InstitutionName    string `json:"institution_name,omitempty"`
	InstitutionAddress string `json:"institution_address,omitempty"`
	InstitutionPhone   string `json:"institution_phone,omitempty"`
}

// HeldSpots is the number of spots currently committed to active
// reservations.
func (i *Internship) HeldSpots() int {
	return i.TotalSpots - i.AvailableSpots
}

// InternshipFilter narrows public internship listings.
type InternshipFilter struct {
	City      string
	Area      string
	MonthYear string
	Period    string
}

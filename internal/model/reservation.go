package model

import "time"

type ReservationStatus string

const (
	// ReservationPending holds a spot while the institution decides.
	ReservationPending ReservationStatus = "pending"
	// ReservationApproved keeps the spot held; only the institution can
	// release it from here.
	ReservationApproved ReservationStatus = "approved"
	// Terminal states. None of these hold a spot.
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationRejected  ReservationStatus = "rejected"
)

// Active reports whether the reservation still holds a spot.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationApproved
}

// Terminal reports whether no further transition is legal.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationCompleted, ReservationCancelled, ReservationRejected:
		return true
	}
	return false
}

type Reservation struct {
	ID           int64             `json:"id"`
	StudentID    int64             `json:"student_id"`
	InternshipID int64             `json:"internship_id"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	ResolvedAt   *time.Time        `json:"resolved_at,omitempty"`

	// Joined for listings, not stored on the row.
	InternshipTitle string `json:"internship_title,omitempty"`
	InstitutionName string `json:"institution_name,omitempty"`
	StudentName     string `json:"student_name,omitempty"`
	StudentEmail    string `json:"student_email,omitempty"`
	StudentCourse   string `json:"student_course,omitempty"`
	StudentClass    string `json:"student_class,omitempty"`
}

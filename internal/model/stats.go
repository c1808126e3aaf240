package model

// Dashboard aggregates. Read-only projections over the ledger state.

type AdminStats struct {
	TotalStudents      int `json:"total_students"`
	TotalInstitutions  int `json:"total_institutions"`
	ActiveInternships  int `json:"active_internships"`
	ActiveReservations int `json:"active_reservations"`
	TotalSpots         int `json:"total_spots"`
	AvailableSpots     int `json:"available_spots"`
	OccupiedSpots      int `json:"occupied_spots"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

type InstitutionActivity struct {
	Name             string `json:"name"`
	InternshipsCount int    `json:"internships_count"`
	ReservedSpots    int    `json:"reserved_spots"`
}

type AdminCharts struct {
	ReservationsByMonth []MonthCount          `json:"reservations_by_month"`
	InternshipsByArea   []AreaCount           `json:"internships_by_area"`
	ActiveInstitutions  []InstitutionActivity `json:"active_institutions"`
}

type InstitutionStats struct {
	TotalInternships   int `json:"total_internships"`
	ActiveInternships  int `json:"active_internships"`
	ActiveReservations int `json:"active_reservations"`
	TotalSpots         int `json:"total_spots"`
	AvailableSpots     int `json:"available_spots"`
	OccupiedSpots      int `json:"occupied_spots"`
}

type StudentStats struct {
	ActiveReservations    int `json:"active_reservations"`
	CompletedReservations int `json:"completed_reservations"`
	CancelledReservations int `json:"cancelled_reservations"`
	TotalReservations     int `json:"total_reservations"`
}

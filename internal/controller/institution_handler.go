package controller

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"
)

func (c *Controller) handleInternshipStudents(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	reservations, err := c.reservations.ListByInternship(r.Context(), id, principal)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// handleExportStudents streams the internship's reservation roster as CSV.
func (c *Controller) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	reservations, err := c.reservations.ListByInternship(r.Context(), id, principal)
	if err != nil {
		c.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="internship_%d_students.csv"`, id))

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"name", "email", "course", "class", "status", "reserved_at"})
	for _, res := range reservations {
		_ = cw.Write([]string{
			res.StudentName,
			res.StudentEmail,
			res.StudentCourse,
			res.StudentClass,
			string(res.Status),
			res.CreatedAt.Format(time.RFC3339),
		})
	}
}

package controller

import (
	"net/http"
)

func (c *Controller) handleReserve(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	internshipID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	reservation, err := c.reservations.Reserve(r.Context(), internshipID, principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (c *Controller) handleMyReservations(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	reservations, err := c.reservations.ListByStudent(r.Context(), principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// handleRelease cancels a student's own reservation or rejects one on
// behalf of the posting institution or an admin. The ledger decides
// which path applies from the principal.
func (c *Controller) handleRelease(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := c.reservations.Release(r.Context(), id, principal); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "reservation released")
}

func (c *Controller) handleApprove(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := c.reservations.Approve(r.Context(), id, principal); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "reservation approved")
}

func (c *Controller) handleReject(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := c.reservations.Release(r.Context(), id, principal); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "reservation rejected")
}

func (c *Controller) handleComplete(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := c.reservations.Complete(r.Context(), id, principal); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "reservation completed")
}

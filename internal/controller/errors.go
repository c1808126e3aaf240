package controller

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/model"
)

// respondError maps every ledger and identity error kind to a status code
// in one place. Unknown errors are logged and surface as 500s without
// leaking details.
func (c *Controller) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInternshipUnavailable),
		errors.Is(err, model.ErrDuplicateReservation),
		errors.Is(err, model.ErrReservationLimit),
		errors.Is(err, model.ErrHasActiveReservations),
		errors.Is(err, model.ErrUserHasDependencies),
		errors.Is(err, model.ErrSelfDelete):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, model.ErrAlreadyApproved),
		errors.Is(err, model.ErrAlreadyResolved),
		errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, model.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, model.ErrAccountNotApproved):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrInternshipNotFound),
		errors.Is(err, model.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrCNPJTaken):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, model.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())

	default:
		c.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

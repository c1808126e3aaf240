package controller

import (
	"net/http"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/service"
)

func (c *Controller) handleListOpenInternships(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.InternshipFilter{
		City:      q.Get("city"),
		Area:      q.Get("area"),
		MonthYear: q.Get("month_year"),
		Period:    q.Get("period"),
	}

	internships, err := c.internships.ListOpen(r.Context(), filter)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internships)
}

func (c *Controller) handleGetInternship(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	internship, err := c.internships.Get(r.Context(), id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

type internshipRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TotalSpots  int    `json:"total_spots"`
	Period      string `json:"period"`
	Shift       string `json:"shift"`
	MonthYear   string `json:"month_year"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Area        string `json:"area"`
	Status      string `json:"status,omitempty"`
}

func (req internshipRequest) toCreateInput() service.CreateInternshipInput {
	return service.CreateInternshipInput{
		Title:       req.Title,
		Description: req.Description,
		TotalSpots:  req.TotalSpots,
		Period:      req.Period,
		Shift:       req.Shift,
		MonthYear:   req.MonthYear,
		Address:     req.Address,
		City:        req.City,
		Area:        req.Area,
	}
}

func (c *Controller) handleMyInternships(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	internships, err := c.internships.ListByInstitution(r.Context(), principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internships)
}

func (c *Controller) handleCreateInternship(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	var req internshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	internship, err := c.internships.Create(r.Context(), principal.UserID, req.toCreateInput())
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, internship)
}

func (c *Controller) handleUpdateInternship(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	var req internshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	internship, err := c.internships.Update(r.Context(), id, principal.UserID, service.UpdateInternshipInput{
		CreateInternshipInput: req.toCreateInput(),
		Status:                model.InternshipStatus(req.Status),
	})
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

func (c *Controller) handleDeleteInternship(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid internship id")
		return
	}

	if err := c.internships.Delete(r.Context(), id, principal.UserID); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "internship deleted")
}

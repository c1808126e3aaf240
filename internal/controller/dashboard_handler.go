package controller

import "net/http"

func (c *Controller) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.stats.AdminStats(r.Context())
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (c *Controller) handleAdminCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := c.stats.AdminCharts(r.Context())
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, charts)
}

func (c *Controller) handleInstitutionDashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	stats, err := c.stats.InstitutionStats(r.Context(), principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (c *Controller) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	stats, err := c.stats.StudentStats(r.Context(), principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vagago/internmatch/internal/service"
)

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type registerStudentRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	ClassName string `json:"class_name"`
}

func (c *Controller) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.users.RegisterStudent(r.Context(), service.RegisterStudentInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Course:    req.Course,
		ClassName: req.ClassName,
	})
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type registerInstitutionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	CNPJ     string `json:"cnpj"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

func (c *Controller) handleRegisterInstitution(w http.ResponseWriter, r *http.Request) {
	var req registerInstitutionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.users.RegisterInstitution(r.Context(), service.RegisterInstitutionInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		CNPJ:     req.CNPJ,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *Controller) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	user, err := c.users.Get(r.Context(), principal.UserID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

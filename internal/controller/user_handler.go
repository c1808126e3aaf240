package controller

import (
	"net/http"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/service"
)

func (c *Controller) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, err := c.users.List(r.Context(), model.Role(q.Get("role")), q.Get("search"))
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (c *Controller) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := c.users.Get(r.Context(), id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type adminCreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Course    string `json:"course"`
	ClassName string `json:"class_name"`
	CNPJ      string `json:"cnpj"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func (c *Controller) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req adminCreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.users.AdminCreate(r.Context(), service.AdminCreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      model.Role(req.Role),
		Course:    req.Course,
		ClassName: req.ClassName,
		CNPJ:      req.CNPJ,
		Address:   req.Address,
		Phone:     req.Phone,
	})
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	ClassName string `json:"class_name"`
	CNPJ      string `json:"cnpj"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func (c *Controller) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := c.users.Update(r.Context(), id, service.UpdateUserInput{
		Email:     req.Email,
		Name:      req.Name,
		Course:    req.Course,
		ClassName: req.ClassName,
		CNPJ:      req.CNPJ,
		Address:   req.Address,
		Phone:     req.Phone,
	})
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (c *Controller) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFromContext(r.Context())

	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := c.users.Delete(r.Context(), id, principal); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "user deleted")
}

func (c *Controller) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	c.setUserStatus(w, r, model.AccountApproved)
}

func (c *Controller) handleRejectUser(w http.ResponseWriter, r *http.Request) {
	c.setUserStatus(w, r, model.AccountRejected)
}

func (c *Controller) setUserStatus(w http.ResponseWriter, r *http.Request, status model.AccountStatus) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := c.users.SetStatus(r.Context(), id, status); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "account status updated")
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (c *Controller) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := c.users.ResetPassword(r.Context(), id, req.Password); err != nil {
		c.respondError(w, err)
		return
	}

	writeMessage(w, "password reset")
}

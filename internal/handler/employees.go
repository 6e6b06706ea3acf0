package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
)

var (
	errInvalidID   = errors.New("id must be an integer")
	errInvalidPage = errors.New("page must be an integer")
)

func (h *Handler) employeeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req domain.EmployeeInput
	if err := h.readJSON(r, &req); err != nil {
		h.unprocessableEntity(w, r, err)
		return
	}

	employee, err := h.employees.Create(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, employee)
}

// ListEmployees 空字符串的过滤条件等同于未提供
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.EmployeeFilter{}
	if department := query.Get("department"); department != "" {
		filter.Department = &department
	}
	if role := query.Get("role"); role != "" {
		filter.Role = &role
	}

	page := 1
	if pageParam := query.Get("page"); pageParam != "" {
		p, err := strconv.Atoi(pageParam)
		if err != nil {
			h.unprocessableEntity(w, r, errInvalidPage)
			return
		}
		page = p
	}

	employees, err := h.employees.List(r.Context(), filter, page)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.unprocessableEntity(w, r, err)
		return
	}

	employee, err := h.employees.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.unprocessableEntity(w, r, err)
		return
	}

	var req domain.EmployeeInput
	if err := h.readJSON(r, &req); err != nil {
		h.unprocessableEntity(w, r, err)
		return
	}

	employee, err := h.employees.Update(r.Context(), id, req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.unprocessableEntity(w, r, err)
		return
	}

	if err := h.employees.Delete(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/utils"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	logger.FromRequest(r).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("服务器内部错误")
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, detail string) {
	h.writeJSON(w, r, status, errorBody{Detail: detail})
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	h.errorResponse(w, r, http.StatusUnauthorized, detail)
}

// unprocessableEntity 用于请求体、路径参数或查询参数无法解析以及字段校验失败
func (h *Handler) unprocessableEntity(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusUnprocessableEntity, utils.TranslateValidationError(err, h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
}

// serviceError 将 service 层返回的错误映射为 HTTP 状态码
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsValidationError(err):
		h.unprocessableEntity(w, r, err)
	case errors.Is(err, domain.ErrDuplicateEmail):
		h.errorResponse(w, r, http.StatusBadRequest, "Email exists")
	case errors.Is(err, domain.ErrEmployeeNotFound):
		h.errorResponse(w, r, http.StatusNotFound, "Not Found")
	default:
		h.internalServerError(w, r, err)
	}
}

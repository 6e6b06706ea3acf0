package handler

import (
	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/token"
)

type Handler struct {
	config     *config.Config
	translator ut.Translator
	tokens     *token.Service
	employees  *service.EmployeeService
	logger     *logger.Logger

	Mux *chi.Mux
}

// NewHandler 中的 translator 必须来自创建 employees 所用 validator 的同一次 utils.NewValidator 调用
func NewHandler(cfg *config.Config, trans ut.Translator, tokens *token.Service, employees *service.EmployeeService, l *logger.Logger) *Handler {
	return &Handler{
		config:     cfg,
		translator: trans,
		tokens:     tokens,
		employees:  employees,
		logger:     l,

		Mux: chi.NewRouter(),
	}
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.traceID)
	h.Mux.Use(h.accessLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Post("/token", h.IssueToken)

	// 以下 API 必须携带有效的 token
	h.Mux.Route("/api/employees", func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/", h.CreateEmployee)
		r.Get("/", h.ListEmployees)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEmployee)
			r.Put("/", h.UpdateEmployee)
			r.Delete("/", h.DeleteEmployee)
		})
	})
}

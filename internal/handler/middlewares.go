package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
)

const traceIDHeader = "X-Trace-ID"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// traceID 为每个请求生成 trace id，并把带有 trace id 的 logger 放进 context
func (h *Handler) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(traceIDHeader, traceID)

		l := h.logger.With().Str("trace_id", traceID).Logger()
		ctx := l.WithContext(r.Context())
		ctx = context.WithValue(ctx, TraceIDCtxKey, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.FromRequest(r).Info().
			Int("status", rw.StatusCode).
			Str("ip", r.RemoteAddr).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("已处理请求")
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromRequest(r).Error().Str("stack", string(debug.Stack())).Msg("panic")
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// auth 在访问存储之前完成校验，所有校验失败的原因都统一返回同一个错误信息
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, tokenString, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			h.unauthorized(w, r, "Not authenticated")
			return
		}

		claims, err := h.tokens.Validate(tokenString)
		if err != nil {
			logger.FromRequest(r).Debug().Err(err).Msg("无效的令牌")
			h.unauthorized(w, r, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

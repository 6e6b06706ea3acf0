package handler

type ContextKey string

var (
	ClaimsCtxKey  ContextKey = "claims"
	TraceIDCtxKey ContextKey = "traceID"
)

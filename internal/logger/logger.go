// Package logger 对 zerolog 做了一层薄封装，统一各个进程（api、mail、seed）的日志格式。
package logger

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger struct {
	zerolog.Logger
}

// NewLogger 创建输出 JSON 到标准输出的 logger，role 用于区分不同进程的日志
func NewLogger(role string, environment string) *Logger {
	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// 记录函数名而不是 file:line
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Nop 返回一个丢弃所有输出的 logger，测试中使用
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext 取出 context 中的 logger，没有时 zerolog 会返回一个禁用的 logger，因此不会返回 nil
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

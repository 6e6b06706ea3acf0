package handler

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/events"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/repository"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/token"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/utils"
	"github.com/sysu-ecnc-dev/employee-registry/backend/migrations"
)

const testSecret = "test-secret"

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.QueryTimeout = 5
	cfg.JWT.Secret = testSecret
	cfg.JWT.Expiration = 3600
	return cfg
}

// newTestHandler 组装与 cmd/api 相同的依赖，存储使用内存中的 sqlite
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := newTestConfig()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Migrate(db, cfg.Database.Driver))

	validate, trans, err := utils.NewValidator()
	require.NoError(t, err)

	tokens, err := token.NewService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second)
	require.NoError(t, err)

	repo := repository.NewRepository(cfg, db)
	employees := service.NewEmployeeService(repo, events.NopPublisher{}, validate)

	h := NewHandler(cfg, trans, tokens, employees, logger.Nop())
	h.RegisterRoutes()
	return h
}

func newTestClient(t *testing.T) *resty.Client {
	t.Helper()

	srv := httptest.NewServer(newTestHandler(t).Mux)
	t.Cleanup(srv.Close)

	return resty.New().SetBaseURL(srv.URL)
}

func issueToken(t *testing.T, client *resty.Client) string {
	t.Helper()

	var body tokenResponse
	resp, err := client.R().SetResult(&body).Post("/token")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

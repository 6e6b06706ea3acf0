package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
)

type Repository struct {
	cfg     *config.Config
	dbpool  *sql.DB
	builder sq.StatementBuilderType
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	// pgx 使用 $1 形式的占位符，sqlite 使用 ?
	var placeholder sq.PlaceholderFormat = sq.Dollar
	if cfg.Database.Driver == "sqlite3" {
		placeholder = sq.Question
	}

	return &Repository{
		cfg:     cfg,
		dbpool:  dbpool,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

// isUniqueViolation 同时识别 postgres 和 sqlite 的唯一约束冲突
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}

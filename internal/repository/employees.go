package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
)

var employeeColumns = []string{"id", "name", "email", "department", "role", "date_joined"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	employee := &domain.Employee{}
	var department, role sql.NullString

	dst := []any{&employee.ID, &employee.Name, &employee.Email, &department, &role, &employee.DateJoined}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if department.Valid {
		employee.Department = &department.String
	}
	if role.Valid {
		employee.Role = &role.String
	}

	return employee, nil
}

func (r *Repository) getEmployeeBy(ctx context.Context, column string, value any) (*domain.Employee, error) {
	query, args, err := r.builder.Select(employeeColumns...).
		From("employees").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	employee, err := scanEmployee(r.dbpool.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return r.getEmployeeBy(ctx, "id", id)
}

// FindEmployeeByEmail 按邮箱精确匹配（区分大小写）
func (r *Repository) FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return r.getEmployeeBy(ctx, "email", email)
}

func (r *Repository) CreateEmployee(ctx context.Context, employee *domain.Employee) error {
	query, args, err := r.builder.Insert("employees").
		Columns("name", "email", "department", "role", "date_joined").
		Values(employee.Name, employee.Email, employee.Department, employee.Role, employee.DateJoined).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("构建查询失败: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&employee.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// UpdateEmployee 整体替换可修改的字段，id 和 date_joined 不会被修改
func (r *Repository) UpdateEmployee(ctx context.Context, employee *domain.Employee) error {
	query, args, err := r.builder.Update("employees").
		Set("name", employee.Name).
		Set("email", employee.Email).
		Set("department", employee.Department).
		Set("role", employee.Role).
		Where(sq.Eq{"id": employee.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("构建查询失败: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}

	return checkAffected(result)
}

func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	query, args, err := r.builder.Delete("employees").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("构建查询失败: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// ListEmployees 按 id 升序返回，即插入顺序
func (r *Repository) ListEmployees(ctx context.Context, filter domain.EmployeeFilter, offset, limit uint64) ([]*domain.Employee, error) {
	builder := r.builder.Select(employeeColumns...).
		From("employees").
		OrderBy("id ASC").
		Limit(limit).
		Offset(offset)

	if filter.Department != nil {
		builder = builder.Where(sq.Eq{"department": *filter.Department})
	}
	if filter.Role != nil {
		builder = builder.Where(sq.Eq{"role": *filter.Role})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

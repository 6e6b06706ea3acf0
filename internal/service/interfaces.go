package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
)

// EmployeeStore 是持久化层需要提供的最小接口，找不到记录时返回 domain.ErrEmployeeNotFound，
// 邮箱冲突时返回 domain.ErrDuplicateEmail
type EmployeeStore interface {
	FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, employee *domain.Employee) error
	UpdateEmployee(ctx context.Context, employee *domain.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	ListEmployees(ctx context.Context, filter domain.EmployeeFilter, offset, limit uint64) ([]*domain.Employee, error)
}

type EventPublisher interface {
	PublishEmployeeCreated(ctx context.Context, employee *domain.Employee) error
}

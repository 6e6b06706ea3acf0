package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
)

const PageSize = 10

type EmployeeService struct {
	store     EmployeeStore
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

func NewEmployeeService(store EmployeeStore, publisher EventPublisher, validate *validator.Validate) *EmployeeService {
	return &EmployeeService{
		store:     store,
		publisher: publisher,
		validate:  validate,
		now:       time.Now,
	}
}

func (s *EmployeeService) validateInput(input *domain.EmployeeInput) error {
	if err := s.validate.Struct(input); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Create 先按邮箱查重再插入。查重和插入之间存在竞争窗口，由数据库的唯一约束兜底，
// 两种情况都返回 domain.ErrDuplicateEmail
func (s *EmployeeService) Create(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error) {
	log := logger.FromContext(ctx)

	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	_, err := s.store.FindEmployeeByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrEmployeeNotFound):
		return nil, err
	}

	employee := &domain.Employee{
		Name:       input.Name,
		Email:      input.Email,
		Department: input.Department,
		Role:       input.Role,
		DateJoined: domain.NewDate(s.now()),
	}
	if err := s.store.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}

	// 员工已经写入数据库，事件发布失败只记录日志
	if err := s.publisher.PublishEmployeeCreated(ctx, employee); err != nil {
		log.Err(err).Int64("employee_id", employee.ID).Msg("无法发布员工创建事件")
	}

	return employee, nil
}

// List 页码从 1 开始，小于 1 的页码按第 1 页处理
func (s *EmployeeService) List(ctx context.Context, filter domain.EmployeeFilter, page int) ([]*domain.Employee, error) {
	if page < 1 {
		page = 1
	}
	// 偏移量超出 int64 时数据库会拒绝，这样的页码必然没有数据
	if int64(page-1) > math.MaxInt64/PageSize {
		return []*domain.Employee{}, nil
	}
	offset := uint64(page-1) * PageSize

	return s.store.ListEmployees(ctx, filter, offset, PageSize)
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.store.GetEmployeeByID(ctx, id)
}

// Update 整体替换 name、email、department、role，不会再次检查邮箱是否与其他员工重复，
// 冲突由数据库唯一约束拒绝
func (s *EmployeeService) Update(ctx context.Context, id int64, input domain.EmployeeInput) (*domain.Employee, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	employee, err := s.store.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Name = input.Name
	employee.Email = input.Email
	employee.Department = input.Department
	employee.Role = input.Role

	if err := s.store.UpdateEmployee(ctx, employee); err != nil {
		return nil, err
	}

	return employee, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteEmployee(ctx, id)
}

package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/mock"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func newTestEmployeeService(t *testing.T) (*EmployeeService, *mock.MockEmployeeStore, *mock.MockEventPublisher) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := mock.NewMockEmployeeStore(ctrl)
	publisher := mock.NewMockEventPublisher(ctrl)

	svc := NewEmployeeService(store, publisher, validator.New(validator.WithRequiredStructEnabled()))
	svc.now = func() time.Time { return fixedNow }

	return svc, store, publisher
}

func validInput() domain.EmployeeInput {
	return domain.EmployeeInput{
		Name:       "John Doe",
		Email:      "john@example.com",
		Department: strPtr("Engineering"),
		Role:       strPtr("Software Engineer"),
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestEmployeeService_Create_Success(t *testing.T) {
	svc, store, publisher := newTestEmployeeService(t)
	ctx := context.Background()
	input := validInput()

	store.EXPECT().FindEmployeeByEmail(ctx, input.Email).Return(nil, domain.ErrEmployeeNotFound)
	store.EXPECT().CreateEmployee(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e *domain.Employee) error {
		e.ID = 1
		return nil
	})
	publisher.EXPECT().PublishEmployeeCreated(ctx, gomock.Any()).Return(nil)

	employee, err := svc.Create(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, int64(1), employee.ID)
	assert.Equal(t, input.Name, employee.Name)
	assert.Equal(t, input.Email, employee.Email)
	assert.Equal(t, input.Department, employee.Department)
	assert.Equal(t, input.Role, employee.Role)
	assert.Equal(t, "2026-10-15", employee.DateJoined.String())
}

func TestEmployeeService_Create_DuplicateEmail(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().FindEmployeeByEmail(ctx, "john@example.com").Return(&domain.Employee{ID: 3}, nil)

	_, err := svc.Create(ctx, validInput())
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestEmployeeService_Create_DuplicateFromConstraint(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	// 并发创建时预检查通过，但唯一约束拒绝插入
	store.EXPECT().FindEmployeeByEmail(ctx, gomock.Any()).Return(nil, domain.ErrEmployeeNotFound)
	store.EXPECT().CreateEmployee(ctx, gomock.Any()).Return(domain.ErrDuplicateEmail)

	_, err := svc.Create(ctx, validInput())
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestEmployeeService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input domain.EmployeeInput
	}{
		{name: "invalid email", input: domain.EmployeeInput{Name: "John", Email: "not-an-email"}},
		{name: "empty email", input: domain.EmployeeInput{Name: "John"}},
		{name: "empty name", input: domain.EmployeeInput{Email: "john@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 校验失败时不应访问存储
			svc, _, _ := newTestEmployeeService(t)

			_, err := svc.Create(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var vErrs validator.ValidationErrors
			assert.True(t, errors.As(err, &vErrs))
		})
	}
}

func TestEmployeeService_Create_PublishFailureIgnored(t *testing.T) {
	svc, store, publisher := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().FindEmployeeByEmail(ctx, gomock.Any()).Return(nil, domain.ErrEmployeeNotFound)
	store.EXPECT().CreateEmployee(ctx, gomock.Any()).Return(nil)
	publisher.EXPECT().PublishEmployeeCreated(ctx, gomock.Any()).Return(errors.New("broker down"))

	employee, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotNil(t, employee)
}

func TestEmployeeService_Create_StoreError(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	store.EXPECT().FindEmployeeByEmail(ctx, gomock.Any()).Return(nil, storeErr)

	_, err := svc.Create(ctx, validInput())
	assert.ErrorIs(t, err, storeErr)
}

// ── List ─────────────────────────────────────────────────────────────────────

func TestEmployeeService_List_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		wantOffset uint64
	}{
		{name: "first page", page: 1, wantOffset: 0},
		{name: "second page", page: 2, wantOffset: 10},
		{name: "tenth page", page: 10, wantOffset: 90},
		{name: "zero clamps to first page", page: 0, wantOffset: 0},
		{name: "negative clamps to first page", page: -3, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestEmployeeService(t)
			ctx := context.Background()
			filter := domain.EmployeeFilter{Department: strPtr("Engineering")}

			store.EXPECT().ListEmployees(ctx, filter, tt.wantOffset, uint64(PageSize)).Return([]*domain.Employee{}, nil)

			employees, err := svc.List(ctx, filter, tt.page)
			require.NoError(t, err)
			assert.Empty(t, employees)
		})
	}
}

func TestEmployeeService_List_PageBeyondOffsetRange(t *testing.T) {
	// 这些页码对应的偏移量超出 int64，不应访问存储
	for _, page := range []int{math.MaxInt64, 1_000_000_000_000_000_000, 1844674407370955163} {
		t.Run(strconv.Itoa(page), func(t *testing.T) {
			svc, _, _ := newTestEmployeeService(t)

			employees, err := svc.List(context.Background(), domain.EmployeeFilter{}, page)
			require.NoError(t, err)
			assert.NotNil(t, employees)
			assert.Empty(t, employees)
		})
	}
}

func TestEmployeeService_List_LargestValidPage(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()
	page := int(math.MaxInt64/PageSize) + 1

	store.EXPECT().ListEmployees(ctx, domain.EmployeeFilter{}, uint64(math.MaxInt64/PageSize)*PageSize, uint64(PageSize)).Return([]*domain.Employee{}, nil)

	_, err := svc.List(ctx, domain.EmployeeFilter{}, page)
	require.NoError(t, err)
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestEmployeeService_Get(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().GetEmployeeByID(ctx, int64(1)).Return(&domain.Employee{ID: 1, Name: "John"}, nil)
	store.EXPECT().GetEmployeeByID(ctx, int64(999)).Return(nil, domain.ErrEmployeeNotFound)

	employee, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John", employee.Name)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestEmployeeService_Update_Success(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	joined := domain.NewDate(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	existing := &domain.Employee{
		ID:         5,
		Name:       "John Doe",
		Email:      "john@example.com",
		Department: strPtr("Engineering"),
		Role:       strPtr("Software Engineer"),
		DateJoined: joined,
	}
	input := domain.EmployeeInput{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Role:  strPtr("Team Lead"),
	}

	store.EXPECT().GetEmployeeByID(ctx, int64(5)).Return(existing, nil)
	store.EXPECT().UpdateEmployee(ctx, gomock.Any()).Return(nil)

	employee, err := svc.Update(ctx, 5, input)
	require.NoError(t, err)

	assert.Equal(t, int64(5), employee.ID)
	assert.Equal(t, "Jane Doe", employee.Name)
	assert.Equal(t, "jane@example.com", employee.Email)
	assert.Nil(t, employee.Department, "缺省字段应被整体替换为空")
	assert.Equal(t, "Team Lead", *employee.Role)
	assert.Equal(t, joined, employee.DateJoined)
}

func TestEmployeeService_Update_NotFound(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().GetEmployeeByID(ctx, int64(999)).Return(nil, domain.ErrEmployeeNotFound)

	_, err := svc.Update(ctx, 999, validInput())
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

func TestEmployeeService_Update_Invalid(t *testing.T) {
	svc, _, _ := newTestEmployeeService(t)

	_, err := svc.Update(context.Background(), 1, domain.EmployeeInput{Name: "x", Email: "bad"})
	assert.True(t, IsValidationError(err))
}

func TestEmployeeService_Update_EmailTakenByOther(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().GetEmployeeByID(ctx, int64(1)).Return(&domain.Employee{ID: 1}, nil)
	store.EXPECT().UpdateEmployee(ctx, gomock.Any()).Return(domain.ErrDuplicateEmail)

	_, err := svc.Update(ctx, 1, validInput())
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

// ── Delete ───────────────────────────────────────────────────────────────────

func TestEmployeeService_Delete(t *testing.T) {
	svc, store, _ := newTestEmployeeService(t)
	ctx := context.Background()

	store.EXPECT().DeleteEmployee(ctx, int64(1)).Return(nil)
	store.EXPECT().DeleteEmployee(ctx, int64(2)).Return(domain.ErrEmployeeNotFound)

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), domain.ErrEmployeeNotFound)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
)

// EmployeeStore 在 service.EmployeeStore 外加一层 redis 读缓存，只缓存按 id 查询的结果。
// redis 出错时直接退回到底层存储
type EmployeeStore struct {
	service.EmployeeStore

	rdb       *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
}

func NewEmployeeStore(inner service.EmployeeStore, rdb *redis.Client, ttl, opTimeout time.Duration) *EmployeeStore {
	return &EmployeeStore{
		EmployeeStore: inner,
		rdb:           rdb,
		ttl:           ttl,
		opTimeout:     opTimeout,
	}
}

func employeeKey(id int64) string {
	return fmt.Sprintf("employee:%d", id)
}

func (s *EmployeeStore) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	log := logger.FromContext(ctx)
	key := employeeKey(id)

	data, err := s.get(ctx, key)
	switch {
	case err == nil:
		employee := &domain.Employee{}
		if err := json.Unmarshal([]byte(data), employee); err == nil {
			return employee, nil
		}
		log.Warn().Str("key", key).Msg("缓存内容无法解析，回源查询")
	case !errors.Is(err, redis.Nil):
		log.Err(err).Str("key", key).Msg("读取缓存失败")
	}

	employee, err := s.EmployeeStore.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(employee)
	if err != nil {
		return employee, nil
	}
	if err := s.set(ctx, key, string(encoded)); err != nil {
		log.Err(err).Str("key", key).Msg("写入缓存失败")
	}

	return employee, nil
}

func (s *EmployeeStore) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.rdb.Get(ctx, key).Result()
}

func (s *EmployeeStore) set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.rdb.Set(ctx, key, value, s.ttl).Err()
}

func (s *EmployeeStore) UpdateEmployee(ctx context.Context, employee *domain.Employee) error {
	if err := s.EmployeeStore.UpdateEmployee(ctx, employee); err != nil {
		return err
	}
	s.invalidate(ctx, employee.ID)
	return nil
}

func (s *EmployeeStore) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.EmployeeStore.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *EmployeeStore) invalidate(ctx context.Context, id int64) {
	rctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.rdb.Del(rctx, employeeKey(id)).Err(); err != nil {
		logger.FromContext(ctx).Err(err).Int64("employee_id", id).Msg("删除缓存失败")
	}
}

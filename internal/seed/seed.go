package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/utils"
	"golang.org/x/sync/errgroup"
)

// EmployeeCreator 通常是 *service.EmployeeService，保证种子数据同样经过校验和查重
type EmployeeCreator interface {
	Create(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error)
}

type Result struct {
	Created int
	Skipped int // 邮箱已存在
	Failed  int
}

var ErrMissingColumn = errors.New("missing required column")

// ImportCSV 表头必须包含 name 和 email，department 和 role 可选，列的顺序不限
func ImportCSV(ctx context.Context, r io.Reader, creator EmployeeCreator) (Result, error) {
	log := logger.FromContext(ctx)
	result := Result{}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := map[string]int{}
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"name", "email"} {
		if _, ok := columns[required]; !ok {
			return result, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	optional := func(record []string, column string) *string {
		i, ok := columns[column]
		if !ok || i >= len(record) || record[i] == "" {
			return nil
		}
		v := record[i]
		return &v
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		input := domain.EmployeeInput{
			Name:       record[columns["name"]],
			Email:      record[columns["email"]],
			Department: optional(record, "department"),
			Role:       optional(record, "role"),
		}

		if _, err := creator.Create(ctx, input); err != nil {
			switch {
			case errors.Is(err, domain.ErrDuplicateEmail):
				result.Skipped++
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return result, err
			default:
				log.Warn().Err(err).Int("line", line).Msg("无法导入员工")
				result.Failed++
			}
			continue
		}

		result.Created++
	}

	return result, nil
}

// InsertRandomEmployees 并发插入 n 个随机员工，随机生成的邮箱重复时直接跳过
func InsertRandomEmployees(ctx context.Context, creator EmployeeCreator, n, concurrency int, emailDomain string) (Result, error) {
	log := logger.FromContext(ctx)

	var created, skipped, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			input := utils.GenerateRandomEmployeeInput(emailDomain)
			if _, err := creator.Create(ctx, input); err != nil {
				switch {
				case errors.Is(err, domain.ErrDuplicateEmail):
					skipped.Add(1)
					return nil
				case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
					return err
				default:
					log.Warn().Err(err).Str("email", input.Email).Msg("无法插入随机员工")
					failed.Add(1)
					return nil
				}
			}
			created.Add(1)
			return nil
		})
	}

	err := g.Wait()
	return Result{
		Created: int(created.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}, err
}

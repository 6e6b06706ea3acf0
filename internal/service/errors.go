package service

import (
	"errors"
	"fmt"
)

// ValidationError 表示客户端提交的数据不合法，Err 通常是 validator.ValidationErrors
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

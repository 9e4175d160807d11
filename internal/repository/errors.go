package repository

import (
	"errors"
	"fmt"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// notFound 把 gorm 的记录不存在转换为 util.ErrNotFound
func notFound(err error, what string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, util.ErrNotFound)
	}
	return err
}

package util

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEditForbidden 测验已有正式尝试，结构不可再修改
	ErrEditForbidden   = errors.New("quiz cannot be edited: it has been attempted")
	ErrInvalidState    = errors.New("invalid state")
	ErrValidation      = errors.New("validation failed")
	ErrFeatureDisabled = errors.New("feature disabled")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSiteInstalled      = errors.New("site already installed")
)

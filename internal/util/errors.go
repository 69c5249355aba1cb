package util

import (
	"errors"
	"fmt"
)

// 错误类别，具体错误通过 %w 包装类别，控制器用 errors.Is 判断
var (
	ErrValidation       = errors.New("validation error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("service unavailable")
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrPromptNotFound     = fmt.Errorf("%w: prompt not found", ErrNotFound)
	ErrVersionNotFound    = fmt.Errorf("%w: version not found", ErrNotFound)
	ErrUsernameTaken      = fmt.Errorf("%w: a user with that username already exists", ErrConflict)
	ErrAlreadyApproved    = fmt.Errorf("%w: prompt is already approved", ErrConflict)
	ErrAlreadyRejected    = fmt.Errorf("%w: prompt is already rejected", ErrConflict)
	ErrAlreadyAdmin       = fmt.Errorf("%w: user is already an admin", ErrConflict)
	ErrNotPendingDeletion = fmt.Errorf("%w: prompt has no pending deletion request", ErrConflict)
	ErrNotOwner           = fmt.Errorf("%w: you do not have permission to perform this action", ErrPermissionDenied)
	ErrModeratorOnly      = fmt.Errorf("%w: moderator privileges required", ErrPermissionDenied)
	ErrHistoryForbidden   = fmt.Errorf("%w: you do not have permission to view this history", ErrPermissionDenied)
	ErrDeleteRequestOwner = fmt.Errorf("%w: only the owner can request deletion", ErrPermissionDenied)
	ErrForeignVersion     = fmt.Errorf("%w: version does not belong to this prompt", ErrValidation)
	ErrInvalidReview      = fmt.Errorf("%w: invalid action, must be 'approve' or 'reject'", ErrValidation)
	ErrUsernameRequired   = fmt.Errorf("%w: username is required", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: no active account found with the given credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: token is invalid or expired", ErrUnauthorized)
	ErrRevocationDisabled = fmt.Errorf("%w: token revocation requires redis", ErrUnavailable)
)

// Validationf 构造校验类错误
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

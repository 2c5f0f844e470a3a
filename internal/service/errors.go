package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUserNotFound    = errors.New("user not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrFileTooLarge    = errors.New("File too large. Max 10MB")
	ErrAIUnavailable   = errors.New("ai service is not configured")
	ErrStorage         = errors.New("storage failure")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

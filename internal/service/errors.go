package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrSessionNotCompleted = errors.New("session not completed")
	ErrUnknownQuestion     = errors.New("unknown question")
	ErrInvalidAnswer       = errors.New("invalid answer")
	ErrConcurrentUpdate    = errors.New("concurrent update, retry")
)

package auth

import "errors"

var (
	ErrTokenGenerateFail = errors.New("failed to generate token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpToken          = errors.New("expired token")
	ErrEmptyFeederID     = errors.New("feeder id is empty")
	ErrEmptySecret       = errors.New("token secret is empty")
)

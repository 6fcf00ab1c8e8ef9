package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCompanyInactive    = errors.New("company account is not active")
	ErrCompanyExists      = errors.New("company with this email already exists")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUnknownResource    = errors.New("unknown resource")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

package db

import "errors"

// 业务错误：在事务函数里返回即整体回滚，不会留下半截写入
var (
	ErrNotFound          = errors.New("product or loan not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("loan missing or already returned")
	ErrConflict          = errors.New("product has active loans")
	ErrValidation        = errors.New("invalid input")
)

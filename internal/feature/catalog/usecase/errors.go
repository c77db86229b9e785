package usecase

import "errors"

var (
	// ErrImageNotFound は指定IDの画像が存在しないことを表します。
	ErrImageNotFound = errors.New("image not found")
)

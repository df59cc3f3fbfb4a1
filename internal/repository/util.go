package repository

import "errors"

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrSettingsNotFound = errors.New("registry settings not found")

	errStopIteration = errors.New("stop iteration")
)

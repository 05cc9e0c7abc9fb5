package core

import (
	"errors"
)

var (
	ErrNegativeCount    = errors.New("count must be >= 0")
	ErrInvalidWeight    = errors.New("weight must be >= 0")
	ErrInvalidSpeed     = errors.New("speed must not be 0")
	ErrNilTarget        = errors.New("action target is nil")
	ErrAlreadyScheduled = errors.New("action is already scheduled")
	ErrNilResource      = errors.New("required resource is nil")
	ErrNotInitialized   = errors.New("system used before initialization")
	ErrUnknownShader    = errors.New("unknown shader program")
	ErrTextureNotLoaded = errors.New("texture not loaded")
	ErrUnknown          = errors.New("unknown")
)

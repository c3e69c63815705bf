package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrInvalidScoring marks a rejected scoring.* threshold. It matches ErrInvalidConfig.
	ErrInvalidScoring = fmt.Errorf("%w: scoring", ErrInvalidConfig)
)

package utils

import "errors"

const (
	DefaultConfigPath = "config.toml"

	EtherDecimals = 18

	// OperatorIndex is the wallet index used for owner-only transactions
	OperatorIndex = 0
)

var (
	Seedphrase string

	// ErrIntegerOverflow is returned instead of silently truncating a value
	ErrIntegerOverflow = errors.New("integer overflow")
	ErrNegativeValue   = errors.New("negative value")
	ErrInvalidSeed     = errors.New("invalid seed phrase")
	ErrInvalidChildKey = errors.New("invalid derived key")
)

package network

import "errors"

const (
	lucky7NumberTicketValueIndex = 2

	// maxLucky7Numbers bounds the count reported by the contract before
	// anything is allocated for it
	maxLucky7Numbers = 1024
)

var (
	ErrEmptyResponse   = errors.New("empty response")
	ErrInvalidResponse = errors.New("invalid result")

	// ErrFeatureDisabled is returned when the Lucky7 setting circuit breaker
	// is engaged and paid actions are rejected by the contract
	ErrFeatureDisabled     = errors.New("ticket sales are disabled while lucky 7 numbers are being set")
	ErrTransactionReverted = errors.New("transaction reverted")

	errInvalidContractAddress = errors.New("invalid contract address")
)

package listener

import "errors"

var (
	errInvalidContractAddress = errors.New("invalid contract address")
	errUnknownEvent           = errors.New("unknown event")
)

package listener

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type newMuReceived struct {
	Owner       common.Address
	MuParameter string
}

type newIReceived struct {
	Owner      common.Address
	IParameter string
}

type newTicketReceived struct {
	Owner     common.Address
	NewTicket *big.Int
}

type generatedParametersReceived struct {
	Owner       common.Address
	MuParameter string
	IParameter  string
}

type newLucky7Ticket struct {
	Owner       common.Address
	TicketValue *big.Int
	Difference  *big.Int
}

type balanceUpdated struct {
	Balance *big.Int
}

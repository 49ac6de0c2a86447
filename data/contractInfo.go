package data

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// UserParameters mirrors the userValues struct the contract keeps per address
type UserParameters struct {
	MuParameter    string
	IParameter     string
	TicketValue    uint64
	MuReady        bool
	IReady         bool
	UserPaidTicket bool
}

// Lucky7Ticket is a sold ticket ranked against one of the lucky 7 numbers
type Lucky7Ticket struct {
	Ticket     uint64
	Owner      common.Address
	Difference uint64
}

// PendingWithdrawal is the prize owed to an address for a finished game
type PendingWithdrawal struct {
	GameID uint64
	Amount *big.Int
}

// GameSnapshot is a point-in-time read of the game as seen by Owner
type GameSnapshot struct {
	Owner               common.Address
	Lucky7Numbers       []uint64
	Lucky7Tickets       []Lucky7Ticket
	GenerateTicketPrice *big.Int
	SellTicketPrice     *big.Int
	UserValues          UserParameters
	CurrentPrize        PendingWithdrawal
	PrizeGameID         uint64
	ReadAt              time.Time
}

// Connection holds what is known about the provider and the active account
type Connection struct {
	ChainID     *big.Int
	BlockNumber uint64
	Account     common.Address
	Balance     *big.Int
	UpdatedAt   time.Time
}

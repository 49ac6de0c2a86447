package data

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ParameterType tells which user parameter a ParameterReceived record carries
type ParameterType string

const (
	ParameterMu     ParameterType = "mu"
	ParameterI      ParameterType = "i"
	ParameterTicket ParameterType = "ticket"
)

// RequestKind is the contract action a user asked for
type RequestKind int

const (
	RequestGenerate RequestKind = iota
	RequestSellRandom
	RequestSellGenerated
)

func (k RequestKind) String() string {
	switch k {
	case RequestGenerate:
		return "generate"
	case RequestSellRandom:
		return "sell-random"
	case RequestSellGenerated:
		return "sell-generated"
	}

	return "unknown"
}

// Paid reports whether the request ends with a ticket delivery
func (k RequestKind) Paid() bool {
	return k == RequestSellRandom || k == RequestSellGenerated
}

// EventMeta locates the log a record was decoded from
type EventMeta struct {
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}

// Record is a contract event relayed to the state sink
type Record interface {
	Meta() EventMeta
}

// ParameterReceived carries NewMuReceived, NewIReceived and NewTicketReceived
type ParameterReceived struct {
	EventMeta
	Owner common.Address
	Type  ParameterType
	Value string
}

type GeneratedParametersReceived struct {
	EventMeta
	Owner       common.Address
	MuParameter string
	IParameter  string
}

type NewLucky7Ticket struct {
	EventMeta
	Lucky7Ticket
}

type BalanceUpdated struct {
	EventMeta
	Balance *big.Int
}

func (m EventMeta) Meta() EventMeta {
	return m
}

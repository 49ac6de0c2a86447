package network

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Lucky7StoreABI is the subset of the Lucky7Store interface the bot talks to
const Lucky7StoreABI = `[
{"type":"function","name":"numberOfLucky7Numbers","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"lucky7NumbersArray","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"muParameter","type":"string"},{"name":"iParameter","type":"string"},{"name":"ticketValue","type":"uint256"}]},
{"type":"function","name":"lucky7TicketValue","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"lucky7TicketOwner","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"lucky7TicketDifference","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"generateTicketPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"sellTicketPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"settingLucky7Numbers","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"userValues","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"muParameter","type":"string"},{"name":"iParameter","type":"string"},{"name":"ticketValue","type":"uint256"},{"name":"muReady","type":"bool"},{"name":"iReady","type":"bool"},{"name":"userPaidTicket","type":"bool"}]},
{"type":"function","name":"pendingWithdrawals","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"gameID","type":"uint256"},{"name":"amount","type":"uint256"}]},
{"type":"function","name":"sellRandomTicket","stateMutability":"payable","inputs":[],"outputs":[]},
{"type":"function","name":"generateRandomTicket","stateMutability":"payable","inputs":[],"outputs":[]},
{"type":"function","name":"sellGeneratedTicket","stateMutability":"payable","inputs":[],"outputs":[]},
{"type":"function","name":"toggleLucky7Setting","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"event","name":"NewMuReceived","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"muParameter","type":"string"}]},
{"type":"event","name":"NewIReceived","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"iParameter","type":"string"}]},
{"type":"event","name":"NewTicketReceived","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"newTicket","type":"uint256"}]},
{"type":"event","name":"GeneratedParametersReceived","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"muParameter","type":"string"},{"indexed":false,"name":"iParameter","type":"string"}]},
{"type":"event","name":"NewLucky7Ticket","anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"ticketValue","type":"uint256"},{"indexed":false,"name":"difference","type":"uint256"}]},
{"type":"event","name":"BalanceUpdated","anonymous":false,"inputs":[{"indexed":false,"name":"balance","type":"uint256"}]}
]`

// Contract method and event names
const (
	FuncNumberOfLucky7Numbers  = "numberOfLucky7Numbers"
	FuncLucky7NumbersArray     = "lucky7NumbersArray"
	FuncLucky7TicketValue      = "lucky7TicketValue"
	FuncLucky7TicketOwner      = "lucky7TicketOwner"
	FuncLucky7TicketDifference = "lucky7TicketDifference"
	FuncGenerateTicketPrice    = "generateTicketPrice"
	FuncSellTicketPrice        = "sellTicketPrice"
	FuncSettingLucky7Numbers   = "settingLucky7Numbers"
	FuncUserValues             = "userValues"
	FuncPendingWithdrawals     = "pendingWithdrawals"
	FuncSellRandomTicket       = "sellRandomTicket"
	FuncGenerateRandomTicket   = "generateRandomTicket"
	FuncSellGeneratedTicket    = "sellGeneratedTicket"
	FuncToggleLucky7Setting    = "toggleLucky7Setting"

	EventNewMuReceived               = "NewMuReceived"
	EventNewIReceived                = "NewIReceived"
	EventNewTicketReceived           = "NewTicketReceived"
	EventGeneratedParametersReceived = "GeneratedParametersReceived"
	EventNewLucky7Ticket             = "NewLucky7Ticket"
	EventBalanceUpdated              = "BalanceUpdated"
)

// Lucky7ABI is the parsed Lucky7StoreABI
var Lucky7ABI = mustParseABI(Lucky7StoreABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}

	return parsed
}

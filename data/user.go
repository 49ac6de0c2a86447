package data

import "github.com/ethereum/go-ethereum/common"

type User struct {
	ID     int64
	Wallet common.Address
}

type Telegram struct {
	ID        int64
	UserName  string
	FirstName string
	LastName  string
}

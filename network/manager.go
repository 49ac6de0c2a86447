package network

import (
	"context"
	"math/big"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
)

var log = logger.GetOrCreate("network")

// Backend is everything the manager needs from an Ethereum node.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// NetworkManager - holds the required fields of a network manager
type NetworkManager struct {
	cfg *data.AppConfig

	backend  Backend
	address  common.Address
	contract *bind.BoundContract
	chainID  *big.Int
}

// NewNetworkManager - creates a new NetworkManager object bound to the
// configured Lucky7Store contract
func NewNetworkManager(ctx context.Context, cfg *data.AppConfig, backend Backend) (*NetworkManager, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		log.Error("can not bind contract", "address", cfg.ContractAddress, "error", errInvalidContractAddress)
		return nil, errInvalidContractAddress
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		log.Error("can not get chain id from node", "error", err)
		return nil, err
	}

	address := common.HexToAddress(cfg.ContractAddress)
	networkManager := &NetworkManager{
		cfg:      cfg,
		backend:  backend,
		address:  address,
		contract: bind.NewBoundContract(address, Lucky7ABI, backend, backend, backend),
		chainID:  chainID,
	}

	return networkManager, nil
}

// ContractAddress returns the address of the bound Lucky7Store
func (nm *NetworkManager) ContractAddress() common.Address {
	return nm.address
}

func (nm *NetworkManager) ChainID() *big.Int {
	return new(big.Int).Set(nm.chainID)
}

func (nm *NetworkManager) call(ctx context.Context, function string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := nm.contract.Call(&bind.CallOpts{Context: ctx}, &out, function, args...)
	if err != nil {
		log.Debug("contract call failed", "function", function, "args", args, "error", err)
		return nil, errors.Wrapf(err, "calling %s", function)
	}

	if len(out) == 0 {
		return nil, errors.Wrap(ErrEmptyResponse, function)
	}

	return out, nil
}

func (nm *NetworkManager) getBigInt(ctx context.Context, function string, args ...interface{}) (*big.Int, error) {
	out, err := nm.call(ctx, function, args...)
	if err != nil {
		return nil, err
	}

	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Wrap(ErrInvalidResponse, function)
	}

	return value, nil
}

func (nm *NetworkManager) getUint64(ctx context.Context, function string, args ...interface{}) (uint64, error) {
	value, err := nm.getBigInt(ctx, function, args...)
	if err != nil {
		return 0, err
	}

	res, err := utils.BigToUint64(value)
	if err != nil {
		return 0, errors.Wrap(err, function)
	}

	return res, nil
}

func (nm *NetworkManager) GetNumberOfLucky7Numbers(ctx context.Context) (uint64, error) {
	return nm.getUint64(ctx, FuncNumberOfLucky7Numbers)
}

// GetLucky7Number returns the ticket value of the i-th lucky 7 number
func (nm *NetworkManager) GetLucky7Number(ctx context.Context, i uint64) (uint64, error) {
	out, err := nm.call(ctx, FuncLucky7NumbersArray, new(big.Int).SetUint64(i))
	if err != nil {
		return 0, err
	}

	if len(out) <= lucky7NumberTicketValueIndex {
		return 0, errors.Wrap(ErrInvalidResponse, FuncLucky7NumbersArray)
	}

	value, ok := out[lucky7NumberTicketValueIndex].(*big.Int)
	if !ok {
		return 0, errors.Wrap(ErrInvalidResponse, FuncLucky7NumbersArray)
	}

	res, err := utils.BigToUint64(value)
	if err != nil {
		return 0, errors.Wrap(err, FuncLucky7NumbersArray)
	}

	return res, nil
}

func (nm *NetworkManager) GetLucky7TicketValue(ctx context.Context, i uint64) (uint64, error) {
	return nm.getUint64(ctx, FuncLucky7TicketValue, new(big.Int).SetUint64(i))
}

func (nm *NetworkManager) GetLucky7TicketOwner(ctx context.Context, i uint64) (common.Address, error) {
	out, err := nm.call(ctx, FuncLucky7TicketOwner, new(big.Int).SetUint64(i))
	if err != nil {
		return common.Address{}, err
	}

	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Wrap(ErrInvalidResponse, FuncLucky7TicketOwner)
	}

	return owner, nil
}

func (nm *NetworkManager) GetLucky7TicketDifference(ctx context.Context, i uint64) (uint64, error) {
	return nm.getUint64(ctx, FuncLucky7TicketDifference, new(big.Int).SetUint64(i))
}

// GetGenerateTicketPrice returns the wei needed to generate parameters
func (nm *NetworkManager) GetGenerateTicketPrice(ctx context.Context) (*big.Int, error) {
	return nm.getBigInt(ctx, FuncGenerateTicketPrice)
}

// GetSellTicketPrice returns the wei needed to buy a ticket
func (nm *NetworkManager) GetSellTicketPrice(ctx context.Context) (*big.Int, error) {
	return nm.getBigInt(ctx, FuncSellTicketPrice)
}

// IsSettingLucky7Numbers reports whether the circuit breaker is engaged
func (nm *NetworkManager) IsSettingLucky7Numbers(ctx context.Context) (bool, error) {
	out, err := nm.call(ctx, FuncSettingLucky7Numbers)
	if err != nil {
		return false, err
	}

	setting, ok := out[0].(bool)
	if !ok {
		return false, errors.Wrap(ErrInvalidResponse, FuncSettingLucky7Numbers)
	}

	return setting, nil
}

// GetUserValues reads the parameters the contract holds for owner
func (nm *NetworkManager) GetUserValues(ctx context.Context, owner common.Address) (data.UserParameters, error) {
	values := data.UserParameters{}
	out, err := nm.call(ctx, FuncUserValues, owner)
	if err != nil {
		return values, err
	}

	if len(out) != 6 {
		return values, errors.Wrapf(ErrInvalidResponse, "%s returned %d values", FuncUserValues, len(out))
	}

	var ok [6]bool
	var ticket *big.Int
	values.MuParameter, ok[0] = out[0].(string)
	values.IParameter, ok[1] = out[1].(string)
	ticket, ok[2] = out[2].(*big.Int)
	values.MuReady, ok[3] = out[3].(bool)
	values.IReady, ok[4] = out[4].(bool)
	values.UserPaidTicket, ok[5] = out[5].(bool)
	for _, valid := range ok {
		if !valid {
			return data.UserParameters{}, errors.Wrap(ErrInvalidResponse, FuncUserValues)
		}
	}

	values.TicketValue, err = utils.BigToUint64(ticket)
	if err != nil {
		return data.UserParameters{}, errors.Wrap(err, FuncUserValues)
	}

	return values, nil
}

// GetPendingWithdrawal reads the prize owed to owner
func (nm *NetworkManager) GetPendingWithdrawal(ctx context.Context, owner common.Address) (data.PendingWithdrawal, error) {
	prize := data.PendingWithdrawal{}
	out, err := nm.call(ctx, FuncPendingWithdrawals, owner)
	if err != nil {
		return prize, err
	}

	if len(out) != 2 {
		return prize, errors.Wrapf(ErrInvalidResponse, "%s returned %d values", FuncPendingWithdrawals, len(out))
	}

	gameID, ok := out[0].(*big.Int)
	if !ok {
		return prize, errors.Wrap(ErrInvalidResponse, FuncPendingWithdrawals)
	}
	amount, ok := out[1].(*big.Int)
	if !ok {
		return prize, errors.Wrap(ErrInvalidResponse, FuncPendingWithdrawals)
	}

	prize.GameID, err = utils.BigToUint64(gameID)
	if err != nil {
		return data.PendingWithdrawal{}, errors.Wrap(err, FuncPendingWithdrawals)
	}
	prize.Amount = amount

	return prize, nil
}

func (nm *NetworkManager) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := nm.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		log.Error("getBalance - BalanceAt", "address", address.Hex(), "error", err)
		return nil, err
	}

	return balance, nil
}

// GetConnection reads the provider state for account
func (nm *NetworkManager) GetConnection(ctx context.Context, account common.Address) (*data.Connection, error) {
	blockNumber, err := nm.backend.BlockNumber(ctx)
	if err != nil {
		log.Error("getConnection - BlockNumber", "error", err)
		return nil, err
	}

	balance, err := nm.GetBalance(ctx, account)
	if err != nil {
		return nil, err
	}

	return &data.Connection{
		ChainID:     nm.ChainID(),
		BlockNumber: blockNumber,
		Account:     account,
		Balance:     balance,
		UpdatedAt:   time.Now(),
	}, nil
}

// WaitMined blocks until tx is included and fails with ErrTransactionReverted
// if the contract rejected it
func (nm *NetworkManager) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, nm.cfg.Network.TxTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, nm.backend, tx)
	if err != nil {
		log.Warn("waitMined", "hash", tx.Hash().Hex(), "error", err)
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, nm.classifyTxError(ctx, errors.Wrap(ErrTransactionReverted, tx.Hash().Hex()))
	}

	return receipt, nil
}

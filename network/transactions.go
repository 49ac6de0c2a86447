package network

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
)

func (nm *NetworkManager) newTransactor(ctx context.Context, privateKey *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, nm.chainID)
	if err != nil {
		log.Error("unable to create transactor", "error", err)
		return nil, err
	}

	opts.Context = ctx
	opts.GasLimit = nm.cfg.Network.GasLimit

	return opts, nil
}

// RequestTicket sends the payable action behind kind, paying the price the
// contract currently asks for
func (nm *NetworkManager) RequestTicket(ctx context.Context, privateKey *ecdsa.PrivateKey, kind data.RequestKind) (*types.Transaction, error) {
	switch kind {
	case data.RequestGenerate:
		return nm.GenerateRandomTicket(ctx, privateKey)
	case data.RequestSellRandom:
		return nm.SellRandomTicket(ctx, privateKey)
	case data.RequestSellGenerated:
		return nm.SellGeneratedTicket(ctx, privateKey)
	}

	return nil, errors.Errorf("unknown request kind %d", kind)
}

func (nm *NetworkManager) SellRandomTicket(ctx context.Context, privateKey *ecdsa.PrivateKey) (*types.Transaction, error) {
	return nm.sendPaid(ctx, privateKey, FuncSellRandomTicket, nm.GetSellTicketPrice)
}

func (nm *NetworkManager) GenerateRandomTicket(ctx context.Context, privateKey *ecdsa.PrivateKey) (*types.Transaction, error) {
	return nm.sendPaid(ctx, privateKey, FuncGenerateRandomTicket, nm.GetGenerateTicketPrice)
}

func (nm *NetworkManager) SellGeneratedTicket(ctx context.Context, privateKey *ecdsa.PrivateKey) (*types.Transaction, error) {
	return nm.sendPaid(ctx, privateKey, FuncSellGeneratedTicket, nm.GetSellTicketPrice)
}

// ToggleLucky7Setting flips the circuit breaker. Only the contract owner may call it.
func (nm *NetworkManager) ToggleLucky7Setting(ctx context.Context, privateKey *ecdsa.PrivateKey) (*types.Transaction, error) {
	opts, err := nm.newTransactor(ctx, privateKey)
	if err != nil {
		return nil, err
	}

	tx, err := nm.contract.Transact(opts, FuncToggleLucky7Setting)
	if err != nil {
		log.Error("toggleLucky7Setting", "error", err)
		return nil, errors.Wrap(err, FuncToggleLucky7Setting)
	}

	log.Info("circuit breaker toggled", "hash", tx.Hash().Hex())

	return tx, nil
}

func (nm *NetworkManager) sendPaid(ctx context.Context, privateKey *ecdsa.PrivateKey, function string,
	price func(context.Context) (*big.Int, error)) (*types.Transaction, error) {
	setting, err := nm.IsSettingLucky7Numbers(ctx)
	if err != nil {
		return nil, err
	}
	if setting {
		return nil, errors.Wrap(ErrFeatureDisabled, function)
	}

	value, err := price(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := nm.newTransactor(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	opts.Value = value

	tx, err := nm.contract.Transact(opts, function)
	if err != nil {
		log.Warn("can not send transaction", "function", function, "from", opts.From.Hex(),
			"value", utils.FormatEther(value), "error", err)
		return nil, nm.classifyTxError(ctx, errors.Wrap(err, function))
	}

	log.Debug("transaction sent", "function", function, "from", opts.From.Hex(), "hash", tx.Hash().Hex())

	return tx, nil
}

// classifyTxError turns a rejection caused by the circuit breaker into ErrFeatureDisabled
func (nm *NetworkManager) classifyTxError(ctx context.Context, txErr error) error {
	setting, err := nm.IsSettingLucky7Numbers(ctx)
	if err != nil || !setting {
		return txErr
	}

	return errors.Wrap(ErrFeatureDisabled, txErr.Error())
}

package network

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/matiasbn/Lucky7Bot/data"
)

var errNodeUnavailable = errors.New("node unavailable")

// fakeBackend answers contract calls from in-memory state, ABI-encoding the
// results so that the real BoundContract decoding path is exercised
type fakeBackend struct {
	Backend

	mut           sync.Mutex
	chainID       *big.Int
	numbers       []uint64
	tickets       []data.Lucky7Ticket
	generatePrice *big.Int
	sellPrice     *big.Int
	users         map[common.Address]data.UserParameters
	prizes        map[common.Address]data.PendingWithdrawal
	setting       []bool
	overrides     map[string]*big.Int
	failMethod    string
	estimateErr   error
	receiptStatus uint64
	balance       *big.Int
	blockNumber   uint64

	calls map[string]int
	sent  []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chainID:       big.NewInt(1337),
		generatePrice: big.NewInt(20000000000000000),
		sellPrice:     big.NewInt(20000000000000000),
		users:         make(map[common.Address]data.UserParameters),
		prizes:        make(map[common.Address]data.PendingWithdrawal),
		overrides:     make(map[string]*big.Int),
		receiptStatus: types.ReceiptStatusSuccessful,
		balance:       big.NewInt(0),
		calls:         make(map[string]int),
	}
}

func (f *fakeBackend) callCount(method string) int {
	f.mut.Lock()
	defer f.mut.Unlock()

	return f.calls[method]
}

// nextSetting pops the circuit breaker state; the last value sticks
func (f *fakeBackend) nextSetting() bool {
	if len(f.setting) == 0 {
		return false
	}
	value := f.setting[0]
	if len(f.setting) > 1 {
		f.setting = f.setting[1:]
	}

	return value
}

func (f *fakeBackend) bigOr(method string, value uint64) *big.Int {
	if override, ok := f.overrides[method]; ok {
		return override
	}

	return new(big.Int).SetUint64(value)
}

func (f *fakeBackend) ChainID(_ context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeBackend) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingCodeAt(_ context.Context, _ common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := Lucky7ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	f.mut.Lock()
	defer f.mut.Unlock()

	f.calls[method.Name]++
	if method.Name == f.failMethod {
		return nil, errNodeUnavailable
	}

	var out []interface{}
	switch method.Name {
	case FuncNumberOfLucky7Numbers:
		out = []interface{}{f.bigOr(method.Name, uint64(len(f.numbers)))}
	case FuncLucky7NumbersArray:
		i := args[0].(*big.Int).Uint64()
		out = []interface{}{"mu", "i", f.bigOr(method.Name, f.numbers[i])}
	case FuncLucky7TicketValue:
		i := args[0].(*big.Int).Uint64()
		out = []interface{}{f.bigOr(method.Name, f.tickets[i].Ticket)}
	case FuncLucky7TicketOwner:
		i := args[0].(*big.Int).Uint64()
		out = []interface{}{f.tickets[i].Owner}
	case FuncLucky7TicketDifference:
		i := args[0].(*big.Int).Uint64()
		out = []interface{}{f.bigOr(method.Name, f.tickets[i].Difference)}
	case FuncGenerateTicketPrice:
		out = []interface{}{f.generatePrice}
	case FuncSellTicketPrice:
		out = []interface{}{f.sellPrice}
	case FuncSettingLucky7Numbers:
		out = []interface{}{f.nextSetting()}
	case FuncUserValues:
		values := f.users[args[0].(common.Address)]
		out = []interface{}{values.MuParameter, values.IParameter, f.bigOr(method.Name, values.TicketValue),
			values.MuReady, values.IReady, values.UserPaidTicket}
	case FuncPendingWithdrawals:
		prize := f.prizes[args[0].(common.Address)]
		amount := prize.Amount
		if amount == nil {
			amount = big.NewInt(0)
		}
		out = []interface{}{new(big.Int).SetUint64(prize.GameID), amount}
	default:
		return nil, errors.New("unexpected call to " + method.Name)
	}

	return method.Outputs.Pack(out...)
}

func (f *fakeBackend) HeaderByNumber(_ context.Context, _ *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(int64(f.blockNumber))}, nil
}

func (f *fakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	f.mut.Lock()
	defer f.mut.Unlock()

	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}

	return 210000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mut.Lock()
	defer f.mut.Unlock()

	f.sent = append(f.sent, tx)

	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{TxHash: hash, Status: f.receiptStatus}, nil
}

func (f *fakeBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) BlockNumber(_ context.Context) (uint64, error) {
	return f.blockNumber, nil
}

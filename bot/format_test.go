package bot

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kevinms/leakybucket-go"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/network"
	"github.com/matiasbn/Lucky7Bot/store"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func names(address common.Address) string {
	if address == alice {
		return "@alice"
	}

	return "someone"
}

func TestFormatGameInfo(t *testing.T) {
	require.Empty(t, formatGameInfo(nil, nil, nil, names))

	snapshot := &data.GameSnapshot{
		Lucky7Numbers:       []uint64{7777, 1234},
		GenerateTicketPrice: big.NewInt(10000000000000000),
		SellTicketPrice:     big.NewInt(20000000000000000),
		ReadAt:              time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	tickets := []data.Lucky7Ticket{
		{Ticket: 7770, Owner: alice, Difference: 7},
		{},
	}

	text := formatGameInfo(snapshot, tickets, big.NewInt(50000000000000000), names)
	assert.Contains(t, text, "`Generate price:` 0.01 ETH")
	assert.Contains(t, text, "`Ticket price:` 0.02 ETH")
	assert.Contains(t, text, "`Prize pool:` 0.05 ETH")
	assert.Contains(t, text, "`1.` 7777 - ticket 7770 by @alice (±7)")
	assert.Contains(t, text, "`2.` 1234\n")
	assert.Contains(t, text, "Wed, 01 Jan 2020")
}

func TestFormatGameInfoWithoutNumbers(t *testing.T) {
	text := formatGameInfo(&data.GameSnapshot{}, nil, nil, names)
	assert.Contains(t, text, "No lucky 7 numbers yet")
	assert.NotContains(t, text, "Prize pool")
}

func TestFormatUserValues(t *testing.T) {
	text := formatUserValues(store.UserState{}, nil)
	assert.Contains(t, text, "`mu:` - ⌛️")
	assert.Contains(t, text, "`Ticket:` -")
	assert.Contains(t, text, "no parameters yet")

	state := store.UserState{
		Values: data.UserParameters{
			MuParameter:    "0x1234567890abcdef1234",
			IParameter:     "0xi",
			TicketValue:    7770,
			MuReady:        true,
			UserPaidTicket: true,
		},
		Phase:    store.TicketPending,
		TimedOut: true,
	}
	prize := &data.PendingWithdrawal{GameID: 3, Amount: big.NewInt(1000000000000000000)}
	text = formatUserValues(state, prize)
	assert.Contains(t, text, "`mu:` 0x123456...1234 ✅")
	assert.Contains(t, text, "`i:` 0xi ⌛️")
	assert.Contains(t, text, "`Ticket:` 7770")
	assert.Contains(t, text, "waiting for the ticket (late)")
	assert.Contains(t, text, "`Prize of game #3:` 1 ETH")
}

func TestFormatRequestError(t *testing.T) {
	disabled := errors.Wrap(network.ErrFeatureDisabled, "sellRandomTicket")
	assert.True(t, strings.HasPrefix(formatRequestError(data.RequestSellRandom, disabled), "⏸"))

	reverted := errors.Wrap(network.ErrTransactionReverted, "0x01")
	assert.Contains(t, formatRequestError(data.RequestGenerate, reverted), "rejected your generate request")

	generic := formatRequestError(data.RequestGenerate, errors.New("insufficient funds"))
	assert.Equal(t, "⛔️ Error sending transaction: insufficient funds", generic)
}

func TestFormatChange(t *testing.T) {
	values := data.UserParameters{MuParameter: "0xmu", IParameter: "0xi", TicketValue: 42}

	tests := []struct {
		change   store.Change
		expected string
		ok       bool
	}{
		{
			change:   store.Change{Type: store.ChangeParameter, Record: data.ParameterReceived{Type: data.ParameterMu, Value: "0xmu"}},
			expected: "📩 `mu` received: 0xmu",
			ok:       true,
		},
		{
			change:   store.Change{Type: store.ChangeParameters, User: store.UserState{Values: values}},
			expected: "📩 New parameters\n`mu:` 0xmu\n`i:` 0xi",
			ok:       true,
		},
		{
			change:   store.Change{Type: store.ChangeTicket, User: store.UserState{Values: values}},
			expected: "🎫 Your new ticket: `42`",
			ok:       true,
		},
		{
			change:   store.Change{Type: store.ChangeRequestFailed, User: store.UserState{Kind: data.RequestSellGenerated}},
			expected: "❌ Your sell-generated request failed",
			ok:       true,
		},
		{change: store.Change{Type: store.ChangeBalance}},
		{change: store.Change{Type: store.ChangeParameter}},
	}

	for _, tt := range tests {
		text, ok := formatChange(tt.change)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.expected, text)
	}

	text, ok := formatChange(store.Change{Type: store.ChangeTimeout, User: store.UserState{Kind: data.RequestSellRandom}})
	require.True(t, ok)
	assert.Contains(t, text, "sell-random request is taking longer")
}

func TestFormatTxStatus(t *testing.T) {
	hash := common.HexToHash("0x01")
	text := formatTxStatus("`Generate` - Status: ", statusSuccess, "https://etherscan.io/tx/", hash)
	assert.Equal(t, "`Generate` - Status: [success ✅](https://etherscan.io/tx/"+hash.Hex()+")", text)
}

func TestFormatLucky7Ticket(t *testing.T) {
	text := formatLucky7Ticket(data.Lucky7Ticket{Ticket: 1200, Owner: bob, Difference: 34}, names(bob))
	assert.Equal(t, "🍀 New lucky 7 ticket `1200` by someone (difference 34)", text)
}

func TestFormatStats(t *testing.T) {
	registry := metrics.NewRegistry()
	metrics.GetOrRegisterCounter("listener/delivered", registry).Inc(5)
	metrics.GetOrRegisterCounter("listener/duplicates", registry).Inc(1)
	metrics.GetOrRegisterTimer("network/snapshot", registry).Update(time.Millisecond * 20)

	text := formatStats(registry)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "`listener/delivered:` 5", lines[2])
	assert.Equal(t, "`listener/duplicates:` 1", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "`network/snapshot:` 1 reads, mean 20ms"))
}

func TestRequestTitle(t *testing.T) {
	assert.Equal(t, "Generate", requestTitle(data.RequestGenerate))
	assert.Equal(t, "Sell random ticket", requestTitle(data.RequestSellRandom))
	assert.Equal(t, "Sell generated ticket", requestTitle(data.RequestSellGenerated))
}

func TestAllowPaidThrottles(t *testing.T) {
	b := &Bot{limiter: leakybucket.NewCollector(1.0/60, 2, true)}
	user := &data.User{ID: 7}

	assert.True(t, b.allowPaid(user))
	assert.True(t, b.allowPaid(user))
	assert.False(t, b.allowPaid(user))
	assert.True(t, b.allowPaid(&data.User{ID: 8}))
}

func TestNamesAreSafeMarkdown(t *testing.T) {
	b := &Bot{
		users: map[int64]*data.User{
			7: {ID: 7, Wallet: alice},
			8: {ID: 8, Wallet: bob},
		},
		tgUsers: map[int64]*data.Telegram{
			7: {ID: 7, FirstName: "*Ana*", LastName: "`the_best"},
			8: {ID: 8, UserName: "bob_*"},
		},
	}

	assert.Equal(t, "[Ana thebest](tg://user?id=7)", b.nameOf(alice))
	assert.Equal(t, "@bob\\_\\*", b.nameOf(bob))

	text := formatLucky7Ticket(data.Lucky7Ticket{Ticket: 1200, Owner: bob, Difference: 34}, b.nameOf(bob))
	assert.Equal(t, "🍀 New lucky 7 ticket `1200` by @bob\\_\\* (difference 34)", text)

	text, ok := formatChange(store.Change{Type: store.ChangeParameter, Record: data.ParameterReceived{Type: data.ParameterMu, Value: "0x*mu_"}})
	require.True(t, ok)
	assert.Equal(t, "📩 `mu` received: 0x\\*mu\\_", text)
}

package bot

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/network"
	"github.com/matiasbn/Lucky7Bot/store"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
)

const (
	statusPending = "pending ⌛️"
	statusSuccess = "success ✅"
	statusFailed  = "failed ❌"
	statusUnknown = "unknown ❔"
)

func formatGameInfo(snapshot *data.GameSnapshot, tickets []data.Lucky7Ticket, balance *big.Int, nameOf func(common.Address) string) string {
	if snapshot == nil {
		return ""
	}

	text := "`Game Info`\n\n"
	text += fmt.Sprintf("`Generate price:` %s ETH\n", utils.FormatEther(snapshot.GenerateTicketPrice))
	text += fmt.Sprintf("`Ticket price:` %s ETH\n", utils.FormatEther(snapshot.SellTicketPrice))
	if balance != nil {
		text += fmt.Sprintf("`Prize pool:` %s ETH\n", utils.FormatEther(balance))
	}
	if len(snapshot.Lucky7Numbers) == 0 {
		text += "\nNo lucky 7 numbers yet\n"
	} else {
		text += "\n`Lucky 7 numbers:`\n"
		for i, number := range snapshot.Lucky7Numbers {
			line := fmt.Sprintf("`%d.` %d", i+1, number)
			if i < len(tickets) && tickets[i].Ticket != 0 {
				line += fmt.Sprintf(" - ticket %d by %s (±%d)", tickets[i].Ticket, nameOf(tickets[i].Owner), tickets[i].Difference)
			}
			text += line + "\n"
		}
	}
	text += fmt.Sprintf("\n_updated %s_", snapshot.ReadAt.UTC().Format(time.RFC1123))

	return text
}

func formatUserValues(state store.UserState, prize *data.PendingWithdrawal) string {
	values := state.Values
	text := "`My Values`\n\n"
	text += fmt.Sprintf("`mu:` %s %s\n", orDash(markdownParameter(values.MuParameter)), readyMark(values.MuReady))
	text += fmt.Sprintf("`i:` %s %s\n", orDash(markdownParameter(values.IParameter)), readyMark(values.IReady))
	if values.TicketValue != 0 {
		text += fmt.Sprintf("`Ticket:` %d\n", values.TicketValue)
	} else {
		text += "`Ticket:` -\n"
	}
	if values.UserPaidTicket {
		text += "`Paid:` yes, waiting for the ticket\n"
	}
	text += fmt.Sprintf("`Status:` %s", phaseText(state.Phase))
	if state.TimedOut {
		text += " (late)"
	}
	if prize != nil && prize.Amount != nil && prize.Amount.Sign() > 0 {
		text += fmt.Sprintf("\n\n🏆 `Prize of game #%d:` %s ETH", prize.GameID, utils.FormatEther(prize.Amount))
	}

	return text
}

func formatBalance(wallet common.Address, explorer string, balance *big.Int) string {
	return fmt.Sprintf("`Wallet:` [%s](%s%s)\n`Balance:` %s ETH",
		utils.ShortenAddress(wallet), explorer, wallet.Hex(), utils.FormatEther(balance))
}

func formatTxStatus(format string, status string, explorer string, hash common.Hash) string {
	return fmt.Sprintf("%s[%s](%s%s)", format, status, explorer, hash.Hex())
}

func formatRequestError(kind data.RequestKind, err error) string {
	if errors.Is(err, network.ErrFeatureDisabled) {
		return "⏸ Ticket sales are paused while the lucky 7 numbers are being set. Try again later"
	}
	if errors.Is(err, network.ErrTransactionReverted) {
		return fmt.Sprintf("⛔️ The contract rejected your %s request", kind)
	}

	return fmt.Sprintf("⛔️ Error sending transaction: %s", err)
}

func formatNotEnoughBalance(balance *big.Int, price *big.Int) string {
	return fmt.Sprintf("⛔️ Not enough balance. You have %s ETH and you need %s ETH plus the transaction fee",
		utils.FormatEther(balance), utils.FormatEther(price))
}

// formatChange renders the store changes a player is told about
func formatChange(change store.Change) (string, bool) {
	values := change.User.Values
	switch change.Type {
	case store.ChangeParameter:
		record, ok := change.Record.(data.ParameterReceived)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("📩 `%s` received: %s", record.Type, markdownParameter(record.Value)), true
	case store.ChangeParameters:
		return fmt.Sprintf("📩 New parameters\n`mu:` %s\n`i:` %s",
			markdownParameter(values.MuParameter), markdownParameter(values.IParameter)), true
	case store.ChangeTicket:
		return fmt.Sprintf("🎫 Your new ticket: `%d`", values.TicketValue), true
	case store.ChangeTimeout:
		return fmt.Sprintf("⌛️ Your %s request is taking longer than usual. The oracle may be slow, the result will still be delivered", change.User.Kind), true
	case store.ChangeRequestFailed:
		return fmt.Sprintf("❌ Your %s request failed", change.User.Kind), true
	}

	return "", false
}

func formatLucky7Ticket(ticket data.Lucky7Ticket, name string) string {
	return fmt.Sprintf("🍀 New lucky 7 ticket `%d` by %s (difference %d)", ticket.Ticket, name, ticket.Difference)
}

// formatStats lists the counters and timers of registry by name
func formatStats(registry metrics.Registry) string {
	lines := make([]string, 0)
	registry.Each(func(name string, metric interface{}) {
		switch m := metric.(type) {
		case metrics.Counter:
			lines = append(lines, fmt.Sprintf("`%s:` %d", name, m.Count()))
		case metrics.Timer:
			s := m.Snapshot()
			lines = append(lines, fmt.Sprintf("`%s:` %d reads, mean %s, p95 %s", name, s.Count(),
				time.Duration(s.Mean()).Round(time.Millisecond), time.Duration(s.Percentile(0.95)).Round(time.Millisecond)))
		}
	})
	sort.Strings(lines)

	return "`Statistics`\n\n" + strings.Join(lines, "\n")
}

func requestTitle(kind data.RequestKind) string {
	switch kind {
	case data.RequestGenerate:
		return "Generate"
	case data.RequestSellRandom:
		return "Sell random ticket"
	case data.RequestSellGenerated:
		return "Sell generated ticket"
	}

	return kind.String()
}

func phaseText(phase store.Phase) string {
	switch phase {
	case store.Empty:
		return "no parameters yet"
	case store.ParamsPending:
		return "waiting for parameters"
	case store.ParamsReady:
		return "parameters ready"
	case store.TicketPending:
		return "waiting for the ticket"
	case store.TicketIssued:
		return "ticket issued"
	}

	return phase.String()
}

// markdownParameter shortens a contract provided parameter for a Markdown message
func markdownParameter(value string) string {
	return utils.EscapeMarkdown(utils.ShortenParameter(value))
}

func readyMark(ready bool) string {
	if ready {
		return "✅"
	}

	return "⌛️"
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

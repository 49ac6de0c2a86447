package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/shopspring/decimal"
)

func FormatTgUser(user *tgbotapi.User) string {
	name := fmt.Sprintf("%s %s [%v]", user.FirstName, user.LastName, user.ID)
	name = strings.TrimSpace(name)
	name = strings.Replace(name, "  ", " ", 1)
	if user.UserName != "" {
		name = fmt.Sprintf("@%s (%s)", user.UserName, name)
	}

	return name
}

var (
	markdownEscaper  = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	markdownStripper = strings.NewReplacer("_", "", "*", "", "`", "", "[", "", "]", "")
)

// EscapeMarkdown escapes the characters Telegram's Markdown mode reads as
// entity delimiters
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatDbTgUser renders user as a Markdown mention. Entity text can not hold
// escapes, so delimiters are dropped from names used as link text.
func FormatDbTgUser(user *data.Telegram) string {
	if user.UserName != "" {
		return "@" + EscapeMarkdown(user.UserName)
	}

	name := fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	name = markdownStripper.Replace(name)
	name = strings.TrimSpace(name)
	name = strings.Replace(name, "  ", " ", 1)
	if name == "" {
		name = fmt.Sprint(user.ID)
	}
	name = fmt.Sprintf("[%s](tg://user?id=%v)", name, user.ID)

	return name
}

// FormatEther renders a wei amount in ether without trailing zeros
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// ParseEther converts a decimal ether amount into wei
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}

	return d.Mul(decimal.New(1, EtherDecimals)).Truncate(0).BigInt(), nil
}

func ShortenAddress(address common.Address) string {
	hex := address.Hex()
	if address == (common.Address{}) {
		return ""
	}

	return hex[:8] + "..." + hex[len(hex)-6:]
}

// ShortenParameter keeps oracle values readable in chat messages
func ShortenParameter(value string) string {
	if len(value) <= 14 {
		return value
	}

	return value[:8] + "..." + value[len(value)-4:]
}

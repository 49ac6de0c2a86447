package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/rcrowley/go-metrics"
)

func (b *Bot) privateCommandReceived(ctx context.Context, message *tgbotapi.Message) {
	cmd := message.Command()
	args := message.CommandArguments()
	name := utils.FormatTgUser(message.From)

	user := b.getOrCreateUser(ctx, message.From)
	if user == nil {
		return
	}
	log.Info("private command received", "command", cmd, "args", args, "user", name)

	switch cmd {
	case "start":
		msg := tgbotapi.NewMessage(user.ID, helpMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.tgBot.Send(msg)
		b.mainMenu(user)
		return
	case "toggle":
		if !b.isOwner(user) {
			return
		}
		b.toggleSetting(ctx, user)
		return
	case "stats":
		if !b.isOwner(user) {
			return
		}
		text := formatStats(metrics.DefaultRegistry)
		operator := utils.GetAddressFromPrivateKey(b.operator)
		if balance := b.balanceOf(ctx, operator); balance != nil {
			text += fmt.Sprintf("\n\n`Operator:` %s\n`Operator balance:` %s ETH", operator.Hex(), utils.FormatEther(balance))
		}
		if conn := b.store.Connection(); conn != nil {
			text += fmt.Sprintf("\n`Chain:` %v\n`Block:` %d", conn.ChainID, conn.BlockNumber)
		}
		b.sendMessage(user.ID, text)
		return
	}
}

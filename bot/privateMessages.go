package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/utils"
)

func (b *Bot) privateMessageReceived(ctx context.Context, message *tgbotapi.Message) {
	user := b.getOrCreateUser(ctx, message.From)
	if user == nil {
		return
	}
	name := utils.FormatTgUser(message.From)
	log.Info("private message received", "message", message.Text, "user", name)

	switch message.Text {
	case menuAbout:
		msg := tgbotapi.NewMessage(user.ID, aboutMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		b.tgBot.Send(msg)
		return
	case menuMainHelp:
		msg := tgbotapi.NewMessage(user.ID, helpMessage)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := b.tgBot.Send(msg)
		if err != nil {
			log.Error("unable to send message", "message", helpMessage, "error", err)
		}
		return
	case menuGameInfo:
		b.sendGameInfo(user)
		return
	case menuMyValues:
		b.sendUserValues(ctx, user)
		return
	case menuBalance:
		b.sendBalance(ctx, user)
		return
	case menuGenerate:
		b.requestTicket(ctx, user, data.RequestGenerate)
		return
	case menuSellRandom:
		b.requestTicket(ctx, user, data.RequestSellRandom)
		return
	case menuSellGenerated:
		b.requestTicket(ctx, user, data.RequestSellGenerated)
		return
	}
}

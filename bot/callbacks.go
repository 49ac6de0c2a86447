package bot

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/utils"
)

func (b *Bot) callbackQueryReceived(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	cb := callback.Data
	b.tgBot.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, cb))
	user := b.getOrCreateUser(ctx, callback.From)
	if user == nil {
		return
	}
	name := utils.FormatTgUser(callback.From)
	log.Info("callback received", "callback", callback.Data, "user", name)

	switch cb {
	case callbackKey:
		b.sendPrivateKey(user)
	case callbackRefresh:
		if callback.Message == nil {
			return
		}
		text := b.gameInfo()
		if text == "" {
			return
		}
		msg := tgbotapi.NewEditMessageText(user.ID, callback.Message.MessageID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		keyboard := refreshKeyboard()
		msg.ReplyMarkup = &keyboard
		b.tgBot.Send(msg)
	}
}

// sendPrivateKey lets the user import the wallet in any Ethereum client
func (b *Bot) sendPrivateKey(user *data.User) {
	pk, err := utils.GetPrivateKeyFromSeed(user.ID)
	if err != nil {
		b.reportError("sendPrivateKey - can not derive wallet: " + err.Error())
		return
	}

	text := fmt.Sprintf("`Wallet:` %s\n`Private key:` `%s`\n\n⚠️ Anyone holding this key controls your funds",
		user.Wallet.Hex(), hex.EncodeToString(crypto.FromECDSA(pk)))
	msg := tgbotapi.NewMessage(user.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.tgBot.Send(msg)
}

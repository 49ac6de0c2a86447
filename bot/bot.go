package bot

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/kevinms/leakybucket-go"
	"github.com/matiasbn/Lucky7Bot/config"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/listener"
	"github.com/matiasbn/Lucky7Bot/network"
	"github.com/matiasbn/Lucky7Bot/store"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
)

var log = logger.GetOrCreate("bot")

var errUserNotFound = errors.New("user not found")

// Bot - holds the required fields of the bot application
type Bot struct {
	tgBot          *tgbotapi.BotAPI
	cfg            *data.AppConfig
	networkManager *network.NetworkManager
	listener       *listener.Listener
	store          *store.Store
	limiter        *leakybucket.Collector

	operator *ecdsa.PrivateKey
	records  chan data.Record

	mut     sync.RWMutex
	users   map[int64]*data.User
	tgUsers map[int64]*data.Telegram
	subs    map[int64]*listener.Subscription
}

// NewBot - creates a new Bot object
func NewBot(cfg *data.AppConfig, networkManager *network.NetworkManager, l *listener.Listener, s *store.Store) (*Bot, error) {
	tgBot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Error("can not create telegram bot", "error", err)
		return nil, err
	}

	operator, err := utils.GetPrivateKeyFromSeed(utils.OperatorIndex)
	if err != nil {
		log.Error("can not derive operator wallet", "error", err)
		return nil, err
	}

	telegramBot := &Bot{
		tgBot:          tgBot,
		cfg:            cfg,
		networkManager: networkManager,
		listener:       l,
		store:          s,
		limiter:        leakybucket.NewCollector(cfg.Bot.PaidPerMinute/60, cfg.Bot.PaidBurst, true),
		operator:       operator,
		records:        make(chan data.Record, cfg.Projector.RecordsBuffer),
		users:          make(map[int64]*data.User),
		tgUsers:        make(map[int64]*data.Telegram),
		subs:           make(map[int64]*listener.Subscription),
	}

	helpMessage = strings.ReplaceAll(helpMessage, "Lucky7Group", cfg.Bot.Group)
	s.AddListener(telegramBot.storeChanged)

	return telegramBot, nil
}

// StartTasks - starts bot's tasks. They all stop when ctx is done.
func (b *Bot) StartTasks(ctx context.Context) error {
	global, err := b.listener.SubscribeGlobal(ctx)
	if err != nil {
		log.Error("can not subscribe to game events", "error", err)
		return err
	}
	go b.forward(ctx, global)

	go func() {
		err := b.store.Consume(ctx, b.records)
		log.Debug("store consumer stopped", "error", err)
	}()

	go b.pollGame(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.tgBot.GetUpdatesChan(u)
	if err != nil {
		log.Error("can not get Telegram bot updates", "error", err)
		return err
	}
	updates.Clear()

	go func() {
		<-ctx.Done()
		b.tgBot.StopReceivingUpdates()
	}()

	go func() {
		for update := range updates {
			if update.Message != nil {
				if update.Message.Chat.IsPrivate() {
					// private
					if update.Message.IsCommand() {
						b.privateCommandReceived(ctx, update.Message)
						continue
					}
					b.privateMessageReceived(ctx, update.Message)
				} else {
					// public
					if b.cfg.Bot.GroupID == 0 && update.Message.Chat.UserName == b.cfg.Bot.Group {
						b.cfg.Bot.GroupID = update.Message.Chat.ID
						_ = config.Save(b.cfg)
					}
					if update.Message.IsCommand() {
						b.tgBot.Send(tgbotapi.DeleteMessageConfig{ChatID: update.Message.Chat.ID, MessageID: update.Message.MessageID})
						continue
					}
				}
			}
			if update.CallbackQuery != nil {
				b.callbackQueryReceived(ctx, update.CallbackQuery)
			}
		}
	}()

	return nil
}

// forward feeds a subscription into the single store sink
func (b *Bot) forward(ctx context.Context, sub *listener.Subscription) {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-sub.Records():
			if !ok {
				return
			}
			select {
			case b.records <- record:
			case <-ctx.Done():
				return
			}
		}
	}
}

// pollGame refreshes the provider state and the game snapshot of the
// operator wallet, announcing new lucky 7 numbers to the group
func (b *Bot) pollGame(ctx context.Context) {
	operator := utils.GetAddressFromPrivateKey(b.operator)
	lastNumbers := ""
	lastInfoMessage := 0
	registered := false

	ticker := time.NewTicker(b.cfg.Network.PollInterval)
	defer ticker.Stop()

	for {
		conn, err := b.networkManager.GetConnection(ctx, operator)
		if err != nil {
			b.reportError("Unable to reach the node. Error: " + err.Error())
		} else if !registered {
			b.store.RegisterConnection(conn)
			registered = true
		} else {
			_ = b.store.PollConnection(conn)
		}

		snapshot, err := b.networkManager.GetGameSnapshot(ctx, operator)
		if err != nil {
			log.Warn("can not read game snapshot", "error", err)
		} else {
			b.store.RetrieveGameInfo(snapshot)
			numbers := fmt.Sprint(snapshot.Lucky7Numbers)
			switch {
			case b.cfg.Bot.GroupID == 0:
			case numbers != lastNumbers && len(snapshot.Lucky7Numbers) > 0:
				msg, err := b.sendGameInfo(nil)
				if err == nil {
					lastInfoMessage = msg.MessageID
				}
				lastNumbers = numbers
			case lastInfoMessage != 0:
				msg := tgbotapi.NewEditMessageText(b.cfg.Bot.GroupID, lastInfoMessage, b.gameInfo())
				msg.ParseMode = tgbotapi.ModeMarkdown
				msg.DisableWebPagePreview = true
				b.tgBot.Send(msg)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// storeChanged pushes projection changes to the players they concern
func (b *Bot) storeChanged(change store.Change) {
	if change.Type == store.ChangeLucky7Ticket {
		record, ok := change.Record.(data.NewLucky7Ticket)
		if ok && b.cfg.Bot.GroupID != 0 {
			b.sendToGroup(formatLucky7Ticket(record.Lucky7Ticket, b.nameOf(record.Owner)))
		}
		return
	}

	text, ok := formatChange(change)
	if !ok {
		return
	}

	user := b.getUserByAddress(change.Owner)
	if user == nil {
		return
	}

	b.sendMessage(user.ID, text)
}

func (b *Bot) reportError(text string) {
	log.Warn("reported to owner", "message", text)
	if b.cfg.Bot.Owner == 0 {
		return
	}

	msg := tgbotapi.NewMessage(b.cfg.Bot.Owner, "⛔️ "+text)
	b.tgBot.Send(msg)
}

func (b *Bot) sendToGroup(text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(b.cfg.Bot.GroupID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tgBot.Send(msg)
	if err != nil {
		log.Warn("error sending message to group", "message", text, "error", err)
	}

	return res, err
}

func (b *Bot) sendMessage(userID int64, text string) (tgbotapi.Message, error) {
	b.mut.RLock()
	user, ok := b.users[userID]
	tgUser, tgOk := b.tgUsers[userID]
	b.mut.RUnlock()
	if user == nil || !ok {
		return tgbotapi.Message{}, errUserNotFound
	}

	name := ""
	if tgUser != nil && tgOk {
		name = utils.FormatDbTgUser(tgUser)
		log.Info("sent message", "user", name, "message", text)
	}
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tgBot.Send(msg)
	if err != nil {
		log.Warn("error sending message", "user", name, "message", text, "error", err.Error())
	}

	return res, err
}

func (b *Bot) gameInfo() string {
	return formatGameInfo(b.store.Snapshot(), b.store.Lucky7Tickets(), b.store.Balance(), b.nameOf)
}

func (b *Bot) sendGameInfo(user *data.User) (tgbotapi.Message, error) {
	text := b.gameInfo()
	if text == "" {
		text = "⌛️ Game info is not available yet"
	}
	if user == nil {
		return b.sendToGroup(text)
	}

	msg := tgbotapi.NewMessage(user.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = refreshKeyboard()

	return b.tgBot.Send(msg)
}

// syncUser rehydrates the user from the chain unless a request of theirs is
// in flight, in which case the projection is ahead of the chain
func (b *Bot) syncUser(ctx context.Context, user *data.User) store.UserState {
	values, err := b.networkManager.GetUserValues(ctx, user.Wallet)
	if err != nil {
		log.Warn("can not read user values", "wallet", user.Wallet.Hex(), "error", err)
	} else if !b.store.User(user.Wallet).Phase.Pending() {
		b.store.SyncUser(user.Wallet, values)
	}

	return b.store.User(user.Wallet)
}

func (b *Bot) sendUserValues(ctx context.Context, user *data.User) {
	state := b.syncUser(ctx, user)

	var prize *data.PendingWithdrawal
	pending, err := b.networkManager.GetPendingWithdrawal(ctx, user.Wallet)
	if err == nil {
		prize = &pending
	}

	b.sendMessage(user.ID, formatUserValues(state, prize))
}

func (b *Bot) sendBalance(ctx context.Context, user *data.User) {
	balance, err := b.networkManager.GetBalance(ctx, user.Wallet)
	if err != nil {
		b.reportError("can not get wallet balance")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔑 Private key", callbackKey),
	))
	msg := tgbotapi.NewMessage(user.ID, formatBalance(user.Wallet, b.cfg.Network.ExplorerAccount, balance))
	msg.ReplyMarkup = keyboard
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	b.tgBot.Send(msg)
}

// allowPaid consumes one slot of the user's paid request bucket
func (b *Bot) allowPaid(user *data.User) bool {
	key := fmt.Sprint(user.ID)
	if b.limiter.Remaining(key) <= 0 {
		return false
	}
	b.limiter.Add(key, 1)

	return true
}

func (b *Bot) requestTicket(ctx context.Context, user *data.User, kind data.RequestKind) {
	snapshot := b.store.Snapshot()
	if snapshot == nil {
		b.sendMessage(user.ID, "⌛️ Game info is not available yet, please retry in a few seconds")
		return
	}

	if !b.allowPaid(user) {
		b.sendMessage(user.ID, "🐢 Too many requests, please slow down")
		return
	}

	if kind == data.RequestSellGenerated {
		state := b.store.User(user.Wallet)
		if !state.Values.MuReady || !state.Values.IReady {
			state = b.syncUser(ctx, user)
		}
		if !state.Values.MuReady || !state.Values.IReady {
			b.sendMessage(user.ID, "❕ Generate your parameters first")
			return
		}
	}

	price := snapshot.SellTicketPrice
	if kind == data.RequestGenerate {
		price = snapshot.GenerateTicketPrice
	}

	balance, err := b.networkManager.GetBalance(ctx, user.Wallet)
	if err != nil {
		b.sendMessage(user.ID, "❗️ Network error. Please contact an administrator ("+err.Error()+")")
		return
	}
	if price != nil && balance.Cmp(price) <= 0 {
		b.sendMessage(user.ID, formatNotEnoughBalance(balance, price))
		return
	}

	pk, err := utils.GetPrivateKeyFromSeed(user.ID)
	if err != nil {
		b.reportError("requestTicket - can not derive wallet: " + err.Error())
		return
	}

	// recorded before sending, the first records of tx may arrive right away
	b.store.AskForValues(user.Wallet, kind)
	tx, err := b.networkManager.RequestTicket(ctx, pk, kind)
	if err != nil {
		b.store.RequestFailed(user.Wallet)
		b.sendMessage(user.ID, formatRequestError(kind, err))
		return
	}

	format := fmt.Sprintf("`%s` - Status: ", requestTitle(kind))
	msg := tgbotapi.NewMessage(user.ID, formatTxStatus(format, statusPending, b.cfg.Network.ExplorerTransaction, tx.Hash()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tgBot.Send(msg)
	if err != nil {
		log.Warn("can not send request tx status message", "message", msg.Text, "error", err)
		return
	}

	go b.watchTx(ctx, tx, format, user.ID, res.MessageID, func(err error) {
		if errors.Is(err, network.ErrTransactionReverted) {
			b.store.RequestFailed(user.Wallet)
		}
	})
}

// watchTx edits the status message of tx once it is mined
func (b *Bot) watchTx(ctx context.Context, tx *types.Transaction, format string, chatID int64, messageID int, onError func(error)) {
	status := statusSuccess
	_, err := b.networkManager.WaitMined(ctx, tx)
	switch {
	case errors.Is(err, network.ErrTransactionReverted):
		status = statusFailed
	case err != nil:
		status = statusUnknown
	}

	msg := tgbotapi.NewEditMessageText(chatID, messageID, formatTxStatus(format, status, b.cfg.Network.ExplorerTransaction, tx.Hash()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	b.tgBot.Send(msg)

	if err != nil && onError != nil {
		onError(err)
	}
}

func (b *Bot) toggleSetting(ctx context.Context, user *data.User) {
	tx, err := b.networkManager.ToggleLucky7Setting(ctx, b.operator)
	if err != nil {
		b.sendMessage(user.ID, fmt.Sprintf("⛔️ Error sending transaction: %s", err))
		return
	}

	format := "`Toggle lucky 7 setting` - Status: "
	msg := tgbotapi.NewMessage(user.ID, formatTxStatus(format, statusPending, b.cfg.Network.ExplorerTransaction, tx.Hash()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	res, err := b.tgBot.Send(msg)
	if err != nil {
		log.Warn("can not send toggle tx status message", "message", msg.Text, "error", err)
		return
	}

	go b.watchTx(ctx, tx, format, user.ID, res.MessageID, nil)
}

func (b *Bot) getOrCreateUser(ctx context.Context, tgUser *tgbotapi.User) *data.User {
	id := int64(tgUser.ID)

	b.mut.Lock()
	user, ok := b.users[id]
	if !ok {
		pk, err := utils.GetPrivateKeyFromSeed(id)
		if err != nil {
			b.mut.Unlock()
			log.Error("can not derive user wallet", "user", id, "error", err)
			return nil
		}
		user = &data.User{
			ID:     id,
			Wallet: utils.GetAddressFromPrivateKey(pk),
		}
		b.users[id] = user
	}

	tg, ok := b.tgUsers[id]
	if !ok || tg.UserName != tgUser.UserName || tg.FirstName != tgUser.FirstName || tg.LastName != tgUser.LastName {
		b.tgUsers[id] = &data.Telegram{
			ID:        id,
			UserName:  tgUser.UserName,
			FirstName: tgUser.FirstName,
			LastName:  tgUser.LastName,
		}
	}

	_, subscribed := b.subs[id]
	b.mut.Unlock()

	if !subscribed {
		b.watchUser(ctx, user)
	}

	return user
}

// watchUser subscribes to the events of the user's wallet
func (b *Bot) watchUser(ctx context.Context, user *data.User) {
	sub, err := b.listener.Subscribe(ctx, user.Wallet)
	if err != nil {
		log.Warn("can not subscribe to user events", "wallet", user.Wallet.Hex(), "error", err)
		return
	}

	b.mut.Lock()
	if _, ok := b.subs[user.ID]; ok {
		b.mut.Unlock()
		sub.Unsubscribe()
		return
	}
	b.subs[user.ID] = sub
	b.mut.Unlock()

	go b.forward(ctx, sub)
}

func (b *Bot) getUserByAddress(address common.Address) *data.User {
	b.mut.RLock()
	defer b.mut.RUnlock()

	for _, user := range b.users {
		if user.Wallet == address {
			return user
		}
	}

	return nil
}

func (b *Bot) nameOf(address common.Address) string {
	user := b.getUserByAddress(address)
	if user != nil {
		b.mut.RLock()
		tgUser, ok := b.tgUsers[user.ID]
		b.mut.RUnlock()
		if ok {
			return utils.FormatDbTgUser(tgUser)
		}
	}

	return utils.ShortenAddress(address)
}

func (b *Bot) isOwner(user *data.User) bool {
	return b.cfg.Bot.Owner != 0 && user.ID == b.cfg.Bot.Owner
}

func (b *Bot) balanceOf(ctx context.Context, address common.Address) *big.Int {
	balance, err := b.networkManager.GetBalance(ctx, address)
	if err != nil {
		return nil
	}

	return balance
}

package listener

import (
	"context"
	"fmt"
	"sync"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/network"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
)

var log = logger.GetOrCreate("listener")

var (
	deliveredCounter = metrics.GetOrRegisterCounter("listener/delivered", nil)
	duplicateCounter = metrics.GetOrRegisterCounter("listener/duplicates", nil)
	malformedCounter = metrics.GetOrRegisterCounter("listener/malformed", nil)
	removedCounter   = metrics.GetOrRegisterCounter("listener/removed", nil)
)

// Listener turns Lucky7Store logs into typed records. Subscriptions of one
// listener share the dedup cache, so a log matched by two of them is
// delivered once.
type Listener struct {
	cfg      data.ProjectorConfig
	contract *bind.BoundContract
	seen     *lru.Cache
}

type watch struct {
	event string
	query [][]interface{}
}

type taggedLog struct {
	event string
	log   types.Log
}

// NewListener - creates a listener for the configured contract. filterer is
// usually an *ethclient.Client dialed over websockets
func NewListener(cfg *data.AppConfig, filterer bind.ContractFilterer) (*Listener, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		log.Error("can not bind contract", "address", cfg.ContractAddress, "error", errInvalidContractAddress)
		return nil, errInvalidContractAddress
	}

	seen, err := lru.New(cfg.Projector.DedupCacheSize)
	if err != nil {
		log.Error("can not create dedup cache", "size", cfg.Projector.DedupCacheSize, "error", err)
		return nil, errors.Wrap(err, "creating dedup cache")
	}

	address := common.HexToAddress(cfg.ContractAddress)
	return &Listener{
		cfg:      cfg.Projector,
		contract: bind.NewBoundContract(address, network.Lucky7ABI, nil, nil, filterer),
		seen:     seen,
	}, nil
}

// Subscribe watches every event the contract emits for owner, plus the
// unfiltered balance updates
func (l *Listener) Subscribe(ctx context.Context, owner common.Address) (*Subscription, error) {
	byOwner := [][]interface{}{{owner}}
	watches := []watch{
		{event: network.EventNewMuReceived, query: byOwner},
		{event: network.EventNewIReceived, query: byOwner},
		{event: network.EventNewTicketReceived, query: byOwner},
		{event: network.EventGeneratedParametersReceived, query: byOwner},
		{event: network.EventNewLucky7Ticket, query: byOwner},
		{event: network.EventBalanceUpdated},
	}

	return l.subscribe(ctx, watches, "owner", owner.Hex())
}

// SubscribeGlobal watches the events every player sees
func (l *Listener) SubscribeGlobal(ctx context.Context) (*Subscription, error) {
	watches := []watch{
		{event: network.EventNewLucky7Ticket},
		{event: network.EventBalanceUpdated},
	}

	return l.subscribe(ctx, watches, "owner", "*")
}

func (l *Listener) subscribe(parent context.Context, watches []watch, ctxArgs ...interface{}) (*Subscription, error) {
	ctx, cancel := context.WithCancel(parent)
	sub := &Subscription{
		ID:      uuid.New(),
		records: make(chan data.Record, l.cfg.RecordsBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	raw := make(chan taggedLog)
	watchers := make([]event.Subscription, 0, len(watches))
	for _, w := range watches {
		watchers = append(watchers, l.watch(w, raw))
	}

	log.Debug("subscribed", append([]interface{}{"id", sub.ID.String()}, ctxArgs...)...)

	go func() {
		defer close(sub.done)
		defer close(sub.records)
		defer func() {
			var wg sync.WaitGroup
			for _, w := range watchers {
				wg.Add(1)
				go func(w event.Subscription) {
					defer wg.Done()
					w.Unsubscribe()
				}(w)
			}
			wg.Wait()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case tl := <-raw:
				record, ok := l.accept(tl)
				if !ok {
					continue
				}
				select {
				case sub.records <- record:
					deliveredCounter.Inc(1)
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

// watch keeps one filtered log stream alive, resubscribing with backoff when
// the transport drops it. Logs of a single event keep their order.
func (l *Listener) watch(w watch, out chan<- taggedLog) event.Subscription {
	return event.ResubscribeErr(l.cfg.ResubscribeMax, func(ctx context.Context, lastErr error) (event.Subscription, error) {
		if lastErr != nil {
			log.Warn("event subscription dropped, resubscribing", "event", w.event, "error", lastErr)
		}

		logs, sub, err := l.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, w.event, w.query...)
		if err != nil {
			log.Warn("can not watch event", "event", w.event, "error", err)
			return nil, err
		}

		return event.NewSubscription(func(quit <-chan struct{}) error {
			defer sub.Unsubscribe()
			for {
				select {
				case lg := <-logs:
					select {
					case out <- taggedLog{event: w.event, log: lg}:
					case err := <-sub.Err():
						return err
					case <-quit:
						return nil
					}
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			}
		}), nil
	})
}

func (l *Listener) accept(tl taggedLog) (data.Record, bool) {
	if tl.log.Removed {
		removedCounter.Inc(1)
		log.Debug("skipping removed log", "event", tl.event, "tx", tl.log.TxHash.Hex(), "index", tl.log.Index)
		return nil, false
	}

	key := fmt.Sprintf("%s:%d", tl.log.TxHash.Hex(), tl.log.Index)
	if seen, _ := l.seen.ContainsOrAdd(key, struct{}{}); seen {
		duplicateCounter.Inc(1)
		log.Trace("skipping duplicate log", "key", key)
		return nil, false
	}

	record, err := l.decode(tl)
	if err != nil {
		malformedCounter.Inc(1)
		log.Warn("skipping malformed log", "event", tl.event, "tx", tl.log.TxHash.Hex(), "error", err)
		return nil, false
	}

	return record, true
}

func (l *Listener) decode(tl taggedLog) (data.Record, error) {
	meta := data.EventMeta{
		BlockNumber: tl.log.BlockNumber,
		TxHash:      tl.log.TxHash,
		LogIndex:    tl.log.Index,
	}

	switch tl.event {
	case network.EventNewMuReceived:
		ev := new(newMuReceived)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		return data.ParameterReceived{EventMeta: meta, Owner: ev.Owner, Type: data.ParameterMu, Value: ev.MuParameter}, nil

	case network.EventNewIReceived:
		ev := new(newIReceived)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		return data.ParameterReceived{EventMeta: meta, Owner: ev.Owner, Type: data.ParameterI, Value: ev.IParameter}, nil

	case network.EventNewTicketReceived:
		ev := new(newTicketReceived)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		if ev.NewTicket == nil {
			return nil, errors.Wrap(utils.ErrNegativeValue, "missing ticket")
		}
		return data.ParameterReceived{EventMeta: meta, Owner: ev.Owner, Type: data.ParameterTicket, Value: ev.NewTicket.String()}, nil

	case network.EventGeneratedParametersReceived:
		ev := new(generatedParametersReceived)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		return data.GeneratedParametersReceived{EventMeta: meta, Owner: ev.Owner, MuParameter: ev.MuParameter, IParameter: ev.IParameter}, nil

	case network.EventNewLucky7Ticket:
		ev := new(newLucky7Ticket)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		ticket, err := utils.BigToUint64(ev.TicketValue)
		if err != nil {
			return nil, errors.Wrap(err, "ticketValue")
		}
		difference, err := utils.BigToUint64(ev.Difference)
		if err != nil {
			return nil, errors.Wrap(err, "difference")
		}
		return data.NewLucky7Ticket{
			EventMeta:    meta,
			Lucky7Ticket: data.Lucky7Ticket{Ticket: ticket, Owner: ev.Owner, Difference: difference},
		}, nil

	case network.EventBalanceUpdated:
		ev := new(balanceUpdated)
		if err := l.contract.UnpackLog(ev, tl.event, tl.log); err != nil {
			return nil, err
		}
		return data.BalanceUpdated{EventMeta: meta, Balance: ev.Balance}, nil
	}

	return nil, errors.Wrap(errUnknownEvent, tl.event)
}

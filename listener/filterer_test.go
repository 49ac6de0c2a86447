package listener

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeSub struct {
	query ethereum.FilterQuery
	logs  chan<- types.Log
	err   chan error
	quit  chan struct{}
	once  sync.Once
}

func (s *fakeSub) Unsubscribe() {
	s.once.Do(func() { close(s.quit) })
}

func (s *fakeSub) Err() <-chan error {
	return s.err
}

func (s *fakeSub) matches(lg types.Log) bool {
	for i, rule := range s.query.Topics {
		if len(rule) == 0 {
			continue
		}
		if i >= len(lg.Topics) {
			return false
		}
		found := false
		for _, topic := range rule {
			if topic == lg.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// fakeFilterer fans emitted logs out to every live subscription whose topic
// filter matches, the way a node does
type fakeFilterer struct {
	mut        sync.Mutex
	subs       []*fakeSub
	subscribes map[common.Hash]int
}

func newFakeFilterer() *fakeFilterer {
	return &fakeFilterer{subscribes: make(map[common.Hash]int)}
}

func (f *fakeFilterer) FilterLogs(_ context.Context, _ ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeFilterer) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	f.mut.Lock()
	defer f.mut.Unlock()

	sub := &fakeSub{query: q, logs: ch, err: make(chan error, 1), quit: make(chan struct{})}
	f.subs = append(f.subs, sub)
	f.subscribes[q.Topics[0][0]]++

	return sub, nil
}

func (f *fakeFilterer) live() []*fakeSub {
	f.mut.Lock()
	defer f.mut.Unlock()

	live := make([]*fakeSub, 0, len(f.subs))
	for _, sub := range f.subs {
		select {
		case <-sub.quit:
		default:
			live = append(live, sub)
		}
	}
	f.subs = live

	return live
}

func (f *fakeFilterer) liveCount() int {
	return len(f.live())
}

func (f *fakeFilterer) subscribeCount(topic common.Hash) int {
	f.mut.Lock()
	defer f.mut.Unlock()

	return f.subscribes[topic]
}

func (f *fakeFilterer) emit(lg types.Log) {
	for _, sub := range f.live() {
		if !sub.matches(lg) {
			continue
		}
		select {
		case sub.logs <- lg:
		case <-sub.quit:
		}
	}
}

// drop fails every live subscription on topic as a broken transport would
func (f *fakeFilterer) drop(topic common.Hash, err error) {
	for _, sub := range f.live() {
		if sub.query.Topics[0][0] != topic {
			continue
		}
		sub.Unsubscribe()
		sub.err <- err
	}
}

func topicOf(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

func bigOf(value uint64) *big.Int {
	return new(big.Int).SetUint64(value)
}

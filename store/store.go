package store

import (
	"context"
	"math/big"
	"sync"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/pkg/errors"
)

var log = logger.GetOrCreate("store")

const minExpiryTick = time.Millisecond * 100

// ChangeType tells listeners what a mutation was about
type ChangeType int

const (
	ChangeParameter ChangeType = iota
	ChangeParameters
	ChangeTicket
	ChangeLucky7Ticket
	ChangeBalance
	ChangeGameInfo
	ChangeConnection
	ChangeRequest
	ChangeRequestFailed
	ChangeTimeout
	ChangeSync
)

// UserState is the projection of one player
type UserState struct {
	Values       data.UserParameters
	Phase        Phase
	Kind         data.RequestKind
	PendingSince time.Time
	TimedOut     bool
}

// Change is handed to listeners after each applied mutation
type Change struct {
	Type   ChangeType
	Owner  common.Address
	User   UserState
	Record data.Record
}

// generation tracks which parameters the current mu/i generation delivered
type generation struct {
	mu bool
	i  bool
	// external is set when records started the generation, not a request
	external bool
}

func (g *generation) add(t data.ParameterType) {
	switch t {
	case data.ParameterMu:
		g.mu = true
	case data.ParameterI:
		g.i = true
	}
}

func (g generation) has(t data.ParameterType) bool {
	switch t {
	case data.ParameterMu:
		return g.mu
	case data.ParameterI:
		return g.i
	}

	return false
}

type rollback struct {
	values data.UserParameters
	phase  Phase
	gen    generation
}

type userEntry struct {
	state UserState
	gen   generation
	prev  rollback
}

// Store is the single sink every record and chain read is applied to
type Store struct {
	mut sync.RWMutex
	cfg data.ProjectorConfig
	now func() time.Time

	users         map[common.Address]*userEntry
	snapshot      *data.GameSnapshot
	lucky7Tickets []data.Lucky7Ticket
	balance       *big.Int
	connection    *data.Connection

	listenersMut sync.RWMutex
	listeners    []func(Change)
}

// NewStore - creates an empty store
func NewStore(cfg data.ProjectorConfig) *Store {
	return &Store{
		cfg:   cfg,
		now:   time.Now,
		users: make(map[common.Address]*userEntry),
	}
}

// AddListener registers fn to receive every change. Listeners run on the
// goroutine that applied the change, outside the store lock.
func (s *Store) AddListener(fn func(Change)) {
	s.listenersMut.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMut.Unlock()
}

func (s *Store) notify(changes ...Change) {
	s.listenersMut.RLock()
	listeners := s.listeners
	s.listenersMut.RUnlock()

	for _, change := range changes {
		for _, fn := range listeners {
			fn(change)
		}
	}
}

func (s *Store) entry(owner common.Address) *userEntry {
	e, ok := s.users[owner]
	if !ok {
		e = &userEntry{}
		s.users[owner] = e
	}

	return e
}

func (s *Store) change(t ChangeType, owner common.Address, e *userEntry, record data.Record) Change {
	return Change{Type: t, Owner: owner, User: e.state, Record: record}
}

// User returns a copy of the projection of owner. A user the store never saw
// is reported in the Empty phase.
func (s *Store) User(owner common.Address) UserState {
	s.mut.RLock()
	defer s.mut.RUnlock()

	e, ok := s.users[owner]
	if !ok {
		return UserState{}
	}

	return e.state
}

// Apply projects one record
func (s *Store) Apply(record data.Record) error {
	s.mut.Lock()
	change, changed, err := s.apply(record)
	s.mut.Unlock()

	if err != nil {
		log.Warn("can not apply record", "tx", record.Meta().TxHash.Hex(), "error", err)
		return err
	}
	if changed {
		s.notify(change)
	}

	return nil
}

func (s *Store) apply(record data.Record) (Change, bool, error) {
	switch r := record.(type) {
	case data.ParameterReceived:
		if r.Type == data.ParameterTicket {
			return s.applyTicket(r)
		}
		return s.applyParameter(r)

	case data.GeneratedParametersReceived:
		e := s.entry(r.Owner)
		values := &e.state.Values
		values.MuParameter = r.MuParameter
		values.IParameter = r.IParameter
		values.MuReady = true
		values.IReady = true
		e.gen.mu, e.gen.i = true, true
		if e.state.Phase != TicketPending {
			e.state.Phase = ParamsReady
			e.gen.external = false
			s.resolve(e)
		}
		return s.change(ChangeParameters, r.Owner, e, r), true, nil

	case data.NewLucky7Ticket:
		s.lucky7Tickets = append(s.lucky7Tickets, r.Lucky7Ticket)
		return Change{Type: ChangeLucky7Ticket, Owner: r.Owner, Record: r}, true, nil

	case data.BalanceUpdated:
		if r.Balance == nil {
			return Change{}, false, errors.Wrap(utils.ErrNegativeValue, "missing balance")
		}
		s.balance = new(big.Int).Set(r.Balance)
		return Change{Type: ChangeBalance, Record: r}, true, nil
	}

	return Change{}, false, errors.Wrapf(ErrUnknownRecord, "%T", record)
}

func (s *Store) applyParameter(r data.ParameterReceived) (Change, bool, error) {
	if r.Type != data.ParameterMu && r.Type != data.ParameterI {
		return Change{}, false, errors.Wrapf(ErrUnknownRecord, "parameter type %q", r.Type)
	}

	e := s.entry(r.Owner)
	values := &e.state.Values

	// categories are not ordered against each other, so a parameter landing
	// after its ticket only refreshes the value. One the current generation
	// already delivered belongs to the next generation, requested elsewhere.
	if e.state.Phase == Empty || (!e.state.Phase.Pending() && e.gen.has(r.Type)) {
		values.MuReady = false
		values.IReady = false
		e.gen = generation{external: true}
		e.state.Phase = ParamsPending
		log.Debug("generation started by records", "owner", r.Owner.Hex(), "parameter", string(r.Type))
	}

	if r.Type == data.ParameterMu {
		values.MuParameter = r.Value
		values.MuReady = true
	} else {
		values.IParameter = r.Value
		values.IReady = true
	}
	e.gen.add(r.Type)

	if e.state.Phase == ParamsPending && values.MuReady && values.IReady {
		e.state.Phase = ParamsReady
		e.gen.external = false
		s.resolve(e)
	}

	return s.change(ChangeParameter, r.Owner, e, r), true, nil
}

func (s *Store) applyTicket(r data.ParameterReceived) (Change, bool, error) {
	ticket, err := utils.StringToUint64(r.Value)
	if err != nil {
		return Change{}, false, errors.Wrapf(err, "ticket for %s", r.Owner.Hex())
	}
	if ticket == 0 {
		log.Debug("ignoring zero ticket", "owner", r.Owner.Hex())
		return Change{}, false, nil
	}

	e := s.entry(r.Owner)
	values := &e.state.Values
	values.TicketValue = ticket
	values.UserPaidTicket = false
	values.MuReady = true
	values.IReady = true
	e.state.Phase = TicketIssued
	e.gen.external = false
	s.resolve(e)

	return s.change(ChangeTicket, r.Owner, e, r), true, nil
}

func (s *Store) resolve(e *userEntry) {
	e.state.PendingSince = time.Time{}
	e.state.TimedOut = false
}

// AskForValues records a request sent by owner. A request made while another
// is pending replaces it and restarts the timeout. Parameters of a generation
// that records started before the request are kept, as they belong to it.
func (s *Store) AskForValues(owner common.Address, kind data.RequestKind) {
	s.mut.Lock()
	e := s.entry(owner)
	adopt := e.gen.external && e.state.Phase == ParamsPending
	if !e.state.Phase.Pending() || adopt {
		e.prev = rollback{values: e.state.Values, phase: e.state.Phase, gen: e.gen}
	}

	values := &e.state.Values
	switch kind {
	case data.RequestGenerate:
		if !adopt {
			s.resetParameters(e)
		}
		values.UserPaidTicket = false
		e.state.Phase = ParamsPending
	case data.RequestSellRandom:
		if !adopt {
			s.resetParameters(e)
		}
		values.UserPaidTicket = true
		e.state.Phase = TicketPending
	case data.RequestSellGenerated:
		values.UserPaidTicket = true
		e.state.Phase = TicketPending
	}
	e.gen.external = false
	e.state.Kind = kind
	e.state.PendingSince = s.now()
	e.state.TimedOut = false
	change := s.change(ChangeRequest, owner, e, nil)
	s.mut.Unlock()

	log.Debug("request recorded", "owner", owner.Hex(), "kind", kind.String())
	s.notify(change)
}

func (s *Store) resetParameters(e *userEntry) {
	e.state.Values.MuReady = false
	e.state.Values.IReady = false
	e.gen = generation{}
}

// RequestFailed rolls owner back to where it stood before the pending
// request, for requests that were not sent or that the contract reverted
func (s *Store) RequestFailed(owner common.Address) {
	s.mut.Lock()
	e, ok := s.users[owner]
	if !ok || !e.state.Phase.Pending() {
		s.mut.Unlock()
		return
	}

	e.state.Values = e.prev.values
	e.state.Phase = e.prev.phase
	e.gen = e.prev.gen
	s.resolve(e)
	change := s.change(ChangeRequestFailed, owner, e, nil)
	s.mut.Unlock()

	s.notify(change)
}

// SyncUser replaces the projection of owner with values read from the chain
func (s *Store) SyncUser(owner common.Address, values data.UserParameters) {
	s.mut.Lock()
	change := s.syncUser(owner, values)
	s.mut.Unlock()

	s.notify(change)
}

func (s *Store) syncUser(owner common.Address, values data.UserParameters) Change {
	e := s.entry(owner)
	wasPending := e.state.Phase.Pending()

	e.state.Values = values
	e.state.Phase = derivePhase(values, e.state.Phase)
	e.gen = generation{mu: values.MuReady, i: values.IReady}
	switch {
	case !e.state.Phase.Pending():
		s.resolve(e)
	case !wasPending:
		e.state.PendingSince = s.now()
		e.state.TimedOut = false
	}

	return s.change(ChangeSync, owner, e, nil)
}

// RetrieveGameInfo stores snapshot and rehydrates its owner from it
func (s *Store) RetrieveGameInfo(snapshot *data.GameSnapshot) {
	if snapshot == nil {
		return
	}

	s.mut.Lock()
	s.snapshot = snapshot
	s.lucky7Tickets = append([]data.Lucky7Ticket(nil), snapshot.Lucky7Tickets...)
	change := s.syncUser(snapshot.Owner, snapshot.UserValues)
	change.Type = ChangeGameInfo
	s.mut.Unlock()

	s.notify(change)
}

// Snapshot returns the last game snapshot, nil before the first read
func (s *Store) Snapshot() *data.GameSnapshot {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.snapshot
}

// Lucky7Tickets returns the tickets of the last snapshot plus the ones
// announced since
func (s *Store) Lucky7Tickets() []data.Lucky7Ticket {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return append([]data.Lucky7Ticket(nil), s.lucky7Tickets...)
}

// Balance returns the last contract balance seen, nil if none
func (s *Store) Balance() *big.Int {
	s.mut.RLock()
	defer s.mut.RUnlock()

	if s.balance == nil {
		return nil
	}

	return new(big.Int).Set(s.balance)
}

// RegisterConnection sets the provider state
func (s *Store) RegisterConnection(conn *data.Connection) {
	if conn == nil {
		return
	}

	s.mut.Lock()
	s.connection = conn
	s.mut.Unlock()

	log.Info("connection registered", "chain", conn.ChainID, "account", conn.Account.Hex(), "block", conn.BlockNumber)
	s.notify(Change{Type: ChangeConnection, Owner: conn.Account})
}

// PollConnection refreshes the registered provider state
func (s *Store) PollConnection(conn *data.Connection) error {
	if conn == nil {
		return nil
	}

	s.mut.Lock()
	if s.connection == nil {
		s.mut.Unlock()
		return ErrNoConnection
	}
	if s.connection.Account != conn.Account {
		log.Info("account changed", "old", s.connection.Account.Hex(), "new", conn.Account.Hex())
	}
	s.connection = conn
	s.mut.Unlock()

	s.notify(Change{Type: ChangeConnection, Owner: conn.Account})

	return nil
}

// Connection returns the provider state, nil before registration
func (s *Store) Connection() *data.Connection {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.connection
}

// ExpirePending flags the requests pending for longer than the configured
// timeout. A flagged request stays pending and is reported only once.
func (s *Store) ExpirePending(now time.Time) []common.Address {
	if s.cfg.PendingTimeout <= 0 {
		return nil
	}

	s.mut.Lock()
	var changes []Change
	var expired []common.Address
	for owner, e := range s.users {
		if !e.state.Phase.Pending() || e.state.TimedOut || e.state.PendingSince.IsZero() {
			continue
		}
		if now.Sub(e.state.PendingSince) < s.cfg.PendingTimeout {
			continue
		}
		e.state.TimedOut = true
		expired = append(expired, owner)
		changes = append(changes, s.change(ChangeTimeout, owner, e, nil))
	}
	s.mut.Unlock()

	for _, owner := range expired {
		log.Warn("request timed out", "owner", owner.Hex())
	}
	s.notify(changes...)

	return expired
}

// Consume applies records in arrival order until ctx is done or records is
// closed, checking pending timeouts on the way
func (s *Store) Consume(ctx context.Context, records <-chan data.Record) error {
	tick := s.cfg.PendingTimeout / 4
	if tick < minExpiryTick {
		tick = minExpiryTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-records:
			if !ok {
				return nil
			}
			_ = s.Apply(record)
		case now := <-ticker.C:
			s.ExpirePending(now)
		}
	}
}

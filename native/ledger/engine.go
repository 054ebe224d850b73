package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecochain/core/ecoerr"
	"ecochain/core/events"
	"ecochain/core/types"
)

const (
	// EventTypeRegistered is emitted when a new account is created.
	EventTypeRegistered = "ledger.registered"
	// EventTypeTransfer is emitted after a successful token transfer.
	EventTypeTransfer = "ledger.transfer"
	// EventTypeReward is emitted for every reward credit.
	EventTypeReward = "ledger.reward"
)

var errStateNotConfigured = errors.New("ledger: state not configured")

type ledgerState interface {
	GetAccount(identity string) (*types.Account, bool, error)
	PutAccount(account *types.Account) error
	HasAccount(identity string) (bool, error)
	ListAccounts() ([]*types.Account, error)
}

// Engine implements the account ledger and the reward issuer. It owns no
// locking; the node serialises calls into it.
type Engine struct {
	state   ledgerState
	emitter events.Emitter
	nowFn   func() time.Time
}

// NewEngine constructs a ledger engine with default no-op dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// SetState wires the engine to the state backend providing persistence helpers.
func (e *Engine) SetState(state ledgerState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp registrations. Nil
// restores the default UTC clock.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Register creates the account for identity and seeds it with the
// registration reward. A second registration for the same identity fails
// without touching state.
func (e *Engine) Register(identity string) (*types.Account, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if identity == "" {
		return nil, fmt.Errorf("ledger: identity required")
	}
	exists, err := e.state.HasAccount(identity)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ecoerr.ErrAlreadyRegistered
	}
	account := &types.Account{
		Identity:     identity,
		Balance:      types.RegistrationReward,
		RegisteredAt: uint64(e.nowFn().Unix()),
	}
	if err := e.state.PutAccount(account); err != nil {
		return nil, err
	}
	e.emit(&events.Event{Type: EventTypeRegistered, Attributes: map[string]string{
		"identity": identity,
		"balance":  strconv.FormatUint(account.Balance, 10),
	}})
	return account.Clone(), nil
}

// Balance returns the token balance for identity.
func (e *Engine) Balance(identity string) (uint64, error) {
	account, err := e.Info(identity)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Info returns the full account record for identity.
func (e *Engine) Info(identity string) (*types.Account, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	account, ok, err := e.state.GetAccount(identity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecoerr.ErrUserNotFound
	}
	return account, nil
}

// IsRegistered reports whether an account exists for identity.
func (e *Engine) IsRegistered(identity string) (bool, error) {
	if e == nil || e.state == nil {
		return false, errStateNotConfigured
	}
	return e.state.HasAccount(identity)
}

// Accounts lists every registered account in ascending identity order.
func (e *Engine) Accounts() ([]*types.Account, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	return e.state.ListAccounts()
}

// Transfer moves amount from one account to the other. Balances are checked
// before any write, so a failed transfer leaves both sides untouched. A
// self-transfer passes validation and succeeds without moving anything.
func (e *Engine) Transfer(from, to string, amount uint64) error {
	if e == nil || e.state == nil {
		return errStateNotConfigured
	}
	sender, ok, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	if !ok {
		return ecoerr.ErrUserNotFound
	}
	if sender.Balance < amount {
		return ecoerr.ErrInsufficientBalance
	}
	receiver, ok, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	if !ok {
		return ecoerr.ErrUserNotFound
	}
	if from != to {
		sender.Balance -= amount
		receiver.Balance += amount
		if err := e.state.PutAccount(sender); err != nil {
			return err
		}
		if err := e.state.PutAccount(receiver); err != nil {
			return err
		}
	}
	e.emit(&events.Event{Type: EventTypeTransfer, Attributes: map[string]string{
		"from":   from,
		"to":     to,
		"amount": strconv.FormatUint(amount, 10),
	}})
	return nil
}

// Credit adds amount to an existing account. Every rewarding workflow funnels
// through here; the action tag only annotates the emitted event.
func (e *Engine) Credit(identity string, amount uint64, action RewardAction) error {
	if e == nil || e.state == nil {
		return errStateNotConfigured
	}
	account, ok, err := e.state.GetAccount(identity)
	if err != nil {
		return err
	}
	if !ok {
		return ecoerr.ErrUserNotFound
	}
	account.Balance += amount
	if err := e.state.PutAccount(account); err != nil {
		return err
	}
	e.emit(&events.Event{Type: EventTypeReward, Attributes: map[string]string{
		"identity": identity,
		"amount":   strconv.FormatUint(amount, 10),
		"action":   action.String(),
	}})
	return nil
}

package datapool

import (
	"errors"
	"strconv"
	"time"

	"ecochain/core/ecoerr"
	"ecochain/core/events"
	"ecochain/core/types"
	"ecochain/native/ledger"
)

const (
	// EventTypeSubmitted is emitted when a new data record is accepted.
	EventTypeSubmitted = "datapool.submitted"
	// EventTypeValidated is emitted when a record passes cross-validation.
	EventTypeValidated = "datapool.validated"
)

var (
	errStateNotConfigured   = errors.New("datapool: state not configured")
	errRewardsNotConfigured = errors.New("datapool: rewards not configured")
)

type poolState interface {
	HasAccount(identity string) (bool, error)
	AppendSubmission(submission *DataSubmission) (uint64, error)
	GetSubmission(id uint64) (*DataSubmission, bool, error)
	PutSubmission(submission *DataSubmission) error
	ListSubmissions() ([]*DataSubmission, error)
}

// Rewarder credits a participant for a completed workflow step.
type Rewarder interface {
	Credit(identity string, amount uint64, action ledger.RewardAction) error
}

// Engine drives the data submission workflow: accept records from registered
// participants and let a different participant validate each one exactly once.
type Engine struct {
	state   poolState
	rewards Rewarder
	emitter events.Emitter
	nowFn   func() time.Time
}

// NewEngine constructs a datapool engine with default no-op dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// SetState wires the engine to the state backend providing persistence helpers.
func (e *Engine) SetState(state poolState) { e.state = state }

// SetRewards wires the reward issuer used to credit submitters and validators.
func (e *Engine) SetRewards(rewards Rewarder) { e.rewards = rewards }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp submissions. Nil restores
// the default UTC clock.
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

// Submit stores a new data record for the submitter and credits the
// submission reward. The id is allocated only once the record is known to
// persist, so failed attempts never burn a sequence number.
func (e *Engine) Submit(submitter, payload string) (*DataSubmission, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if e.rewards == nil {
		return nil, errRewardsNotConfigured
	}
	exists, err := e.state.HasAccount(submitter)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ecoerr.ErrUserNotFound
	}
	submission := &DataSubmission{
		Submitter:   submitter,
		Payload:     payload,
		SubmittedAt: uint64(e.nowFn().Unix()),
	}
	id, err := e.state.AppendSubmission(submission)
	if err != nil {
		return nil, err
	}
	submission.ID = id
	if err := e.rewards.Credit(submitter, types.DataSubmissionReward, ledger.RewardActionDataSubmission); err != nil {
		return nil, err
	}
	e.emit(&events.Event{Type: EventTypeSubmitted, Attributes: map[string]string{
		"id":        strconv.FormatUint(id, 10),
		"submitter": submitter,
	}})
	return submission.Clone(), nil
}

// Validate marks the submission as validated by validator and credits the
// validation reward. A submitter can never validate their own record, and a
// record is validated at most once.
func (e *Engine) Validate(validator string, id uint64) (*DataSubmission, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if e.rewards == nil {
		return nil, errRewardsNotConfigured
	}
	exists, err := e.state.HasAccount(validator)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ecoerr.ErrUserNotFound
	}
	submission, ok, err := e.state.GetSubmission(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecoerr.ErrDataNotFound
	}
	if submission.Validated {
		return nil, ecoerr.ErrAlreadyValidated
	}
	if submission.Submitter == validator {
		return nil, ecoerr.ErrSelfValidation
	}
	submission.Validated = true
	submission.Validator = validator
	if err := e.state.PutSubmission(submission); err != nil {
		return nil, err
	}
	if err := e.rewards.Credit(validator, types.ValidationReward, ledger.RewardActionValidation); err != nil {
		return nil, err
	}
	e.emit(&events.Event{Type: EventTypeValidated, Attributes: map[string]string{
		"id":        strconv.FormatUint(id, 10),
		"validator": validator,
	}})
	return submission.Clone(), nil
}

// Unvalidated lists every submission still awaiting validation, ascending by
// id.
func (e *Engine) Unvalidated() ([]*DataSubmission, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	all, err := e.state.ListSubmissions()
	if err != nil {
		return nil, err
	}
	pending := make([]*DataSubmission, 0, len(all))
	for _, submission := range all {
		if !submission.Validated {
			pending = append(pending, submission)
		}
	}
	return pending, nil
}

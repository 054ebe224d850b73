package governance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecochain/core/ecoerr"
	"ecochain/core/events"
	"ecochain/core/types"
	"ecochain/native/ledger"
)

const (
	// EventTypeProposalCreated is emitted when a new proposal is accepted.
	EventTypeProposalCreated = "gov.proposed"
	// EventTypeVoteCast is emitted when a voter records a ballot.
	EventTypeVoteCast = "gov.vote"
)

var (
	errStateNotConfigured   = errors.New("governance: state not configured")
	errRewardsNotConfigured = errors.New("governance: rewards not configured")
)

type governanceState interface {
	GetAccount(identity string) (*types.Account, bool, error)
	HasAccount(identity string) (bool, error)
	AppendProposal(proposal *Proposal) (uint64, error)
	GetProposal(id uint64) (*Proposal, bool, error)
	PutProposal(proposal *Proposal) error
	ListProposals() ([]*Proposal, error)
}

// Engine orchestrates proposal admission and ballot bookkeeping. The minimum
// stake gate and the vote-once set are both enforced here, before any write.
type Engine struct {
	state      governanceState
	rewards    Rewarder
	emitter    events.Emitter
	nowFn      func() time.Time
	minBalance uint64
}

// Rewarder credits a participant for casting a ballot.
type Rewarder interface {
	Credit(identity string, amount uint64, action ledger.RewardAction) error
}

// NewEngine constructs a governance engine with default no-op dependencies and
// the standard minimum proposal balance.
func NewEngine() *Engine {
	return &Engine{
		emitter:    events.NoopEmitter{},
		nowFn:      func() time.Time { return time.Now().UTC() },
		minBalance: types.MinProposalBalance,
	}
}

// SetState wires the engine to the state backend providing persistence helpers.
func (e *Engine) SetState(state governanceState) { e.state = state }

// SetRewards wires the reward issuer used to credit voters.
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

// SetNowFunc overrides the time source used to stamp proposals. Nil restores
// the default UTC clock.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	e.nowFn = now
}

// SetMinProposalBalance overrides the stake required to open a proposal.
func (e *Engine) SetMinProposalBalance(min uint64) { e.minBalance = min }

func (e *Engine) emit(evt *events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// CreateProposal admits a new proposal from creator. The creator must hold at
// least the minimum proposal balance; the id is allocated only after every
// precondition passes, so rejected attempts keep ids contiguous. Creation
// itself pays no reward.
func (e *Engine) CreateProposal(creator, description string) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	account, ok, err := e.state.GetAccount(creator)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecoerr.ErrUserNotFound
	}
	if account.Balance < e.minBalance {
		return nil, ecoerr.ErrInsufficientBalance
	}
	proposal := &Proposal{
		Creator:     creator,
		Description: description,
		Active:      true,
		CreatedAt:   uint64(e.nowFn().Unix()),
		Voters:      []string{},
	}
	id, err := e.state.AppendProposal(proposal)
	if err != nil {
		return nil, err
	}
	proposal.ID = id
	e.emit(&events.Event{Type: EventTypeProposalCreated, Attributes: map[string]string{
		"id":      strconv.FormatUint(id, 10),
		"creator": creator,
	}})
	return proposal.Clone(), nil
}

// Vote records voter's ballot on the proposal and credits the governance
// participation reward. Each identity votes at most once per proposal.
func (e *Engine) Vote(voter string, id uint64, choice VoteChoice) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if e.rewards == nil {
		return nil, errRewardsNotConfigured
	}
	normalized := VoteChoice(strings.ToLower(strings.TrimSpace(choice.String())))
	if !normalized.Valid() {
		return nil, fmt.Errorf("governance: invalid vote choice %q", choice)
	}
	exists, err := e.state.HasAccount(voter)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ecoerr.ErrUserNotFound
	}
	proposal, ok, err := e.state.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecoerr.ErrProposalNotFound
	}
	if !proposal.Active {
		return nil, ecoerr.ErrProposalNotActive
	}
	if proposal.HasVoted(voter) {
		return nil, ecoerr.ErrAlreadyVoted
	}
	switch normalized {
	case VoteChoiceYes:
		proposal.YesVotes++
	case VoteChoiceNo:
		proposal.NoVotes++
	}
	proposal.Voters = append(proposal.Voters, voter)
	if err := e.state.PutProposal(proposal); err != nil {
		return nil, err
	}
	if err := e.rewards.Credit(voter, types.GovernanceReward, ledger.RewardActionGovernance); err != nil {
		return nil, err
	}
	e.emit(&events.Event{Type: EventTypeVoteCast, Attributes: map[string]string{
		"id":     strconv.FormatUint(id, 10),
		"voter":  voter,
		"choice": normalized.String(),
	}})
	return proposal.Clone(), nil
}

// Proposals lists every proposal in ascending id order.
func (e *Engine) Proposals() ([]*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	return e.state.ListProposals()
}

// ActiveProposals lists proposals still accepting votes, ascending by id.
func (e *Engine) ActiveProposals() ([]*Proposal, error) {
	all, err := e.Proposals()
	if err != nil {
		return nil, err
	}
	active := make([]*Proposal, 0, len(all))
	for _, proposal := range all {
		if proposal.Active {
			active = append(active, proposal)
		}
	}
	return active, nil
}

// ProposalByID returns the proposal with the given id.
func (e *Engine) ProposalByID(id uint64) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	proposal, ok, err := e.state.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ecoerr.ErrProposalNotFound
	}
	return proposal, nil
}

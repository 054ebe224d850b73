package core

import (
	"sync"
	"time"

	"ecochain/core/events"
	"ecochain/core/state"
	"ecochain/core/types"
	"ecochain/native/datapool"
	"ecochain/native/governance"
	"ecochain/native/ledger"
	"ecochain/native/stats"
	"ecochain/storage"
)

// Node is the application-state aggregate owned by the serving process. It
// wires the engines to one state manager and serialises every operation under
// a single lock: mutating calls run exclusively, reads run shared. That
// restores the all-or-nothing contract the engines assume.
type Node struct {
	mu sync.RWMutex

	db         storage.Database
	state      *state.Manager
	ledger     *ledger.Engine
	datapool   *datapool.Engine
	governance *governance.Engine
	stats      *stats.Aggregator
}

// NewNode assembles a node over the provided database.
func NewNode(db storage.Database) *Node {
	manager := state.NewManager(db)

	ledgerEngine := ledger.NewEngine()
	ledgerEngine.SetState(manager)

	poolEngine := datapool.NewEngine()
	poolEngine.SetState(manager)
	poolEngine.SetRewards(ledgerEngine)

	govEngine := governance.NewEngine()
	govEngine.SetState(manager)
	govEngine.SetRewards(ledgerEngine)

	aggregator := stats.NewAggregator()
	aggregator.SetState(manager)

	return &Node{
		db:         db,
		state:      manager,
		ledger:     ledgerEngine,
		datapool:   poolEngine,
		governance: govEngine,
		stats:      aggregator,
	}
}

// SetEmitter installs the event sink on every engine.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.ledger.SetEmitter(emitter)
	n.datapool.SetEmitter(emitter)
	n.governance.SetEmitter(emitter)
}

// SetNowFunc overrides the time source on every engine. Nil restores the
// default UTC clock.
func (n *Node) SetNowFunc(now func() time.Time) {
	n.ledger.SetNowFunc(now)
	n.datapool.SetNowFunc(now)
	n.governance.SetNowFunc(now)
}

// State exposes the manager for genesis seeding and tests.
func (n *Node) State() *state.Manager { return n.state }

// --- Ledger operations ---

func (n *Node) Register(identity string) (*types.Account, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Register(identity)
}

func (n *Node) Balance(identity string) (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.Balance(identity)
}

func (n *Node) AccountInfo(identity string) (*types.Account, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.Info(identity)
}

func (n *Node) IsRegistered(identity string) (bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.IsRegistered(identity)
}

func (n *Node) Accounts() ([]*types.Account, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ledger.Accounts()
}

func (n *Node) Transfer(from, to string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Transfer(from, to, amount)
}

// --- Data submission operations ---

func (n *Node) SubmitData(submitter, payload string) (*datapool.DataSubmission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.datapool.Submit(submitter, payload)
}

func (n *Node) ValidateData(validator string, id uint64) (*datapool.DataSubmission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.datapool.Validate(validator, id)
}

func (n *Node) UnvalidatedData() ([]*datapool.DataSubmission, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.datapool.Unvalidated()
}

// --- Governance operations ---

func (n *Node) CreateProposal(creator, description string) (*governance.Proposal, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governance.CreateProposal(creator, description)
}

func (n *Node) VoteOnProposal(voter string, id uint64, choice governance.VoteChoice) (*governance.Proposal, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.governance.Vote(voter, id, choice)
}

func (n *Node) Proposals() ([]*governance.Proposal, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.governance.Proposals()
}

func (n *Node) ActiveProposals() ([]*governance.Proposal, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.governance.ActiveProposals()
}

func (n *Node) ProposalByID(id uint64) (*governance.Proposal, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.governance.ProposalByID(id)
}

// --- System queries ---

func (n *Node) Stats() (*stats.Snapshot, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stats.Collect()
}

func (n *Node) TotalSupply() uint64 { return types.TotalSupply }

package stats

import (
	"errors"

	"ecochain/core/types"
	"ecochain/native/datapool"
	"ecochain/native/governance"
)

var errStateNotConfigured = errors.New("stats: state not configured")

type statsState interface {
	CountAccounts() (uint64, error)
	ListSubmissions() ([]*datapool.DataSubmission, error)
	ListProposals() ([]*governance.Proposal, error)
}

// Snapshot is the derived, read-only view of the whole economy. It carries no
// state of its own and is recomputed on every call.
type Snapshot struct {
	TotalUsers           uint64 `json:"totalUsers"`
	TotalProposals       uint64 `json:"totalProposals"`
	ActiveProposals      uint64 `json:"activeProposals"`
	TotalSubmissions     uint64 `json:"totalSubmissions"`
	ValidatedSubmissions uint64 `json:"validatedSubmissions"`
	TotalSupply          uint64 `json:"totalSupply"`
}

// Aggregator derives counts by scanning the underlying stores.
type Aggregator struct {
	state statsState
}

// NewAggregator constructs an aggregator without a state backend.
func NewAggregator() *Aggregator { return &Aggregator{} }

// SetState wires the aggregator to the state backend it scans.
func (a *Aggregator) SetState(state statsState) { a.state = state }

// Collect scans every store and returns the current counts.
func (a *Aggregator) Collect() (*Snapshot, error) {
	if a == nil || a.state == nil {
		return nil, errStateNotConfigured
	}
	users, err := a.state.CountAccounts()
	if err != nil {
		return nil, err
	}
	proposals, err := a.state.ListProposals()
	if err != nil {
		return nil, err
	}
	submissions, err := a.state.ListSubmissions()
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{
		TotalUsers:       users,
		TotalProposals:   uint64(len(proposals)),
		TotalSubmissions: uint64(len(submissions)),
		TotalSupply:      types.TotalSupply,
	}
	for _, proposal := range proposals {
		if proposal.Active {
			snapshot.ActiveProposals++
		}
	}
	for _, submission := range submissions {
		if submission.Validated {
			snapshot.ValidatedSubmissions++
		}
	}
	return snapshot, nil
}

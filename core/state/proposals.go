package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"ecochain/native/governance"
	"ecochain/storage"
)

// AppendProposal allocates the next proposal id and persists the record under
// it. The bound check runs before the counter advances, so a rejected record
// never burns an id.
func (m *Manager) AppendProposal(proposal *governance.Proposal) (uint64, error) {
	if proposal == nil {
		return 0, fmt.Errorf("state: proposal required")
	}
	last, err := m.ProposalSeq()
	if err != nil {
		return 0, err
	}
	id := last + 1
	record := proposal.Clone()
	record.ID = id
	encoded, err := encodeBounded(record, MaxProposalBytes, "proposal")
	if err != nil {
		return 0, err
	}
	if err := m.storeCounter(proposalSeqKey, id); err != nil {
		return 0, err
	}
	if err := m.db.Put(sequenceKey(proposalPrefix, id), encoded); err != nil {
		return 0, err
	}
	return id, nil
}

// GetProposal loads the proposal with the given id. The second return value
// reports existence.
func (m *Manager) GetProposal(id uint64) (*governance.Proposal, bool, error) {
	data, err := m.db.Get(sequenceKey(proposalPrefix, id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	proposal := new(governance.Proposal)
	if err := rlp.DecodeBytes(data, proposal); err != nil {
		return nil, false, fmt.Errorf("state: decode proposal: %w", err)
	}
	if proposal.Voters == nil {
		proposal.Voters = []string{}
	}
	return proposal, true, nil
}

// PutProposal overwrites an existing proposal record in place.
func (m *Manager) PutProposal(proposal *governance.Proposal) error {
	if proposal == nil || proposal.ID == 0 {
		return fmt.Errorf("state: proposal id required")
	}
	encoded, err := encodeBounded(proposal, MaxProposalBytes, "proposal")
	if err != nil {
		return err
	}
	return m.db.Put(sequenceKey(proposalPrefix, proposal.ID), encoded)
}

// ListProposals returns every proposal in ascending id order. Ids are
// contiguous, so the scan walks the counter range.
func (m *Manager) ListProposals() ([]*governance.Proposal, error) {
	last, err := m.ProposalSeq()
	if err != nil {
		return nil, err
	}
	proposals := make([]*governance.Proposal, 0, last)
	for id := uint64(1); id <= last; id++ {
		proposal, ok, err := m.GetProposal(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("state: proposal %d missing", id)
		}
		proposals = append(proposals, proposal)
	}
	return proposals, nil
}

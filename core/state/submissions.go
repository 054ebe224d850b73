package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"ecochain/native/datapool"
	"ecochain/storage"
)

// AppendSubmission allocates the next submission id and persists the record
// under it. The bound check runs before the counter advances, so a rejected
// record never burns an id.
func (m *Manager) AppendSubmission(submission *datapool.DataSubmission) (uint64, error) {
	if submission == nil {
		return 0, fmt.Errorf("state: submission required")
	}
	last, err := m.SubmissionSeq()
	if err != nil {
		return 0, err
	}
	id := last + 1
	record := submission.Clone()
	record.ID = id
	encoded, err := encodeBounded(record, MaxSubmissionBytes, "submission")
	if err != nil {
		return 0, err
	}
	if err := m.storeCounter(submissionSeqKey, id); err != nil {
		return 0, err
	}
	if err := m.db.Put(sequenceKey(submissionPrefix, id), encoded); err != nil {
		return 0, err
	}
	return id, nil
}

// GetSubmission loads the submission with the given id. The second return
// value reports existence.
func (m *Manager) GetSubmission(id uint64) (*datapool.DataSubmission, bool, error) {
	data, err := m.db.Get(sequenceKey(submissionPrefix, id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	submission := new(datapool.DataSubmission)
	if err := rlp.DecodeBytes(data, submission); err != nil {
		return nil, false, fmt.Errorf("state: decode submission: %w", err)
	}
	return submission, true, nil
}

// PutSubmission overwrites an existing submission record in place.
func (m *Manager) PutSubmission(submission *datapool.DataSubmission) error {
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("state: submission id required")
	}
	encoded, err := encodeBounded(submission, MaxSubmissionBytes, "submission")
	if err != nil {
		return err
	}
	return m.db.Put(sequenceKey(submissionPrefix, submission.ID), encoded)
}

// ListSubmissions returns every submission in ascending id order. Ids are
// contiguous, so the scan walks the counter range.
func (m *Manager) ListSubmissions() ([]*datapool.DataSubmission, error) {
	last, err := m.SubmissionSeq()
	if err != nil {
		return nil, err
	}
	submissions := make([]*datapool.DataSubmission, 0, last)
	for id := uint64(1); id <= last; id++ {
		submission, ok, err := m.GetSubmission(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("state: submission %d missing", id)
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

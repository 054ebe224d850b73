package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"ecochain/core/ecoerr"
	"ecochain/storage"
)

// Every record category carries a declared maximum encoded size. The bound is
// enforced on encode and surfaces as ecoerr.ErrValueTooLarge instead of
// aborting the process.
const (
	MaxAccountBytes    = 1000
	MaxProposalBytes   = 2000
	MaxSubmissionBytes = 1500
)

var (
	accountPrefix    = []byte("acct:")
	submissionPrefix = []byte("sub:")
	proposalPrefix   = []byte("prop:")

	accountIndexKey    = []byte("acct-index")
	submissionSeqKey   = []byte("seq:submissions")
	proposalSeqKey     = []byte("seq:proposals")
	registrationSeqKey = []byte("seq:registrations")
)

// Manager reads and writes all persistent engine state through a
// storage.Database. Records are RLP encoded; callers get defensive copies and
// never aliases into the store.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func accountKey(identity string) []byte {
	buf := make([]byte, len(accountPrefix)+len(identity))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], identity)
	return buf
}

func sequenceKey(prefix []byte, id uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], id)
	return buf
}

// encodeBounded serialises value and rejects encodings above the declared
// bound for the record category.
func encodeBounded(value interface{}, bound int, category string) ([]byte, error) {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return nil, fmt.Errorf("state: encode %s: %w", category, err)
	}
	if len(encoded) > bound {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ecoerr.ErrValueTooLarge, category, len(encoded), bound)
	}
	return encoded, nil
}

func (m *Manager) loadCounter(key []byte) (uint64, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var value uint64
	if err := rlp.DecodeBytes(data, &value); err != nil {
		return 0, fmt.Errorf("state: decode counter: %w", err)
	}
	return value, nil
}

func (m *Manager) storeCounter(key []byte, value uint64) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode counter: %w", err)
	}
	return m.db.Put(key, encoded)
}

// SubmissionSeq returns the last issued submission id.
func (m *Manager) SubmissionSeq() (uint64, error) {
	return m.loadCounter(submissionSeqKey)
}

// ProposalSeq returns the last issued proposal id.
func (m *Manager) ProposalSeq() (uint64, error) {
	return m.loadCounter(proposalSeqKey)
}

// RegistrationSeq returns the number of registrations ever performed. The
// counter exists for observability; accounts themselves are keyed by identity.
func (m *Manager) RegistrationSeq() (uint64, error) {
	return m.loadCounter(registrationSeqKey)
}

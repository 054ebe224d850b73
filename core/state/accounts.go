package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"ecochain/core/types"
	"ecochain/storage"
)

// GetAccount loads the account stored for identity. The second return value
// reports existence.
func (m *Manager) GetAccount(identity string) (*types.Account, bool, error) {
	data, err := m.db.Get(accountKey(identity))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	account := new(types.Account)
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, false, fmt.Errorf("state: decode account: %w", err)
	}
	return account, true, nil
}

// HasAccount reports whether an account exists for identity.
func (m *Manager) HasAccount(identity string) (bool, error) {
	return m.db.Has(accountKey(identity))
}

// PutAccount persists the account and keeps the identity index sorted. New
// identities also advance the registration counter.
func (m *Manager) PutAccount(account *types.Account) error {
	if account == nil || account.Identity == "" {
		return fmt.Errorf("state: account identity required")
	}
	encoded, err := encodeBounded(account, MaxAccountBytes, "account")
	if err != nil {
		return err
	}
	exists, err := m.HasAccount(account.Identity)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.indexAccount(account.Identity); err != nil {
			return err
		}
		seq, err := m.RegistrationSeq()
		if err != nil {
			return err
		}
		if err := m.storeCounter(registrationSeqKey, seq+1); err != nil {
			return err
		}
	}
	return m.db.Put(accountKey(account.Identity), encoded)
}

func (m *Manager) loadAccountIndex() ([]string, error) {
	data, err := m.db.Get(accountIndexKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var index []string
	if err := rlp.DecodeBytes(data, &index); err != nil {
		return nil, fmt.Errorf("state: decode account index: %w", err)
	}
	return index, nil
}

func (m *Manager) indexAccount(identity string) error {
	index, err := m.loadAccountIndex()
	if err != nil {
		return err
	}
	pos := sort.SearchStrings(index, identity)
	if pos < len(index) && index[pos] == identity {
		return nil
	}
	index = append(index, "")
	copy(index[pos+1:], index[pos:])
	index[pos] = identity
	encoded, err := rlp.EncodeToBytes(index)
	if err != nil {
		return fmt.Errorf("state: encode account index: %w", err)
	}
	return m.db.Put(accountIndexKey, encoded)
}

// CountAccounts returns the number of registered accounts.
func (m *Manager) CountAccounts() (uint64, error) {
	index, err := m.loadAccountIndex()
	if err != nil {
		return 0, err
	}
	return uint64(len(index)), nil
}

// ListAccounts returns every account in ascending identity order.
func (m *Manager) ListAccounts() ([]*types.Account, error) {
	index, err := m.loadAccountIndex()
	if err != nil {
		return nil, err
	}
	accounts := make([]*types.Account, 0, len(index))
	for _, identity := range index {
		account, ok, err := m.GetAccount(identity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("state: indexed account %q missing", identity)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

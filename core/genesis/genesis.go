package genesis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ecochain/core/state"
	"ecochain/core/types"
)

// Spec describes the accounts seeded into an empty database. Seeding runs at
// most once: a store that already holds accounts is left untouched.
type Spec struct {
	NetworkName string           `yaml:"networkName"`
	Time        uint64           `yaml:"time"`
	Accounts    []GenesisAccount `yaml:"accounts"`
}

// GenesisAccount is one pre-registered participant.
type GenesisAccount struct {
	Identity string `yaml:"identity"`
	Balance  uint64 `yaml:"balance"`
}

// Load parses a genesis spec from a YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	spec := new(Spec)
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("genesis: parse %s: %w", path, err)
	}
	return spec, nil
}

// Validate rejects specs with missing or duplicated identities.
func (s *Spec) Validate() error {
	seen := make(map[string]struct{}, len(s.Accounts))
	for i, account := range s.Accounts {
		if account.Identity == "" {
			return fmt.Errorf("genesis: account %d missing identity", i)
		}
		if _, dup := seen[account.Identity]; dup {
			return fmt.Errorf("genesis: duplicate identity %q", account.Identity)
		}
		seen[account.Identity] = struct{}{}
	}
	return nil
}

// Apply seeds the accounts into the manager. Returns true when seeding ran,
// false when the store already had state.
func (s *Spec) Apply(manager *state.Manager) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	count, err := manager.CountAccounts()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	for _, entry := range s.Accounts {
		account := &types.Account{
			Identity:     entry.Identity,
			Balance:      entry.Balance,
			RegisteredAt: s.Time,
		}
		if err := manager.PutAccount(account); err != nil {
			return false, fmt.Errorf("genesis: seed %q: %w", entry.Identity, err)
		}
	}
	return true, nil
}

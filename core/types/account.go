package types

// Account is the ledger record for a registered participant. Exactly one
// account exists per identity; accounts are created by registration and never
// deleted. The balance moves only through reward credits and transfers.
type Account struct {
	Identity     string `json:"identity"`
	Balance      uint64 `json:"balance"`
	RegisteredAt uint64 `json:"registeredAt"`
}

// Clone returns a defensive copy so callers can mutate freely.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

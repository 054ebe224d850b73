package governance

// Proposal captures a governance question, its running tallies, and the set
// of identities that already voted. Voters grows by exactly one element per
// successful vote; an identity appears at most once.
//
// Nothing currently transitions Active back to false: proposals are open
// indefinitely. The field and its guard are kept so a future closing path
// slots in without a state migration.
type Proposal struct {
	ID          uint64   `json:"id"`
	Creator     string   `json:"creator"`
	Description string   `json:"description"`
	YesVotes    uint64   `json:"yesVotes"`
	NoVotes     uint64   `json:"noVotes"`
	Active      bool     `json:"active"`
	CreatedAt   uint64   `json:"createdAt"`
	Voters      []string `json:"voters"`
}

// Clone returns a defensive copy so callers can mutate freely.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Voters = make([]string, len(p.Voters))
	copy(clone.Voters, p.Voters)
	return &clone
}

// HasVoted reports whether identity already cast a ballot on the proposal.
func (p *Proposal) HasVoted(identity string) bool {
	if p == nil {
		return false
	}
	for _, voter := range p.Voters {
		if voter == identity {
			return true
		}
	}
	return false
}

// VoteChoice enumerates the supported governance ballot selections.
type VoteChoice string

const (
	// VoteChoiceUnspecified marks an unset or invalid ballot and should not
	// be persisted.
	VoteChoiceUnspecified VoteChoice = ""
	// VoteChoiceYes signals support for the proposal contents.
	VoteChoiceYes VoteChoice = "yes"
	// VoteChoiceNo signals opposition to the proposal contents.
	VoteChoiceNo VoteChoice = "no"
)

// Valid reports whether the vote choice represents a supported selection.
func (c VoteChoice) Valid() bool {
	switch c {
	case VoteChoiceYes, VoteChoiceNo:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for logging and event emission.
func (c VoteChoice) String() string { return string(c) }

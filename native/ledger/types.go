package ledger

// RewardAction tags the workflow that triggered a reward credit. The tag is
// informational: it feeds events and metrics but never changes the amount.
type RewardAction uint8

const (
	RewardActionUnspecified RewardAction = iota
	RewardActionRegistration
	RewardActionDataSubmission
	RewardActionValidation
	RewardActionGovernance
)

// String implements fmt.Stringer for logging and event emission.
func (a RewardAction) String() string {
	switch a {
	case RewardActionRegistration:
		return "registration"
	case RewardActionDataSubmission:
		return "data_submission"
	case RewardActionValidation:
		return "validation"
	case RewardActionGovernance:
		return "governance"
	default:
		return "unspecified"
	}
}

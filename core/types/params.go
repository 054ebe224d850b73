package types

// Economic parameters of the data-contribution economy. TotalSupply is the
// nominal figure reported to callers; minting is not capped against it.
const (
	TotalSupply          uint64 = 100_000_000
	RegistrationReward   uint64 = 1_000
	DataSubmissionReward uint64 = 50
	ValidationReward     uint64 = 25
	GovernanceReward     uint64 = 10
	MinProposalBalance   uint64 = 1_000
)

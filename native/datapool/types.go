package datapool

// DataSubmission is a contributed data record moving through the
// submitted → validated state machine. Validated is terminal and set exactly
// once; Validator is empty until then and always differs from Submitter.
type DataSubmission struct {
	ID          uint64 `json:"id"`
	Submitter   string `json:"submitter"`
	Payload     string `json:"payload"`
	Validated   bool   `json:"validated"`
	Validator   string `json:"validator,omitempty"`
	SubmittedAt uint64 `json:"submittedAt"`
}

// Clone returns a defensive copy so callers can mutate freely.
func (s *DataSubmission) Clone() *DataSubmission {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

package ecoerr

import (
	stderrors "errors"
	"fmt"
)

// The engine surfaces every precondition failure as one of these sentinels.
// Callers branch with errors.Is; none of them indicates corruption, so a
// caller may retry where the operation is naturally idempotent (re-submit is
// safe, re-register and re-vote are not).
var (
	ErrUserNotFound        = stderrors.New("ecochain: user not found")
	ErrInsufficientBalance = stderrors.New("ecochain: insufficient balance")
	ErrProposalNotFound    = stderrors.New("ecochain: proposal not found")
	ErrProposalNotActive   = stderrors.New("ecochain: proposal not active")
	ErrAlreadyVoted        = stderrors.New("ecochain: already voted")
	ErrUnauthorized        = stderrors.New("ecochain: unauthorized")
	ErrDataNotFound        = stderrors.New("ecochain: data submission not found")
	ErrAlreadyValidated    = stderrors.New("ecochain: submission already validated")

	// ErrValueTooLarge reports that a record exceeded its declared encoded
	// size bound. The write is rejected and state is left untouched.
	ErrValueTooLarge = stderrors.New("ecochain: encoded record exceeds size bound")
)

// ErrAlreadyRegistered and ErrSelfValidation refine ErrUnauthorized, which
// historically covered both conditions. They still match ErrUnauthorized
// under errors.Is so existing callers keep working.
var (
	ErrAlreadyRegistered = fmt.Errorf("%w: identity already registered", ErrUnauthorized)
	ErrSelfValidation    = fmt.Errorf("%w: validator must differ from submitter", ErrUnauthorized)
)

package core

import (
	"errors"
	"sync"
	"testing"

	"ecochain/core/ecoerr"
	"ecochain/core/types"
	"ecochain/native/governance"
	"ecochain/storage"
)

func newTestNode() *Node {
	return NewNode(storage.NewMemDB())
}

// Mirrors the canonical end-to-end walkthrough: register, propose, register a
// second participant, vote, and try to vote again.
func TestGovernanceScenario(t *testing.T) {
	node := newTestNode()

	alice, err := node.Register("alice")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if alice.Balance != 1000 {
		t.Fatalf("expected registration balance 1000, got %d", alice.Balance)
	}

	proposal, err := node.CreateProposal("alice", "fund new sensors")
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if proposal.ID != 1 || proposal.YesVotes != 0 || proposal.NoVotes != 0 || !proposal.Active || len(proposal.Voters) != 0 {
		t.Fatalf("unexpected fresh proposal: %+v", proposal)
	}

	bob, err := node.Register("bob")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if bob.Balance != 1000 {
		t.Fatalf("expected registration balance 1000, got %d", bob.Balance)
	}

	voted, err := node.VoteOnProposal("bob", 1, governance.VoteChoiceYes)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if voted.YesVotes != 1 {
		t.Fatalf("expected yes tally 1, got %d", voted.YesVotes)
	}
	bobBalance, err := node.Balance("bob")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bobBalance != 1010 {
		t.Fatalf("expected balance 1010 after governance reward, got %d", bobBalance)
	}

	if _, err := node.VoteOnProposal("bob", 1, governance.VoteChoiceYes); !errors.Is(err, ecoerr.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	reloaded, err := node.ProposalByID(1)
	if err != nil {
		t.Fatalf("proposal by id: %v", err)
	}
	if reloaded.YesVotes != 1 {
		t.Fatalf("second vote changed tally: %d", reloaded.YesVotes)
	}
}

func TestSubmissionWorkflowThroughNode(t *testing.T) {
	node := newTestNode()
	if _, err := node.Register("alice"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := node.Register("bob"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	submission, err := node.SubmitData("alice", "soil ph 6.8")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	aliceBalance, _ := node.Balance("alice")
	if aliceBalance != 1000+types.DataSubmissionReward {
		t.Fatalf("submit reward not credited: %d", aliceBalance)
	}

	if _, err := node.ValidateData("bob", submission.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	bobBalance, _ := node.Balance("bob")
	if bobBalance != 1000+types.ValidationReward {
		t.Fatalf("validation reward not credited: %d", bobBalance)
	}

	pending, err := node.UnvalidatedData()
	if err != nil {
		t.Fatalf("unvalidated: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("validated record still pending: %+v", pending)
	}
}

func TestStatsThroughNode(t *testing.T) {
	node := newTestNode()
	if _, err := node.Register("alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := node.Register("bob"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := node.SubmitData("alice", "x"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := node.ValidateData("bob", 1); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := node.CreateProposal("alice", "p"); err != nil {
		t.Fatalf("propose: %v", err)
	}

	snapshot, err := node.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if snapshot.TotalUsers != 2 || snapshot.TotalProposals != 1 || snapshot.ActiveProposals != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.TotalSubmissions != 1 || snapshot.ValidatedSubmissions != 1 {
		t.Fatalf("unexpected submission counts: %+v", snapshot)
	}
	if snapshot.TotalSupply != node.TotalSupply() {
		t.Fatalf("snapshot supply mismatch")
	}
}

// All-or-nothing under concurrent callers: the node lock must serialise
// conflicting transfers so conservation holds.
func TestConcurrentTransfersConserveTokens(t *testing.T) {
	node := newTestNode()
	if _, err := node.Register("alice"); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := node.Register("bob"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = node.Transfer("alice", "bob", 1)
		}()
		go func() {
			defer wg.Done()
			_ = node.Transfer("bob", "alice", 1)
		}()
	}
	wg.Wait()

	aliceBalance, _ := node.Balance("alice")
	bobBalance, _ := node.Balance("bob")
	if aliceBalance+bobBalance != 2000 {
		t.Fatalf("tokens not conserved: %d + %d", aliceBalance, bobBalance)
	}
}

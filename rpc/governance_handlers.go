package rpc

import (
	"net/http"
	"strings"

	"ecochain/native/governance"
)

type createProposalParams struct {
	Caller      string `json:"caller"`
	Description string `json:"description"`
}

type voteParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	Choice string `json:"choice"`
}

type proposalIDParams struct {
	ID uint64 `json:"id"`
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params createProposalParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	if strings.TrimSpace(params.Description) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "description is required", nil)
		return
	}
	proposal, err := s.node.CreateProposal(params.Caller, params.Description)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposal)
}

func (s *Server) handleVote(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params voteParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	if params.ID == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "id is required", nil)
		return
	}
	choice := governance.VoteChoice(strings.ToLower(strings.TrimSpace(params.Choice)))
	if !choice.Valid() {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "choice must be yes or no", params.Choice)
		return
	}
	proposal, err := s.node.VoteOnProposal(params.Caller, params.ID, choice)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposal)
}

func (s *Server) handleListProposals(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	proposals, err := s.node.Proposals()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposals)
}

func (s *Server) handleListActiveProposals(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	proposals, err := s.node.ActiveProposals()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposals)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params proposalIDParams
	if !decodeParams(w, req, &params) {
		return
	}
	if params.ID == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "id is required", nil)
		return
	}
	proposal, err := s.node.ProposalByID(params.ID)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, proposal)
}

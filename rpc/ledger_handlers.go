package rpc

import (
	"net/http"
	"strings"
)

type callerParams struct {
	Caller string `json:"caller"`
}

type identityParams struct {
	Identity string `json:"identity"`
}

type transferParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

type registeredResponse struct {
	Registered bool `json:"registered"`
}

type transferResponse struct {
	OK bool `json:"ok"`
}

// requireIdentity rejects blank identities before they reach the engines.
func requireIdentity(w http.ResponseWriter, req *RPCRequest, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" is required", nil)
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	account, err := s.node.Register(params.Caller)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, account)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	balance, err := s.node.Balance(params.Caller)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResponse{Balance: balance})
}

func (s *Server) handleGetUserInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params callerParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	account, err := s.node.AccountInfo(params.Caller)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, account)
}

func (s *Server) handleIsRegistered(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params identityParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "identity", params.Identity) {
		return
	}
	registered, err := s.node.IsRegistered(params.Identity)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, registeredResponse{Registered: registered})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	accounts, err := s.node.Accounts()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, accounts)
}

func (s *Server) handleTransfer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params transferParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) || !requireIdentity(w, req, "to", params.To) {
		return
	}
	if err := s.node.Transfer(params.Caller, params.To, params.Amount); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, transferResponse{OK: true})
}

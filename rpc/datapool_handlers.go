package rpc

import "net/http"

type submitDataParams struct {
	Caller  string `json:"caller"`
	Payload string `json:"payload"`
}

type validateDataParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
}

func (s *Server) handleSubmitData(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params submitDataParams
	if !decodeParams(w, req, &params) {
		return
	}
	if !requireIdentity(w, req, "caller", params.Caller) {
		return
	}
	submission, err := s.node.SubmitData(params.Caller, params.Payload)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, submission)
}

func (s *Server) handleValidateData(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params validateDataParams
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
	submission, err := s.node.ValidateData(params.Caller, params.ID)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, submission)
}

func (s *Server) handleListUnvalidated(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	submissions, err := s.node.UnvalidatedData()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, submissions)
}

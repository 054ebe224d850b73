package rpc

import "net/http"

type totalSupplyResponse struct {
	TotalSupply uint64 `json:"totalSupply"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	snapshot, err := s.node.Stats()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleGetTotalSupply(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, totalSupplyResponse{TotalSupply: s.node.TotalSupply()})
}

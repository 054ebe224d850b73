package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecochain/core"
	"ecochain/core/ecoerr"
	"ecochain/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError          = -32700
	codeInvalidRequest      = -32600
	codeMethodNotFound      = -32601
	codeInvalidParams       = -32602
	codeServerError         = -32000
	codeUnauthorized        = -32001
	codeNotFound            = -32004
	codeInsufficientBalance = -32005
	codeConflict            = -32009
	codeValueTooLarge       = -32011
)

// Server exposes the node's operations over a single JSON-RPC endpoint plus
// /healthz and /metrics.
type Server struct {
	node   *core.Node
	logger *slog.Logger
}

// NewServer wires an RPC server around the node.
func NewServer(node *core.Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{node: node, logger: logger}
}

// Router assembles the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr and blocks until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body", nil)
		return
	}
	if len(body) > maxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, nil, codeInvalidRequest, "request body too large", nil)
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported JSON-RPC version", nil)
		return
	}

	started := time.Now()
	requestID := uuid.NewString()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(recorder, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
	} else {
		handler(recorder, r, &req)
	}

	outcome := "ok"
	if recorder.status >= http.StatusBadRequest {
		outcome = "error"
	}
	observability.Operations().Observe(req.Method, outcome, time.Since(started))
	s.logger.Info("rpc request",
		slog.String("requestId", requestID),
		slog.String("method", req.Method),
		slog.String("outcome", outcome),
		slog.Duration("elapsed", time.Since(started)),
	)
}

type rpcHandler func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) methods() map[string]rpcHandler {
	return map[string]rpcHandler{
		"eco_register":            s.handleRegister,
		"eco_getBalance":          s.handleGetBalance,
		"eco_getUserInfo":         s.handleGetUserInfo,
		"eco_isRegistered":        s.handleIsRegistered,
		"eco_listAccounts":        s.handleListAccounts,
		"eco_transfer":            s.handleTransfer,
		"eco_submitData":          s.handleSubmitData,
		"eco_validateData":        s.handleValidateData,
		"eco_listUnvalidated":     s.handleListUnvalidated,
		"eco_createProposal":      s.handleCreateProposal,
		"eco_vote":                s.handleVote,
		"eco_listProposals":       s.handleListProposals,
		"eco_listActiveProposals": s.handleListActiveProposals,
		"eco_getProposal":         s.handleGetProposal,
		"eco_getStats":            s.handleGetStats,
		"eco_getTotalSupply":      s.handleGetTotalSupply,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// decodeParams unmarshals the single positional parameter object expected by
// every method that takes arguments.
func decodeParams(w http.ResponseWriter, req *RPCRequest, target interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], target); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

// writeDomainError maps an engine failure onto the closed RPC error taxonomy.
func writeDomainError(w http.ResponseWriter, id interface{}, err error) {
	status, code, message := classify(err)
	writeError(w, status, id, code, message, err.Error())
}

func classify(err error) (int, int, string) {
	switch {
	case errors.Is(err, ecoerr.ErrUserNotFound), errors.Is(err, ecoerr.ErrDataNotFound), errors.Is(err, ecoerr.ErrProposalNotFound):
		return http.StatusNotFound, codeNotFound, "not found"
	case errors.Is(err, ecoerr.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, codeInsufficientBalance, "insufficient balance"
	case errors.Is(err, ecoerr.ErrAlreadyVoted), errors.Is(err, ecoerr.ErrAlreadyValidated), errors.Is(err, ecoerr.ErrProposalNotActive):
		return http.StatusConflict, codeConflict, "operation conflicts with current state"
	case errors.Is(err, ecoerr.ErrValueTooLarge):
		return http.StatusRequestEntityTooLarge, codeValueTooLarge, "record exceeds size bound"
	case errors.Is(err, ecoerr.ErrUnauthorized):
		return http.StatusForbidden, codeUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, codeServerError, "internal error"
	}
}

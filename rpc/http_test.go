package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"ecochain/core"
	"ecochain/core/types"
	"ecochain/storage"
)

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	node := core.NewNode(storage.NewMemDB())
	node.SetNowFunc(func() time.Time { return time.Unix(1700000000, 0).UTC() })
	server := NewServer(node, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) ([]byte, *testResponse) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      7,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded testResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode response %q: %v", body, err)
	}
	return body, &decoded
}

func mustSucceed(t *testing.T, ts *httptest.Server, method string, params interface{}) json.RawMessage {
	t.Helper()
	_, resp := call(t, ts, method, params)
	if resp.Error != nil {
		t.Fatalf("%s failed: %+v", method, resp.Error)
	}
	return resp.Result
}

func TestRegisterAndQueryOverRPC(t *testing.T) {
	ts := newTestServer(t)

	result := mustSucceed(t, ts, "eco_register", map[string]string{"caller": "alice"})
	var account types.Account
	if err := json.Unmarshal(result, &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if account.Identity != "alice" || account.Balance != types.RegistrationReward {
		t.Fatalf("unexpected account: %+v", account)
	}

	var balance struct {
		Balance uint64 `json:"balance"`
	}
	if err := json.Unmarshal(mustSucceed(t, ts, "eco_getBalance", map[string]string{"caller": "alice"}), &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != types.RegistrationReward {
		t.Fatalf("expected balance %d, got %d", types.RegistrationReward, balance.Balance)
	}

	var registered struct {
		Registered bool `json:"registered"`
	}
	if err := json.Unmarshal(mustSucceed(t, ts, "eco_isRegistered", map[string]string{"identity": "alice"}), &registered); err != nil {
		t.Fatalf("decode registered: %v", err)
	}
	if !registered.Registered {
		t.Fatalf("alice should be registered")
	}
}

func TestRPCDomainErrorCodes(t *testing.T) {
	ts := newTestServer(t)
	mustSucceed(t, ts, "eco_register", map[string]string{"caller": "alice"})

	cases := []struct {
		name   string
		method string
		params interface{}
		code   int
	}{
		{"unknown user", "eco_getBalance", map[string]string{"caller": "ghost"}, codeNotFound},
		{"duplicate register", "eco_register", map[string]string{"caller": "alice"}, codeUnauthorized},
		{"missing proposal", "eco_getProposal", map[string]interface{}{"id": 42}, codeNotFound},
		{"overdraft", "eco_transfer", map[string]interface{}{"caller": "alice", "to": "alice", "amount": 1_000_000}, codeInsufficientBalance},
		{"unknown submitter", "eco_submitData", map[string]string{"caller": "ghost", "payload": "x"}, codeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp := call(t, ts, tc.method, tc.params)
			if resp.Error == nil {
				t.Fatalf("expected error, got result %s", resp.Result)
			}
			if resp.Error.Code != tc.code {
				t.Fatalf("expected code %d, got %d (%s)", tc.code, resp.Error.Code, resp.Error.Message)
			}
		})
	}
}

func TestRPCProtocolErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var decoded testResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", decoded.Error)
	}

	_, unknown := call(t, ts, "eco_notAMethod", nil)
	if unknown.Error == nil || unknown.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found, got %+v", unknown.Error)
	}

	_, missing := call(t, ts, "eco_register", nil)
	if missing.Error == nil || missing.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid-params, got %+v", missing.Error)
	}
}

func TestSubmissionAndVotingFlowOverRPC(t *testing.T) {
	ts := newTestServer(t)
	mustSucceed(t, ts, "eco_register", map[string]string{"caller": "alice"})
	mustSucceed(t, ts, "eco_register", map[string]string{"caller": "bob"})

	mustSucceed(t, ts, "eco_submitData", map[string]string{"caller": "alice", "payload": "soil ph 6.8"})
	mustSucceed(t, ts, "eco_validateData", map[string]interface{}{"caller": "bob", "id": 1})

	_, conflict := call(t, ts, "eco_validateData", map[string]interface{}{"caller": "bob", "id": 1})
	if conflict.Error == nil || conflict.Error.Code != codeConflict {
		t.Fatalf("expected conflict on revalidation, got %+v", conflict.Error)
	}

	mustSucceed(t, ts, "eco_createProposal", map[string]string{"caller": "alice", "description": "fund new sensors"})
	mustSucceed(t, ts, "eco_vote", map[string]interface{}{"caller": "bob", "id": 1, "choice": "yes"})

	_, dup := call(t, ts, "eco_vote", map[string]interface{}{"caller": "bob", "id": 1, "choice": "no"})
	if dup.Error == nil || dup.Error.Code != codeConflict {
		t.Fatalf("expected conflict on double vote, got %+v", dup.Error)
	}

	var proposals []map[string]interface{}
	if err := json.Unmarshal(mustSucceed(t, ts, "eco_listActiveProposals", nil), &proposals); err != nil {
		t.Fatalf("decode proposals: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected one active proposal, got %d", len(proposals))
	}
	if fmt.Sprintf("%v", proposals[0]["yesVotes"]) != "1" {
		t.Fatalf("unexpected tally: %v", proposals[0])
	}
}

func TestStatsResponseGolden(t *testing.T) {
	ts := newTestServer(t)
	mustSucceed(t, ts, "eco_register", map[string]string{"caller": "alice"})
	mustSucceed(t, ts, "eco_register", map[string]string{"caller": "bob"})
	mustSucceed(t, ts, "eco_submitData", map[string]string{"caller": "alice", "payload": "soil ph 6.8"})
	mustSucceed(t, ts, "eco_validateData", map[string]interface{}{"caller": "bob", "id": 1})
	mustSucceed(t, ts, "eco_createProposal", map[string]string{"caller": "alice", "description": "fund new sensors"})

	body, resp := call(t, ts, "eco_getStats", nil)
	if resp.Error != nil {
		t.Fatalf("stats failed: %+v", resp.Error)
	}

	g := goldie.New(t)
	g.Assert(t, "stats_response", body)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
}

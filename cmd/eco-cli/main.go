package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	rpcURL string
	caller string
)

func main() {
	root := &cobra.Command{
		Use:           "eco-cli",
		Short:         "Command line client for an ecochain node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rpcURL, "rpc", "http://127.0.0.1:8646", "JSON-RPC endpoint of the node")
	root.PersistentFlags().StringVar(&caller, "as", "", "caller identity for mutating commands")

	root.AddCommand(
		registerCmd(),
		balanceCmd(),
		infoCmd(),
		accountsCmd(),
		registeredCmd(),
		transferCmd(),
		submitCmd(),
		validateCmd(),
		pendingCmd(),
		proposeCmd(),
		voteCmd(),
		proposalsCmd(),
		proposalCmd(),
		statsCmd(),
		supplyCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	} `json:"error"`
}

func call(method string, params interface{}) (json.RawMessage, error) {
	reqParams := []interface{}{}
	if params != nil {
		reqParams = append(reqParams, params)
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: reqParams, ID: 1})
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(rpcURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		if decoded.Error.Data != nil {
			return nil, fmt.Errorf("%s (%v)", decoded.Error.Message, decoded.Error.Data)
		}
		return nil, fmt.Errorf("%s", decoded.Error.Message)
	}
	return decoded.Result, nil
}

func printResult(result json.RawMessage) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		return err
	}
	fmt.Println(pretty.String())
	return nil
}

func run(method string, params interface{}) error {
	result, err := call(method, params)
	if err != nil {
		return err
	}
	return printResult(result)
}

func requireCaller() error {
	if caller == "" {
		return fmt.Errorf("--as <identity> is required")
	}
	return nil
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the caller and receive the registration reward",
		RunE: func(*cobra.Command, []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			return run("eco_register", map[string]interface{}{"caller": caller})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the caller's token balance",
		RunE: func(*cobra.Command, []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			return run("eco_getBalance", map[string]interface{}{"caller": caller})
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the caller's account record",
		RunE: func(*cobra.Command, []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			return run("eco_getUserInfo", map[string]interface{}{"caller": caller})
		},
	}
}

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List every registered account",
		RunE: func(*cobra.Command, []string) error {
			return run("eco_listAccounts", nil)
		},
	}
}

func registeredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registered <identity>",
		Short: "Check whether an identity is registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run("eco_isRegistered", map[string]interface{}{"identity": args[0]})
		},
	}
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer tokens from the caller to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return run("eco_transfer", map[string]interface{}{
				"caller": caller, "to": args[0], "amount": amount,
			})
		},
	}
}

func submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <payload>",
		Short: "Submit a data record for validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			return run("eco_submitData", map[string]interface{}{
				"caller": caller, "payload": args[0],
			})
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <submission-id>",
		Short: "Validate another participant's data record",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			return run("eco_validateData", map[string]interface{}{
				"caller": caller, "id": id,
			})
		},
	}
}

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List submissions awaiting validation",
		RunE: func(*cobra.Command, []string) error {
			return run("eco_listUnvalidated", nil)
		},
	}
}

func proposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propose <description>",
		Short: "Create a governance proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			return run("eco_createProposal", map[string]interface{}{
				"caller": caller, "description": args[0],
			})
		},
	}
}

func voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <proposal-id> <yes|no>",
		Short: "Vote on a governance proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireCaller(); err != nil {
				return err
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}
			return run("eco_vote", map[string]interface{}{
				"caller": caller, "id": id, "choice": args[1],
			})
		},
	}
}

func proposalsCmd() *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List governance proposals",
		RunE: func(*cobra.Command, []string) error {
			if activeOnly {
				return run("eco_listActiveProposals", nil)
			}
			return run("eco_listProposals", nil)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list proposals still accepting votes")
	return cmd
}

func proposalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proposal <id>",
		Short: "Show one governance proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}
			return run("eco_getProposal", map[string]interface{}{"id": id})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show system-wide counters",
		RunE: func(*cobra.Command, []string) error {
			return run("eco_getStats", nil)
		},
	}
}

func supplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supply",
		Short: "Show the nominal total token supply",
		RunE: func(*cobra.Command, []string) error {
			return run("eco_getTotalSupply", nil)
		},
	}
}

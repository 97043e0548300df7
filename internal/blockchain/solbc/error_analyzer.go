package solbc

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// AnchorError is an error reported by an Anchor program in its logs.
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// SimulationFailure is a decoded "Transaction simulation failed" response
// returned by sendTransaction when preflight is enabled.
type SimulationFailure struct {
	Code    int
	Message string
	Logs    []string
	// Err has the same shape as a signature status error,
	// e.g. {"InstructionError":[0,{"Custom":101}]}.
	Err    interface{}
	Anchor *AnchorError
}

// Example: "Program log: AnchorError occurred. Error Code: InstructionFallbackNotFound. Error Number: 101. Error Message: Fallback functions are not supported."
var anchorLogPattern = regexp.MustCompile(`Error Code: (\w+)\. Error Number: (\d+)\. Error Message: (.*?)\.?$`)

// AnalyzeSendError extracts preflight simulation details from err.
// It reports false for any other kind of error.
func AnalyzeSendError(err error) (*SimulationFailure, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}
	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return nil, false
	}

	failure := &SimulationFailure{Code: rpcErr.Code, Message: rpcErr.Message}
	data, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return failure, true
	}

	failure.Err = data["err"]
	logs, _ := data["logs"].([]interface{})
	for _, entry := range logs {
		line, ok := entry.(string)
		if !ok {
			continue
		}
		failure.Logs = append(failure.Logs, line)
		if failure.Anchor == nil && strings.Contains(line, "AnchorError occurred") {
			failure.Anchor = parseAnchorErrorLog(line)
		}
	}
	return failure, true
}

func parseAnchorErrorLog(line string) *AnchorError {
	m := anchorLogPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	code, _ := strconv.Atoi(m[2])
	return &AnchorError{Code: code, Name: m[1], Msg: m[3]}
}

// internal/report/format.go
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solbc/transaction"
)

// Line is one line of diagnostic output. Error lines go to the error side of a Sink.
type Line struct {
	Text  string
	Error bool
}

func info(format string, args ...interface{}) Line {
	return Line{Text: fmt.Sprintf(format, args...)}
}

// Section returns the divider printed between output blocks.
func Section() []Line {
	return []Line{{Text: strings.Repeat("-", 53)}}
}

// NewKeypair describes a freshly generated keypair.
func NewKeypair(pubkey solana.PublicKey) []Line {
	return []Line{
		info("Created a new keypair."),
		info("   New account Public Key: %s", pubkey),
	}
}

// NewMint describes a freshly created mint. Zero decimals means an NFT.
func NewMint(pubkey solana.PublicKey, decimals uint8) []Line {
	kind := "SPL Token"
	if decimals == 0 {
		kind = "NFT"
	}
	return []Line{
		info("Created a new mint."),
		info("   New mint Public Key: %s", pubkey),
		info("   Mint type: %s", kind),
	}
}

// Transaction describes a classified confirmation outcome.
func Transaction(outcome transaction.Outcome, signature solana.Signature) []Line {
	var head Line
	switch outcome.Kind {
	case transaction.OutcomeConfirmed:
		head = info("Transaction confirmed!")
	case transaction.OutcomeFailed:
		head = Line{Text: "Transaction failed: " + FormatReason(outcome.Reason), Error: true}
	default:
		head = info("Transaction not yet confirmed.")
	}
	return []Line{
		head,
		info("   Transaction signature: %s", signature),
	}
}

// Balance describes an account balance in SOL.
func Balance(name string, pubkey solana.PublicKey, lamports uint64) []Line {
	return []Line{
		info("   %s:", name),
		info("       Account Pubkey: %s", pubkey),
		info("       Account Balance: %s SOL", FormatSOL(lamports)),
	}
}

// AccountInfo dumps an account record. A nil account prints as null.
func AccountInfo(account *rpc.Account) []Line {
	lines := []Line{info("Account Info:")}
	if account == nil {
		return append(lines, info("   null"))
	}

	dataLen := 0
	if account.Data != nil {
		dataLen = len(account.Data.GetBinary())
	}
	rentEpoch := "0"
	if account.RentEpoch != nil {
		rentEpoch = account.RentEpoch.String()
	}

	return append(lines,
		info("   Lamports: %d (%s SOL)", account.Lamports, FormatSOL(account.Lamports)),
		info("   Owner: %s", account.Owner),
		info("   Executable: %t", account.Executable),
		info("   Rent Epoch: %s", rentEpoch),
		info("   Data Length: %d", dataLen),
	)
}

// AccountView is the JSON shape of an account used by --json output.
type AccountView struct {
	Pubkey     string  `json:"pubkey"`
	Exists     bool    `json:"exists"`
	Lamports   uint64  `json:"lamports"`
	SOL        string  `json:"sol"`
	Owner      string  `json:"owner,omitempty"`
	Executable bool    `json:"executable"`
	RentEpoch  *string `json:"rent_epoch,omitempty"`
	DataLength int     `json:"data_length"`
}

// NewAccountView converts an account record to its JSON view.
func NewAccountView(pubkey solana.PublicKey, account *rpc.Account) AccountView {
	view := AccountView{Pubkey: pubkey.String(), SOL: FormatSOL(0)}
	if account == nil {
		return view
	}
	view.Exists = true
	view.Lamports = account.Lamports
	view.SOL = FormatSOL(account.Lamports)
	view.Owner = account.Owner.String()
	view.Executable = account.Executable
	if account.RentEpoch != nil {
		epoch := account.RentEpoch.String()
		view.RentEpoch = &epoch
	}
	if account.Data != nil {
		view.DataLength = len(account.Data.GetBinary())
	}
	return view
}

// FormatSOL renders lamports as SOL without floating point rounding.
func FormatSOL(lamports uint64) string {
	whole := lamports / solana.LAMPORTS_PER_SOL
	frac := lamports % solana.LAMPORTS_PER_SOL
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return strconv.FormatUint(whole, 10) + "." + fracStr
}

// FormatReason renders a ledger error value as reported: strings verbatim,
// structured values as compact JSON.
func FormatReason(reason interface{}) string {
	switch v := reason.(type) {
	case nil:
		return "null"
	case string:
		return v
	case error:
		return v.Error()
	}
	data, err := json.Marshal(reason)
	if err != nil {
		return fmt.Sprintf("%v", reason)
	}
	return string(data)
}

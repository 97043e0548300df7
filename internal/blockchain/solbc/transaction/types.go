// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrAnchorFetch  = errors.New("failed to fetch recent blockhash")
	ErrSigning      = errors.New("failed to sign transaction")
	ErrNoSigners    = errors.New("no signers provided")
	ErrCompile      = errors.New("failed to compile transaction message")
	ErrStatusQuery  = errors.New("failed to query signature status")
	ErrStillPending = errors.New("transaction still pending")
)

// BlockhashSource отдаёт свежий blockhash. Реализуется solbc.Client.
type BlockhashSource interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}

// StatusSource отдаёт статус одной подписи. nil без ошибки означает, что узел
// ещё не видел транзакцию.
type StatusSource interface {
	GetSignatureStatus(ctx context.Context, signature solana.Signature) (*rpc.SignatureStatusesResult, error)
}

// AnchorFetchError оборачивает сетевую ошибку получения blockhash.
type AnchorFetchError struct {
	Err error
}

func (e *AnchorFetchError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAnchorFetch, e.Err)
}

func (e *AnchorFetchError) Unwrap() []error {
	return []error{ErrAnchorFetch, e.Err}
}

// SigningError описывает подписанта, который не смог подписать сообщение.
type SigningError struct {
	Signer solana.PublicKey
	Err    error
}

func (e *SigningError) Error() string {
	if e.Signer.IsZero() {
		return fmt.Sprintf("%v: %v", ErrSigning, e.Err)
	}
	return fmt.Sprintf("%v with %s: %v", ErrSigning, e.Signer, e.Err)
}

func (e *SigningError) Unwrap() []error {
	return []error{ErrSigning, e.Err}
}

// StatusQueryError означает, что сам запрос статуса не удался.
// Это не то же самое, что OutcomeFailed.
type StatusQueryError struct {
	Signature solana.Signature
	Err       error
}

func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrStatusQuery, e.Signature, e.Err)
}

func (e *StatusQueryError) Unwrap() []error {
	return []error{ErrStatusQuery, e.Err}
}

// OutcomeKind is the classified state of a submitted transaction.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeConfirmed
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome is recomputed on every query and never stored.
type Outcome struct {
	Kind OutcomeKind
	// Reason is the ledger error value as reported, only set for OutcomeFailed.
	Reason interface{}
	// Level is the reported confirmation level, empty when the ledger has no record.
	Level rpc.ConfirmationStatusType
	Slot  uint64
}

func (o Outcome) Settled() bool {
	return o.Kind != OutcomePending
}

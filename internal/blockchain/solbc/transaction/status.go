// internal/blockchain/solbc/transaction/status.go
package transaction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Classify сводит снимок статуса к одному из трех исходов.
// Подтверждение проверяется раньше ошибки: confirmed со старым err считается успехом.
func Classify(status *rpc.SignatureStatusesResult) Outcome {
	if status == nil {
		return Outcome{Kind: OutcomePending}
	}

	outcome := Outcome{
		Level: status.ConfirmationStatus,
		Slot:  status.Slot,
	}

	switch {
	case status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed,
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized:
		outcome.Kind = OutcomeConfirmed
	case status.Err != nil:
		outcome.Kind = OutcomeFailed
		outcome.Reason = status.Err
	default:
		outcome.Kind = OutcomePending
	}

	return outcome
}

// CheckStatus делает один запрос статуса и классифицирует ответ.
func CheckStatus(ctx context.Context, client StatusSource, signature solana.Signature) (Outcome, error) {
	status, err := client.GetSignatureStatus(ctx, signature)
	if err != nil {
		return Outcome{}, &StatusQueryError{Signature: signature, Err: err}
	}
	return Classify(status), nil
}

// AwaitOptions настраивает опрос статуса в AwaitSettled.
type AwaitOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultAwaitOptions matches the old fixed 500ms ticker with a 30s deadline.
func DefaultAwaitOptions() AwaitOptions {
	return AwaitOptions{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

// AwaitSettled опрашивает статус, пока транзакция не станет подтвержденной или
// упавшей. Ошибка запроса прекращает опрос сразу. Если время вышло, возвращается
// последний исход вместе с ErrStillPending.
func AwaitSettled(ctx context.Context, client StatusSource, signature solana.Signature, opts AwaitOptions) (Outcome, error) {
	defaults := DefaultAwaitOptions()
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = defaults.InitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = defaults.MaxInterval
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = defaults.MaxElapsedTime
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval

	var last Outcome
	op := func() (Outcome, error) {
		outcome, err := CheckStatus(ctx, client, signature)
		if err != nil {
			return Outcome{}, backoff.Permanent(err)
		}
		last = outcome
		if !outcome.Settled() {
			return outcome, ErrStillPending
		}
		return outcome, nil
	}

	outcome, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
	)
	if err != nil {
		return last, err
	}
	return outcome, nil
}

// internal/blockchain/solbc/transaction/status_test.go
package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		status     *rpc.SignatureStatusesResult
		wantKind   OutcomeKind
		wantReason interface{}
	}{
		{
			name:     "finalized",
			status:   &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusFinalized},
			wantKind: OutcomeConfirmed,
		},
		{
			name:     "confirmed",
			status:   &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
			wantKind: OutcomeConfirmed,
		},
		{
			name:       "error payload",
			status:     &rpc.SignatureStatusesResult{Err: "InsufficientFunds"},
			wantKind:   OutcomeFailed,
			wantReason: "InsufficientFunds",
		},
		{
			name: "processed with error",
			status: &rpc.SignatureStatusesResult{
				ConfirmationStatus: rpc.ConfirmationStatusProcessed,
				Err:                map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
			},
			wantKind:   OutcomeFailed,
			wantReason: map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
		},
		{
			name: "confirmed wins over stale error",
			status: &rpc.SignatureStatusesResult{
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				Err:                "BlockhashNotFound",
			},
			wantKind: OutcomeConfirmed,
		},
		{
			name:     "processed only",
			status:   &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusProcessed},
			wantKind: OutcomePending,
		},
		{
			name:     "no record",
			status:   nil,
			wantKind: OutcomePending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.status)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, got, Classify(tt.status), "classification must be repeatable")
		})
	}
}

func TestClassify_KeepsLevelAndSlot(t *testing.T) {
	got := Classify(&rpc.SignatureStatusesResult{
		Slot:               42,
		ConfirmationStatus: rpc.ConfirmationStatusFinalized,
	})
	assert.Equal(t, rpc.ConfirmationStatusFinalized, got.Level)
	assert.Equal(t, uint64(42), got.Slot)
	assert.True(t, got.Settled())
}

func TestCheckStatus(t *testing.T) {
	ctx := context.Background()
	sig := solana.Signature{1, 2, 3}

	t.Run("absent signature is pending", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(nil, nil)

		got, err := CheckStatus(ctx, ledger, sig)
		require.NoError(t, err)
		assert.Equal(t, OutcomePending, got.Kind)
	})

	t.Run("idempotent on unchanged status", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(
			&rpc.SignatureStatusesResult{Err: "InsufficientFunds"}, nil)

		first, err := CheckStatus(ctx, ledger, sig)
		require.NoError(t, err)
		second, err := CheckStatus(ctx, ledger, sig)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, OutcomeFailed, first.Kind)
		ledger.AssertNumberOfCalls(t, "GetSignatureStatus", 2)
	})

	t.Run("query failure is not an on-ledger failure", func(t *testing.T) {
		cause := errors.New("i/o timeout")
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(nil, cause)

		got, err := CheckStatus(ctx, ledger, sig)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStatusQuery)
		assert.ErrorIs(t, err, cause)

		var queryErr *StatusQueryError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, sig, queryErr.Signature)
		assert.NotEqual(t, OutcomeFailed, got.Kind)
	})
}

func fastAwait() AwaitOptions {
	return AwaitOptions{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  200 * time.Millisecond,
	}
}

func TestAwaitSettled(t *testing.T) {
	ctx := context.Background()
	sig := solana.Signature{9}

	t.Run("returns once confirmed", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(nil, nil).Twice()
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(
			&rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}, nil)

		got, err := AwaitSettled(ctx, ledger, sig, fastAwait())
		require.NoError(t, err)
		assert.Equal(t, OutcomeConfirmed, got.Kind)
		ledger.AssertNumberOfCalls(t, "GetSignatureStatus", 3)
	})

	t.Run("failed outcome stops polling", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(
			&rpc.SignatureStatusesResult{Err: "InsufficientFunds"}, nil)

		got, err := AwaitSettled(ctx, ledger, sig, fastAwait())
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, got.Kind)
		assert.Equal(t, "InsufficientFunds", got.Reason)
		ledger.AssertNumberOfCalls(t, "GetSignatureStatus", 1)
	})

	t.Run("query error is permanent", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(nil, errors.New("503"))

		_, err := AwaitSettled(ctx, ledger, sig, fastAwait())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStatusQuery)
		ledger.AssertNumberOfCalls(t, "GetSignatureStatus", 1)
	})

	t.Run("gives up while pending", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetSignatureStatus", mock.Anything, sig).Return(
			&rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusProcessed}, nil)

		opts := fastAwait()
		opts.MaxElapsedTime = 20 * time.Millisecond
		got, err := AwaitSettled(ctx, ledger, sig, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStillPending)
		assert.Equal(t, OutcomePending, got.Kind)
		assert.Equal(t, rpc.ConfirmationStatusProcessed, got.Level)
	})
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "pending", OutcomePending.String())
	assert.Equal(t, "confirmed", OutcomeConfirmed.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}

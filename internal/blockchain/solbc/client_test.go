// internal/blockchain/solbc/client_test.go
package solbc

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-txkit/internal/utils/metrics"
)

// MockRPC реализует интерфейс RPC
type MockRPC struct {
	mock.Mock
}

func (m *MockRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	args := m.Called(ctx, commitment)
	out, _ := args.Get(0).(*rpc.GetLatestBlockhashResult)
	return out, args.Error(1)
}

func (m *MockRPC) GetSignatureStatuses(ctx context.Context, search bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, search, signatures)
	out, _ := args.Get(0).(*rpc.GetSignatureStatusesResult)
	return out, args.Error(1)
}

func (m *MockRPC) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	args := m.Called(ctx, account, commitment)
	out, _ := args.Get(0).(*rpc.GetBalanceResult)
	return out, args.Error(1)
}

func (m *MockRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, account, opts)
	out, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return out, args.Error(1)
}

func (m *MockRPC) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func newTestClient(t *testing.T, opts Options) (*Client, *MockRPC, *metrics.Collector) {
	m := new(MockRPC)
	collector := metrics.NewCollector()
	return NewClientWithRPC(m, opts, zaptest.NewLogger(t), collector), m, collector
}

func metricValue(t *testing.T, c *metrics.Collector, name string) int {
	t.Helper()
	count, err := testutil.GatherAndCount(c.Registry(), name)
	require.NoError(t, err)
	return count
}

func TestClient_GetRecentBlockhash(t *testing.T) {
	ctx := context.Background()
	var hash solana.Hash
	copy(hash[:], "0123456789abcdef0123456789abcdef")

	t.Run("uses configured commitment", func(t *testing.T) {
		client, m, collector := newTestClient(t, Options{Commitment: rpc.CommitmentFinalized})
		m.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(
			&rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{Blockhash: hash}}, nil)

		got, err := client.GetRecentBlockhash(ctx)
		require.NoError(t, err)
		assert.Equal(t, hash, got)
		m.AssertExpectations(t)
		assert.Equal(t, 1, metricValue(t, collector, "solana_txkit_rpc_requests_total"))
	})

	t.Run("wraps transport error", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		cause := errors.New("dial tcp: connection refused")
		m.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentConfirmed).Return(nil, cause)

		_, err := client.GetRecentBlockhash(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)

		var rpcErr *Error
		require.ErrorAs(t, err, &rpcErr)
		assert.Equal(t, "getLatestBlockhash", rpcErr.Method)
	})

	t.Run("empty value", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		m.On("GetLatestBlockhash", mock.Anything, mock.Anything).Return(&rpc.GetLatestBlockhashResult{}, nil)

		_, err := client.GetRecentBlockhash(ctx)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestClient_GetSignatureStatus(t *testing.T) {
	ctx := context.Background()
	sig := solana.Signature{7}

	t.Run("single status", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		status := &rpc.SignatureStatusesResult{Slot: 5, ConfirmationStatus: rpc.ConfirmationStatusFinalized}
		m.On("GetSignatureStatuses", mock.Anything, false, []solana.Signature{sig}).Return(
			&rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{status}}, nil)

		got, err := client.GetSignatureStatus(ctx, sig)
		require.NoError(t, err)
		assert.Same(t, status, got)
	})

	t.Run("unknown signature", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{SearchHistory: true})
		m.On("GetSignatureStatuses", mock.Anything, true, []solana.Signature{sig}).Return(
			&rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil)

		got, err := client.GetSignatureStatus(ctx, sig)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("query failure", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		m.On("GetSignatureStatuses", mock.Anything, false, mock.Anything).Return(nil, errors.New("429"))

		got, err := client.GetSignatureStatus(ctx, sig)
		require.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestClient_GetBalance(t *testing.T) {
	ctx := context.Background()
	pubkey := solana.NewWallet().PublicKey()

	client, m, _ := newTestClient(t, Options{})
	m.On("GetBalance", mock.Anything, pubkey, rpc.CommitmentConfirmed).Return(
		&rpc.GetBalanceResult{Value: 1_500_000_000}, nil).Once()
	m.On("GetBalance", mock.Anything, pubkey, rpc.CommitmentConfirmed).Return(nil, errors.New("boom")).Once()

	got, err := client.GetBalance(ctx, pubkey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), got)

	_, err = client.GetBalance(ctx, pubkey)
	assert.Error(t, err)
}

func TestClient_GetAccountInfo(t *testing.T) {
	ctx := context.Background()
	pubkey := solana.NewWallet().PublicKey()

	t.Run("missing account", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		m.On("GetAccountInfoWithOpts", mock.Anything, pubkey, mock.Anything).Return(nil, rpc.ErrNotFound)

		got, err := client.GetAccountInfo(ctx, pubkey)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("existing account", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		account := &rpc.Account{Lamports: 42, Owner: solana.SystemProgramID}
		m.On("GetAccountInfoWithOpts", mock.Anything, pubkey, mock.MatchedBy(func(o *rpc.GetAccountInfoOpts) bool {
			return o.Encoding == solana.EncodingBase64 && o.Commitment == rpc.CommitmentConfirmed
		})).Return(&rpc.GetAccountInfoResult{Value: account}, nil)

		got, err := client.GetAccountInfo(ctx, pubkey)
		require.NoError(t, err)
		assert.Same(t, account, got)
	})

	t.Run("transport error", func(t *testing.T) {
		client, m, _ := newTestClient(t, Options{})
		m.On("GetAccountInfoWithOpts", mock.Anything, pubkey, mock.Anything).Return(nil, errors.New("eof"))

		_, err := client.GetAccountInfo(ctx, pubkey)
		assert.Error(t, err)
	})
}

func TestClient_SendTransaction(t *testing.T) {
	ctx := context.Background()
	tx := &solana.Transaction{}
	sig := solana.Signature{1, 1}

	client, m, _ := newTestClient(t, Options{SkipPreflight: true})
	m.On("SendTransactionWithOpts", mock.Anything, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	}).Return(sig, nil)

	got, err := client.SendTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, sig, got)
	m.AssertExpectations(t)
}

func TestClient_SendTransaction_PreflightFailure(t *testing.T) {
	tx := &solana.Transaction{}
	rpcErr := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1",
		Data:    map[string]interface{}{"err": "InsufficientFundsForRent", "logs": []interface{}{"Program log: Error: insufficient lamports"}},
	}

	client, m, _ := newTestClient(t, Options{})
	m.On("SendTransactionWithOpts", mock.Anything, tx, mock.Anything).Return(solana.Signature{}, rpcErr)

	_, err := client.SendTransaction(context.Background(), tx)
	require.Error(t, err)

	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, "sendTransaction", clientErr.Method)

	failure, ok := AnalyzeSendError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Program log: Error: insufficient lamports"}, failure.Logs)
}

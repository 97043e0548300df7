// internal/blockchain/solbc/transaction/mocks_test.go
package transaction

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
)

// MockLedger реализует BlockhashSource и StatusSource
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockLedger) GetSignatureStatus(ctx context.Context, signature solana.Signature) (*rpc.SignatureStatusesResult, error) {
	args := m.Called(ctx, signature)
	status, _ := args.Get(0).(*rpc.SignatureStatusesResult)
	return status, args.Error(1)
}

func testHash(label string) solana.Hash {
	var h solana.Hash
	copy(h[:], label)
	return h
}

func newKey() solana.PrivateKey {
	return solana.NewWallet().PrivateKey
}

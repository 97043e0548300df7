// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-txkit/internal/blockchain"
	"github.com/rovshanmuradov/solana-txkit/internal/utils/metrics"
)

// RPC: подмножество методов *rpc.Client, которое нам нужно.
// Позволяет подменять узел в тестах.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

// Options задает уровень commitment и поведение запросов.
type Options struct {
	Commitment    rpc.CommitmentType
	SearchHistory bool
	SkipPreflight bool
}

// Client: тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
// Состояния между вызовами не хранит: каждый метод делает ровно один запрос.
type Client struct {
	rpc     RPC
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewClient создаёт клиент по URL узла.
func NewClient(rpcURL string, opts Options, logger *zap.Logger, m *metrics.Collector) *Client {
	return NewClientWithRPC(rpc.New(rpcURL), opts, logger, m)
}

// NewClientWithRPC создаёт клиент поверх готовой реализации RPC.
func NewClientWithRPC(r RPC, opts Options, logger *zap.Logger, m *metrics.Collector) *Client {
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:     r,
		opts:    opts,
		logger:  logger.Named("solbc-client"),
		metrics: m,
	}
}

// track засекает вызов; возвращаемая функция читает итоговую ошибку через указатель.
func (c *Client) track(method string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		c.metrics.RecordRPC(method, time.Since(start), *errp)
	}
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (hash solana.Hash, err error) {
	defer c.track("getLatestBlockhash")(&err)

	result, err := c.rpc.GetLatestBlockhash(ctx, c.opts.Commitment)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, newError("getLatestBlockhash", err)
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, newError("getLatestBlockhash", ErrInvalidResponse)
	}

	c.logger.Debug("Fetched blockhash",
		zap.String("blockhash", result.Value.Blockhash.String()),
		zap.Uint64("last_valid_block_height", result.Value.LastValidBlockHeight))
	return result.Value.Blockhash, nil
}

// GetSignatureStatus получает статус одной транзакции.
// Если узел ещё не видел подпись, возвращает nil без ошибки.
func (c *Client) GetSignatureStatus(ctx context.Context, signature solana.Signature) (status *rpc.SignatureStatusesResult, err error) {
	defer c.track("getSignatureStatuses")(&err)

	result, err := c.rpc.GetSignatureStatuses(ctx, c.opts.SearchHistory, signature)
	if err != nil {
		c.logger.Error("GetSignatureStatuses error",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, newError("getSignatureStatuses", err)
	}
	if result == nil || len(result.Value) == 0 {
		return nil, nil
	}
	return result.Value[0], nil
}

// GetBalance получает баланс аккаунта в лампортах.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (balance uint64, err error) {
	defer c.track("getBalance")(&err)

	result, err := c.rpc.GetBalance(ctx, pubkey, c.opts.Commitment)
	if err != nil {
		c.logger.Error("GetBalance error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return 0, newError("getBalance", err)
	}
	if result == nil {
		return 0, newError("getBalance", ErrInvalidResponse)
	}
	return result.Value, nil
}

// GetAccountInfo получает информацию об аккаунте. Отсутствующий аккаунт возвращается как (nil, nil).
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (account *rpc.Account, err error) {
	defer c.track("getAccountInfo")(&err)

	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.opts.Commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, newError("getAccountInfo", err)
	}
	if result == nil {
		return nil, nil
	}
	return result.Value, nil
}

// SendTransaction отправляет подписанную транзакцию. Повторов нет.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (sig solana.Signature, err error) {
	defer c.track("sendTransaction")(&err)

	sig, err = c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       c.opts.SkipPreflight,
		PreflightCommitment: c.opts.Commitment,
	})
	if err != nil {
		if failure, ok := AnalyzeSendError(err); ok {
			fields := []zap.Field{zap.Strings("logs", failure.Logs), zap.Any("err", failure.Err)}
			if failure.Anchor != nil {
				fields = append(fields,
					zap.Int("anchor_code", failure.Anchor.Code),
					zap.String("anchor_name", failure.Anchor.Name),
				)
			}
			c.logger.Warn("Preflight simulation failed", fields...)
		} else {
			c.logger.Error("SendTransaction error", zap.Error(err))
		}
		return solana.Signature{}, newError("sendTransaction", err)
	}
	return sig, nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)

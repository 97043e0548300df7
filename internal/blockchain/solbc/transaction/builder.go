// internal/blockchain/solbc/transaction/builder.go
package transaction

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidKey        = errors.New("invalid private key material")
	ErrNotRequiredSigner = errors.New("key is not a required signer of the message")
)

// Build создает версионированную транзакцию на свежем blockhash и подписывает ее
// каждым подписантом в переданном порядке.
//
// Инструкции компилируются ровно в том порядке, в каком переданы. Плательщик
// может отсутствовать в signers, тогда его слот подписи остается пустым.
func Build(
	ctx context.Context,
	client BlockhashSource,
	payer solana.PublicKey,
	signers []solana.PrivateKey,
	instructions []solana.Instruction,
) (*solana.Transaction, error) {
	if len(signers) == 0 && requiresSignature(instructions) {
		return nil, &SigningError{Err: ErrNoSigners}
	}

	blockhash, err := client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, &AnchorFetchError{Err: err}
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	tx.Message.SetVersion(solana.MessageVersionV0)

	if err := sign(tx, signers); err != nil {
		return nil, err
	}

	return tx, nil
}

// sign кладет подпись каждого ключа в его слот среди обязательных подписантов.
// Подписи собираются в отдельный срез, поэтому при ошибке tx не меняется.
func sign(tx *solana.Transaction, signers []solana.PrivateKey) error {
	content, err := tx.Message.MarshalBinary()
	if err != nil {
		return &SigningError{Err: fmt.Errorf("failed to serialize message: %w", err)}
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if required > len(tx.Message.AccountKeys) {
		return &SigningError{Err: fmt.Errorf("message header requires %d signatures but has %d keys",
			required, len(tx.Message.AccountKeys))}
	}
	signerKeys := tx.Message.AccountKeys[:required]
	signatures := make([]solana.Signature, required)

	for _, signer := range signers {
		if err := validateKey(signer); err != nil {
			return &SigningError{Err: err}
		}

		pub := signer.PublicKey()
		idx := slices.IndexFunc(signerKeys, pub.Equals)
		if idx < 0 {
			return &SigningError{Signer: pub, Err: ErrNotRequiredSigner}
		}

		sig, err := signer.Sign(content)
		if err != nil {
			return &SigningError{Signer: pub, Err: err}
		}
		signatures[idx] = sig
	}

	tx.Signatures = signatures
	return nil
}

func validateKey(key solana.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, ed25519.PrivateKeySize, len(key))
	}
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived, key) {
		return fmt.Errorf("%w: public half does not match seed", ErrInvalidKey)
	}
	return nil
}

func requiresSignature(instructions []solana.Instruction) bool {
	for _, ix := range instructions {
		for _, acc := range ix.Accounts() {
			if acc != nil && acc.IsSigner {
				return true
			}
		}
	}
	return false
}

// SignedBy возвращает ключи, чьи слоты содержат подпись, в порядке слотов.
func SignedBy(tx *solana.Transaction) []solana.PublicKey {
	var keys []solana.PublicKey
	for i, sig := range tx.Signatures {
		if sig == (solana.Signature{}) || i >= len(tx.Message.AccountKeys) {
			continue
		}
		keys = append(keys, tx.Message.AccountKeys[i])
	}
	return keys
}

// Encode возвращает транзакцию в base64, как ее принимает sendTransaction.
func Encode(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

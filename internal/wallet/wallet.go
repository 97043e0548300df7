// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrCredentialLoad: общая причина для всех ошибок загрузки ключа.
var ErrCredentialLoad = errors.New("failed to load credentials")

// CredentialLoadError описывает файл или строку, из которых не удалось получить ключ.
type CredentialLoadError struct {
	Source string
	Err    error
}

func (e *CredentialLoadError) Error() string {
	return fmt.Sprintf("%v from %s: %v", ErrCredentialLoad, e.Source, e.Err)
}

func (e *CredentialLoadError) Unwrap() []error {
	return []error{ErrCredentialLoad, e.Err}
}

// Wallet представляет кошелёк Solana.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, &CredentialLoadError{Source: "base58 string", Err: fmt.Errorf("failed to decode private key: %w", err)}
	}
	w, err := fromSecret(privateKeyBytes)
	if err != nil {
		return nil, &CredentialLoadError{Source: "base58 string", Err: err}
	}
	return w, nil
}

// LoadFromFile читает ключ в формате solana-keygen: JSON-массив из 64 байт.
func LoadFromFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CredentialLoadError{Source: path, Err: err}
	}

	// []byte в encoding/json декодируется из base64, поэтому читаем как []int
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CredentialLoadError{Source: path, Err: fmt.Errorf("malformed key file: %w", err)}
	}

	secret := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, &CredentialLoadError{Source: path, Err: fmt.Errorf("byte %d out of range: %d", i, v)}
		}
		secret[i] = byte(v)
	}

	w, err := fromSecret(secret)
	if err != nil {
		return nil, &CredentialLoadError{Source: path, Err: err}
	}
	return w, nil
}

// Generate создаёт случайный кошелёк.
func Generate() (*Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Wallet{PrivateKey: key, PublicKey: key.PublicKey()}, nil
}

// SaveToFile записывает ключ в том же формате, что читает LoadFromFile.
// Существующий файл не перезаписывается.
func (w *Wallet) SaveToFile(path string) error {
	raw := make([]int, len(w.PrivateKey))
	for i, b := range w.PrivateKey {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

func fromSecret(secret []byte) (*Wallet, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
	}
	if !bytes.Equal(ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize]), secret) {
		return nil, errors.New("public key does not match secret seed")
	}
	privateKey := solana.PrivateKey(secret)
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// Keys возвращает приватные ключи кошельков в том же порядке.
func Keys(wallets ...*Wallet) []solana.PrivateKey {
	keys := make([]solana.PrivateKey, 0, len(wallets))
	for _, w := range wallets {
		keys = append(keys, w.PrivateKey)
	}
	return keys
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}

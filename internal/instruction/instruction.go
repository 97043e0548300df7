// Package instruction decodes pre-built Solana instructions from a JSON file.
package instruction

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
)

var ErrEmpty = errors.New("instruction list is empty")

// AccountSpec is one account reference of an instruction.
type AccountSpec struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// Spec is the JSON form of one instruction. Data is standard base64.
type Spec struct {
	ProgramID string        `json:"program_id"`
	Accounts  []AccountSpec `json:"accounts"`
	Data      string        `json:"data"`
}

// Decode reads a JSON array of instruction specs and returns them in file order.
func Decode(r io.Reader) ([]solana.Instruction, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var specs []Spec
	if err := dec.Decode(&specs); err != nil {
		return nil, fmt.Errorf("failed to parse instructions: %w", err)
	}
	if len(specs) == 0 {
		return nil, ErrEmpty
	}

	out := make([]solana.Instruction, 0, len(specs))
	for i, spec := range specs {
		ix, err := spec.Instruction()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, ix)
	}
	return out, nil
}

// LoadFile decodes the instruction file at path.
func LoadFile(path string) ([]solana.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instructions file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Instruction converts the spec into a generic solana instruction.
func (s Spec) Instruction() (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(s.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program_id %q: %w", s.ProgramID, err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(s.Accounts))
	for j, acc := range s.Accounts {
		pk, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("account %d: invalid pubkey %q: %w", j, acc.Pubkey, err)
		}
		accounts = append(accounts, solana.NewAccountMeta(pk, acc.IsWritable, acc.IsSigner))
	}

	data, err := base64.StdEncoding.DecodeString(s.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

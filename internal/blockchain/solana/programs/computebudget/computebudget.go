// internal/blockchain/solana/programs/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// Дискриминаторы инструкций программы
const (
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3
)

// Config задает бюджет транзакции. Нулевое поле означает, что
// соответствующая инструкция не добавляется.
type Config struct {
	Units         uint32
	MicroLamports uint64
}

func (c Config) IsZero() bool {
	return c.Units == 0 && c.MicroLamports == 0
}

// Instructions создает инструкции бюджета: сначала лимит, потом цена.
func (c Config) Instructions() ([]solana.Instruction, error) {
	var ixs []solana.Instruction
	if c.Units > 0 {
		ix, err := SetUnitLimit(c.Units)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}
	if c.MicroLamports > 0 {
		ix, err := SetUnitPrice(c.MicroLamports)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}
	return ixs, nil
}

// Prepend ставит инструкции бюджета перед ixs, не меняя их порядок.
func (c Config) Prepend(ixs []solana.Instruction) ([]solana.Instruction, error) {
	budget, err := c.Instructions()
	if err != nil {
		return nil, err
	}
	return append(budget, ixs...), nil
}

// SetUnitLimit создает инструкцию для установки лимита compute units
func SetUnitLimit(units uint32) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(SetComputeUnitLimit); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(units, binary.LittleEndian); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, buf.Bytes()), nil
}

// SetUnitPrice создает инструкцию для установки цены compute unit в микролампортах
func SetUnitPrice(microLamports uint64) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(SetComputeUnitPrice); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(microLamports, binary.LittleEndian); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, buf.Bytes()), nil
}

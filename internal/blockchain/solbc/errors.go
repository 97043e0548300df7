// internal/blockchain/solbc/errors.go
package solbc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse возникает, когда узел вернул пустой результат
	ErrInvalidResponse = errors.New("invalid RPC response")
)

// Error представляет ошибку RPC с указанием метода
type Error struct {
	Method string
	Err    error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s]: %v", e.Method, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(method string, err error) error {
	return &Error{Method: method, Err: err}
}

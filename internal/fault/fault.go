// Package fault classifies every error a fetch can end with into a closed
// set of kinds, each owning one process exit status.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the closed error variant. The zero value means "unclassified".
type Kind uint8

const (
	KindArgument Kind = iota + 1
	KindAddress
	KindLocator
	KindServer
	KindConnection
	KindResponse
	KindDirectory
	KindFile
)

var kindNames = map[Kind]string{
	KindArgument:   "argument",
	KindAddress:    "address",
	KindLocator:    "locator",
	KindServer:     "server",
	KindConnection: "connection",
	KindResponse:   "response",
	KindDirectory:  "directory",
	KindFile:       "file",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ExitCode is the process exit status for k. Unclassified errors share the
// argument status so a failure never exits zero.
func (k Kind) ExitCode() int {
	if _, ok := kindNames[k]; !ok {
		return int(KindArgument)
	}
	return int(k)
}

// Error tags an underlying error with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "":
		return e.Err.Error()
	case e.Err == nil:
		return e.Op
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is E with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost Kind in err's chain, or zero.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err to a process exit status; nil is zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}

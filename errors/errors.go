// Package errors formats engine errors and classifies them by kind.
//
// Unification and constraint kinds are local failures: the resolver recovers from them
// by backtracking. InvalidInput and InvalidArgument are fatal and abort a run before
// any search starts.
package errors

import (
	stderrors "errors"
	"fmt"
)

type err struct {
	msg  string
	args []interface{}
}

func (err err) Error() string {
	return fmt.Sprintf(err.msg, err.args...)
}

func (err err) Unwrap() error {
	for _, arg := range err.args {
		if wrapped, ok := arg.(error); ok {
			return wrapped
		}
	}
	return nil
}

// New formats an error with args. The first error within args is returned by Unwrap.
func New(msg string, args ...interface{}) error {
	return err{msg, args}
}

// Kind classifies an error.
type Kind int

const (
	Unknown Kind = iota
	FrozenVariable
	SelfConstraint
	ConstraintOnFrozen
	IncompatibleVariables
	ConstraintViolation
	OccursCheckViolation
	UnificationFailure
	// Failure is a goal that couldn't be proved.
	Failure
	InvalidInput
	InvalidArgument
)

var kindNames = map[Kind]string{
	Unknown:               "unknown",
	FrozenVariable:        "frozen variable",
	SelfConstraint:        "self constraint",
	ConstraintOnFrozen:    "constraint on frozen variable",
	IncompatibleVariables: "incompatible variables",
	ConstraintViolation:   "constraint violation",
	OccursCheckViolation:  "occurs check violation",
	UnificationFailure:    "unification failure",
	Failure:               "failure",
	InvalidInput:          "invalid input",
	InvalidArgument:       "invalid argument",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Local returns whether errors of this kind are recovered by backtracking.
func (k Kind) Local() bool {
	switch k {
	case InvalidInput, InvalidArgument, Unknown:
		return false
	}
	return true
}

// Error is an error tagged with a kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf returns a kinded error formatted with New.
func Errorf(kind Kind, msg string, args ...interface{}) error {
	return &Error{Kind: kind, Err: New(msg, args...)}
}

// Wrap tags err with kind. It returns nil if err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first kinded error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return Unknown, false
}

// Is returns whether err's chain contains an error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsLocal returns whether err is a kinded error recovered by backtracking.
func IsLocal(err error) bool {
	k, ok := KindOf(err)
	return ok && k.Local()
}

package errors_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/brunokim/sasp/errors"
)

func TestNew_Unwrap(t *testing.T) {
	err := errors.New("reading %s: %v", "file.lp", io.EOF)
	if got, want := err.Error(), "reading file.lp: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if unwrapped := fmt.Errorf("wrap: %w", err); !isEOF(unwrapped) {
		t.Errorf("expected EOF in chain of %v", unwrapped)
	}
}

func isEOF(err error) bool {
	for err != nil {
		if err == io.EOF {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func TestKinds(t *testing.T) {
	tests := []struct {
		err       error
		kind      errors.Kind
		wantLocal bool
	}{
		{errors.Errorf(errors.FrozenVariable, "X is frozen"), errors.FrozenVariable, true},
		{errors.Errorf(errors.OccursCheckViolation, "X in f(X)"), errors.OccursCheckViolation, true},
		{errors.Errorf(errors.InvalidInput, "line 1"), errors.InvalidInput, false},
		{fmt.Errorf("ctx: %w", errors.Errorf(errors.InvalidArgument, "-s -1")), errors.InvalidArgument, false},
	}
	for _, test := range tests {
		kind, ok := errors.KindOf(test.err)
		if !ok || kind != test.kind {
			t.Errorf("KindOf(%v) = %v, %t, want %v", test.err, kind, ok, test.kind)
		}
		if got := errors.IsLocal(test.err); got != test.wantLocal {
			t.Errorf("IsLocal(%v) = %t, want %t", test.err, got, test.wantLocal)
		}
	}
	if errors.Is(io.EOF, errors.InvalidInput) {
		t.Errorf("plain error should have no kind")
	}
}

package transport

import (
	"errors"
	"testing"
)

func TestOpenErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := &OpenError{Op: "claim interface", Err: inner}
	if !errors.Is(e, inner) {
		t.Fatalf("expected errors.Is to find the wrapped error")
	}
	if e.Error() == "" {
		t.Fatal("expected non-empty error string")
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	inner := errors.New("timeout")
	e := &IOError{Op: "recv", Err: inner}
	if !errors.Is(e, inner) {
		t.Fatalf("expected errors.Is to find the wrapped error")
	}
}

func TestShortTransferErrorMessage(t *testing.T) {
	e := &ShortTransferError{Op: "send", Want: 64, Got: 12}
	want := "transport: send: short transfer: want 64 bytes, got 12"
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
}

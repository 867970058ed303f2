package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("nack")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Busy, Busy},
		{"wrapped code", fmt.Errorf("set colour: %w", Busy), Busy},
		{"E", &E{C: IOError, Op: "write", Err: cause}, IOError},
		{"wrapped E", fmt.Errorf("init: %w", Wrap(IOError, "enable", cause)), IOError},
		{"foreign", cause, Error},
	}
	for _, tc := range tests {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(IOError, "x", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
	cause := errors.New("nack")
	err := Wrap(IOError, "pwm", cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	if !errors.Is(err, IOError) {
		t.Fatal("code not reachable via errors.Is")
	}
	if got, want := err.Error(), "pwm: io_error: nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestMapDriverErr(t *testing.T) {
	if MapDriverErr(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if MapDriverErr(Timeout) != Timeout {
		t.Fatal("timeout should pass through")
	}
	if MapDriverErr(errors.New("remote i/o error")) != IOError {
		t.Fatal("unknown driver errors map to io_error")
	}
}

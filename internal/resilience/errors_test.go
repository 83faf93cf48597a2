package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{408, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
		{500, false},
		{503, false},
	}
	for _, tt := range tests {
		err := StatusError(tt.status, "sec-api: fetch")
		if got := IsTransient(err); got != tt.transient {
			t.Errorf("status %d: expected transient=%v, got %v", tt.status, tt.transient, got)
		}
		var te *TransientError
		var term *TerminalError
		switch {
		case tt.transient && (!errors.As(err, &te) || te.StatusCode != tt.status):
			t.Errorf("status %d: expected TransientError carrying the status", tt.status)
		case !tt.transient && (!errors.As(err, &term) || term.StatusCode != tt.status):
			t.Errorf("status %d: expected TerminalError carrying the status", tt.status)
		}
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(eris.New("rate limited"), 429)
	if !IsTransient(fmt.Errorf("fetch: %w", inner)) {
		t.Error("expected fmt-wrapped TransientError to be transient")
	}
}

func TestIsTransient_TerminalWins(t *testing.T) {
	// A terminal error whose message looks like a timeout stays terminal.
	err := NewTerminalError(errors.New("decode: i/o timeout in body"), 0)
	if IsTransient(err) {
		t.Error("TerminalError must not be transient")
	}
}

func TestIsTransient_NilAndPlain(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
	if IsTransient(errors.New("invalid accession number")) {
		t.Error("plain error should not be transient")
	}
}

func TestIsTransient_Network(t *testing.T) {
	if !IsTransient(&net.DNSError{IsTimeout: true, Err: "timeout"}) {
		t.Error("network timeout should be transient")
	}
	if !IsTransient(fmt.Errorf("read tcp: %w", syscall.ECONNRESET)) {
		t.Error("ECONNRESET should be transient")
	}
	if !IsTransient(fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)) {
		t.Error("ECONNREFUSED should be transient")
	}
}

func TestIsTransient_StringPatterns(t *testing.T) {
	for _, p := range []string{"connection reset by peer", "broken pipe", "TLS handshake timeout", "i/o timeout"} {
		if !IsTransient(errors.New(p)) {
			t.Errorf("expected %q to be transient", p)
		}
	}
}

func TestKind(t *testing.T) {
	if got := Kind(StatusError(429, "x")); got != "transient" {
		t.Errorf("expected transient, got %s", got)
	}
	if got := Kind(StatusError(500, "x")); got != "terminal" {
		t.Errorf("expected terminal, got %s", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	if !errors.Is(NewTransientError(inner, 429), inner) {
		t.Error("TransientError should unwrap")
	}
	if !errors.Is(NewTerminalError(inner, 500), inner) {
		t.Error("TerminalError should unwrap")
	}
	if NewTerminalError(inner, 500).Error() != "root cause" {
		t.Error("TerminalError should report the wrapped message")
	}
}

package uciproto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/engine"
)

func TestHandlerRespondsToUCI(t *testing.T) {
	var out bytes.Buffer
	h := New(&out)
	h.Run(strings.NewReader("uci\nquit\n"))

	if !strings.Contains(out.String(), "uciok") {
		t.Fatalf("expected uciok in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "id name rosecore") {
		t.Fatalf("expected id name line, got %q", out.String())
	}
}

func TestHandlerIsReady(t *testing.T) {
	var out bytes.Buffer
	h := New(&out)
	h.Run(strings.NewReader("isready\nquit\n"))

	if !strings.Contains(out.String(), "readyok") {
		t.Fatalf("expected readyok, got %q", out.String())
	}
}

func TestHandlerPositionMovesAndGo(t *testing.T) {
	var out bytes.Buffer
	h := New(&out)
	h.Run(strings.NewReader("position startpos moves e2e4 e7e5\ngo depth 2\nquit\n"))

	if !strings.Contains(out.String(), "bestmove") {
		t.Fatalf("expected a bestmove line, got %q", out.String())
	}
}

func TestHandlerRejectsIllegalMove(t *testing.T) {
	var out bytes.Buffer
	h := New(&out)
	h.Run(strings.NewReader("position startpos moves e2e5\nquit\n"))

	if !strings.Contains(out.String(), "info string") {
		t.Fatalf("expected an info string complaint about the illegal move, got %q", out.String())
	}
}

func TestParseUCIMoveRejectsNonLegalMove(t *testing.T) {
	pos := board.NewStartPosition()
	if _, err := ParseUCIMove("e2e5", &pos); err == nil {
		t.Fatal("expected e2e5 to be rejected as illegal from the startpos")
	}
}

func TestParseUCIMoveAcceptsLegalMove(t *testing.T) {
	pos := board.NewStartPosition()
	m, err := ParseUCIMove("e2e4", &pos)
	if err != nil {
		t.Fatalf("e2e4 should be legal from the startpos: %v", err)
	}
	if m.From() != board.E2 || m.To() != board.E4 {
		t.Fatalf("got %s, want e2e4", m)
	}
}

func TestGoOptionsControlInfiniteUsesNoControl(t *testing.T) {
	o := parseGoOptions([]string{"infinite"})
	ctl := o.control(board.White, 0)
	if _, ok := ctl.(engine.NoControl); !ok {
		t.Fatalf("expected engine.NoControl for go infinite, got %T", ctl)
	}
}

func TestHandlerThreadsOptionUsesPool(t *testing.T) {
	var out bytes.Buffer
	h := New(&out)
	h.Run(strings.NewReader("setoption name Threads value 2\nposition startpos\ngo depth 2\nquit\n"))

	if !strings.Contains(out.String(), "bestmove") {
		t.Fatalf("expected a bestmove line from the pooled search, got %q", out.String())
	}
}

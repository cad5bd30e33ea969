package control

import (
	"strings"
	"testing"

	"github.com/tootal/tasksh/internal/hostbridge"
)

// TestProcessStripsControlLines exercises §8 property 12.
func TestProcessStripsControlLines(t *testing.T) {
	fx := hostbridge.NewFixture()
	c := &Channel{Bridge: fx}

	got := c.Process("hello\n::show-info title=hi::world\nbye\n")
	if got != "hello\n\nbye\n" {
		t.Fatalf("got %q", got)
	}

	if len(fx.Calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(fx.Calls))
	}
	call := fx.Calls[0]
	if call.Method != "ShowMessage" || call.Title != "hi" || call.Body != "world" {
		t.Fatalf("got %+v", call)
	}
}

// TestProcessShowQuestionWritesReply exercises §8 scenario S6.
func TestProcessShowQuestionWritesReply(t *testing.T) {
	fx := hostbridge.NewFixture()
	fx.MessageResponses = []hostbridge.MessageResponse{{Choice: 1, OK: true}}

	var stdin strings.Builder
	c := &Channel{Bridge: fx, Stdin: &stdin}

	got := c.Process("::show-question title=Q::Continue?\n")
	if got != "\n" {
		t.Fatalf("got %q, want just the trailing newline (the line itself is stripped)", got)
	}
	if stdin.String() != "1\n" {
		t.Fatalf("got stdin %q, want %q", stdin.String(), "1\n")
	}
}

func TestProcessShowMessageboxUsesPickString(t *testing.T) {
	fx := hostbridge.NewFixture()
	fx.PickResponses = []hostbridge.PickResponse{{Index: 2, OK: true}}

	var stdin strings.Builder
	c := &Channel{Bridge: fx, Stdin: &stdin}

	c.Process("::show-messagebox title=Save,buttons=Yes|No|Cancel::Save changes?\n")
	if stdin.String() != "2\n" {
		t.Fatalf("got stdin %q", stdin.String())
	}
	if len(fx.Calls) != 1 || len(fx.Calls[0].Options) != 3 {
		t.Fatalf("got %+v", fx.Calls)
	}
}

func TestProcessLeavesUnmatchedTextAlone(t *testing.T) {
	c := &Channel{}
	got := c.Process("plain output\nno control lines here\n")
	if got != "plain output\nno control lines here\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParseArgs(t *testing.T) {
	got := parseArgs(" title=hi, flag")
	if got["title"] != "hi" {
		t.Fatalf("got %v", got)
	}
	if v, ok := got["flag"]; !ok || v != "" {
		t.Fatalf("got %v", got)
	}
}

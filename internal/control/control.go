// Package control implements the Inline Control Channel (§4.I): scanning a
// running task's output for ::cmd args::value lines and dispatching them to
// dialogs on the Host Bridge.
package control

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/logging"
)

// linePattern matches one control line per §4.I:
// ^::<cmd>[<arg-list>]?::<value>$ — cmd is [a-zA-Z-]+, and everything
// between cmd and the final "::" (if anything) is the comma-separated
// key[=value] arg list, e.g. "::show-info title=hi::world".
var linePattern = regexp.MustCompile(`(?m)^::([a-zA-Z-]+)(.*?)::(.*)$`)

// Channel scans text for control lines, dispatches recognized commands
// against a Bridge, and returns the text with matched lines stripped.
type Channel struct {
	Bridge hostbridge.Bridge
	// Stdin, when non-nil, receives reply bytes for show-question and
	// show-messagebox (§4.I).
	Stdin io.Writer
}

// Process scans chunk for control lines, dispatches them, and returns the
// residual text with every matched line removed (§4.I, §8 property 12).
func (c *Channel) Process(chunk string) string {
	matches := linePattern.FindAllStringSubmatchIndex(chunk, -1)
	if len(matches) == 0 {
		return chunk
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		out.WriteString(chunk[last:start])
		last = end

		cmd := chunk[m[2]:m[3]]
		argList := chunk[m[4]:m[5]]
		value := chunk[m[6]:m[7]]
		c.dispatch(cmd, parseArgs(argList), value)
	}
	out.WriteString(chunk[last:])
	return out.String()
}

func (c *Channel) dispatch(cmd string, args map[string]string, value string) {
	switch cmd {
	case "show-info":
		c.showInfo(args, value)
	case "show-question":
		c.showQuestion(args, value)
	case "show-messagebox":
		c.showMessagebox(args, value)
	case "show-inputdialog":
		c.showInputDialog(args, value)
	default:
		logging.Warn("control: unrecognized command %q", cmd)
	}
}

func (c *Channel) showInfo(args map[string]string, body string) {
	if c.Bridge == nil {
		return
	}
	c.Bridge.ShowMessage(hostbridge.DialogInfo, args["title"], body)
}

func (c *Channel) showQuestion(args map[string]string, body string) {
	if c.Bridge == nil {
		return
	}
	choice, ok := c.Bridge.ShowMessage(hostbridge.DialogQuestion, args["title"], body)
	if !ok {
		return
	}
	c.writeReply(strconv.Itoa(choice))
}

func (c *Channel) showMessagebox(args map[string]string, body string) {
	if c.Bridge == nil {
		return
	}
	// buttons arrives pipe-separated inside the "buttons" arg, e.g.
	// buttons=Yes|No|Cancel (§4.I); PickString fits an arbitrary button
	// count better than the two-choice ShowMessage question dialog.
	buttons := strings.Split(args["buttons"], "|")
	choice, ok := c.Bridge.PickString(args["title"], buttons)
	if !ok {
		return
	}
	c.writeReply(strconv.Itoa(choice))
}

func (c *Channel) showInputDialog(args map[string]string, body string) {
	if c.Bridge == nil {
		return
	}
	// Reply behavior is reserved by §4.I; the dialog is shown but no value
	// is written back to the child's stdin.
	c.Bridge.PromptString(args["title"], body, args["default"], false)
}

func (c *Channel) writeReply(s string) {
	if c.Stdin == nil {
		return
	}
	_, _ = io.WriteString(c.Stdin, s+"\n")
}

// parseArgs parses the comma-separated key[=value] arg list (§4.I). A key
// without "=value" is recorded with an empty value.
func parseArgs(s string) map[string]string {
	args := make(map[string]string)
	if s == "" {
		return args
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.IndexByte(part, '='); idx >= 0 {
			args[part[:idx]] = part[idx+1:]
		} else {
			args[part] = ""
		}
	}
	return args
}

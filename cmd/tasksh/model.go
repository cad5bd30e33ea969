package main

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/tootal/tasksh/internal/hostbridge"
	"github.com/tootal/tasksh/internal/logging"
	"github.com/tootal/tasksh/internal/registry"
	"github.com/tootal/tasksh/internal/runner"
	"github.com/tootal/tasksh/internal/task"
)

var (
	colorAccent = lipgloss.Color("63")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("203")

	styleSelected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleBanner   = lipgloss.NewStyle().Foreground(colorAccent)
	styleDialog   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(colorAccent)
	styleError    = lipgloss.NewStyle().Foreground(colorError)
)

// dialogMode tracks which overlay, if any, is waiting on the user in
// response to a hostbridge.Bridge call (§4.A) issued from a goroutine other
// than the Update loop's.
type dialogMode int

const (
	dialogNone dialogMode = iota
	dialogPrompt
	dialogPick
	dialogMessage
)

// entry is one flattened row of the task tree for list rendering; depth
// drives the indentation that shows parent/child relationships.
type entry struct {
	task  *task.Task
	depth int
}

// model is the interactive demo host's bubbletea model (§4, §9): a task
// list pane, a streaming output pane fed by runner.Output, and a modal
// dialog overlay that backs tuiBridge's blocking dialog calls.
type model struct {
	reg     *registry.Registry
	run     *runner.Runner
	rcBase  task.ResolveContext
	program *tea.Program

	width, height int

	entries []entry
	cursor  int

	output []string

	status string

	mode     dialogMode
	title    string
	label    string
	input    textinput.Model
	options  []string
	optCur   int
	pending  chan promptReply
	pendPick chan pickReply
}

func newModel(reg *registry.Registry, run *runner.Runner, rcBase task.ResolveContext) *model {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.SetVirtualCursor(false)

	return &model{
		reg:    reg,
		run:    run,
		rcBase: rcBase,
		input:  ti,
		status: "ready — ↑/↓ select, enter run, c copy output, q quit",
	}
}

// tasksChangedMsg fires whenever the registry reloads (§4.G onChanged).
type tasksChangedMsg struct{}

// outputMsg carries one line of task output or a lifecycle banner (the
// runner.Output interface) into the Update loop for rendering.
type outputMsg struct {
	text   string
	banner bool
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Banner(line string) {
	m.send(outputMsg{text: line, banner: true})
}

func (m *model) Line(text string) {
	m.send(outputMsg{text: text})
}

// send pushes a message onto the event loop from whatever goroutine called
// Banner/Line — never the Update loop itself, since the runner streams a
// task's output from its own pump goroutines (§4.H).
func (m *model) send(msg tea.Msg) {
	if m.program != nil {
		m.program.Send(msg)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tasksChangedMsg:
		m.refreshEntries()
		return m, nil

	case outputMsg:
		m.appendOutput(msg)
		return m, nil

	case promptRequest:
		m.beginPrompt(msg)
		return m, nil
	case pickRequest:
		m.beginPick(msg)
		return m, nil
	case messageRequest:
		m.beginMessage(msg)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) refreshEntries() {
	m.entries = nil
	var walk func(tasks []*task.Task, depth int)
	walk = func(tasks []*task.Task, depth int) {
		for _, t := range tasks {
			m.entries = append(m.entries, entry{task: t, depth: depth})
			walk(t.Children, depth+1)
		}
	}
	walk(m.reg.Tasks(), 0)
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) appendOutput(msg outputMsg) {
	if msg.banner {
		style := styleBanner
		if strings.Contains(msg.text, "error") {
			style = styleError
		}
		m.output = append(m.output, style.Render("── "+msg.text))
		return
	}
	for _, line := range strings.Split(msg.text, "\n") {
		if line == "" {
			continue
		}
		m.output = append(m.output, line)
	}
	const maxLines = 2000
	if len(m.output) > maxLines {
		m.output = m.output[len(m.output)-maxLines:]
	}
}

func (m *model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode != dialogNone {
		return m.handleDialogKey(msg)
	}

	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
		return m, tea.Quit
	case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
		m.launchSelected()
	case key.Matches(msg, key.NewBinding(key.WithKeys("c"))):
		m.copyOutput()
	case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
		if err := m.reg.Reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		}
	}
	return m, nil
}

func (m *model) launchSelected() {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return
	}
	t := m.entries[m.cursor].task
	rc := m.rcBase
	go func() {
		if err := m.run.Launch(t, rc, m); err != nil {
			logging.Warn("tasksh: launching %q: %v", t.EffectiveLabel(), err)
		}
	}()
}

func (m *model) copyOutput() {
	text := strings.Join(m.output, "\n")
	if err := copyToClipboard(text); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = "output copied to clipboard"
}

// copyToClipboard mirrors the teacher's CopyToClipboard call shape; it
// writes through clipboardWrite (the clipboard package's WriteAll) on every
// platform.
func copyToClipboard(text string) error {
	return clipboardWrite(text)
}

var clipboardWrite = clipboard.WriteAll

func (m *model) beginPrompt(req promptRequest) {
	m.mode = dialogPrompt
	m.title = req.title
	m.label = req.label
	m.input.SetValue(req.defaultValue)
	m.input.Placeholder = req.label
	m.input.EchoMode = textinput.EchoNormal
	if req.password {
		m.input.EchoMode = textinput.EchoPassword
	}
	m.input.Focus()
	m.pending = req.reply
}

func (m *model) beginPick(req pickRequest) {
	m.mode = dialogPick
	m.title = req.title
	m.options = req.options
	m.optCur = 0
	m.pendPick = req.reply
}

func (m *model) beginMessage(req messageRequest) {
	m.mode = dialogMessage
	m.title = req.title
	m.label = req.body
	if req.kind == hostbridge.DialogQuestion {
		m.options = []string{"Yes", "No"}
	} else {
		m.options = []string{"OK"}
	}
	m.optCur = 0
	m.pendPick = req.reply
}

func (m *model) handleDialogKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
		m.cancelDialog()
		return m, nil
	case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
		m.confirmDialog()
		return m, nil
	}

	switch m.mode {
	case dialogPrompt:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case dialogPick, dialogMessage:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down", "right"))):
			if m.optCur < len(m.options)-1 {
				m.optCur++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up", "left"))):
			if m.optCur > 0 {
				m.optCur--
			}
		}
	}
	return m, nil
}

func (m *model) cancelDialog() {
	switch m.mode {
	case dialogPrompt:
		if m.pending != nil {
			m.pending <- promptReply{ok: false}
		}
	case dialogPick, dialogMessage:
		if m.pendPick != nil {
			m.pendPick <- pickReply{ok: false}
		}
	}
	m.resetDialog()
}

func (m *model) confirmDialog() {
	switch m.mode {
	case dialogPrompt:
		if m.pending != nil {
			m.pending <- promptReply{value: m.input.Value(), ok: true}
		}
	case dialogPick, dialogMessage:
		if m.pendPick != nil {
			m.pendPick <- pickReply{index: m.optCur, ok: true}
		}
	}
	m.resetDialog()
}

func (m *model) resetDialog() {
	m.mode = dialogNone
	m.pending = nil
	m.pendPick = nil
	m.input.Blur()
	m.input.SetValue("")
}

func (m *model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	left := m.renderList()
	right := m.renderOutput()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	content := lipgloss.JoinVertical(lipgloss.Left, body, styleMuted.Render(m.status))
	if m.mode != dialogNone {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderDialog())
	}

	view.SetContent(content)
	return view
}

func (m *model) renderList() string {
	width := 36
	if m.width > 0 {
		width = m.width / 3
	}
	var b strings.Builder
	b.WriteString(styleMuted.Render("tasks") + "\n")
	for i, e := range m.entries {
		labelWidth := width - e.depth*2 - 2
		if labelWidth < 1 {
			labelWidth = 1
		}
		label := runewidth.Truncate(e.task.EffectiveLabel(), labelWidth, "…")
		line := strings.Repeat("  ", e.depth) + label
		if i == m.cursor {
			line = styleSelected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return lipgloss.NewStyle().Width(width).Height(m.contentHeight()).Render(b.String())
}

func (m *model) renderOutput() string {
	height := m.contentHeight()
	start := 0
	if len(m.output) > height {
		start = len(m.output) - height
	}
	var b strings.Builder
	for _, line := range m.output[start:] {
		b.WriteString(ansi.Strip(line) + "\n")
	}
	return lipgloss.NewStyle().Height(height).Render(b.String())
}

func (m *model) contentHeight() int {
	if m.height <= 4 {
		return 20
	}
	return m.height - 4
}

func (m *model) renderDialog() string {
	switch m.mode {
	case dialogPrompt:
		return styleDialog.Render(fmt.Sprintf("%s\n%s\n%s", m.title, m.label, m.input.View()))
	case dialogPick, dialogMessage:
		var b strings.Builder
		b.WriteString(m.title + "\n")
		if m.label != "" {
			b.WriteString(m.label + "\n")
		}
		for i, opt := range m.options {
			if i == m.optCur {
				b.WriteString(styleSelected.Render("▸ "+opt) + "\n")
			} else {
				b.WriteString("  " + opt + "\n")
			}
		}
		return styleDialog.Render(b.String())
	}
	return ""
}

package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/cyoa/cli"
	"github.com/nathoo/cyoa/engine"
	"github.com/nathoo/cyoa/engine/save"
)

// entry is one unstyled scrollback line. Lines are kept raw and re-wrapped
// whenever the window or the modal box changes size.
type entry struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the cyoa player.
//
// Screen layout, top to bottom: scrollback viewport, the front modal's box
// (only while one is open), status bar, input line.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	scrollback []entry

	width, height int
	sized         bool
	trace         bool
	quitting      bool
	lastCmd       string
	saveDir       string
	sessionID     string

	// copyText replaces clipboard.WriteAll in tests.
	copyText func(string) error
}

// openingMsg carries the banner, intro and start scene produced by Init.
type openingMsg struct {
	lines []string
	err   error
}

// New creates a player model wired to the given engine.
func New(eng *engine.Engine, saveDir string) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.CharLimit = 256
	in.Focus()

	return Model{
		engine:    eng,
		input:     in,
		history:   NewHistory(100),
		saveDir:   saveDir,
		sessionID: save.NewSessionID(),
		copyText:  clipboard.WriteAll,
	}
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(eng *engine.Engine, saveDir string) error {
	_, err := tea.NewProgram(New(eng, saveDir), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// Init enters the start scene.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.open)
}

func (m Model) open() tea.Msg {
	game := m.engine.Catalog.Game
	banner := game.Title
	if game.Version != "" {
		banner += " v" + game.Version
	}
	if game.Author != "" {
		banner += " by " + game.Author
	}
	lines := []string{banner, ""}
	if game.Intro != "" {
		lines = append(lines, game.Intro, "")
	}

	turn, err := m.engine.Begin()
	if err != nil {
		return openingMsg{lines: lines, err: err}
	}
	return openingMsg{lines: append(append(lines, turn.Output...), modalLines(turn.Step)...)}
}

// Update routes resize, key and opening messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.sized {
			m.viewport = viewport.New(msg.Width, 1)
			m.viewport.KeyMap = viewportKeyMap()
			m.sized = true
		}
		m.layout()
		return m, nil

	case openingMsg:
		m.narrate("", msg.lines)
		if msg.err != nil {
			m.notify("", []string{msg.err.Error()})
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey handles the bound keys. Unbound keys fall through to the text
// input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit, true

	case key.Matches(msg, keys.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil, true
		}
		m.history.Push(line)
		if m.submit(line) {
			m.quitting = true
			return m, tea.Quit, true
		}
		return m, nil, true

	case key.Matches(msg, keys.Older):
		if line, ok := m.history.Prev(); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return m, nil, true

	case key.Matches(msg, keys.Newer):
		line, _ := m.history.Next()
		m.input.SetValue(line)
		m.input.CursorEnd()
		return m, nil, true

	case key.Matches(msg, keys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

// submit runs one line of input. Returns true when the player quit.
func (m *Model) submit(line string) bool {
	switch strings.ToLower(line) {
	case "again", "g":
		if m.lastCmd == "" {
			m.notify(line, []string{"Nothing to repeat."})
			return false
		}
		line = m.lastCmd
	default:
		m.lastCmd = line
	}

	if strings.HasPrefix(line, "/") {
		out, quit := m.handleMeta(line)
		m.notify(line, out)
		return quit
	}

	turn := m.engine.Input(line)
	out := append(turn.Output, modalLines(turn.Step)...)
	if m.trace {
		out = append(out, cli.TraceLines(turn.Step)...)
	}
	m.narrate(line, out)
	return false
}

// modalLines copies the text of newly raised modals into the scrollback so
// it stays readable after the modal closes.
func modalLines(st engine.Step) []string {
	var lines []string
	for _, d := range st.Directives {
		if d.Description != "" {
			lines = append(lines, "", d.Description)
		}
	}
	return lines
}

// narrate appends game output, styled by content.
func (m *Model) narrate(echo string, lines []string) {
	m.record(echo, lines, classifyLine)
}

// notify appends meta-command output, shown bracketed.
func (m *Model) notify(echo string, lines []string) {
	m.record(echo, lines, func(string) lineKind { return kindNotice })
}

func (m *Model) record(echo string, lines []string, kindOf func(string) lineKind) {
	if echo != "" {
		m.scrollback = append(m.scrollback, entry{text: echo, kind: kindInput})
	}
	for _, l := range lines {
		m.scrollback = append(m.scrollback, entry{text: l, kind: kindOf(l)})
	}
	m.scrollback = append(m.scrollback, entry{})
	m.layout()
}

// layout sizes the viewport to the space the modal box leaves and
// re-renders the scrollback at the current width.
func (m *Model) layout() {
	if !m.sized {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-2-lipgloss.Height(m.renderModal()), 1)

	width := max(m.width, 10)
	rendered := make([]string, len(m.scrollback))
	for i, e := range m.scrollback {
		if e.text != "" {
			rendered[i] = renderEntry(e, width)
		}
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewport.GotoBottom()
}

func renderEntry(e entry, width int) string {
	switch e.kind {
	case kindInput:
		return styledPlayerInput(wrap(e.text, width-2))
	case kindNotice:
		return styledSystemMsg(wrap(e.text, width-2))
	case kindChoice:
		return styleChoice.Render(wrap(e.text, width))
	case kindSystem:
		return styleSystem.Render(wrap(e.text, width))
	case kindError:
		return styleError.Render(wrap(e.text, width))
	case kindTrace:
		return styleTrace.Render(wrap(e.text, width))
	default:
		return styleNarrative.Render(wrap(e.text, width))
	}
}

// wrap breaks text at word boundaries to fit width.
func wrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	return wordwrap.String(text, width)
}

// renderModal draws the front modal as a bordered box, or "" when none is
// open.
func (m Model) renderModal() string {
	front, ok := m.engine.Modals.Front()
	if !ok {
		return ""
	}
	inner := max(m.width-4, 10) // border + padding

	var body []string
	for _, line := range engine.DescribeModal(front) {
		body = append(body, wrap(line, inner))
	}
	if queued := m.engine.Modals.Len() - 1; queued > 0 {
		body = append(body, styleTrace.Render(fmt.Sprintf("(%d more)", queued)))
	}
	return styleModal.Width(inner).Render(strings.Join(body, "\n"))
}

// View stacks the scrollback, modal box, status bar and input line.
func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.sized:
		return "Loading..."
	}

	rows := []string{m.viewport.View()}
	if box := m.renderModal(); box != "" {
		rows = append(rows, box)
	}
	return strings.Join(append(rows, m.renderStatusBar(), m.input.View()), "\n")
}

// handleMeta runs a slash command. Returns output lines and whether the
// player quit.
func (m *Model) handleMeta(line string) ([]string, bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	if i := strings.IndexByte(arg, ' '); i >= 0 {
		arg = arg[:i]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.cmdSave(arg), false
	case "/load":
		return m.cmdLoad(arg), false
	case "/undo":
		return m.engine.Input("undo").Output, false
	case "/copy":
		return m.cmdCopy(), false
	case "/help":
		return append(cli.HelpLines(),
			"  /copy         — Copy the text on screen to the clipboard",
			"",
			"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
		), false
	case "/state":
		return cli.StateLines(m.engine), false
	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	}
	return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
}

func (m *Model) cmdSave(name string) []string {
	if _, err := save.WriteFile(m.saveDir, name, m.engine, m.sessionID); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", slotName(name))}
}

func (m *Model) cmdLoad(name string) []string {
	sd, err := save.ReadFile(m.saveDir, name, m.engine)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.sessionID = sd.SessionID
	return append([]string{fmt.Sprintf("Game loaded from %s.", slotName(name))}, m.engine.DescribeScene()...)
}

func slotName(name string) string {
	if name == "" {
		return save.DefaultName
	}
	return name
}

// cmdCopy puts the open modal's text, or else the scene description, on the
// system clipboard.
func (m *Model) cmdCopy() []string {
	lines := m.engine.DescribeScene()
	if front, ok := m.engine.Modals.Front(); ok {
		lines = engine.DescribeModal(front)
	}
	if err := m.copyText(strings.Join(lines, "\n")); err != nil {
		return []string{fmt.Sprintf("Copy failed: %v", err)}
	}
	return []string{"Copied to clipboard."}
}

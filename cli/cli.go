// Package cli provides line-oriented terminal play, output formatting, and
// meta-command dispatch for the cyoa engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/cyoa/engine"
	"github.com/nathoo/cyoa/engine/save"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	SessionID string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, saveDir string) *CLI {
	return &CLI{
		Engine:    eng,
		In:        os.Stdin,
		Out:       os.Stdout,
		SaveDir:   saveDir,
		SessionID: save.NewSessionID(),
	}
}

// Run starts the game loop. It shows the intro, enters the start scene,
// then loops: prompt → input → dispatch → output.
func (c *CLI) Run() error {
	game := c.Engine.Catalog.Game
	if game.Intro != "" {
		c.printLine(game.Intro)
		c.printLine("")
	}

	turn, err := c.Engine.Begin()
	if err != nil {
		return err
	}
	c.printTurn(turn)

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") && !isChoiceNumber(input) {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return nil // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.printTurn(c.Engine.Input(input))
	}
	return scanner.Err()
}

// isChoiceNumber reports whether a '#' line is a "#2" style choice rather
// than a script comment.
func isChoiceNumber(input string) bool {
	rest := strings.TrimPrefix(input, "#")
	return rest != "" && strings.Trim(rest, "0123456789") == ""
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/undo":
		c.printTurn(c.Engine.Input("undo"))

	case "/help":
		c.cmdHelp()

	case "/state":
		for _, line := range StateLines(c.Engine) {
			c.printSystem(line)
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if _, err := save.WriteFile(c.SaveDir, name, c.Engine, c.SessionID); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if name == "" {
		name = save.DefaultName
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	sd, err := save.ReadFile(c.SaveDir, name, c.Engine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.SessionID = sd.SessionID
	if name == "" {
		name = save.DefaultName
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))

	// Show the current scene after loading.
	c.printTurn(c.Engine.Input("look"))
}

func (c *CLI) cmdHelp() {
	for _, line := range HelpLines() {
		c.printLine(line)
	}
}

// HelpLines is the help text shared by the line and full-screen players.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  — Save game (default: quicksave)",
		"  /load [name]  — Load game (default: quicksave)",
		"  /undo         — Take back the last choice",
		"  /quit         — Exit game",
		"  /help         — Show this help",
		"  /state        — Debug: dump current state",
		"  /trace        — Toggle debug trace output",
		"",
		"Playing:",
		"  <number>          — Pick a numbered choice",
		"  <words>           — Pick the choice whose text matches",
		"  ok / continue     — Acknowledge the message on screen",
		"  look (l)          — Describe the scene again",
		"  inventory (i)     — Check what you're carrying",
		"  back (b)          — Return to the previous scene",
		"  undo (u)          — Take back the last choice",
		"  again (g)         — Repeat your last command",
	}
}

// StateLines dumps the session state for /state.
func StateLines(e *engine.Engine) []string {
	s := e.State
	lines := []string{
		fmt.Sprintf("Scene: %s", s.CurrentSceneID),
		fmt.Sprintf("Health: %d", s.Health),
		fmt.Sprintf("Time: %s", s.TimeOfDay),
		fmt.Sprintf("Inventory: %v", s.Inventory),
	}
	if s.Season != "" {
		lines = append(lines, fmt.Sprintf("Season: %s", s.Season))
	}
	if len(s.Flags) > 0 {
		lines = append(lines, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Reputation) > 0 {
		lines = append(lines, fmt.Sprintf("Reputation: %v", s.Reputation))
	}
	if len(s.NPCs) > 0 {
		lines = append(lines, fmt.Sprintf("NPCs: %v", s.NPCs))
	}
	lines = append(lines,
		fmt.Sprintf("Breadcrumbs: %s", strings.Join(s.Breadcrumbs, " > ")),
		fmt.Sprintf("Completed: %v", s.CompletedScenes),
		fmt.Sprintf("Modals: %d, RNG position: %d", e.Modals.Len(), e.RNG.Position()),
	)
	return lines
}

// TraceLines formats the diagnostics and events of a step.
func TraceLines(st engine.Step) []string {
	var lines []string
	if len(st.Diagnostics) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Diagnostics: %d", len(st.Diagnostics)))
		for _, d := range st.Diagnostics {
			lines = append(lines, fmt.Sprintf("[trace]   %s %s: %s", d.Code, d.ActionID, d.Detail))
		}
	}
	if len(st.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(st.Events)))
		for _, e := range st.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	if len(st.Scenes) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Scenes: %s", strings.Join(st.Scenes, " → ")))
	}
	return lines
}

// printTurn prints a turn's narrative, then the modal on screen, if any.
func (c *CLI) printTurn(turn engine.Turn) {
	for _, line := range turn.Output {
		c.printLine(line)
	}
	if c.Trace {
		for _, line := range TraceLines(turn.Step) {
			c.printLine(line)
		}
	}
	if front, ok := c.Engine.Modals.Front(); ok {
		c.printLine("")
		for _, line := range engine.DescribeModal(front) {
			c.printLine(line)
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

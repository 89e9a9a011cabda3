// cyoa plays choose-your-own-adventure stories written as Lua, YAML or JSON
// content.
// Usage: cyoa [--version] [--plain] [--script <file>] [--trace] [--check] [--seed <n>] <game_directory>
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/cyoa/cli"
	"github.com/nathoo/cyoa/config"
	"github.com/nathoo/cyoa/engine"
	"github.com/nathoo/cyoa/loader"
	"github.com/nathoo/cyoa/logging"
	"github.com/nathoo/cyoa/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: cyoa [--version] [--plain] [--script <file>] [--trace] [--check] [--seed <n>] <game_directory>"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run plays or checks a game and returns the process exit code. Everything
// deferred here runs before the process exits.
func run(args []string) int {
	plain := false
	trace := false
	check := false
	var seed int64
	var gameDir string
	var scriptFile string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("cyoa %s (commit %s, built %s)\n", version, commit, date)
			return 0
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--check":
			check = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				return 1
			}
			i++
			scriptFile = args[i]
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				return 1
			}
			i++
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				return 1
			}
			seed = n
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	if check {
		return runCheck(gameDir)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	// Load and compile game content.
	catalog, err := loader.Load(gameDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		return 1
	}

	// The flag wins over the environment; zero from both means "pick one".
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("game loaded",
		zap.String("title", catalog.Game.Title),
		zap.Int("scenes", len(catalog.Scenes)),
		zap.Int("actions", len(catalog.Actions)),
		zap.Int64("seed", seed))

	eng := engine.New(catalog,
		engine.WithSeed(seed),
		engine.WithLogger(logger),
		engine.WithHistoryLimit(cfg.History),
	)

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			return 1
		}
		defer f.Close()
		printBanner(catalog.Game.Title, catalog.Game.Version, catalog.Game.Author)
		c := cli.New(eng, cfg.SaveDir)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		return exitCode(c.Run())
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		printBanner(catalog.Game.Title, catalog.Game.Version, catalog.Game.Author)
		c := cli.New(eng, cfg.SaveDir)
		c.Trace = trace
		return exitCode(c.Run())
	}

	return exitCode(tui.Run(eng, cfg.SaveDir))
}

// runCheck validates a game directory and prints every problem found.
// Returns the process exit code.
func runCheck(dir string) int {
	catalog, warnings, err := loader.Inspect(dir)
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	var ve *loader.ValidationError
	switch {
	case errors.As(err, &ve):
		for _, e := range ve.Errors {
			fmt.Printf("error: %s\n", e)
		}
		fmt.Printf("%d error(s), %d warning(s)\n", len(ve.Errors), len(warnings))
		return 1
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		return 1
	}
	fmt.Printf("%s: %d scenes, %d actions, %d warning(s)\n",
		catalog.Game.Title, len(catalog.Scenes), len(catalog.Actions), len(warnings))
	return 0
}

func printBanner(title, version, author string) {
	banner := title
	if version != "" {
		banner += " v" + version
	}
	if author != "" {
		banner += " by " + author
	}
	fmt.Printf("%s\n\n", banner)
}

// exitCode reports err on stderr and maps it to an exit code.
func exitCode(err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

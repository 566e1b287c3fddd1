// Command rhino is an interactive sandbox for the finalization registry.
//
// It wires a registry to a simulated collector so object lifetimes are
// driven by shell commands instead of the garbage collector: create
// named targets, register them with held values and tokens, mark them
// unreachable, and watch cleanup delivery and the audit journal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/anivar/rhino/pkg/rhino"
	"github.com/anivar/rhino/pkg/rhino/collector"
	"github.com/anivar/rhino/pkg/rhino/config"
	"github.com/anivar/rhino/pkg/rhino/journal"
)

const (
	appName     = "rhino"
	historyFile = ".rhino_history"
	prompt      = "rhino> "
	banner      = "rhino finalization sandbox — targets live until you `collect` them. Type help for commands."
	helpText    = `
Commands:
  new <name>                     Create a target object bound to <name>
  register <name> <held> [tok]  Register <name> with a held value and optional token
  unregister <tok>               Remove every registration under <tok>
  collect <name> | collect all   Mark target(s) unreachable (simulated collector)
  drain                          Deliver pending cleanups now
  targets                        List named targets
  stats                          Show registry counters
  journal                        Show the lifecycle audit trail
  help                           Show this help
  quit / exit                    Leave the shell

Held values and tokens are plain strings here; string tokens are valid
unregister keys (tokens are compared by value, not type-checked).
`
)

// ---- main ------------------------------------------------------------------

func main() {
	var evalStr string
	var configPath string
	flag.StringVar(&evalStr, "e", "", "Run the given semicolon-separated commands and exit")
	flag.StringVar(&configPath, "config", "", "Registry configuration file (YAML or JSON)")
	flag.Parse()

	sh, err := newShell(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
	defer sh.close()

	args := flag.Args()

	switch {
	case evalStr != "":
		os.Exit(sh.runScript(strings.Split(evalStr, ";")))
	case len(args) > 0:
		os.Exit(sh.runFile(args[0]))
	default:
		os.Exit(sh.runREPL())
	}
}

// ---- shell -----------------------------------------------------------------

// shell owns one registry driven by a simulated collector, plus the
// named targets the user has created and not yet collected.
type shell struct {
	realm    *rhino.Realm
	registry *rhino.FinalizationRegistry
	sim      *collector.Simulated[rhino.Object]
	journal  journal.Store
	targets  map[string]*rhino.Object
	out      io.Writer
}

func newShell(configPath string) (*shell, error) {
	sh := &shell{
		sim:     collector.NewSimulated[rhino.Object](),
		targets: make(map[string]*rhino.Object),
		out:     os.Stdout,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []rhino.Option{rhino.WithCollector(sh.sim)}

	if configPath != "" {
		cfg, err := config.FromFile(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Bool("verbose", false) {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		if d := cfg.Duration("drain_interval", 0); d > 0 {
			opts = append(opts, rhino.WithDrainInterval(d))
		}
		if cfg.Bool("metrics", false) {
			opts = append(opts, rhino.WithMetrics(true))
		}
		if cfg.Bool("tracing", false) {
			opts = append(opts, rhino.WithTracing(true))
		}
		if path := cfg.String("journal_path", ""); path != "" {
			js, err := journal.NewSQLiteStore(path)
			if err != nil {
				return nil, fmt.Errorf("open journal %q: %w", path, err)
			}
			sh.journal = js
		}
	}
	if sh.journal == nil {
		sh.journal = journal.NewMemoryStore()
	}
	opts = append(opts, rhino.WithLogger(logger), rhino.WithJournal(sh.journal))

	sh.realm = rhino.NewRealm(rhino.WithRealmLogger(logger))

	cleanup := rhino.CallFunc(func(_ rhino.Scope, _ rhino.Value, args []rhino.Value) (rhino.Value, error) {
		fmt.Fprintf(sh.out, "cleanup: %v\n", args[0])
		return rhino.Undefined, nil
	})

	reg, err := rhino.New(sh.realm, cleanup, opts...)
	if err != nil {
		return nil, err
	}
	sh.registry = reg
	return sh, nil
}

func (sh *shell) close() {
	sh.registry.Close()
	sh.journal.Close()
}

// ---- file & string modes -----------------------------------------------------

func (sh *shell) runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}
	return sh.runScript(strings.Split(string(src), "\n"))
}

// runScript executes commands one per line, stopping at the first error.
// Blank lines and lines starting with # are skipped.
func (sh *shell) runScript(lines []string) int {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := sh.execute(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
			return 1
		}
		if quit {
			break
		}
	}
	return 0
}

// ---- REPL ------------------------------------------------------------------

func (sh *shell) runREPL() int {
	fmt.Fprintln(sh.out, banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(sh.out)
			break
		}
		if err != nil {
			// Ctrl+C aborts the current input; let user start again.
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := sh.execute(line)
		if err != nil {
			fmt.Fprintln(sh.out, err)
			continue
		}
		ln.AppendHistory(line)
		if quit {
			break
		}
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// ---- command dispatch --------------------------------------------------------

func (sh *shell) execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "help":
		fmt.Fprint(sh.out, helpText)

	case "quit", "exit":
		return true, nil

	case "new":
		if len(fields) != 2 {
			return false, errors.New("usage: new <name>")
		}
		return false, sh.cmdNew(fields[1])

	case "register":
		if len(fields) < 3 || len(fields) > 4 {
			return false, errors.New("usage: register <name> <held> [token]")
		}
		var token rhino.Value
		if len(fields) == 4 {
			token = fields[3]
		}
		return false, sh.cmdRegister(fields[1], fields[2], token)

	case "unregister":
		if len(fields) != 2 {
			return false, errors.New("usage: unregister <token>")
		}
		fmt.Fprintln(sh.out, sh.registry.Unregister(fields[1]))

	case "collect":
		if len(fields) != 2 {
			return false, errors.New("usage: collect <name> | collect all")
		}
		return false, sh.cmdCollect(fields[1])

	case "drain":
		fmt.Fprintf(sh.out, "%d invoked\n", sh.registry.Drain(context.Background()))

	case "targets":
		sh.cmdTargets()

	case "stats":
		sh.cmdStats()

	case "journal":
		return false, sh.cmdJournal()

	default:
		return false, fmt.Errorf("unknown command %q. Type help for help", cmd)
	}
	return false, nil
}

func (sh *shell) cmdNew(name string) error {
	if _, exists := sh.targets[name]; exists {
		return fmt.Errorf("target %q already exists", name)
	}
	sh.targets[name] = rhino.NewObject("Object", sh.realm.ObjectProto())
	fmt.Fprintf(sh.out, "target %s created\n", name)
	return nil
}

func (sh *shell) cmdRegister(name, held string, token rhino.Value) error {
	target, ok := sh.targets[name]
	if !ok {
		return fmt.Errorf("no target %q (use: new %s)", name, name)
	}
	if err := sh.registry.Register(target, held, token); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "registered %s -> %q\n", name, held)
	return nil
}

func (sh *shell) cmdCollect(name string) error {
	if name == "all" {
		count := len(sh.targets)
		ready := sh.sim.MarkAllUnreachable()
		sh.targets = make(map[string]*rhino.Object)
		fmt.Fprintf(sh.out, "collected %d targets, %d handles ready\n", count, ready)
		return nil
	}

	target, ok := sh.targets[name]
	if !ok {
		return fmt.Errorf("no target %q", name)
	}
	delete(sh.targets, name)
	ready := sh.sim.MarkUnreachable(target)
	fmt.Fprintf(sh.out, "collected %s, %d handles ready\n", name, ready)
	return nil
}

func (sh *shell) cmdTargets() {
	if len(sh.targets) == 0 {
		fmt.Fprintln(sh.out, "no live targets")
		return
	}
	for name := range sh.targets {
		fmt.Fprintln(sh.out, name)
	}
}

func (sh *shell) cmdStats() {
	s := sh.registry.Stats()
	fmt.Fprintf(sh.out, "live:            %d\n", s.Live)
	fmt.Fprintf(sh.out, "registrations:   %d\n", s.Registrations)
	fmt.Fprintf(sh.out, "unregistrations: %d\n", s.Unregistrations)
	fmt.Fprintf(sh.out, "dispatches:      %d\n", s.Dispatches)
	fmt.Fprintf(sh.out, "callback errors: %d\n", s.CallbackErrors)
	fmt.Fprintf(sh.out, "drain passes:    %d\n", s.Drains)
}

func (sh *shell) cmdJournal() error {
	entries, err := sh.journal.List(sh.registry.ID())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, "journal empty")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%3d  %-10s  handle=%d  tokened=%v", e.Sequence, e.Op, e.HandleID, e.Tokened)
		if e.Detail != "" {
			line += "  detail=" + e.Detail
		}
		fmt.Fprintln(sh.out, line)
	}
	return nil
}

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/db"
	"github.com/hpungsan/clipd/internal/engine"
	"github.com/hpungsan/clipd/internal/mcp"
	"github.com/hpungsan/clipd/internal/watch"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands. Anything else on the
// command line falls through to MCP server dispatch.
var cliCommands = map[string]bool{
	"add": true, "list": true, "search": true, "get": true,
	"delete": true, "clear": true, "activate": true,
	"stats": true, "watch": true,
	"help": true,
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "--help", "-h", "--version", "-v":
		return true
	}
	return false
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // no args → MCP server
	}
	return cliCommands[os.Args[1]] || isHelpFlag(os.Args[1])
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	return len(os.Args) >= 2 && (isHelpFlag(os.Args[1]) || os.Args[1] == "help")
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
        _ _           _
    ___| (_)_ __   __| |
   / __| | | '_ \ / _  |
  | (__| | | |_) | (_| |
   \___|_|_| .__/ \__,_|
           |_|

  Local clipboard history engine

  Usage: clipd <command> [options]
         clipd --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".clipd")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	eng := engine.New(cfg, db.NewEntries(database), watch.NewSystemClipboard(),
		engine.WithURLTitleEnrichment(true),
	)
	eng.SetPro(cfg.IsPro)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(eng, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'clipd --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default): capture runs alongside the tool surface.
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Printf("config: unknown disabled_tools %v (valid: %v)", unknown, mcp.AllToolNames())
	}
	eng.StartWatching()
	defer eng.StopWatching()
	if err := mcp.Run(eng, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

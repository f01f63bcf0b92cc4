package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/clipd/internal/clip"
	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/engine"
	"github.com/hpungsan/clipd/internal/errors"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(eng *engine.Engine, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "clipd",
		Usage:   "Local clipboard history engine",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(eng),
			listCmd(eng),
			searchCmd(eng),
			getCmd(eng),
			deleteCmd(eng),
			clearCmd(eng),
			activateCmd(eng),
			statsCmd(eng),
			watchCmd(eng),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Capture text into the history (reads content from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Override the detected content kind"},
			&cli.StringFlag{Name: "source-name", Usage: "Name of the producing application"},
			&cli.StringFlag{Name: "source-bundle", Usage: "Bundle identifier of the producing application"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("content must be piped via stdin"))
			}

			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			kind := clip.Classify(text)
			if k := c.String("kind"); k != "" {
				if !clip.Kind(k).Valid() {
					return outputError(errors.NewInvalidRequest("unknown kind: " + k))
				}
				kind = clip.Kind(k)
			}

			var src *clip.SourceApp
			if name, bundle := c.String("source-name"), c.String("source-bundle"); name != "" || bundle != "" {
				src = &clip.SourceApp{Name: name, BundleID: bundle}
			}

			entry, err := eng.Add(clip.TextPayload{Text: text}, kind, src)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(entry.ToSummary())
		},
	}
}

// listCmd creates the list command.
func listCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List history entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum entries to return"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Only entries of this content kind"},
		},
		Action: func(c *cli.Context) error {
			kind := c.String("kind")
			if kind != "" && !clip.Kind(kind).Valid() {
				return outputError(errors.NewInvalidRequest("unknown kind: " + kind))
			}

			entries := eng.FetchAll()
			if kind != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.Kind == clip.Kind(kind) {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if limit := c.Int("limit"); limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			return outputJSON(summaries(entries))
		},
	}
}

// searchCmd creates the search command.
func searchCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Fuzzy-search the history",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum results to return"},
		},
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")

			entries := eng.Search(query)
			if limit := c.Int("limit"); limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			return outputJSON(summaries(entries))
		},
	}
}

// getCmd creates the get command.
func getCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch one entry by id, including its full content",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			id := c.Args().First()

			entry, ok := eng.Get(id)
			if !ok {
				return outputError(errors.NewNotFound(id))
			}

			return outputJSON(struct {
				clip.Summary
				Content string `json:"content"`
			}{
				Summary: entry.ToSummary(),
				Content: entry.Payload.Display(),
			})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			id := c.Args().First()

			eng.Delete(id)
			return outputJSON(map[string]any{"deleted": id})
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all history entries",
		Action: func(c *cli.Context) error {
			eng.Clear()
			return outputJSON(map[string]any{"cleared": true})
		},
	}
}

// activateCmd creates the activate command.
func activateCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "activate",
		Usage:     "Record that an entry was used",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			id := c.Args().First()

			if !eng.TrackActivation(id) {
				return outputError(errors.NewNotFound(id))
			}
			entry, _ := eng.Get(id)

			return outputJSON(entry.ToSummary())
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize the history",
		Action: func(c *cli.Context) error {
			return outputJSON(eng.Stats())
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Monitor the system clipboard until interrupted",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng.StartWatching()
			fmt.Fprintln(os.Stderr, "watching clipboard (ctrl-c to stop)")
			<-ctx.Done()
			eng.StopWatching()

			return outputJSON(eng.Stats())
		},
	}
}

// Helper functions

func summaries(entries []clip.Entry) []clip.Summary {
	out := make([]clip.Summary, len(entries))
	for i := range entries {
		out[i] = entries[i].ToSummary()
	}
	return out
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if clipErr, ok := err.(*errors.ClipError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", clipErr.Code, clipErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/quotebook/internal/app"
	"github.com/five82/quotebook/internal/quotes"
)

// cliOptions holds the persistent flags shared by every command.
type cliOptions struct {
	configPath string
	prefsPath  string
	verbose    bool
	interval   time.Duration
}

func (o *cliOptions) app() app.Options {
	return app.Options{
		ConfigPath: o.configPath,
		PrefsPath:  o.prefsPath,
		Verbose:    o.verbose,
		SyncEvery:  o.interval,
	}
}

// withServices opens the application services for the duration of fn.
func (o *cliOptions) withServices(fn func(*app.Services) error) (err error) {
	svc, err := app.Open(o.app())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(svc)
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "quotebook",
		Short: "Collect, browse and sync quotes from the terminal",
		Long: `quotebook keeps a categorized collection of quotes on disk and
periodically merges a remote sample into it (remote entries win on
matching text).

Run without a subcommand to start the terminal UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts.app())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/quotebook/config.toml)")
	pf.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/quotebook/prefs.toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.interval, "interval", 0, "sync interval override, e.g. 30s")

	root.AddCommand(
		newAddCmd(opts),
		newPickCmd(opts),
		newCategoriesCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSyncCmd(opts),
	)
	return root
}

func newAddCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT CATEGORY",
		Short: "Add a quote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(svc *app.Services) error {
				q, err := svc.Repo.Add(args[0], args[1])
				if err != nil {
					if errors.Is(err, quotes.ErrValidation) {
						return errors.New("both quote text and category are required and must be valid UTF-8")
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added quote to %s.\n", q.Category)

				if svc.Config.Publish {
					if err := svc.Engine.Publish(cmd.Context(), q); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					}
				}
				return nil
			})
		},
	}
}

func newPickCmd(opts *cliOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Print a random quote",
		Long: `Print a random quote from --category, or from the last category used
when the flag is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(svc *app.Services) error {
				if !cmd.Flags().Changed("category") {
					category = svc.Selector.SelectedCategory()
				}
				q, ok := svc.Selector.PickRandom(category)
				if !ok {
					return fmt.Errorf("no quotes available for category %q", category)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  — %s\n", q.Text, q.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", quotes.AllCategories, "category to pick from")
	return cmd
}

func newCategoriesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories (All first, then first-seen order)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(svc *app.Services) error {
				out := cmd.OutOrStdout()
				for _, c := range svc.Repo.Categories() {
					fmt.Fprintln(out, c)
				}
				return nil
			})
		},
	}
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export all quotes as JSON or YAML",
		Long: `Export all quotes to FILE (default quotes.json). Use "-" for stdout.
The format follows the file extension unless --format is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := quotes.ExportFilename
			if len(args) == 1 {
				path = args[0]
			}
			f, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			return opts.withServices(func(svc *app.Services) error {
				data, err := quotes.Encode(svc.Repo.Quotes(), f)
				if err != nil {
					return err
				}
				if path == "-" {
					_, err := cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d quotes to %s.\n", svc.Repo.Len(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	return cmd
}

func newImportCmd(opts *cliOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Append quotes from a JSON or YAML file",
		Long: `Append the valid records of FILE ("-" for stdin). Records missing text
or category are skipped; existing quotes are never deduplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			var raw []byte
			if path == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return opts.withServices(func(svc *app.Services) error {
				res, err := svc.Repo.Import(raw, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d quotes (%d skipped).\n", res.Imported, res.Dropped)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from file extension)")
	return cmd
}

func newSyncCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge the remote sample into the collection once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(svc *app.Services) error {
				res, err := svc.Engine.Sync(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced: %d remote, %d kept, %d replaced.\n", res.Remote, res.Kept, res.Replaced)
				return nil
			})
		},
	}
}

// resolveFormat picks the document format from the flag, falling back to
// the path's extension.
func resolveFormat(flag, path string) (quotes.Format, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "":
		return quotes.FormatForPath(path), nil
	case "json":
		return quotes.FormatJSON, nil
	case "yaml", "yml":
		return quotes.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", flag)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-eks-go/internal/config"
	"github.com/lex00/wetwire-eks-go/internal/linter"
)

// newWatchCmd creates the "watch" subcommand for auto-rebuilding on config changes.
func newWatchCmd(opts *globalOptions) *cobra.Command {
	var wopts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Auto-rebuild when the cluster configuration changes",
		Long: `Watch monitors the configuration file and rebuilds on every change.

The watch command:
- Runs lint on each change
- Rebuilds if lint reports no errors (unless --lint-only)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-eks watch -o template.json
    wetwire-eks watch --lint-only
    wetwire-eks watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, wopts)
		},
	}

	cmd.Flags().BoolVar(&wopts.lintOnly, "lint-only", false, "Only run lint, skip build")
	cmd.Flags().DurationVar(&wopts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&wopts.outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&wopts.outputFile, "output", "o", "", "Output file for build (default: stdout)")

	return cmd
}

type watchOptions struct {
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
}

// runWatch monitors the configuration and runs lint/build on changes.
func runWatch(stdout, stderr io.Writer, opts *globalOptions, wopts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	path, err := filepath.Abs(opts.configPath)
	if err != nil {
		return err
	}

	// Editors replace files on save, so watch the directory and filter by name.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	fmt.Fprintf(stdout, "Watching: %s\n", path)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Fprintln(stdout, "Running initial lint/build...")
	runLintAndBuild(stdout, stderr, opts, wopts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Fprintln(stdout, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, path) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wopts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(stdout, "\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			runLintAndBuild(stdout, stderr, opts, wopts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Fprintln(stdout, "\nStopping watch...")
			return nil
		}
	}
}

// isConfigEvent reports whether event wrote or created the watched file.
func isConfigEvent(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// runLintAndBuild lints the configuration and, when lint reports no errors,
// rebuilds the template. It returns whether the build step ran and succeeded.
func runLintAndBuild(stdout, stderr io.Writer, opts *globalOptions, wopts watchOptions) bool {
	cfg, err := opts.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return false
	}

	result := linter.Lint(cfg, linter.Options{})
	for _, issue := range result.Issues {
		fmt.Fprintf(stdout, "%s: %s: %s [%s]\n", issue.Path, issue.Severity, issue.Message, issue.Rule)
	}
	if result.Errors() > 0 {
		fmt.Fprintln(stdout, "Lint failed, skipping build")
		return false
	}
	fmt.Fprintln(stdout, "Lint passed")

	if wopts.lintOnly {
		return false
	}

	synth, err := config.Synthesize(cfg, opts.logger())
	if err != nil {
		fmt.Fprintf(stderr, "Build error: %v\n", err)
		return false
	}
	printWarnings(stderr, synth)

	if wopts.outputFile == "" {
		if err := writeTemplate(stdout, synth.Template, wopts.outputFormat, ""); err != nil {
			fmt.Fprintf(stderr, "Output error: %v\n", err)
			return false
		}
		return true
	}

	if err := writeTemplate(stdout, synth.Template, wopts.outputFormat, wopts.outputFile); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return false
	}
	fmt.Fprintf(stdout, "Build successful, wrote %s (%d resources)\n", wopts.outputFile, len(synth.Template.Resources))
	return true
}

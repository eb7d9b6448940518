// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexical/docgap/cmd/docgap/internal/clierr"
	"github.com/nexical/docgap/internal/config"
	"github.com/nexical/docgap/internal/report"
	"github.com/nexical/docgap/internal/rules"
	"github.com/nexical/docgap/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var (
		flags    checkFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-run the drift check whenever watched files change",
		Long: `Run the drift check once, then again each time files under the project root change
or new commits land. The configuration is reloaded before every run. Stop with Ctrl-C.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "invalid --format", err)
			}
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root, flags.configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)

			matcher, err := rules.NewMatcher(root, cfg.Ignore, cfg.RespectGitignore)
			if err != nil {
				return clierr.Classify("watch failed", err)
			}
			w, err := watch.New(root, watch.Options{Debounce: debounce, Ignore: matcher, Logger: logger})
			if err != nil {
				return clierr.Wrap(clierr.CodeFailure, "start watcher", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			s := &watchSession{
				root:   root,
				flags:  flags,
				format: format,
				out:    cmd.OutOrStdout(),
				logger: logger,
			}
			// The first run must succeed; later failures are logged and the loop continues.
			if err := s.check(ctx, cfg); err != nil {
				cancel()
				<-done
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return <-done
				case batch, ok := <-w.Events():
					if !ok {
						return <-done
					}
					logger.Info("change detected", "events", len(batch), "first", batch[0].Path)
					if next, err := loadConfig(root, flags.configPath); err != nil {
						logger.Warn("keeping previous configuration", "error", err)
					} else {
						cfg = next
					}
					if err := s.check(ctx, cfg); err != nil {
						if ctx.Err() != nil {
							return <-done
						}
						logger.Error("check failed", "error", err)
					}
				}
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-running after a change")

	return cmd
}

type watchSession struct {
	root   string
	flags  checkFlags
	format report.Format
	out    io.Writer
	logger *slog.Logger
	runs   int
}

func (s *watchSession) check(ctx context.Context, cfg *config.Config) error {
	results, err := runCheck(ctx, s.root, cfg, s.flags, s.logger, nil)
	if err != nil {
		return err
	}
	s.runs++
	if s.runs > 1 {
		_, _ = fmt.Fprintf(s.out, "\n--- run %d at %s ---\n", s.runs, time.Now().Format(time.TimeOnly))
	}
	if err := report.Render(s.out, s.format, report.NewRun(s.root, results), report.Options{NoColor: s.flags.noColor}); err != nil {
		return clierr.Wrap(clierr.CodeFailure, "render report", err)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holonick/internal/command"
	"github.com/holomush/holonick/internal/config"
	"github.com/holomush/holonick/internal/cooldown"
	"github.com/holomush/holonick/internal/observability"
	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/pkg/errutil"
)

// Console verbs handled by the host rather than the command handler.
const (
	verbJoin = "join"
	verbQuit = "quit"
)

const shutdownTimeout = 5 * time.Second

// NewConsoleCmd creates the console subcommand.
func NewConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run nickname commands read from stdin",
		Long: `Read lines of the form "<user> <command> [args...]" from stdin and run
them against the registry, printing feedback as "[user] message".

"<user> join" connects a user and shows their stored identity;
"<user> quit" disconnects them. Renames only target connected users.
Lines starting with # are ignored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConsole(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), newLogger(cmd, cfg))
		},
	}
}

// consoleHost is the Notifier and Presence for console sessions.
type consoleHost struct {
	mu     sync.Mutex
	out    io.Writer
	online map[string]bool
}

func newConsoleHost(out io.Writer) *consoleHost {
	return &consoleHost{out: out, online: make(map[string]bool)}
}

func (h *consoleHost) Notify(_ context.Context, user, message string) error {
	return h.printf("[%s] %s\n", user, message)
}

func (h *consoleHost) IsOnline(_ context.Context, user string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[user]
}

func (h *consoleHost) setOnline(user string, online bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if online {
		h.online[user] = true
	} else {
		delete(h.online, user)
	}
}

func (h *consoleHost) printf(format string, args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintf(h.out, format, args...); err != nil {
		return oops.Wrapf(err, "write console output")
	}
	return nil
}

// announce shows every change to the whole console, the way a host would
// refresh display names.
func (h *consoleHost) announce(_ context.Context, c registry.Change) {
	display := c.Nickname
	if display == "" {
		display = c.User
	}
	//nolint:errcheck // broadcast output is best effort
	h.printf("* %s is now shown as %s (%s)\n", c.User, display, c.Color.Name())
}

func operatorCapabilities(operators []string) command.CapabilitySet {
	caps := make(command.CapabilitySet, len(operators))
	for _, op := range operators {
		caps[op] = []string{command.CapabilityRenameOthers}
	}
	return caps
}

// runConsole serves commands from in until it is exhausted or ctx ends, then
// flushes the registry.
func runConsole(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, logger *slog.Logger) (err error) {
	host := newConsoleHost(out)
	promReg := observability.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	reg, err := openRegistry(ctx, cfg, logger,
		registry.WithRegisterer(promReg),
		registry.WithCooldownSweep(cooldown.DefaultSweepInterval),
		registry.WithObserver(host.announce),
	)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if closeErr := reg.Close(closeCtx); closeErr != nil {
			errutil.LogError(closeCtx, logger, "failed to flush registry", closeErr)
			if err == nil {
				err = oops.Wrapf(closeErr, "flush registry")
			}
		}
	}()

	handler, err := command.NewHandler(reg, host,
		command.WithAuthorizer(operatorCapabilities(cfg.Operators)),
		command.WithPresence(host),
		command.WithLogger(logger),
	)
	if err != nil {
		return oops.Wrapf(err, "create command handler")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, promReg, ready.Load, logger)
		errCh, startErr := srv.Start()
		if startErr != nil {
			return oops.Wrapf(startErr, "start observability server")
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer stopCancel()
			if stopErr := srv.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop observability server", "error", stopErr)
			}
		}()
		go monitorServerErrors(ctx, cancel, errCh, "observability", logger)
	}

	ready.Store(true)
	logger.InfoContext(ctx, "console ready", "data_dir", cfg.DataDir)

	lines, scanErr := scanLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "console stopping")
			return nil
		case line, ok := <-lines:
			if !ok {
				if serr := <-scanErr; serr != nil {
					return oops.Wrapf(serr, "read console input")
				}
				return nil
			}
			handleLine(ctx, host, handler, metrics, line)
		}
	}
}

// handleLine runs one console line.
func handleLine(ctx context.Context, host *consoleHost, handler *command.Handler, metrics *observability.Metrics, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	user, input, _ := strings.Cut(line, " ")
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case verbJoin:
		host.setOnline(user, true)
		id := handler.OnConnect(ctx, user)
		//nolint:errcheck // broadcast output is best effort
		host.printf("* %s joined as %s (%s)\n", user, id.DisplayName, id.Color.Name())
		return
	case verbQuit:
		host.setOnline(user, false)
		//nolint:errcheck // broadcast output is best effort
		host.printf("* %s left\n", user)
		return
	}

	host.setOnline(user, true)
	name := "none"
	if parsed, err := command.Parse(input); err == nil {
		name = parsed.Name
	}

	start := time.Now()
	status := "success"
	if err := handler.Execute(ctx, user, input); err != nil {
		status = errutil.Code(err)
		if status == "" {
			status = "error"
		}
	}
	metrics.RecordCommand(name, status, time.Since(start))
}

// scanLines feeds lines from in to a channel until in is exhausted or ctx
// ends. The error channel receives the scanner error once lines is closed.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string, logger *slog.Logger) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server failed, shutting down", "server", name, "error", err)
			cancel()
		}
	}
}

// Package daemonrun bootstraps the daemon process: logger, pid file, store,
// reminder engine, IPC server, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"nudge/internal/config"
	"nudge/internal/daemon"
	"nudge/internal/dialog"
	"nudge/internal/display"
	"nudge/internal/ipc"
	"nudge/internal/logging"
	"nudge/internal/notifications"
	"nudge/internal/notify"
	"nudge/internal/reminder"
	"nudge/internal/tasks"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	SocketPath string
}

// Run starts the nudge daemon runtime loop and blocks until a signal or the
// parent context ends it.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("nudge-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update nudge.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "nudged.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := tasks.Open(cfg)
	if err != nil {
		logger.Error("open task store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	surface := display.NewSnapshot()

	presenter := dialog.NewOSAScript(cfg.OsascriptBinary())
	protocol := dialog.NewProtocol(presenter, time.Duration(cfg.Dialog.Timeout)*time.Second, logger)
	gate := notify.NewGate(cfg)

	var d *daemon.Daemon
	engine := reminder.New(cfg, store, protocol, gate, notifier, func() {
		if d != nil {
			d.RequestRefresh()
		}
	}, logger)

	d, err = daemon.New(cfg, store, engine, surface, notifier, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check that no other nudged instance is running"))
		return err
	}

	logger.Info("nudge daemon running",
		logging.String("run_id", runID),
		logging.String("socket", socketPath),
		logging.String("db", cfg.DatabasePath()))

	<-signalCtx.Done()
	logger.Info("nudge daemon shutting down")
	return nil
}

// ensureCurrentLogPointer keeps log_dir/nudge.log pointing at the newest
// per-run log file.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "nudge.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

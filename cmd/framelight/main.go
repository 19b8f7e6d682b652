package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/engine"
	"github.com/1broseidon/framelight/internal/ipc"
	"github.com/1broseidon/framelight/internal/x11"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: framelight daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: framelight daemon")
			os.Exit(2)
		}
		os.Exit(runDaemon())
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "stop":
		os.Exit(runStop(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "version", "-v", "--version":
		fmt.Printf("framelight %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: framelight <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the border daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the daemon's configuration")
	fmt.Fprintln(w, "  stop                Stop the running daemon")
	fmt.Fprintln(w, "  monitors            List the daemon's view of active displays")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "  config edit         Open the config file in $EDITOR")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  version             Print version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'framelight <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	if rejectArgs("status", args) {
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("backend:        %s\n", status.Backend)
	fmt.Printf("fps:            %d\n", status.FPS)
	fmt.Printf("border_count:   %d\n", status.BorderCount)
	fmt.Printf("visible_count:  %d\n", status.VisibleCount)
	fmt.Printf("config_path:    %s\n", status.ConfigPath)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	if rejectArgs("reload", args) {
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runStop(args []string) int {
	if rejectArgs("stop", args) {
		return 2
	}

	client := ipc.NewClient()
	if err := client.Exit(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("daemon stopping")
	return 0
}

func runMonitors(args []string) int {
	if rejectArgs("monitors", args) {
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, m := range data.Monitors {
		fmt.Printf("%d: %s %dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
	return 0
}

// rejectArgs handles --help and rejects positional arguments for commands
// that take none.
func rejectArgs(name string, args []string) bool {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintf(os.Stdout, "Usage: framelight %s\n", name)
		os.Exit(0)
	}
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n\n", name)
		fmt.Fprintf(os.Stderr, "Usage: framelight %s\n", name)
		return true
	}
	return false
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  framelight config validate")
		fmt.Fprintln(os.Stderr, "  framelight config print [--defaults]")
		fmt.Fprintln(os.Stderr, "  framelight config path")
		fmt.Fprintln(os.Stderr, "  framelight config edit")
		return 2
	}

	switch args[0] {
	case "validate":
		if _, err := config.Load(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print", "show":
		if len(args) > 1 && args[1] == "--defaults" {
			os.Stdout.Write(config.DefaultYAML())
			return 0
		}
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "edit":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		// Touch the default config into place first so the editor opens
		// something meaningful.
		if _, err := config.Load(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		cmd := exec.Command(editor, path)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runDaemon() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log := newLogger(cfg.LogLevel)
	log.Info("configuration loaded",
		"backend", cfg.RenderingBackend.String(), "rules", len(cfg.WindowRules))

	conn, err := x11.NewConnection()
	if err != nil {
		log.Error("failed to connect to X server", "error", err)
		return 1
	}
	defer conn.Close()

	if !conn.HasARGB() {
		log.Warn("no 32-bit visual available, borders will be opaque")
	}

	eng, err := engine.New(conn, cfg, log)
	if err != nil {
		log.Error("failed to initialize engine", "error", err)
		return 1
	}

	ipcServer, err := ipc.NewServer(eng, log)
	if err != nil {
		log.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	// Optional live reload on config file changes.
	if cfg.WatchConfigChanges {
		path, err := config.Path()
		if err == nil {
			watcher := config.NewWatcher(path, log, func() {
				if err := eng.ReloadConfig(); err != nil {
					log.Warn("config reload failed, keeping previous config", "error", err)
				}
			})
			if err := watcher.Start(); err != nil {
				log.Warn("config watcher failed to start", "error", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Info("received SIGHUP, reloading config")
				if err := eng.ReloadConfig(); err != nil {
					log.Warn("config reload failed, keeping previous config", "error", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				log.Info("shutting down")
				eng.RequestExit()
				return
			}
		}
	}()

	log.Info("framelight daemon started", "version", version)
	if err := eng.Run(ctx); err != nil {
		log.Error("engine stopped", "error", err)
		return 1
	}
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dmrelay/internal/auth"
	"dmrelay/internal/config"
	"dmrelay/internal/dispatch"
	"dmrelay/internal/log"
	"dmrelay/internal/platform"
	"dmrelay/internal/resolver"
	"dmrelay/internal/roster"
	"dmrelay/internal/storage"
	"dmrelay/internal/webhook"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	case "start":
		return runStart(args)
	case "config":
		return runConfigNoun(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *jsonOut {
		info := versionInfo{Version: version, Commit: gitCommit, BuildTime: buildDate}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON error: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	fmt.Printf("dmrelay %s (commit %s, built %s)\n", version, gitCommit, buildDate)
	return 0
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigHelp(os.Stderr)
		return 1
	}

	if isHelpToken(args[0]) {
		printConfigHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	case "help":
		printConfigHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

// runConfigCheck validates syntax and, when a checksums manifest exists,
// file integrity.
func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: dmrelay config check --config <path>")
		return 1
	}

	if _, err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration check FAILED: %v\n", err)
		return 1
	}

	if err := config.Verify(*configPath); err != nil {
		if strings.Contains(err.Error(), "checksums file not found") {
			fmt.Println("Status: Configuration check PASSED (not locked).")
			return 0
		}
		fmt.Fprintf(os.Stderr, "Configuration check FAILED: %v\n", err)
		return 1
	}

	fmt.Println("Status: Configuration check PASSED (integrity verified).")
	return 0
}

// runConfigLock authorizes the current config state by writing its
// checksums manifest.
func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: dmrelay config lock --config <path>")
		return 1
	}

	if _, err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Refusing to lock invalid config: %v\n", err)
		return 1
	}
	if err := config.Lock(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	fmt.Println("Configuration locked (checksums updated).")
	return 0
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file (falls back to DMRELAY_* environment)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("dmrelay starting", "version", version, "listen", cfg.Server.Listen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *sql.DB
	var snapStore roster.SnapshotStore
	if cfg.Snapshots.Enabled {
		db, err = storage.OpenSQLite(ctx, cfg.Snapshots.Path)
		if err != nil {
			logger.Error("failed to open snapshot database", "path", cfg.Snapshots.Path, "error", err)
			return 1
		}
		defer db.Close()
		snapStore = roster.NewStore(db)
		logger.Info("snapshot database opened", "path", cfg.Snapshots.Path)
	}

	session := platform.NewClient(platform.Config{
		Token:             cfg.Platform.Token,
		BaseURL:           cfg.Platform.BaseURL,
		HeartbeatInterval: cfg.Platform.HeartbeatInterval,
	}, log.WithComponent("platform"))

	// The listener never comes up on a dead session.
	if err := session.Connect(ctx); err != nil {
		logger.Error("failed to establish platform session", "error", err)
		return 1
	}

	res := resolver.New(session, log.WithComponent("resolver"))
	dispatcher := dispatch.New(dispatch.Config{
		GuildID:        cfg.Guild.ID,
		RequiredRole:   cfg.Guild.RequiredRole,
		DefaultMessage: cfg.Guild.DefaultMessage,
		MaxInFlight:    cfg.Dispatch.MaxInFlight,
	}, res, session, log.WithComponent("dispatch"))
	enumerator := roster.New(session, snapStore, log.WithComponent("roster"))
	validator := auth.NewValidator(auth.Credentials{
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
	}, log.WithComponent("auth"))

	server := webhook.New(webhook.Config{
		Listen:  cfg.Server.Listen,
		GuildID: cfg.Guild.ID,
	}, validator, dispatcher, enumerator, log.WithComponent("webhook"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	go func() {
		if err := session.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("platform session: %w", err)
		}
	}()

	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("webhook server: %w", err)
		}
	}()

	logger.Info("dmrelay running (press Ctrl+C to stop)")

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		exitCode = 1
	}

	// Let in-flight deliveries finish before the process exits.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := dispatcher.Drain(drainCtx); err != nil {
		logger.Warn("shutdown drain incomplete", "error", err)
	}

	logger.Info("dmrelay stopped")
	return exitCode
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func printUsage() {
	fmt.Print(`dmrelay - Webhook-to-direct-message relay

Usage:
  dmrelay <command> [flags]

Commands:
  start             Run the relay in foreground
  config check      Validate syntax and integrity
  config lock       Authorize current state (update integrity hashes)
  version           Show version information
  help              Show this help message

Start Flags:
  --config <path>   Load YAML configuration; without it the DMRELAY_*
                    environment profile is used

Use 'dmrelay config help' for config-specific flags.
`)
}

func printConfigHelp(w *os.File) {
	fmt.Fprint(w, `dmrelay config - configuration and integrity

Usage:
  dmrelay config check --config <path>
  dmrelay config lock  --config <path>

check validates the file (and its checksums when locked) without starting
the service. lock writes a .checksums manifest next to the file; a locked
file refuses to load after out-of-band edits until locked again.
`)
}

/*
Package main implements the shellpredict daemon and commandline interface.

shellpredict predicts and ranks shell command completions from a
concurrent frecency trie, a tiered in-memory cache, and an optional
LM-backed background predictor. It can operate as a MessagePack IPC
server for shell integration shims (zsh/fish/bash widgets, editor
terminal panes) or as a standalone CLI for interactive debugging.

# Server Mode

The server decodes a stream of MessagePack requests from stdin and
writes one response per request to stdout. See pkg/ipcserver for the
wire contract.

# CLI Mode

The CLI provides an interactive shell for exercising GetSuggestion and
the four feedback callbacks by hand.

# State

Frecency snapshots and telemetry logs are persisted under a state
directory resolved by internal/utils.PathResolver, defaulting to
$XDG_CONFIG_HOME/shellpredict/state.

# Config

Runtime configuration is managed via a config.toml file covering
logging, the LM endpoint, state location, and CLI defaults. A default
configuration is created automatically if one does not exist.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/internal/cli"
	"github.com/bastiangx/shellpredict/internal/host"
	"github.com/bastiangx/shellpredict/internal/logger"
	"github.com/bastiangx/shellpredict/internal/utils"
	"github.com/bastiangx/shellpredict/pkg/config"
	"github.com/bastiangx/shellpredict/pkg/ipcserver"
)

const (
	Version = "0.1.0-beta"
	AppName = "shellpredict"
	gh      = "https://github.com/bastiangx/shellpredict"
)

// sigHandler returns a context cancelled on SIGINT/SIGTERM so the
// daemon can Dispose its Engine (flushing persistence and telemetry)
// before exiting, rather than dying mid-write.
func sigHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
	}()
	return ctx, cancel
}

// main calls other packages to initialize the server or CLI. main()
// does not implement logic for them and only manages the flow.
func main() {
	ctx, cancel := sigHandler()
	defer cancel()

	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	stateDir := flag.String("state", "", "Directory for persisted snapshots and logs")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	lmEndpoint := flag.String("lm-endpoint", defaultConfig.LM.Endpoint, "Base URL of the background prediction service")
	lmModel := flag.String("lm-model", defaultConfig.LM.Model, "Model name to request from the prediction service")

	flag.Parse()

	if *showVersion {
		vlog := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		vlog.SetStyles(styles)

		vlog.Print("")
		vlog.Print("[shellpredict] Predicts shell commands before you finish typing them!")
		vlog.Print("", "version", Version)
		vlog.Print("")
		vlog.Print("use --help to see available options")
		vlog.Print("")
		vlog.Print("Find out more at", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	resolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to resolve paths: %v", err)
	}

	configPath := *configFile
	if configPath == "" {
		configPath, err = resolver.GetConfigPath("config.toml")
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}

	appConfig, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *lmEndpoint != defaultConfig.LM.Endpoint {
		appConfig.LM.Endpoint = *lmEndpoint
	}
	if *lmModel != defaultConfig.LM.Model {
		appConfig.LM.Model = *lmModel
	}
	log.Debugf("Using config file: %s", configPath)

	stateDirArg := *stateDir
	if stateDirArg == "" {
		stateDirArg = appConfig.State.Dir
	}
	resolvedStateDir, err := resolver.GetStateDir(stateDirArg)
	if err != nil {
		log.Fatalf("Failed to resolve state directory: %v", err)
	}
	log.Debugf("Using state dir at: %s", resolvedStateDir)

	engineLevel := log.InfoLevel
	levelName := appConfig.Log.Level
	if strings.EqualFold(levelName, "warning") {
		levelName = "warn"
	}
	if lvl, err := log.ParseLevel(levelName); err == nil {
		engineLevel = lvl
	}
	engineLogger := logger.NewWithConfig("engine", engineLevel, false, *debugMode, log.TextFormatter)

	engine, err := host.New(appConfig, resolvedStateDir, engineLogger)
	if err != nil {
		log.Fatalf("Failed to init engine: %v", err)
	}
	defer engine.Dispose()

	// CLI mode is mainly used for testing and debugging. Any new
	// feature or change should be tried in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(resolvedStateDir)

	srv := ipcserver.NewServer(engine, appConfig, configPath)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(stateDir string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" shellpredict ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("state dir: ( %s )", stateDir)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

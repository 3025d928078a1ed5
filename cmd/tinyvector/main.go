// Command tinyvector runs the observability data pipeline engine: it
// loads a declarative graph of sources, transforms, and sinks from a
// TOML configuration file, validates it, and runs it until killed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinyvector/tinyvector/internal/appconfig"
	"github.com/tinyvector/tinyvector/internal/buildinfo"
	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/debugtail"
	"github.com/tinyvector/tinyvector/internal/loglevel"
	"github.com/tinyvector/tinyvector/internal/sink"
	"github.com/tinyvector/tinyvector/internal/source"
	"github.com/tinyvector/tinyvector/internal/topology"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	logLevel := flag.String("log-level", "", "override the config file's settings.log_level")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger = logger.With("version", buildinfo.Version)

	if flag.NArg() == 0 {
		printUsage()
		return
	}

	switch flag.Arg(0) {
	case "run":
		runEngine(logger, *configPath, *logLevel)
	case "validate":
		runValidate(logger, *configPath)
	case "version":
		fmt.Println(buildinfo.String())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("tinyvector - observability data pipeline")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run        Start the pipeline")
	fmt.Println("  validate   Load and validate the configuration without running")
	fmt.Println("  version    Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func loadConfig(logger *slog.Logger, explicit string) *appconfig.Config {
	path, err := appconfig.FindConfig(explicit)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("config loaded", "path", path,
		"sources", len(cfg.Graph.Sources), "transforms", len(cfg.Graph.Transforms), "sinks", len(cfg.Graph.Sinks))
	return cfg
}

func runValidate(logger *slog.Logger, configPath string) {
	cfg := loadConfig(logger, configPath)
	fmt.Printf("configuration is valid: %d source(s), %d transform(s), %d sink(s)\n",
		len(cfg.Graph.Sources), len(cfg.Graph.Transforms), len(cfg.Graph.Sinks))
}

func runEngine(logger *slog.Logger, configPath, logLevelOverride string) {
	cfg := loadConfig(logger, configPath)

	levelName := cfg.Settings.LogLevel
	if logLevelOverride != "" {
		levelName = logLevelOverride
	}
	if levelName != "" {
		level, err := loglevel.Parse(levelName)
		if err != nil {
			logger.Error("invalid log level", "error", err)
			os.Exit(1)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: loglevel.ReplaceAttr,
		}))
	}

	sources, err := buildSources(cfg, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		os.Exit(1)
	}
	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		logger.Error("failed to build sinks", "error", err)
		os.Exit(1)
	}

	top := topology.New(cfg.Graph, sources, sinks, logger).WithCapacity(cfg.Settings.Capacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Settings.Debugtail.Enabled {
		tap, err := mountDebugtail(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to start debugtail", "error", err)
			os.Exit(1)
		}
		defer tap.Close()
		top = top.WithTap(tap)
	}

	instance, err := top.Start(ctx)
	if err != nil {
		logger.Error("failed to start topology", "error", err)
		os.Exit(1)
	}
	logger.Info("topology started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		// The topology has no explicit cancellation signal (spec §5):
		// every driver runs until its own input is exhausted. A process
		// signal here can only ask the OS to tear the process down.
		logger.Info("shutdown signal received, exiting")
		os.Exit(0)
	}()

	instance.Await()
	logger.Info("topology stopped")
}

func buildSources(cfg *appconfig.Config, logger *slog.Logger) (map[component.Name]topology.Source, error) {
	out := make(map[component.Name]topology.Source, len(cfg.Graph.Sources))
	for name, node := range cfg.Graph.Sources {
		driver, err := source.Build(node.Type, node.Raw, logger.With("component", string(name)))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		out[name] = driver
	}
	return out, nil
}

// buildSinks builds every declared sink driver.
func buildSinks(cfg *appconfig.Config, logger *slog.Logger) (map[component.Name]topology.Sink, error) {
	out := make(map[component.Name]topology.Sink, len(cfg.Graph.Sinks))
	for name, node := range cfg.Graph.Sinks {
		driver, err := sink.Build(node.Type, node.Raw, logger.With("component", string(name)))
		if err != nil {
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		out[name] = driver
	}
	return out, nil
}

// mountDebugtail builds and starts the settings-driven live tap. Unlike
// a sink it is never declared in the graph: it is mounted directly on
// the topology so it can observe traffic without being a
// ComponentOutput or participating in graph validation.
func mountDebugtail(ctx context.Context, cfg *appconfig.Config, logger *slog.Logger) (*debugtail.PreparedTap, error) {
	tap, err := debugtail.BuildTap(map[string]any{"address": cfg.Settings.Debugtail.Address}, logger.With("component", "debugtail"))
	if err != nil {
		return nil, err
	}
	prepared, err := tap.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("debugtail started", "address", prepared.Addr().String())
	return prepared, nil
}

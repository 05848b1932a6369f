// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the efficiency lookup server and CLI [DBG] application.

EffServe answers "what is the best known efficiency for solar-cell technology
X, and how has it evolved" against the NREL efficiency chart export. A free text
technology name is resolved in three steps: exact label, literal substring,
then a fuzzy match against the known labels. French names such as "silicium"
or "couche mince" are translated first.

It can operate as a MessagePack IPC server for integration with other
processes, or as a CLI application for testing and debugging.

# Usage

Start the server with the dataset from the config file:

	effserve

Use another dataset, reload it when it changes, and enable debug mode:

	effserve -data /path/to/nrel_data.csv -watch -d

Run in CLI mode for interactive testing:

	effserve -c

Expose Prometheus metrics:

	effserve -metrics :9464

# Configuration

Runtime configuration is read from effserve.toml in the config directory,
created with defaults if it doesn't exist:

	[search]
	fuzzy_threshold = 75
	scorer = "wratio"

	[data]
	path = "nrel_data.csv"
	watch = false

	[terms]
	"silizium" = "Silicon"

# IPC Protocol

The server reads MessagePack requests from stdin and writes one response per
request to stdout. See package server for the message shapes.

	{"id": "req1", "action": "search", "k": "perovskite"}
	{"id": "req1", "found": true, "keyword": "perovskite", "data": {...}, "t": 52}

# Command Line Flags

	-data string
	    Dataset file, CSV or TSV (default from config)
	-config string
	    Config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-watch
	    Reload the dataset when the file changes
	-metrics string
	    Address for the Prometheus /metrics endpoint
	-rebuild-config
	    Overwrite effserve.toml with defaults and exit
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/effserve/internal/cli"
	"github.com/bastiangx/effserve/internal/utils"
	"github.com/bastiangx/effserve/pkg/config"
	"github.com/bastiangx/effserve/pkg/dataset"
	"github.com/bastiangx/effserve/pkg/fuzzy"
	"github.com/bastiangx/effserve/pkg/metrics"
	"github.com/bastiangx/effserve/pkg/search"
	"github.com/bastiangx/effserve/pkg/server"
	"github.com/bastiangx/effserve/pkg/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	Version = "0.1.0-beta"
	AppName = "effserve"
	gh      = "https://github.com/bastiangx/effserve"
)

// sigHandler cancels the run context on interrupt and exits normally.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, dataset, service and the chosen front end.
// main() does not implement logic for them and only manages the flow.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)

	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", "", "Dataset file, CSV or TSV (default from config)")
	configPath := flag.String("config", "", "Config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	watch := flag.Bool("watch", false, "Reload the dataset when the file changes")
	metricsAddr := flag.String("metrics", "", "Address for the Prometheus /metrics endpoint, e.g. :9464")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite effserve.toml with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		fmt.Fprintf(os.Stderr, "Config restored to defaults at %s\n", path)
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedConfig))

	if *dataPath != "" {
		appConfig.Data.Path = *dataPath
	}
	if *watch {
		appConfig.Data.Watch = true
	}
	if *metricsAddr != "" {
		appConfig.Metrics.Addr = *metricsAddr
	}

	var m *metrics.Metrics
	if appConfig.Metrics.Addr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.NewMetrics(registry)
		go func() {
			if err := metrics.Serve(ctx, appConfig.Metrics.Addr, registry); err != nil {
				log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	scorer, _ := fuzzy.ByName(appConfig.Search.Scorer)
	svc, err := service.New(service.Options{
		Search: search.Options{
			Threshold:  appConfig.Search.FuzzyThreshold,
			Scorer:     scorer,
			CacheSize:  appConfig.Search.CacheSize,
			NoiseFloor: appConfig.History.NoiseFloor,
			UnknownLab: appConfig.History.UnknownLab,
		},
		Terms:              appConfig.Terms,
		AutocompleteLimit:  appConfig.Autocomplete.Limit,
		AutocompleteMinLen: appConfig.Autocomplete.MinLen,
		Metrics:            m,
	})
	if err != nil {
		log.Fatalf("Failed to init service: %v", err)
	}

	resolvedData := loadDataset(svc, appConfig.Data.Path)

	if appConfig.Data.Watch && resolvedData != "" {
		go func() {
			err := dataset.Watch(ctx, resolvedData, dataset.DefaultDebounce, func(path string) {
				if res, err := svc.ReloadFile(path); err != nil {
					log.Errorf("Reload after change failed, keeping previous data: %v", err)
				} else {
					log.Infof("Reloaded %d records from %s", res.TotalRecords, path)
				}
			})
			if err != nil {
				log.Errorf("Dataset watcher stopped: %v", err)
			}
		}()
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(svc, appConfig.Server.MaxQueryLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(svc, server.Options{
		MaxQueryLen: appConfig.Server.MaxQueryLen,
		DataPath:    resolvedData,
	})

	showStartupInfo(resolvedData, svc.Health().Records)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadDataset resolves and loads the dataset. Failures are logged and the
// service starts without data, answering searches as unavailable until a reload.
func loadDataset(svc *service.Service, userPath string) string {
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		return ""
	}
	resolved, err := pathResolver.ResolveDataFile(userPath)
	if err != nil {
		log.Warnf("No dataset loaded: %v (searched the working, executable and %s dirs)", err, pathResolver.ConfigDir())
		return ""
	}
	res, err := svc.ReloadFile(resolved)
	if err != nil {
		log.Warnf("No dataset loaded: %v", err)
		return resolved
	}
	log.Debugf("Loaded %d records from %s", res.TotalRecords, resolved)
	return resolved
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ EffServe ] Best known solar cell efficiencies, by technology")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataPath string, records int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" EffServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	if dataPath == "" {
		log.Warn("dataset: none, waiting for a reload request")
	} else {
		log.Infof("dataset: ( %s ) %d records", dataPath, records)
	}
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/hoststat/internal/config"
	"github.com/google/hoststat/internal/engine"
	"github.com/google/hoststat/internal/metrics"
	"github.com/google/hoststat/internal/ui"
	"github.com/labstack/gommon/log"
)

func main() {
	// Parse flags
	mockMode := flag.Bool("mock", false, "Run in mock mode with simulated data")
	configPath := flag.String("config", "", "Profile to load (default profiles.json next to the binary or in the working directory)")
	interval := flag.Duration("interval", 0, "Refresh interval, overrides the profile")
	jsonMode := flag.Bool("json", false, "Print one snapshot as JSON and exit")
	logPath := flag.String("log", "", "Write logs to this file (discarded in interactive mode when empty)")
	save := flag.Bool("save", false, "Save refresh rate, panels and column widths to the profile on exit")
	diskIO := flag.Bool("disk-io", false, "Report block device read and write throughput")
	flag.Parse()

	cfg, path := loadConfig(*configPath)
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	if *interval != 0 {
		cfg.SetInterval(*interval)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	closeLog := setupLogging(cfg, *logPath, *jsonMode)
	defer closeLog()

	var sources metrics.Sources
	if *mockMode {
		log.Info("Starting in MOCK mode...")
		sources = metrics.MockSources()
	} else {
		log.Info("Starting in REAL mode...")
		sources = metrics.HostSources()
		if *diskIO {
			sources.Throughput = &metrics.DiskIOThroughput{}
		}
	}

	eng, err := engine.New(sources, engine.Config{
		RefreshInterval:   cfg.Interval(),
		Visibility:        cfg.Visibility(),
		InterfacePrefixes: cfg.NetworkInterfacePrefixes,
	})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	if *jsonMode {
		if err := dumpSnapshot(eng, os.Stdout); err != nil {
			eng.Close()
			log.Fatalf("Error collecting snapshot: %v", err)
		}
		return
	}

	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	root := ui.NewRootModel(eng, cfg)
	if snap, ok := eng.Latest(); ok {
		next, _ := root.Update(ui.SnapshotMsg(snap))
		root = next.(ui.RootModel)
	}

	// Start Bubble Tea program
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	unsubscribe := eng.Subscribe(func(s metrics.Snapshot) {
		p.Send(ui.SnapshotMsg(s))
	})
	final, err := p.Run()
	unsubscribe()
	eng.Stop()
	if err != nil {
		fmt.Printf("Error running hoststat: %v\n", err)
		eng.Close()
		os.Exit(1)
	}

	if *save {
		if m, ok := final.(ui.RootModel); ok {
			if err := config.SaveConfig(m.Config(), path); err != nil {
				log.Errorf("Failed to save profile %s: %v", path, err)
			} else {
				log.Infof("Saved profile to %s", path)
			}
		}
	}
}

func loadConfig(path string) (*config.ProfileConfiguration, string) {
	var (
		cfg *config.ProfileConfiguration
		err error
	)
	if path != "" {
		cfg, err = config.LoadConfig(path)
	} else {
		cfg, path, err = config.LoadDefaultConfig()
	}
	if err != nil {
		log.Warnf("Using default configuration: %v", err)
	}
	return cfg, path
}

// setupLogging applies the profile's level and routes output away from the
// terminal while the interface owns it.
func setupLogging(cfg *config.ProfileConfiguration, path string, oneShot bool) func() {
	lvl, _ := config.ParseLogLevel(cfg.LogLevel)
	log.SetLevel(lvl)
	log.SetPrefix("hoststat")

	if path == "" {
		if !oneShot {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(os.Stderr)
		}
		return func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

// dumpSnapshot collects two cycles, so rates have a baseline, and prints
// the second.
func dumpSnapshot(eng *engine.Engine, w io.Writer) error {
	second := make(chan metrics.Snapshot, 1)
	unsubscribe := eng.Subscribe(func(s metrics.Snapshot) {
		if s.Sequence >= 2 {
			select {
			case second <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	if err := eng.Start(); err != nil {
		return err
	}
	var snap metrics.Snapshot
	select {
	case snap = <-second:
	case <-time.After(eng.RefreshInterval() + 5*time.Second):
		return fmt.Errorf("no second sample within %v", eng.RefreshInterval()+5*time.Second)
	}
	eng.Stop()

	data, err := json.MarshalIndent(snap, "", " ")
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

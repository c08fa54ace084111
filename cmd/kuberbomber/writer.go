package main

import (
	"os"

	"kuberbomber/internal/config"
	"kuberbomber/internal/sim"
)

// newWriters sets up the event sinks based on flags and env vars. It
// returns the composed writer and a cleanup function closing any files.
func newWriters(cfg *config.SimulationConfig, printOnly bool, csvPath, logFile string, tui func() sim.Status) (sim.EventWriter, func(), error) {
	base, err := baseWriter(cfg, printOnly, tui)
	if err != nil {
		return nil, nil, err
	}

	writers := []sim.EventWriter{base}
	var closers []func()
	if tw, ok := base.(*sim.TUIWriter); ok {
		closers = append(closers, func() { tw.Close() })
	}
	if csvPath != "" {
		cw, err := sim.NewCSVWriter(csvPath)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, cw)
		closers = append(closers, func() { cw.Close() })
	}
	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		writers = append(writers, fw)
		closers = append(closers, func() { fw.Close() })
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(writers) == 1 {
		return base, cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}

// baseWriter chooses the primary sink: TUI, GreptimeDB, or STDOUT.
func baseWriter(cfg *config.SimulationConfig, printOnly bool, tui func() sim.Status) (sim.EventWriter, error) {
	if tui != nil {
		return sim.NewTUIWriter(tui), nil
	}
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return sim.NewColorWriter(cfg), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(endpoint, database)
}

// newReplayWriter creates the sink used by the replay subcommand.
func newReplayWriter(printOnly bool) (sim.EventWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return sim.NewJSONStdoutWriter(), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(endpoint, database)
}

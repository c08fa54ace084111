package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kuberbomber/internal/admin"
	"kuberbomber/internal/cluster"
	"kuberbomber/internal/config"
	"kuberbomber/internal/logging"
	"kuberbomber/internal/sim"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simCSVPath    string
	simLogFile    string
	simAdminAddr  string
	simDuration   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the reliability simulation",
	Long:  "simulate schedules failure injections against a simulated cluster and logs every lifecycle event with live reliability metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New()
		if verbose {
			log = logging.NewLevel(slog.LevelDebug)
		}

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if env := os.Getenv("CLUSTER_ID"); env != "" {
			cfg.ClusterID = env
		}
		if cmd.Flags().Changed("duration") {
			cfg.DurationHours = simDuration
		}

		simCluster := cluster.NewSimCluster(cfg.Cluster)
		simulator := sim.NewSimulator(cfg.ClusterID, simCluster, nil)

		var tuiStatus func() sim.Status
		if simTUI {
			tuiStatus = simulator.Status
		}
		writer, cleanup, err := newWriters(cfg, simPrintOnly, simCSVPath, simLogFile, tuiStatus)
		if err != nil {
			return err
		}
		defer cleanup()
		simulator.SetWriter(writer)

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		if err := simulator.Start(ctx, sim.OptionsFromConfig(cfg)); err != nil {
			return err
		}

		srv := admin.NewServer(simulator)
		go func() {
			log.Info("admin UI listening", "addr", simAdminAddr)
			if err := srv.Start(ctx, simAdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
			}
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		finished := make(chan struct{})
		if cfg.DurationHours > 0 {
			go func() {
				_ = simulator.Drain(context.Background())
				close(finished)
			}()
		}

		select {
		case <-sigs:
			if err := simulator.Stop(); err != nil {
				log.Warn("stop", "err", err)
			}
			drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer drainCancel()
			if err := simulator.Drain(drainCtx); err != nil {
				log.Warn("pending recoveries abandoned", "err", err)
			}
		case <-finished:
		}
		cancel()
		log.Info("simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print events to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render a live TUI dashboard")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simCSVPath, "csv", "", "Path to export the CSV event log")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export the JSONL event log (replayable)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin UI listen address")
	simulateCmd.Flags().Float64Var(&simDuration, "duration", 0, "Real run duration in hours (0 runs until interrupted)")
}

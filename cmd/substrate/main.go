package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/corticaldb/substrate/internal/config"
	"github.com/corticaldb/substrate/internal/logging"
	"github.com/corticaldb/substrate/internal/tick"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "substrate",
		Short: "Cognitive substrate - a self-organizing activation graph",
		Long: `substrate runs a typed directed multigraph of continuously-activating
nodes: input drives a thought-convergence loop, a learning engine adjusts
two-timescale edge weights, and growth/prune/homeostat passes let the graph
reshape and regulate itself tick over tick.`,
	}

	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newStatsCmd(),
		newSnapshotCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
				return
			}
			fmt.Printf("substrate version %s\n", version)
		},
	}
}

func newRunCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the substrate's tick loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			driver, err := tick.New(cfg, logger, seed)
			if err != nil {
				return fmt.Errorf("initializing substrate: %w", err)
			}
			defer driver.Close()

			go feedStdin(driver)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger.Info("substrate starting", "data_dir", cfg.Persistence.DataDir)
			if err := driver.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			logger.Info("substrate stopped")
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "deterministic seed for the shared random source")
	return cmd
}

// feedStdin drains os.Stdin into the driver's input ring as it arrives, so
// `substrate run < input.bin` or an interactive pipe both work without the
// tick loop ever blocking on I/O.
func feedStdin(d *tick.Driver) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			d.Feed(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the current configuration's effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(cfg)
			}
			fmt.Printf("node_cap=%d edge_cap=%d detector_cap=%d macro_cap=%d\n",
				cfg.Graph.NodeCap, cfg.Graph.EdgeCap, cfg.Graph.DetectorCap, cfg.Graph.MacroCap)
			fmt.Printf("period_ms=%d snapshot_period=%d stats_period=%d homeostat_period=%d\n",
				cfg.Tick.PeriodMillis, cfg.Tick.SnapshotPeriod, cfg.Tick.StatsPeriod, cfg.Tick.HomeostatPeriod)
			fmt.Printf("data_dir=%s event_log=%v log_level=%s\n",
				cfg.Persistence.DataDir, cfg.Persistence.EventLog, cfg.Logging.Level)
			return nil
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect persisted graph snapshots",
	}
	cmd.AddCommand(newSnapshotInspectCmd())
	return cmd
}

func newSnapshotInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the node/edge counts stored in nodes.bin/edges.bin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			nodeCount, nextID, err := peekCount(filepath.Join(cfg.Persistence.DataDir, "nodes.bin"), true)
			if err != nil {
				return fmt.Errorf("reading nodes.bin: %w", err)
			}
			edgeCount, _, err := peekCount(filepath.Join(cfg.Persistence.DataDir, "edges.bin"), false)
			if err != nil {
				return fmt.Errorf("reading edges.bin: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]uint64{
					"nodes": uint64(nodeCount), "edges": uint64(edgeCount), "next_id": nextID,
				})
			}
			fmt.Printf("nodes=%d edges=%d next_id=%d\n", nodeCount, edgeCount, nextID)
			return nil
		},
	}
}

// peekCount reads only a snapshot file's leading count (and, for nodes.bin,
// the next-id counter), without loading the full record set.
func peekCount(path string, hasNextID bool) (count uint32, nextID uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return 0, 0, err
	}
	if hasNextID {
		if err := binary.Read(f, binary.LittleEndian, &nextID); err != nil {
			return 0, 0, err
		}
	}
	return count, nextID, nil
}

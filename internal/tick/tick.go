// Package tick implements the substrate's per-tick driver: the single
// sequence that reads input, runs the thought-convergence and learning
// passes, applies growth and pruning, emits a macro, and periodically
// persists and reports — "one tick" procedure. Modeled on a
// staged simulation runner loop, generalized from a fixed pipeline stage
// list to the substrate's engine sequence.
package tick

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corticaldb/substrate/internal/config"
	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/converge"
	"github.com/corticaldb/substrate/internal/detector"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/grow"
	"github.com/corticaldb/substrate/internal/homeostat"
	"github.com/corticaldb/substrate/internal/ioring"
	"github.com/corticaldb/substrate/internal/learn"
	"github.com/corticaldb/substrate/internal/logging"
	"github.com/corticaldb/substrate/internal/macro"
	"github.com/corticaldb/substrate/internal/persistence"
	"github.com/corticaldb/substrate/internal/persistence/sqlitelog"
	"github.com/corticaldb/substrate/internal/prune"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
	"github.com/corticaldb/substrate/internal/stats"
)

// Driver owns every piece of state a running substrate needs and runs the
// tick sequence against it. Construct with New, feed input via Input, and
// call Run (or Step in a test's own loop).
type Driver struct {
	Store     *graphstore.Store
	Sys       *state.System
	RNG       *rng.Source
	Detectors *detector.Bank
	Macros    *macro.Library

	// Input holds bytes arriving from outside the process between ticks.
	// Output buffers the macro payload emitted last tick so it can be
	// folded back into this tick's frame as self-observation.
	Input  *ioring.Ring
	Output *ioring.Ring

	cfg        *config.Config
	logger     *slog.Logger
	decisions  *logging.DecisionLogger
	events     *sqlitelog.Log
	runID      string
	lastMacro  int
}

// New builds a Driver from cfg, loading any existing snapshot from
// cfg.Persistence.DataDir. A missing snapshot, or one that exceeds the
// configured capacities or cannot be read, starts with an empty graph.
func New(cfg *config.Config, logger *slog.Logger, seed int64) (*Driver, error) {
	store := graphstore.New(cfg.Graph.NodeCap, cfg.Graph.EdgeCap)
	if err := persistence.Load(cfg.Persistence.DataDir, store); err != nil {
		logger.Warn("snapshot not loaded, starting with an empty graph", "error", err)
	}

	var eventLog *sqlitelog.Log
	if cfg.Persistence.EventLog {
		var err error
		eventLog, err = sqlitelog.Open(filepath.Join(cfg.Persistence.DataDir, "events.db"))
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
	}

	d := &Driver{
		Store:     store,
		Sys:       state.New(),
		RNG:       rng.New(seed),
		Detectors: detector.New(cfg.Graph.DetectorCap),
		Macros:    macro.NewDefaultLibrary(cfg.Graph.MacroCap),
		Input:     ioring.New(constants.InputRingSize),
		Output:    ioring.New(constants.InputRingSize),
		cfg:       cfg,
		logger:    logger,
		decisions: logging.NewDecisionLogger(cfg.Persistence.DataDir, cfg.Logging.Level),
		events:    eventLog,
		runID:     persistence.NewRunID(),
		lastMacro: -1,
	}
	for i := 0; i < cfg.Graph.DetectorCap; i++ {
		if _, err := d.Detectors.Register(store, i); err != nil {
			return nil, fmt.Errorf("registering detector %d: %w", i, err)
		}
	}
	return d, nil
}

// Close releases the driver's persistence resources.
func (d *Driver) Close() {
	d.decisions.Close()
	if d.events != nil {
		d.events.Close()
	}
}

// Feed writes p into the input ring, to be consumed by a subsequent Step.
// Safe to call concurrently with Run/Step.
func (d *Driver) Feed(p []byte) {
	d.Input.Write(p)
}

// Run executes Step once per cfg.Tick.PeriodMillis until ctx is canceled.
// A PeriodMillis of 0 runs as fast as possible.
func (d *Driver) Run(ctx context.Context) error {
	period := time.Duration(d.cfg.Tick.PeriodMillis) * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		d.Step()

		if period > 0 {
			if elapsed := time.Since(start); elapsed < period {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(period - elapsed):
				}
			}
		}
	}
}

// Step runs one full tick: input framing, the thought-convergence loop,
// learning, growth, pruning, macro emission, and the periodic homeostat,
// snapshot, and stats passes.
func (d *Driver) Step() {
	frame := d.readFrame()
	d.Detectors.Update(d.Store, frame, d.Sys.Tick)

	converge.Run(d.Store, d.Sys)
	learn.Step(d.Store, d.Sys, d.RNG)

	if d.Sys.Tick%uint64(d.cfg.Tick.HomeostatPeriod) == 0 {
		homeostat.Step(d.Store, d.Sys)
		d.logDecision("controller_adjust", fmt.Sprintf("prune_rate=%g create_rate=%g activation_scale=%g max_thought_hops=%d",
			d.Sys.PruneRate, d.Sys.CreateRate, d.Sys.ActivationScale, d.Sys.MaxThoughtHops))
	}

	d.runGrowth()
	d.runPrune()
	d.emitMacro()

	if d.Sys.Tick > 0 && d.Sys.Tick%uint64(d.cfg.Tick.SnapshotPeriod) == 0 {
		d.snapshot()
	}

	d.Sys.Tick++

	if d.Sys.Tick%uint64(d.cfg.Tick.StatsPeriod) == 0 {
		stats.Emit(d.logger, d.Store, d.Sys)
	}
}

// readFrame drains up to FrameSize bytes of external input, then fills any
// remaining room with the self-observation of last tick's macro emission,
// per the "the substrate observes its own output" requirement.
func (d *Driver) readFrame() []byte {
	frame := d.Input.Drain(constants.FrameSize)
	if len(frame) < constants.FrameSize {
		self := d.Output.Drain(constants.FrameSize - len(frame))
		frame = append(frame, self...)
	}
	return frame
}

func (d *Driver) runGrowth() {
	if d.RNG.Bernoulli(constants.EdgeGrowthTickFraction) {
		if created := grow.EdgeEmergence(d.Store, d.Sys, d.RNG); created > 0 {
			d.logDecision("edge_emergence", fmt.Sprintf("%d hidden node(s) created", created))
		}
	}
	if d.RNG.Bernoulli(d.Sys.LayerRate * (1 + 0.5*d.Sys.Energy)) {
		if created := grow.LayerEmergence(d.Store, d.Sys, d.RNG); created > 0 {
			d.logDecision("layer_emergence", fmt.Sprintf("%d meta-node(s) created", created))
		}
	}
}

func (d *Driver) runPrune() {
	edgesPruned, nodesPruned := prune.Step(d.Store, d.Sys, d.RNG)
	if edgesPruned > 0 || nodesPruned > 0 {
		d.logDecision("prune", fmt.Sprintf("%d edge(s), %d node(s) pruned", edgesPruned, nodesPruned))
	}
}

// emitMacro selects and emits one macro via epsilon-greedy selection, then
// rewards it with the tick's prediction accuracy (1 - mean_error) and
// buffers the payload for next tick's self-observation.
func (d *Driver) emitMacro() {
	i, payload := macro.Select(d.Macros, d.Sys.Epsilon, d.RNG)
	if i < 0 {
		return
	}
	reward := 1 - d.Sys.MeanError
	macro.Reward(d.Macros, i, reward, d.Sys.Tick)
	d.lastMacro = i
	d.Output.Write(payload)
}

func (d *Driver) snapshot() {
	if err := persistence.Save(d.cfg.Persistence.DataDir, d.Store); err != nil {
		d.Sys.Stats.PersistenceFailures++
		d.logger.Error("snapshot failed", "tick", d.Sys.Tick, "error", err)
	}
}

func (d *Driver) logDecision(kind, detail string) {
	d.decisions.Log(d.Sys.Tick, map[string]any{"kind": kind, "detail": detail})
	if d.events != nil {
		if err := d.events.Record(d.runID, d.Sys.Tick, kind, detail); err != nil {
			d.logger.Warn("event log write failed", "error", err)
		}
	}
}

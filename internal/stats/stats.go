// Package stats formats the tick driver's periodic summary line.
// The exact format is implementation-defined; this one is a single
// structured slog line so it composes with the rest of the ambient logging.
package stats

import (
	"log/slog"

	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/state"
)

// Emit logs one summary line with every field the tick driver tracks.
func Emit(logger *slog.Logger, store *graphstore.Store, sys *state.System) {
	logger.Info("tick summary",
		"tick", sys.Tick,
		"nodes", store.LiveNodeCount(),
		"edges", store.LiveEdgeCount(),
		"active_nodes", sys.ActiveNodeCount,
		"mean_error", sys.MeanError,
		"energy", sys.Energy,
		"epsilon", sys.Epsilon,
		"density", sys.CurrentDensity,
		"activity", sys.CurrentActivity,
		"accuracy", sys.PredictionAcc,
		"thought_depth", sys.ThoughtDepth,
		"max_thought_hops", sys.MaxThoughtHops,
		"mean_temporal_distance", sys.MeanTemporalDistance,
		"mean_spatial_distance", sys.MeanSpatialDistance,
		"settle_ratio", sys.SettleRatio(),
		"stability_eps", sys.StabilityEps,
		"temporal_decay", sys.TemporalDecay,
		"node_overflow", sys.Stats.NodeCapacityOverflow,
		"edge_overflow", sys.Stats.EdgeCapacityOverflow,
		"persistence_failures", sys.Stats.PersistenceFailures,
	)
}

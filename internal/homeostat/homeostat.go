// Package homeostat implements the substrate's self-tuning controller: every
// K ticks it measures density, activity, prediction accuracy, thought depth,
// and emergent distance statistics, then nudges 14 control parameters toward
// their targets with small proportional corrections. Modeled on the
// teacher's token-bucket rate limiter in spirit only (a small stateful
// regulator read and written every pass), generalized to the full
// multi-parameter adjustment table.
package homeostat

import (
	"math"

	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/mathx"
	"github.com/corticaldb/substrate/internal/state"
)

// Step measures current graph/dynamics statistics and adjusts the 14
// control parameters in sys. Should be invoked every HomeostatPeriod ticks,
// after the learning engine has run.
func Step(store *graphstore.Store, sys *state.System) {
	nodes := float64(store.LiveNodeCount())
	edges := float64(store.LiveEdgeCount())

	density := 0.0
	if nodes > 0 {
		density = edges / (nodes * nodes)
	}
	activity := 0.0
	if nodes > 0 {
		activity = float64(sys.ActiveNodeCount) / nodes
	}
	acc := 1 - sys.MeanError
	settleRatio := sys.SettleRatio()

	sys.CurrentDensity = density
	sys.CurrentActivity = activity
	sys.PredictionAcc = acc

	const r = constants.AdaptRate

	sys.PruneRate = mathx.ClampFloat(sys.PruneRate+r*(density-constants.TargetDensity), 1e-4, 1e-2)

	sys.CreateRate = mathx.ClampFloat(
		sys.CreateRate+r*(constants.TargetDensity-density)*(1+(acc-constants.TargetAccuracy)),
		1e-3, 0.1,
	)

	sys.ActivationScale = mathx.ClampFloat(
		sys.ActivationScale+r*100*(activity-constants.TargetActivity),
		16, 256,
	)

	sys.EnergyAlpha = mathx.ClampFloat(
		sys.EnergyAlpha+r*0.1*(constants.TargetAccuracy-acc),
		1e-2, 0.5,
	)

	sys.EnergyDecay = mathx.ClampFloat(
		sys.EnergyDecay+r*0.01*((1-math.Abs(constants.TargetAccuracy-acc))-0.5),
		0.95, 0.999,
	)

	activitySign := 0.0
	switch {
	case activity < 0.05:
		activitySign = -1
	case activity > 0.5:
		activitySign = 1
	}
	sys.SigmoidK = mathx.ClampFloat(sys.SigmoidK+r*activitySign, 0.1, 2.0)

	epsSign := 0.0
	if acc < constants.TargetAccuracy {
		epsSign = 1
	}
	sys.EpsilonMax = mathx.ClampFloat(sys.EpsilonMax+r*0.1*epsSign, 0.2, 0.5)
	sys.EpsilonMin = 0.2 * sys.EpsilonMax

	sys.LayerRate = mathx.ClampFloat(
		sys.LayerRate+r*0.01*(density*acc-0.1),
		1e-4, 1e-2,
	)

	hopsDelta := -r * 10 * ((settleRatio - constants.TargetSettleRatio) + 0.5*(float64(sys.ThoughtDepth)-constants.TargetThoughtDepth))
	newHops := sys.MaxThoughtHops + int(math.Round(hopsDelta))
	if newHops < 3 {
		newHops = 3
	}
	if newHops > 20 {
		newHops = 20
	}
	sys.MaxThoughtHops = newHops

	sys.StabilityEps = mathx.ClampFloat(
		sys.StabilityEps+r*0.01*((float64(sys.ThoughtDepth)-constants.TargetThoughtDepth)/5),
		1e-3, 5e-2,
	)
	sys.ActivationEps = mathx.ClampFloat(
		sys.ActivationEps+r*0.02*((float64(sys.ThoughtDepth)-constants.TargetThoughtDepth)/5),
		5e-3, 0.1,
	)

	sys.TemporalDecay = mathx.ClampFloat(
		sys.TemporalDecay+r*0.1*((sys.MeanTemporalDistance-constants.TargetTemporalDistance)/10),
		1e-2, 0.5,
	)
	sys.SpatialK = mathx.ClampFloat(
		sys.SpatialK+r*((sys.MeanSpatialDistance-constants.TargetSpatialDistance)/2),
		0.1, 2.0,
	)

	if store.NodeCap > 0 && nodes/float64(store.NodeCap) > constants.CapacityPressureThreshold {
		sys.PruneRate = mathx.ClampFloat(sys.PruneRate*1.01, 1e-4, 1e-2)
		sys.CreateRate = mathx.ClampFloat(sys.CreateRate*0.99, 1e-3, 0.1)
	}
	if store.EdgeCap > 0 && edges/float64(store.EdgeCap) > constants.CapacityPressureThreshold {
		sys.PruneRate = mathx.ClampFloat(sys.PruneRate*1.02, 1e-4, 1e-2)
	}
}

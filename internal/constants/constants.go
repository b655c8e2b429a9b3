// Package constants centralizes the named numeric constants that are not
// themselves homeostatically-adaptive control parameters.
package constants

// Frame and ring buffer sizing.
const (
	// FrameSize is the maximum number of input bytes read per tick.
	FrameSize = 4096

	// InputRingSize is the capacity of the non-blocking input ring buffer.
	InputRingSize = 4 * FrameSize

	// MacroPayloadMax is the maximum byte length of one macro's output.
	MacroPayloadMax = 256
)

// Node initialization.
const (
	// InitialTheta is the firing threshold assigned to a freshly created node.
	InitialTheta = 128.0

	// InitialWFast and InitialWSlow are the two-timescale weight components
	// assigned to a freshly created edge.
	InitialWFast = 32
	InitialWSlow = 32

	// InitialSlowUpdateCountdown is the slow-weight consolidation gate's
	// starting value for a freshly created edge.
	InitialSlowUpdateCountdown = 50
)

// Two-timescale weight blending.
const (
	// GammaSlow is the blend factor between w_slow and w_fast when deriving
	// w_eff: w_eff = GammaSlow*w_slow + (1-GammaSlow)*w_fast.
	GammaSlow = 0.8

	// WeightMax is the inclusive upper clamp for w_fast and w_slow.
	WeightMax = 255
)

// Learning engine.
const (
	// BaselineLambda decays the per-node marginal-probability counters
	// P1/P0 each tick.
	BaselineLambda = 0.99

	// CoActivationLambda decays the per-edge co-activation counters C11/C10.
	CoActivationLambda = 0.99

	// PredictiveLiftEpsilon avoids division by zero when estimating p(j|i)
	// and the node marginal p(j).
	PredictiveLiftEpsilon = 1e-6

	// UsefulnessBeta blends predictive lift and error-based usefulness into U.
	UsefulnessBeta = 0.7

	// AvgULambda is the smoothing factor for the running average of U.
	AvgULambda = 0.95

	// EligibilityLambda decays the per-edge eligibility trace each tick.
	EligibilityLambda = 0.9

	// FastLearningRate (eta_fast) scales the fast-weight update before
	// soft-clamping.
	FastLearningRate = 3.0

	// FastDeltaMax is the soft-clamp bound for a single fast-weight update.
	FastDeltaMax = 4.0

	// SlowConsolidationProb is the base probability factor for the
	// probabilistic slow-weight consolidation step.
	SlowConsolidationProb = 0.1

	// SlowCountdownCenter is the countdown value around which the slow
	// update's sigmoid gate is centered.
	SlowCountdownCenter = 50.0

	// CreditMin and CreditMax bound the per-edge signed credit accumulator.
	CreditMin = -10000
	CreditMax = 10000
)

// Thought-convergence loop.
const (
	// MinThoughtHops is the minimum number of propagation passes within a
	// tick before the convergence test is allowed to end the thought early.
	MinThoughtHops = 3
)

// Growth engine.
const (
	// CoFreqRef normalizes the co-occurrence popcount into a novelty score.
	CoFreqRef = 10.0

	// DensityRef centers the soft outgoing-activation density factor in the
	// layer (meta-node) emergence probability.
	DensityRef = 0.6

	// LayerMinSize centers the soft out-degree factors in the layer
	// emergence probability.
	LayerMinSize = 10.0

	// EdgeGrowthTickFraction is the default fraction of ticks on which the
	// co-activation growth pass runs.
	EdgeGrowthTickFraction = 0.10
)

// Prune engine.
const (
	// PruneWeightRef is the w_eff reference point for the soft "weak edge"
	// factor.
	PruneWeightRef = 2.0

	// UnusedUseCountRef is the use_count reference point for the soft
	// "unused edge" factor.
	UnusedUseCountRef = 10.0

	// StaleRef is the stale_ticks reference point for the soft "stale edge"
	// factor.
	StaleRef = 200.0

	// NodeStaleRef is the tick-since-last-seen reference point for the soft
	// "stale node" factor.
	NodeStaleRef = 1000.0
)

// Homeostatic controller.
const (
	// AdaptRate is the proportional-correction gain applied to every
	// controller adjustment.
	AdaptRate = 1e-3

	// TargetDensity is the density the prune/create rate adjustments aim
	// to hold the graph near.
	TargetDensity = 0.15

	// TargetActivity is the activity level the activation_scale adjustment
	// aims to hold the graph near.
	TargetActivity = 0.10

	// TargetAccuracy is the prediction accuracy the energy_alpha/epsilon_max
	// adjustments aim toward.
	TargetAccuracy = 0.85

	// TargetSettleRatio is the settle ratio the max_thought_hops adjustment
	// aims toward.
	TargetSettleRatio = 0.7

	// TargetThoughtDepth is the thought depth the hop-related adjustments
	// are centered on.
	TargetThoughtDepth = 5.0

	// TargetTemporalDistance and TargetSpatialDistance center the
	// temporal_decay and spatial_k adjustments.
	TargetTemporalDistance = 10.0
	TargetSpatialDistance  = 2.0

	// CapacityPressureThreshold triggers multiplicative prune/create rate
	// adjustments when nodes/edges approach their hard capacities.
	CapacityPressureThreshold = 0.8
)

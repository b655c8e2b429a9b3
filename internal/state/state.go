// Package state bundles the process-wide mutable state of a running
// substrate: the tick counter, the 14 homeostatically-adaptive control
// parameters, the controller's measurement inputs, and the error/overflow
// counters. Every engine package takes a *System and mutates it in place,
// threading one owned state struct through the run loop rather than
// scattering package-level globals.
package state

// System is the single owned state structure threaded through the tick
// driver and every engine.
type System struct {
	Tick uint64

	// Control parameters, adaptively tuned by the homeostatic controller.
	// All clamp ranges are enforced by homeostat.Step.
	SigmoidK        float64
	PruneRate       float64
	CreateRate      float64
	LayerRate       float64
	EnergyAlpha     float64
	EnergyDecay     float64
	EpsilonMin      float64
	EpsilonMax      float64
	ActivationScale float64
	MaxThoughtHops  int
	StabilityEps    float64
	ActivationEps   float64
	TemporalDecay   float64
	SpatialK        float64

	// Derived/runtime system state.
	Epsilon         float64
	Energy          float64
	MeanError       float64
	MeanSurprise    float64
	ActiveNodeCount int

	// Controller measurement inputs. The propagation and convergence passes
	// refresh the activation, distance, and thought-depth fields; the
	// homeostatic controller writes CurrentDensity, CurrentActivity, and
	// PredictionAcc itself when it runs.
	CurrentDensity       float64
	CurrentActivity      float64
	PredictionAcc        float64
	ThoughtDepth         int
	ActivationDelta      float64
	MeanTemporalDistance float64
	MeanSpatialDistance  float64
	ThoughtsSettled      uint64
	ThoughtsMaxed        uint64
	PrevMeanError        float64

	// Overflow/error counters. None of these ever abort a
	// tick; they are purely observational.
	Stats Counters
}

// Counters tracks the recoverable-failure statistics the tick driver reports.
type Counters struct {
	NodeCapacityOverflow uint64
	EdgeCapacityOverflow uint64
	PersistenceFailures  uint64
	NumericalAborts      uint64
}

// New returns a System initialized with the baseline control parameters
// used throughout the engines.
func New() *System {
	s := &System{
		SigmoidK:        1.0,
		PruneRate:       5e-4,
		CreateRate:      1e-2,
		LayerRate:       1e-3,
		EnergyAlpha:     0.1,
		EnergyDecay:     0.99,
		EpsilonMax:      0.2,
		ActivationScale: 64,
		MaxThoughtHops:  10,
		StabilityEps:    0.01,
		ActivationEps:   0.01,
		TemporalDecay:   0.1,
		SpatialK:        0.5,
	}
	s.EpsilonMin = 0.2 * s.EpsilonMax
	s.Epsilon = s.EpsilonMin
	s.PrevMeanError = 0
	return s
}

// SettleRatio is thoughts_settled / (thoughts_settled + thoughts_maxed),
// defaulting to 0.5 when neither counter has incremented yet.
func (s *System) SettleRatio() float64 {
	total := s.ThoughtsSettled + s.ThoughtsMaxed
	if total == 0 {
		return 0.5
	}
	return float64(s.ThoughtsSettled) / float64(total)
}

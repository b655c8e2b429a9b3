// Package learn implements the substrate's per-tick learning engine: baseline
// marginal-probability tracking per node and, per edge, co-activation
// counters, predictive-lift usefulness, eligibility traces, and the
// two-timescale weight update. Modeled on an Oja-stabilized Hebbian
// update, generalized from a single learning-rate weight to a fast/slow
// track with probabilistic slow consolidation.
package learn

import (
	"math"

	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/mathx"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
)

// Step runs the learning engine once for the current tick: it decays every
// live node's baseline P1/P0 counters, then walks every live edge updating
// eligibility, predictive lift, fast/slow weights, and credit, and finally
// refreshes sys.MeanError, sys.MeanSurprise, sys.Energy, and sys.Epsilon.
func Step(store *graphstore.Store, sys *state.System, rnd *rng.Source) {
	store.EachLiveNode(func(_ int32, n *graphstore.Node) {
		n.P1 = constants.BaselineLambda*n.P1 + n.A
		n.P0 = constants.BaselineLambda*n.P0 + (1 - n.A)
	})

	var totalError, totalSurprise float64
	var activeEdges int

	store.EachLiveEdge(func(_ int32, e *graphstore.Edge) {
		src := &store.Nodes[e.Src]
		dst := &store.Nodes[e.Dst]

		ai := src.APrev
		aj := dst.A
		s := math.Abs(aj - dst.HatPrev)

		totalError += s
		totalSurprise += s * s
		activeEdges++

		discrepancy := ai * (aj - dst.HatPrev)

		e.C11 = constants.CoActivationLambda*e.C11 + ai*aj
		e.C10 = constants.CoActivationLambda*e.C10 + ai*(1-aj)

		pJGivenI := e.C11 / (e.C11 + e.C10 + constants.PredictiveLiftEpsilon)
		pJ := dst.P1 / (dst.P1 + dst.P0 + constants.PredictiveLiftEpsilon)
		u := pJGivenI - pJ

		errComponent := discrepancy * s
		usefulness := constants.UsefulnessBeta*u + (1-constants.UsefulnessBeta)*errComponent

		e.AvgU = constants.AvgULambda*e.AvgU + (1-constants.AvgULambda)*usefulness

		e.Eligibility = constants.EligibilityLambda*e.Eligibility + ai

		delta := constants.FastLearningRate * usefulness * e.Eligibility
		delta = constants.FastDeltaMax * math.Tanh(delta/constants.FastDeltaMax)
		e.WFast = mathx.ClampInt(e.WFast+int32(math.Round(delta)), 0, constants.WeightMax)

		pSlowUpdate := mathx.Sigmoid((float64(e.SlowUpdateCountdown) - constants.SlowCountdownCenter) * sys.SigmoidK)
		if rnd.Bernoulli(constants.SlowConsolidationProb * pSlowUpdate) {
			slowDelta := math.Tanh(20 * e.AvgU)
			e.WSlow = mathx.ClampInt(e.WSlow+int32(math.Round(slowDelta)), 0, constants.WeightMax)
			e.SlowUpdateCountdown = 0
		} else {
			e.SlowUpdateCountdown++
		}

		creditDelta := int32(math.Round(10 * (1 - s) * usefulness))
		e.Credit = mathx.ClampInt(e.Credit+creditDelta, constants.CreditMin, constants.CreditMax)
	})

	if activeEdges > 0 {
		sys.MeanError = totalError / float64(activeEdges)
		sys.MeanSurprise = totalSurprise / float64(activeEdges)
	} else {
		sys.MeanError = 0
		sys.MeanSurprise = 0
	}

	sys.Energy = sys.EnergyDecay*sys.Energy + sys.EnergyAlpha*sys.MeanSurprise
	sys.Epsilon = sys.EpsilonMin + (sys.EpsilonMax-sys.EpsilonMin)*mathx.Sigmoid(sys.Energy-0.5)
}

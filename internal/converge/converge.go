// Package converge implements the thought-convergence loop: one external
// tick runs repeated propagation passes until activations stabilize or an
// adaptive hop cap is reached. Modeled on a bounded spreading-activation
// loop, generalized to exit early once the emergent dynamics settle instead
// of always running a fixed number of steps.
package converge

import (
	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/propagate"
	"github.com/corticaldb/substrate/internal/state"
)

// Run executes one thought: repeated propagation passes, starting at hop 1,
// until both the activation delta falls under sys.ActivationEps (after at
// least constants.MinThoughtHops passes) or sys.MaxThoughtHops is reached.
//
// mean_error is a once-per-tick quantity written by the learning engine
// after this loop returns, so it cannot change hop-to-hop;
// the Δerr half of the break condition is therefore trivially satisfied and
// the real convergence signal is the activation delta. sys.ThoughtDepth,
// sys.ThoughtsSettled, and sys.ThoughtsMaxed are updated exactly once.
func Run(store *graphstore.Store, sys *state.System) {
	hop := 0
	for hop = 1; hop <= sys.MaxThoughtHops; hop++ {
		propagate.Pass(store, sys)

		deltaErr := 0.0 // mean_error is frozen until learning runs after this loop
		if hop >= constants.MinThoughtHops &&
			deltaErr < sys.StabilityEps &&
			sys.ActivationDelta < sys.ActivationEps {
			sys.ThoughtsSettled++
			sys.ThoughtDepth = hop
			return
		}
	}

	sys.ThoughtsMaxed++
	sys.ThoughtDepth = sys.MaxThoughtHops
}

// Package prune implements the substrate's continuous pruning pass: every
// edge and every node is deleted with a smoothly varying probability built
// from sigmoid factors rather than hard thresholds, following a
// continuous-everywhere numerics style. Modeled on a periodic retention-
// policy sweep, replaced with three independent soft-factor probability
// gates.
package prune

import (
	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/mathx"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
)

// Step runs the prune engine once for the current tick over every live edge
// and every live node. Returns the number of edges and nodes deleted, for
// decision logging.
func Step(store *graphstore.Store, sys *state.System, rnd *rng.Source) (edgesPruned, nodesPruned int) {
	var deadEdges []int32
	store.EachLiveEdge(func(idx int32, e *graphstore.Edge) {
		wEff := constants.GammaSlow*float64(e.WSlow) + (1-constants.GammaSlow)*float64(e.WFast)

		pWeak := mathx.Sigmoid(-(wEff - constants.PruneWeightRef))
		pUnused := mathx.Sigmoid(-(float64(e.UseCount) - constants.UnusedUseCountRef))
		pStale := mathx.Sigmoid(float64(e.StaleTicks) - constants.StaleRef)

		pPrune := sys.PruneRate * pWeak * pUnused * pStale
		if rnd.Bernoulli(pPrune) {
			deadEdges = append(deadEdges, idx)
		}
	})
	for _, idx := range deadEdges {
		store.DeleteEdge(idx)
	}

	var deadNodes []int32
	store.EachLiveNode(func(idx int32, n *graphstore.Node) {
		pIsolated := 0.0
		if n.InDeg == 0 && n.OutDeg == 0 {
			pIsolated = 1.0
		}

		staleness := float64(sys.Tick) - float64(n.LastTickSeen)
		pStale := mathx.Sigmoid(staleness - constants.NodeStaleRef)

		pPruneNode := 2 * sys.PruneRate * pIsolated * pStale
		if rnd.Bernoulli(pPruneNode) {
			deadNodes = append(deadNodes, idx)
		}
	})
	for _, idx := range deadNodes {
		store.DeleteNode(idx)
	}

	return len(deadEdges), len(deadNodes)
}

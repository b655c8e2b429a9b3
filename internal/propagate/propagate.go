// Package propagate implements one propagation pass of the substrate: it
// derives per-edge effective weight and emergent temporal/spatial attenuation,
// accumulates weighted input into every destination node, and resolves the
// new activation via a logistic threshold unit. Modeled on a spreading-
// activation engine, generalized from a fixed decay kernel to emergent
// freshness/connectivity weighting.
package propagate

import (
	"math"

	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/mathx"
	"github.com/corticaldb/substrate/internal/state"
)

// Pass runs one full propagation pass over the graph: clears soma/hat,
// accumulates weighted contributions over every live edge, resolves new
// activations, and refreshes the convergence-loop's distance and activity
// measurements on sys. It returns the mean absolute change in activation
// across all live nodes.
func Pass(store *graphstore.Store, sys *state.System) float64 {
	store.EachLiveNode(func(_ int32, n *graphstore.Node) {
		n.HatPrev = n.Hat
		n.Soma = 0
		n.Hat = 0
	})

	var distTemporalSum, distSpatialSum float64
	var distCount int

	store.EachLiveEdge(func(_ int32, e *graphstore.Edge) {
		src := &store.Nodes[e.Src]
		dst := &store.Nodes[e.Dst]

		wEff := mathx.ClampFloat(constants.GammaSlow*float64(e.WSlow)+(1-constants.GammaSlow)*float64(e.WFast), 0, constants.WeightMax)
		tW := 1.0 / (1.0 + float64(e.StaleTicks)*sys.TemporalDecay)
		sW := 1.0 / (1.0 + sys.SpatialK*math.Log(float64(src.OutDeg+dst.InDeg+1)))

		contribution := src.A * wEff * tW * sW
		dst.Soma += contribution

		e.UseCount = saturatingAddUint32(e.UseCount, uint32(math.Round(src.A)))

		if src.A > 0.5 {
			e.StaleTicks = uint32(math.Floor(0.95 * float64(e.StaleTicks)))
		} else {
			e.StaleTicks++
		}

		if src.A > 0.1 {
			distTemporalSum += float64(e.StaleTicks)
			if sW > 0 {
				distSpatialSum += 1.0 / sW
			}
			distCount++
		}
	})

	var deltaSum float64
	var nodeCount int
	activeCount := 0

	store.EachLiveNode(func(_ int32, n *graphstore.Node) {
		n.APrev = n.A

		hat := mathx.Sigmoid((n.Soma - n.Theta) / sys.ActivationScale)
		n.Hat = hat
		n.A = hat

		deltaSum += math.Abs(n.A - n.APrev)
		nodeCount++
		if n.A > 0.5 {
			activeCount++
		}
	})

	var activationDelta float64
	if nodeCount > 0 {
		activationDelta = deltaSum / float64(nodeCount)
	}

	sys.ActivationDelta = activationDelta
	sys.ActiveNodeCount = activeCount
	if distCount > 0 {
		sys.MeanTemporalDistance = distTemporalSum / float64(distCount)
		sys.MeanSpatialDistance = distSpatialSum / float64(distCount)
	}

	return activationDelta
}

// saturatingAddUint32 adds delta to v without wrapping past the uint32 max.
func saturatingAddUint32(v, delta uint32) uint32 {
	if math.MaxUint32-v < delta {
		return math.MaxUint32
	}
	return v + delta
}

// Package grow implements the two independent growth processes that let the
// substrate's graph expand on its own: edge/meta-node emergence from
// co-active node pairs, and layer meta-node emergence from dense clusters.
// Modeled on co-activation pair extraction, generalized from a batch
// PageRank-style scoring pass into a per-tick local density check.
package grow

import (
	"math/bits"

	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/mathx"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
)

// ScanWindow bounds how many (i,j) pairs EdgeEmergence inspects per call, to
// keep a single growth pass cheap on a large live-node set.
const ScanWindow = 256

// nextClusterID is a process-wide monotonic counter for freshly emerged
// meta-nodes' cluster_id. It is package state rather than sys state because
// it has no homeostatic role and is purely a label generator.
var nextClusterID uint64

// EdgeEmergence runs the co-activity growth pass over a bounded window of
// live node pairs. Should be invoked on ~EdgeGrowthTickFraction of ticks by
// the caller. Returns the number of hidden nodes created.
func EdgeEmergence(store *graphstore.Store, sys *state.System, rnd *rng.Source) int {
	live := make([]int32, 0, len(store.Nodes))
	store.EachLiveNode(func(idx int32, _ *graphstore.Node) {
		live = append(live, idx)
	})

	created := 0
	scanned := 0
	for i := 0; i < len(live) && scanned < ScanWindow; i++ {
		for j := i + 1; j < len(live) && scanned < ScanWindow; j++ {
			scanned++

			ni := &store.Nodes[live[i]]
			nj := &store.Nodes[live[j]]
			if ni.A*nj.A < 0.1 {
				continue
			}

			co := bits.OnesCount32(ni.SigHistory & nj.SigHistory)
			similarity := 1 - float64(bits.OnesCount32(ni.SigHistory^nj.SigHistory))/32.0
			novelty := (float64(co) / constants.CoFreqRef) * similarity

			pCreate := sys.CreateRate * mathx.Sigmoid(10*novelty-5) * (1 + sys.Energy)
			if !rnd.Bernoulli(pCreate) {
				continue
			}

			if _, exists := store.FindEdge(live[i], live[j]); exists {
				continue
			}

			if createHiddenPair(store, live[i], live[j]) {
				created++
			}
		}
	}
	return created
}

// createHiddenPair creates a new hidden node k with edges (i,k) and (j,k).
// On capacity exhaustion it removes whatever part it had created, so the
// graph is left unchanged. Reports whether the node was actually created.
func createHiddenPair(store *graphstore.Store, i, j int32) bool {
	k, err := store.CreateNode()
	if err != nil {
		return false
	}
	ik, err := store.CreateEdge(i, k)
	if err != nil {
		store.DeleteNode(k)
		return false
	}
	if _, err := store.CreateEdge(j, k); err != nil {
		store.DeleteEdge(ik)
		store.DeleteNode(k)
		return false
	}
	return true
}

// LayerEmergence runs the dense-cluster meta-node growth pass. Should be
// invoked with probability layer_rate*(1+0.5*energy) by the caller. Returns
// the number of meta-nodes created.
func LayerEmergence(store *graphstore.Store, sys *state.System, rnd *rng.Source) int {
	var candidates []int32
	store.EachLiveNode(func(idx int32, n *graphstore.Node) {
		if !n.IsMeta && n.OutDeg > 0 {
			candidates = append(candidates, idx)
		}
	})

	created := 0
	for _, idx := range candidates {
		n := &store.Nodes[idx]

		var activitySum float64
		store.EachLiveEdge(func(_ int32, e *graphstore.Edge) {
			if e.Src == idx {
				activitySum += store.Nodes[e.Dst].A
			}
		})
		density := activitySum / float64(n.OutDeg)

		outDeg := float64(n.OutDeg)
		pEmerge := sys.LayerRate *
			mathx.Sigmoid(density-constants.DensityRef) *
			mathx.Sigmoid(outDeg-constants.LayerMinSize) *
			mathx.Sigmoid(outDeg-constants.LayerMinSize/2)

		if !rnd.Bernoulli(pEmerge) {
			continue
		}

		meta, err := store.CreateNode()
		if err != nil {
			return created
		}
		if _, err := store.CreateEdge(idx, meta); err != nil {
			store.DeleteNode(meta)
			continue
		}
		nextClusterID++
		store.Nodes[meta].IsMeta = true
		store.Nodes[meta].ClusterID = nextClusterID
		created++
	}
	return created
}

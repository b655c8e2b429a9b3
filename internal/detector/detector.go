// Package detector provides the reference sensory-detector bank: the
// external collaborator that maps the current input frame to sensory node
// activations. The core treats this contract as pluggable;
// this package supplies a concrete byte-per-node implementation so the tick
// driver has something to drive out of the box. Modeled on a context
// evaluator that maps external input to discrete matches, generalized
// from discrete condition matching to a continuous per-byte activation.
package detector

import (
	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/graphstore"
)

// Bank owns a fixed set of sensory node slots, one per detector, each bound
// to frame[i mod len(frame)]. Activation is simply byte/255; this is the
// simplest detector that satisfies the detector contract, not a claim
// about what a production detector bank should compute.
type Bank struct {
	nodes []int32 // node slot index per detector, -1 if not yet registered
}

// New creates a Bank of n sensory detectors with no nodes registered yet.
func New(n int) *Bank {
	nodes := make([]int32, n)
	for i := range nodes {
		nodes[i] = -1
	}
	return &Bank{nodes: nodes}
}

// Register binds detector i to a freshly created node, growing the graph if
// necessary. It is a no-op if the detector already owns a node.
func (b *Bank) Register(store *graphstore.Store, i int) (int32, error) {
	if i < 0 || i >= len(b.nodes) {
		return -1, nil
	}
	if b.nodes[i] >= 0 && store.IsLiveNode(b.nodes[i]) {
		return b.nodes[i], nil
	}
	idx, err := store.CreateNode()
	if err != nil {
		return -1, err
	}
	b.nodes[i] = idx
	return idx, nil
}

// Update writes sensory activations from frame into every registered
// detector's node, per the detector contract in : it only writes
// nodes it owns, refreshes last_tick_seen/burst when activation crosses 0.5,
// and shifts a bit into sig_history.
func (b *Bank) Update(store *graphstore.Store, frame []byte, tick uint64) {
	if len(frame) == 0 {
		return
	}
	for i, nodeIdx := range b.nodes {
		if nodeIdx < 0 || !store.IsLiveNode(nodeIdx) {
			continue
		}
		byteVal := frame[i%len(frame)]
		a := float64(byteVal) / 255.0

		n := &store.Nodes[nodeIdx]
		n.A = a

		fired := a > 0.5
		if fired {
			n.LastTickSeen = tick
			n.Burst = 0.8*n.Burst + 0.2
		} else {
			n.Burst *= 0.8
		}

		n.SigHistory <<= 1
		if fired {
			n.SigHistory |= 1
		}
	}
}

// FrameSize re-exports constants.FrameSize, the largest frame the tick
// driver passes to Update. Update itself indexes modulo the length of the
// frame it is given.
const FrameSize = constants.FrameSize

// Package graphstore owns the node and edge arenas that back the substrate's
// typed directed multigraph. It provides O(1) creation and deletion via a
// free list per arena; callers outside this package see nodes and edges only
// by slot index, never by pointer.
package graphstore

import (
	"fmt"

	"github.com/corticaldb/substrate/internal/constants"
)

// Node holds the logical attributes of one graph node.
type Node struct {
	Live bool // false means this slot is on the free list

	ID    uint64  // stable, monotonically assigned identifier
	A     float64 // current activation, [0,1]
	APrev float64 // activation at the previous tick

	Theta float64 // firing threshold
	Soma  float64 // weighted-input accumulator, cleared each pass

	Hat     float64 // predicted activation for the current pass
	HatPrev float64 // prediction from the previous pass, for surprise calc

	InDeg  int32
	OutDeg int32

	LastTickSeen uint64
	Burst        float64
	SigHistory   uint32 // 32-bit shift register of (a > 0.5) over the last 32 ticks

	TotalActiveTicks float64

	IsMeta    bool
	ClusterID uint64

	P1 float64 // decayed marginal P(on) estimate
	P0 float64 // decayed marginal P(off) estimate
}

// Edge holds the logical attributes of one directed edge.
type Edge struct {
	Live bool

	Src int32
	Dst int32

	WFast int32 // clamped [0,255]
	WSlow int32 // clamped [0,255]

	Eligibility float64
	C11         float64
	C10         float64

	Credit   int32 // clamped [-10000,10000]
	UseCount uint32

	StaleTicks uint32
	AvgU       float64

	SlowUpdateCountdown int32
}

// Store owns the node and edge arenas with free-list reuse.
type Store struct {
	Nodes     []Node
	nodeFree  []int32
	nextID    uint64
	liveNodes int

	Edges     []Edge
	edgeFree  []int32
	liveEdges int

	NodeCap int
	EdgeCap int
}

// New creates an empty store with the given hard capacities.
func New(nodeCap, edgeCap int) *Store {
	return &Store{
		NodeCap: nodeCap,
		EdgeCap: edgeCap,
	}
}

// ErrCapacity is returned by CreateNode/CreateEdge when the arena is full.
// Capacity exhaustion is never a panic: the growth engine skips the
// operation that hit it. No caller increments the overflow counters in
// state.Counters, so those stay at zero.
type ErrCapacity struct {
	Arena string
	Cap   int
}

func (e ErrCapacity) Error() string {
	return fmt.Sprintf("%s arena at capacity (%d)", e.Arena, e.Cap)
}

// LiveNodeCount returns the number of currently live nodes.
func (s *Store) LiveNodeCount() int { return s.liveNodes }

// LiveEdgeCount returns the number of currently live edges.
func (s *Store) LiveEdgeCount() int { return s.liveEdges }

// CreateNode allocates a node slot from the free list or extends the arena.
// The new node starts at Theta=constants.InitialTheta, A=0, P1=P0=0.5, with
// all other fields zeroed.
func (s *Store) CreateNode() (int32, error) {
	var idx int32
	if n := len(s.nodeFree); n > 0 {
		idx = s.nodeFree[n-1]
		s.nodeFree = s.nodeFree[:n-1]
	} else {
		if len(s.Nodes) >= s.NodeCap {
			return -1, ErrCapacity{Arena: "node", Cap: s.NodeCap}
		}
		s.Nodes = append(s.Nodes, Node{})
		idx = int32(len(s.Nodes) - 1)
	}

	s.nextID++
	s.Nodes[idx] = Node{
		Live:  true,
		ID:    s.nextID,
		Theta: constants.InitialTheta,
		P1:    0.5,
		P0:    0.5,
	}
	s.liveNodes++
	return idx, nil
}

// DeleteNode marks idx's slot free. The caller must ensure no live edge
// references it; DeleteNode does not scan edges. Deleting an already-free
// slot is a no-op.
func (s *Store) DeleteNode(idx int32) {
	if idx < 0 || int(idx) >= len(s.Nodes) || !s.Nodes[idx].Live {
		return
	}
	s.Nodes[idx] = Node{}
	s.nodeFree = append(s.nodeFree, idx)
	s.liveNodes--
}

// CreateEdge allocates an edge slot, initializes its two-timescale
// weights, and updates the endpoints' degree counters.
func (s *Store) CreateEdge(src, dst int32) (int32, error) {
	var idx int32
	if n := len(s.edgeFree); n > 0 {
		idx = s.edgeFree[n-1]
		s.edgeFree = s.edgeFree[:n-1]
	} else {
		if len(s.Edges) >= s.EdgeCap {
			return -1, ErrCapacity{Arena: "edge", Cap: s.EdgeCap}
		}
		s.Edges = append(s.Edges, Edge{})
		idx = int32(len(s.Edges) - 1)
	}

	s.Edges[idx] = Edge{
		Live:                true,
		Src:                 src,
		Dst:                 dst,
		WFast:               constants.InitialWFast,
		WSlow:               constants.InitialWSlow,
		SlowUpdateCountdown: constants.InitialSlowUpdateCountdown,
	}
	s.liveEdges++

	s.Nodes[src].OutDeg++
	s.Nodes[dst].InDeg++
	return idx, nil
}

// DeleteEdge frees idx's slot and decrements the endpoints' degree counters.
// Deleting an already-free slot is a no-op.
func (s *Store) DeleteEdge(idx int32) {
	if idx < 0 || int(idx) >= len(s.Edges) || !s.Edges[idx].Live {
		return
	}
	e := s.Edges[idx]
	if int(e.Src) < len(s.Nodes) && s.Nodes[e.Src].OutDeg > 0 {
		s.Nodes[e.Src].OutDeg--
	}
	if int(e.Dst) < len(s.Nodes) && s.Nodes[e.Dst].InDeg > 0 {
		s.Nodes[e.Dst].InDeg--
	}
	s.Edges[idx] = Edge{}
	s.edgeFree = append(s.edgeFree, idx)
	s.liveEdges--
}

// FindEdge returns the index of any live edge (src,dst), if one exists. This
// is a linear scan over the edge arena, acceptable up to tens of
// thousands of edges.
func (s *Store) FindEdge(src, dst int32) (int32, bool) {
	for i := range s.Edges {
		e := &s.Edges[i]
		if e.Live && e.Src == src && e.Dst == dst {
			return int32(i), true
		}
	}
	return -1, false
}

// IsLiveNode reports whether idx refers to a currently live node slot.
func (s *Store) IsLiveNode(idx int32) bool {
	return idx >= 0 && int(idx) < len(s.Nodes) && s.Nodes[idx].Live
}

// IsLiveEdge reports whether idx refers to a currently live edge slot.
func (s *Store) IsLiveEdge(idx int32) bool {
	return idx >= 0 && int(idx) < len(s.Edges) && s.Edges[idx].Live
}

// EachLiveNode calls fn for every live node index, in slot order.
func (s *Store) EachLiveNode(fn func(idx int32, n *Node)) {
	for i := range s.Nodes {
		if s.Nodes[i].Live {
			fn(int32(i), &s.Nodes[i])
		}
	}
}

// EachLiveEdge calls fn for every live edge index, in slot order.
func (s *Store) EachLiveEdge(fn func(idx int32, e *Edge)) {
	for i := range s.Edges {
		if s.Edges[i].Live {
			fn(int32(i), &s.Edges[i])
		}
	}
}

// NextID returns the next node ID that would be assigned, for persistence.
func (s *Store) NextID() uint64 { return s.nextID }

// RestoreFrom replaces the store's arenas wholesale with nodes and edges
// loaded from a snapshot, rebuilding the free lists and live counts from
// their Live flags. Intended to be called once, immediately after New, by
// the persistence package.
func (s *Store) RestoreFrom(nextID uint64, nodes []Node, edges []Edge) {
	s.Nodes = nodes
	s.Edges = edges
	s.nextID = nextID
	s.nodeFree = s.nodeFree[:0]
	s.edgeFree = s.edgeFree[:0]
	s.liveNodes = 0
	s.liveEdges = 0

	for i := range s.Nodes {
		if s.Nodes[i].Live {
			s.liveNodes++
		} else {
			s.nodeFree = append(s.nodeFree, int32(i))
		}
	}
	for i := range s.Edges {
		if s.Edges[i].Live {
			s.liveEdges++
		} else {
			s.edgeFree = append(s.edgeFree, int32(i))
		}
	}
}

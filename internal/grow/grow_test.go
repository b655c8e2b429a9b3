package grow

import (
	"testing"

	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
)

func TestEdgeEmergence_SkipsLowCoActivation(t *testing.T) {
	store := graphstore.New(8, 8)
	sys := state.New()
	rnd := rng.New(1)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	store.Nodes[a].A = 0.05
	store.Nodes[b].A = 0.05

	EdgeEmergence(store, sys, rnd)

	if store.LiveNodeCount() != 2 {
		t.Errorf("LiveNodeCount = %d, want 2 (no hidden node should emerge)", store.LiveNodeCount())
	}
}

func TestEdgeEmergence_CanCreateHiddenNode(t *testing.T) {
	store := graphstore.New(16, 16)
	sys := state.New()
	sys.CreateRate = 1.0 // force p_create toward its max
	sys.Energy = 0
	rnd := rng.New(2)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	store.Nodes[a].A = 1.0
	store.Nodes[b].A = 1.0
	store.Nodes[a].SigHistory = 0xFFFFFFFF
	store.Nodes[b].SigHistory = 0xFFFFFFFF

	created := EdgeEmergence(store, sys, rnd)

	if created == 0 {
		t.Fatalf("created = %d, want > 0", created)
	}
	if store.LiveNodeCount() < 2 {
		t.Fatalf("LiveNodeCount = %d, want >= 2", store.LiveNodeCount())
	}
}

func TestEdgeEmergence_DoesNotDuplicateExistingEdge(t *testing.T) {
	store := graphstore.New(16, 16)
	sys := state.New()
	sys.CreateRate = 1.0
	rnd := rng.New(3)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	store.CreateEdge(a, b)
	store.Nodes[a].A = 1.0
	store.Nodes[b].A = 1.0

	before := store.LiveEdgeCount()
	EdgeEmergence(store, sys, rnd)
	if store.LiveEdgeCount() != before {
		t.Errorf("LiveEdgeCount changed: %d -> %d (existing edge (a,b) should block growth)", before, store.LiveEdgeCount())
	}
}

func TestLayerEmergence_RequiresSufficientOutDegree(t *testing.T) {
	store := graphstore.New(32, 32)
	sys := state.New()
	sys.LayerRate = 1.0
	rnd := rng.New(4)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	store.CreateEdge(a, b)
	store.Nodes[b].A = 1.0

	LayerEmergence(store, sys, rnd)

	for i := range store.Nodes {
		if store.Nodes[i].Live && store.Nodes[i].IsMeta {
			t.Error("no meta-node should emerge from a single low-out-degree node")
		}
	}
}

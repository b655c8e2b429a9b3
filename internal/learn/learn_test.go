package learn

import (
	"testing"

	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/rng"
	"github.com/corticaldb/substrate/internal/state"
)

func TestStep_WeightsStayClamped(t *testing.T) {
	store := graphstore.New(8, 8)
	sys := state.New()
	rnd := rng.New(1)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	eidx, _ := store.CreateEdge(a, b)

	store.Nodes[a].APrev = 1.0
	store.Nodes[b].A = 1.0
	store.Nodes[b].Hat = 1.0
	store.Nodes[b].HatPrev = 0.0

	for i := 0; i < 100; i++ {
		Step(store, sys, rnd)
		e := store.Edges[eidx]
		if e.WFast < 0 || e.WFast > 255 {
			t.Fatalf("iter %d: WFast = %d out of [0,255]", i, e.WFast)
		}
		if e.WSlow < 0 || e.WSlow > 255 {
			t.Fatalf("iter %d: WSlow = %d out of [0,255]", i, e.WSlow)
		}
		if e.Credit < -10000 || e.Credit > 10000 {
			t.Fatalf("iter %d: Credit = %d out of [-10000,10000]", i, e.Credit)
		}
	}
}

func TestStep_BaselineStaysPositive(t *testing.T) {
	store := graphstore.New(8, 8)
	sys := state.New()
	rnd := rng.New(2)
	a, _ := store.CreateNode()

	for i := 0; i < 50; i++ {
		Step(store, sys, rnd)
	}
	n := store.Nodes[a]
	if n.P1+n.P0 <= 0 {
		t.Errorf("P1+P0 = %v, want > 0", n.P1+n.P0)
	}
}

func TestStep_MeanErrorZeroWithNoEdges(t *testing.T) {
	store := graphstore.New(8, 8)
	sys := state.New()
	rnd := rng.New(3)
	store.CreateNode()

	Step(store, sys, rnd)

	if sys.MeanError != 0 {
		t.Errorf("MeanError = %v, want 0 with no live edges", sys.MeanError)
	}
}

func TestStep_SurpriseFromHatPrevDiscrepancy(t *testing.T) {
	store := graphstore.New(8, 8)
	sys := state.New()
	rnd := rng.New(4)

	a, _ := store.CreateNode()
	b, _ := store.CreateNode()
	store.CreateEdge(a, b)

	store.Nodes[b].A = 0.8
	store.Nodes[b].HatPrev = 0.3

	Step(store, sys, rnd)

	want := 0.5 // |0.8 - 0.3|
	if diff := sys.MeanError - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MeanError = %v, want %v", sys.MeanError, want)
	}
}

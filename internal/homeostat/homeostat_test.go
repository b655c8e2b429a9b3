package homeostat

import (
	"testing"

	"github.com/corticaldb/substrate/internal/graphstore"
	"github.com/corticaldb/substrate/internal/state"
)

func TestStep_AllParamsStayWithinClamps(t *testing.T) {
	store := graphstore.New(100, 100)
	sys := state.New()
	for i := 0; i < 10; i++ {
		store.CreateNode()
	}
	sys.ActiveNodeCount = 8
	sys.MeanError = 0.2
	sys.ThoughtsSettled = 3
	sys.ThoughtsMaxed = 7
	sys.ThoughtDepth = 8
	sys.MeanTemporalDistance = 50
	sys.MeanSpatialDistance = 5

	for i := 0; i < 200; i++ {
		Step(store, sys)
	}

	if sys.PruneRate < 1e-4 || sys.PruneRate > 1e-2 {
		t.Errorf("PruneRate = %v out of clamp", sys.PruneRate)
	}
	if sys.CreateRate < 1e-3 || sys.CreateRate > 0.1 {
		t.Errorf("CreateRate = %v out of clamp", sys.CreateRate)
	}
	if sys.ActivationScale < 16 || sys.ActivationScale > 256 {
		t.Errorf("ActivationScale = %v out of clamp", sys.ActivationScale)
	}
	if sys.MaxThoughtHops < 3 || sys.MaxThoughtHops > 20 {
		t.Errorf("MaxThoughtHops = %v out of clamp", sys.MaxThoughtHops)
	}
	if sys.EpsilonMin != 0.2*sys.EpsilonMax {
		t.Errorf("EpsilonMin = %v, want 0.2*EpsilonMax = %v", sys.EpsilonMin, 0.2*sys.EpsilonMax)
	}
	if sys.SigmoidK < 0.1 || sys.SigmoidK > 2.0 {
		t.Errorf("SigmoidK = %v out of clamp", sys.SigmoidK)
	}
	if sys.TemporalDecay < 1e-2 || sys.TemporalDecay > 0.5 {
		t.Errorf("TemporalDecay = %v out of clamp", sys.TemporalDecay)
	}
	if sys.SpatialK < 0.1 || sys.SpatialK > 2.0 {
		t.Errorf("SpatialK = %v out of clamp", sys.SpatialK)
	}
}

func TestStep_HighDensityIncreasesPruneRate(t *testing.T) {
	store := graphstore.New(100, 100)
	sys := state.New()
	nodes := make([]int32, 10)
	for i := range nodes {
		nodes[i], _ = store.CreateNode()
	}
	for i := 0; i < len(nodes); i++ {
		for j := 0; j < len(nodes); j++ {
			if i != j {
				store.CreateEdge(nodes[i], nodes[j])
			}
		}
	}
	before := sys.PruneRate
	Step(store, sys)
	if sys.PruneRate <= before {
		t.Errorf("PruneRate did not increase under high density: %v -> %v", before, sys.PruneRate)
	}
}

func TestStep_CapacityPressureBoostsPruneRate(t *testing.T) {
	store := graphstore.New(10, 100)
	sys := state.New()
	for i := 0; i < 9; i++ {
		store.CreateNode()
	}
	before := sys.PruneRate
	Step(store, sys)
	if sys.PruneRate < before {
		t.Errorf("PruneRate should not decrease under capacity pressure: %v -> %v", before, sys.PruneRate)
	}
}

func TestStep_NoNodesNoPanic(t *testing.T) {
	store := graphstore.New(10, 10)
	sys := state.New()
	Step(store, sys) // must not divide by zero or panic
	if sys.CurrentDensity != 0 {
		t.Errorf("CurrentDensity = %v, want 0 with no nodes", sys.CurrentDensity)
	}
}

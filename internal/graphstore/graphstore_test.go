package graphstore

import "testing"

func TestCreateNode_Defaults(t *testing.T) {
	s := New(4, 4)
	idx, err := s.CreateNode()
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	n := s.Nodes[idx]
	if !n.Live {
		t.Error("expected new node to be live")
	}
	if n.Theta != 128.0 {
		t.Errorf("Theta = %v, want 128.0", n.Theta)
	}
	if n.P1 != 0.5 || n.P0 != 0.5 {
		t.Errorf("P1=%v P0=%v, want 0.5/0.5", n.P1, n.P0)
	}
	if n.ID == 0 {
		t.Error("expected nonzero node ID")
	}
}

func TestCreateNode_CapacityExhausted(t *testing.T) {
	s := New(2, 4)
	if _, err := s.CreateNode(); err != nil {
		t.Fatalf("first CreateNode: %v", err)
	}
	if _, err := s.CreateNode(); err != nil {
		t.Fatalf("second CreateNode: %v", err)
	}
	if _, err := s.CreateNode(); err == nil {
		t.Error("expected ErrCapacity on third CreateNode")
	} else if _, ok := err.(ErrCapacity); !ok {
		t.Errorf("expected ErrCapacity, got %T", err)
	}
}

func TestDeleteNode_FreesSlotForReuse(t *testing.T) {
	s := New(1, 4)
	idx, err := s.CreateNode()
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	s.DeleteNode(idx)
	if s.LiveNodeCount() != 0 {
		t.Errorf("LiveNodeCount = %d, want 0", s.LiveNodeCount())
	}

	idx2, err := s.CreateNode()
	if err != nil {
		t.Fatalf("CreateNode after delete: %v", err)
	}
	if idx2 != idx {
		t.Errorf("expected slot reuse at %d, got %d", idx, idx2)
	}
	if s.Nodes[idx2].ID == 0 {
		t.Error("reused slot should still get a fresh nonzero ID")
	}
}

func TestDeleteNode_Idempotent(t *testing.T) {
	s := New(4, 4)
	idx, _ := s.CreateNode()
	s.DeleteNode(idx)
	s.DeleteNode(idx) // should not panic or double-free
	if len(s.nodeFree) != 1 {
		t.Errorf("expected free list length 1 after idempotent delete, got %d", len(s.nodeFree))
	}
}

func TestCreateEdge_UpdatesDegrees(t *testing.T) {
	s := New(4, 4)
	a, _ := s.CreateNode()
	b, _ := s.CreateNode()

	eidx, err := s.CreateEdge(a, b)
	if err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	if s.Nodes[a].OutDeg != 1 {
		t.Errorf("src OutDeg = %d, want 1", s.Nodes[a].OutDeg)
	}
	if s.Nodes[b].InDeg != 1 {
		t.Errorf("dst InDeg = %d, want 1", s.Nodes[b].InDeg)
	}
	e := s.Edges[eidx]
	if e.WFast != 32 || e.WSlow != 32 {
		t.Errorf("WFast=%d WSlow=%d, want 32/32", e.WFast, e.WSlow)
	}
	if e.SlowUpdateCountdown != 50 {
		t.Errorf("SlowUpdateCountdown = %d, want 50", e.SlowUpdateCountdown)
	}
}

func TestDeleteEdge_UpdatesDegrees(t *testing.T) {
	s := New(4, 4)
	a, _ := s.CreateNode()
	b, _ := s.CreateNode()
	eidx, _ := s.CreateEdge(a, b)

	s.DeleteEdge(eidx)
	if s.Nodes[a].OutDeg != 0 {
		t.Errorf("src OutDeg = %d, want 0", s.Nodes[a].OutDeg)
	}
	if s.Nodes[b].InDeg != 0 {
		t.Errorf("dst InDeg = %d, want 0", s.Nodes[b].InDeg)
	}
	if s.LiveEdgeCount() != 0 {
		t.Errorf("LiveEdgeCount = %d, want 0", s.LiveEdgeCount())
	}
}

func TestFindEdge(t *testing.T) {
	s := New(4, 4)
	a, _ := s.CreateNode()
	b, _ := s.CreateNode()
	c, _ := s.CreateNode()
	want, _ := s.CreateEdge(a, b)

	got, ok := s.FindEdge(a, b)
	if !ok || got != want {
		t.Errorf("FindEdge(a,b) = (%d,%v), want (%d,true)", got, ok, want)
	}

	if _, ok := s.FindEdge(a, c); ok {
		t.Error("FindEdge(a,c) should not find a nonexistent edge")
	}

	s.DeleteEdge(want)
	if _, ok := s.FindEdge(a, b); ok {
		t.Error("FindEdge should not return a deleted edge")
	}
}

func TestEachLiveNode_SkipsFreedSlots(t *testing.T) {
	s := New(4, 4)
	a, _ := s.CreateNode()
	_, _ = s.CreateNode()
	s.DeleteNode(a)

	count := 0
	s.EachLiveNode(func(idx int32, n *Node) { count++ })
	if count != 1 {
		t.Errorf("EachLiveNode visited %d nodes, want 1", count)
	}
}

func TestCreateEdge_CapacityExhausted(t *testing.T) {
	s := New(4, 1)
	a, _ := s.CreateNode()
	b, _ := s.CreateNode()
	if _, err := s.CreateEdge(a, b); err != nil {
		t.Fatalf("first CreateEdge: %v", err)
	}
	if _, err := s.CreateEdge(b, a); err == nil {
		t.Error("expected ErrCapacity on second CreateEdge")
	}
}

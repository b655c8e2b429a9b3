// Package persistence implements the substrate's snapshot format: nodes.bin
// and edges.bin hold the graph's arenas in a stable flat binary layout,
// written synchronously at SnapshotPeriod and loaded at startup if present.
// A failed write never aborts a tick; it is counted in
// sys.Stats.PersistenceFailures and retried at the next snapshot.
package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/corticaldb/substrate/internal/graphstore"
)

const (
	nodesFile = "nodes.bin"
	edgesFile = "edges.bin"
)

// nodeRecord and edgeRecord are the fixed-width on-disk layouts. They are
// deliberately simpler than graphstore.Node/Edge: only the fields that
// matter for resuming a run are persisted, in a stable field order.
type nodeRecord struct {
	ID               uint64
	A                float64
	APrev            float64
	Theta            float64
	Hat              float64
	HatPrev          float64
	InDeg            int32
	OutDeg           int32
	LastTickSeen     uint64
	Burst            float64
	SigHistory       uint32
	TotalActiveTicks float64
	IsMeta           uint8
	_                [3]byte
	ClusterID        uint64
	P1               float64
	P0               float64
	Live             uint8
	_                [7]byte
}

type edgeRecord struct {
	Src                 int32
	Dst                 int32
	WFast               int32
	WSlow               int32
	Eligibility         float64
	C11                 float64
	C10                 float64
	Credit              int32
	UseCount            uint32
	StaleTicks          uint32
	AvgU                float64
	SlowUpdateCountdown int32
	Live                uint8
	_                   [3]byte
}

// Save writes nodes.bin and edges.bin to dir, replacing any existing files.
func Save(dir string, store *graphstore.Store) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating persistence dir: %w", err)
	}
	if err := saveNodes(filepath.Join(dir, nodesFile), store); err != nil {
		return fmt.Errorf("saving nodes: %w", err)
	}
	if err := saveEdges(filepath.Join(dir, edgesFile), store); err != nil {
		return fmt.Errorf("saving edges: %w", err)
	}
	return nil
}

func saveNodes(path string, store *graphstore.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(store.Nodes))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, store.NextID()); err != nil {
		return err
	}
	for i := range store.Nodes {
		n := &store.Nodes[i]
		rec := nodeRecord{
			ID:               n.ID,
			A:                n.A,
			APrev:            n.APrev,
			Theta:            n.Theta,
			Hat:              n.Hat,
			HatPrev:          n.HatPrev,
			InDeg:            n.InDeg,
			OutDeg:           n.OutDeg,
			LastTickSeen:     n.LastTickSeen,
			Burst:            n.Burst,
			SigHistory:       n.SigHistory,
			TotalActiveTicks: n.TotalActiveTicks,
			IsMeta:           boolToByte(n.IsMeta),
			ClusterID:        n.ClusterID,
			P1:               n.P1,
			P0:               n.P0,
			Live:             boolToByte(n.Live),
		}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

func saveEdges(path string, store *graphstore.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(store.Edges))); err != nil {
		return err
	}
	for i := range store.Edges {
		e := &store.Edges[i]
		rec := edgeRecord{
			Src:                 e.Src,
			Dst:                 e.Dst,
			WFast:               e.WFast,
			WSlow:               e.WSlow,
			Eligibility:         e.Eligibility,
			C11:                 e.C11,
			C10:                 e.C10,
			Credit:              e.Credit,
			UseCount:            e.UseCount,
			StaleTicks:          e.StaleTicks,
			AvgU:                e.AvgU,
			SlowUpdateCountdown: e.SlowUpdateCountdown,
			Live:                boolToByte(e.Live),
		}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Load populates store from nodes.bin and edges.bin in dir. It tolerates
// missing files: if either is absent, Load is a no-op and the caller starts
// with an empty store. Counts exceeding store's configured capacity are
// rejected with an error so the caller can start empty instead.
func Load(dir string, store *graphstore.Store) error {
	nodesPath := filepath.Join(dir, nodesFile)
	edgesPath := filepath.Join(dir, edgesFile)

	if _, err := os.Stat(nodesPath); os.IsNotExist(err) {
		return nil
	}
	if _, err := os.Stat(edgesPath); os.IsNotExist(err) {
		return nil
	}

	nextID, nodes, err := loadNodes(nodesPath, store.NodeCap)
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	edges, err := loadEdges(edgesPath, store.EdgeCap)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	store.RestoreFrom(nextID, nodes, edges)
	return nil
}

func loadNodes(path string, cap int) (uint64, []graphstore.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, nil, err
	}
	var nextID uint64
	if err := binary.Read(r, binary.LittleEndian, &nextID); err != nil {
		return 0, nil, err
	}
	if int(count) > cap {
		return 0, nil, fmt.Errorf("snapshot has %d nodes, exceeds capacity %d", count, cap)
	}

	nodes := make([]graphstore.Node, count)
	for i := uint32(0); i < count; i++ {
		var rec nodeRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return 0, nil, err
		}
		nodes[i] = graphstore.Node{
			Live:             rec.Live != 0,
			ID:               rec.ID,
			A:                rec.A,
			APrev:            rec.APrev,
			Theta:            rec.Theta,
			Hat:              rec.Hat,
			HatPrev:          rec.HatPrev,
			InDeg:            rec.InDeg,
			OutDeg:           rec.OutDeg,
			LastTickSeen:     rec.LastTickSeen,
			Burst:            rec.Burst,
			SigHistory:       rec.SigHistory,
			TotalActiveTicks: rec.TotalActiveTicks,
			IsMeta:           rec.IsMeta != 0,
			ClusterID:        rec.ClusterID,
			P1:               rec.P1,
			P0:               rec.P0,
		}
	}
	return nextID, nodes, nil
}

func loadEdges(path string, cap int) ([]graphstore.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if int(count) > cap {
		return nil, fmt.Errorf("snapshot has %d edges, exceeds capacity %d", count, cap)
	}

	edges := make([]graphstore.Edge, count)
	for i := uint32(0); i < count; i++ {
		var rec edgeRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("truncated edge record %d", i)
			}
			return nil, err
		}
		edges[i] = graphstore.Edge{
			Live:                rec.Live != 0,
			Src:                 rec.Src,
			Dst:                 rec.Dst,
			WFast:               rec.WFast,
			WSlow:               rec.WSlow,
			Eligibility:         rec.Eligibility,
			C11:                 rec.C11,
			C10:                 rec.C10,
			Credit:              rec.Credit,
			UseCount:            rec.UseCount,
			StaleTicks:          rec.StaleTicks,
			AvgU:                rec.AvgU,
			SlowUpdateCountdown: rec.SlowUpdateCountdown,
		}
	}
	return edges, nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

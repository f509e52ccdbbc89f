// Package memkernel is a reference implementation of kernel.Basis used
// by the engine's tests and the round-trip property (§8 item 5 of the
// engine spec). It is deliberately simple: cosine scoring recomputed
// from scratch on every rget/rrec, not a tuned ANN index. The
// real numerical kernel is out of scope for this repository (§1); this
// package exists only so the dispatch layer has something concrete to
// drive in tests.
package memkernel

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/simbase-engine/simbase/kernel"
)

const topK = 10

// Factory builds memkernel Basis instances.
type Factory struct{}

func (Factory) New(bkey string, cfg map[string]string) kernel.Basis {
	return &Basis{bkey: bkey}
}

// dump is the gob-encoded on-disk representation written by BSave and
// read back by BLoad. It is internal to this package: the dispatcher
// never interprets dump bytes (§1 — dump encoding is out of scope at
// the dispatch layer).
type dump struct {
	Coords  []string
	Dense   map[string]map[int][]float64
	Sparse  map[string]map[int][]int
	VSOrder []string // VectorSet creation order, for deterministic bload replay
	Rels    []relDump
}

type relDump struct {
	Src, Tgt, FuncScore string
}

// Basis is an in-memory kernel.Basis.
type Basis struct {
	mu      sync.RWMutex
	bkey    string
	coords  []string
	dense   map[string]map[int][]float64
	sparse  map[string]map[int][]int
	vsOrder []string
	rels    map[string]relDump // rkey -> relation
	l       kernel.Listener
}

func (b *Basis) AddListener(l kernel.Listener) { b.l = l }

func (b *Basis) ensure() {
	if b.dense == nil {
		b.dense = make(map[string]map[int][]float64)
	}
	if b.sparse == nil {
		b.sparse = make(map[string]map[int][]int)
	}
	if b.rels == nil {
		b.rels = make(map[string]relDump)
	}
}

func (b *Basis) BRev(base []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coords = append([]string(nil), base...)
	return nil
}

func (b *Basis) BGet() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.coords...)
}

func (b *Basis) VMk(vkey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	if _, ok := b.dense[vkey]; ok {
		return nil
	}
	b.dense[vkey] = make(map[int][]float64)
	b.sparse[vkey] = make(map[int][]int)
	b.vsOrder = append(b.vsOrder, vkey)
	return nil
}

func (b *Basis) VDel(vkey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.dense, vkey)
	delete(b.sparse, vkey)
	for i, v := range b.vsOrder {
		if v == vkey {
			b.vsOrder = append(b.vsOrder[:i], b.vsOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (b *Basis) VIds(vkey string) ([]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int, 0, len(b.dense[vkey])+len(b.sparse[vkey]))
	seen := map[int]bool{}
	for id := range b.dense[vkey] {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range b.sparse[vkey] {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (b *Basis) VGet(vkey string, vecid int) ([]float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.dense[vkey][vecid]
	if !ok {
		return nil, fmt.Errorf("no such vector %s/%d", vkey, vecid)
	}
	return append([]float64(nil), v...), nil
}

func (b *Basis) VAdd(vkey string, vecid int, vals []float64) error {
	return b.vset(vkey, vecid, vals, false)
}
func (b *Basis) VSet(vkey string, vecid int, vals []float64) error {
	return b.vset(vkey, vecid, vals, true)
}
func (b *Basis) VAcc(vkey string, vecid int, vals []float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	cur := b.dense[vkey][vecid]
	if cur == nil {
		cur = make([]float64, len(vals))
	}
	out := make([]float64, len(vals))
	for i := range vals {
		v := vals[i]
		if i < len(cur) {
			v += cur[i]
		}
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	if b.dense[vkey] == nil {
		b.dense[vkey] = make(map[int][]float64)
	}
	b.dense[vkey][vecid] = out
	return nil
}

func (b *Basis) vset(vkey string, vecid int, vals []float64, overwrite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	if b.dense[vkey] == nil {
		b.dense[vkey] = make(map[int][]float64)
	}
	b.dense[vkey][vecid] = append([]float64(nil), vals...)
	_ = overwrite
	return nil
}

func (b *Basis) VRem(vkey string, vecid int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.dense[vkey], vecid)
	delete(b.sparse[vkey], vecid)
	return nil
}

func (b *Basis) IGet(vkey string, vecid int) ([]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.sparse[vkey][vecid]
	if !ok {
		return nil, fmt.Errorf("no such sparse vector %s/%d", vkey, vecid)
	}
	return append([]int(nil), v...), nil
}

func (b *Basis) IAdd(vkey string, vecid int, pairs []int) error { return b.iset(vkey, vecid, pairs) }
func (b *Basis) ISet(vkey string, vecid int, pairs []int) error { return b.iset(vkey, vecid, pairs) }
func (b *Basis) IAcc(vkey string, vecid int, pairs []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	merged := map[int]int{}
	if cur := b.sparse[vkey][vecid]; cur != nil {
		for i := 0; i+1 < len(cur); i += 2 {
			merged[cur[i]] += cur[i+1]
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		merged[pairs[i]] += pairs[i+1]
	}
	out := make([]int, 0, len(merged)*2)
	idx := make([]int, 0, len(merged))
	for k := range merged {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	for _, k := range idx {
		out = append(out, k, merged[k])
	}
	if b.sparse[vkey] == nil {
		b.sparse[vkey] = make(map[int][]int)
	}
	b.sparse[vkey][vecid] = out
	return nil
}

func (b *Basis) iset(vkey string, vecid int, pairs []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	if b.sparse[vkey] == nil {
		b.sparse[vkey] = make(map[int][]int)
	}
	b.sparse[vkey][vecid] = append([]int(nil), pairs...)
	return nil
}

// RMk and RDel do not notify the Listener Bridge: that channel is
// reserved for changes the kernel materializes on its own (dump
// restore, via BLoad below) — an explicit, dispatcher-issued rmk/del
// already updates the catalog directly as part of that op (§4.3, §4.4).
func (b *Basis) RMk(src, tgt, funcscore string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensure()
	rkey := src + "_" + tgt
	b.rels[rkey] = relDump{Src: src, Tgt: tgt, FuncScore: funcscore}
	return nil
}

func (b *Basis) RDel(rkey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rels, rkey)
	return nil
}

func (b *Basis) RGet(src string, vecid int, tgt string) ([]kernel.ScoredID, error) {
	return b.score(src, vecid, tgt)
}

func (b *Basis) RRec(src string, vecid int, tgt string) ([]int, error) {
	scored, err := b.score(src, vecid, tgt)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out, nil
}

func (b *Basis) score(src string, vecid int, tgt string) ([]kernel.ScoredID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	from, ok := b.dense[src][vecid]
	if !ok {
		return nil, fmt.Errorf("no such vector %s/%d", src, vecid)
	}
	out := make([]kernel.ScoredID, 0, len(b.dense[tgt]))
	for id, v := range b.dense[tgt] {
		out = append(out, kernel.ScoredID{ID: id, Score: cosine(from, v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (b *Basis) BSave(ctx context.Context, path string) error {
	b.mu.RLock()
	d := dump{
		Coords:  b.coords,
		Dense:   b.dense,
		Sparse:  b.sparse,
		VSOrder: b.vsOrder,
		Rels:    make([]relDump, 0, len(b.rels)),
	}
	for _, r := range b.rels {
		d.Rels = append(d.Rels, r)
	}
	b.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(d)
}

func (b *Basis) BLoad(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var d dump
	if err := gob.NewDecoder(f).Decode(&d); err != nil {
		return err
	}

	b.mu.Lock()
	b.coords = d.Coords
	b.dense = d.Dense
	b.sparse = d.Sparse
	b.vsOrder = d.VSOrder
	b.rels = make(map[string]relDump, len(d.Rels))
	for _, r := range d.Rels {
		b.rels[r.Src+"_"+r.Tgt] = r
	}
	l := b.l
	vsOrder := append([]string(nil), d.VSOrder...)
	rels := append([]relDump(nil), d.Rels...)
	b.mu.Unlock()

	if l != nil {
		for _, vkey := range vsOrder {
			l.OnVecSetAdded(b.bkey, vkey)
		}
		for _, r := range rels {
			l.OnRecAdded(b.bkey, r.Src, r.Tgt)
		}
	}
	return nil
}

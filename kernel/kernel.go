// Package kernel specifies the external interface of the numerical
// kernel (§6 of the engine spec): the "SimBasis" component that stores
// vectors, computes similarity scores and maintains sorted neighbor
// lists. The kernel itself is out of scope for this repository (§1) —
// this package only pins down the Go shape of the boundary the
// dispatcher programs against, plus the four events (§4.4) a kernel
// implementation emits back into the Listener Bridge.
package kernel

import "context"

// ScoredID is one entry of a recommendation result: a target-set id and
// its similarity score under the relation's funcscore.
type ScoredID struct {
	ID    int
	Score float64
}

// Listener is the callback contract a kernel Basis invokes when it
// internally materializes or removes a VectorSet or Recommendation —
// most commonly while restoring a dump during bload. The dispatcher's
// Listener Bridge always receives these events and is the sole mutator
// of catalog entries for kernel-initiated changes (§4.4, §9); client
// listeners registered through the engine's Listen* calls receive them
// too.
type Listener interface {
	OnVecSetAdded(bkey, vkey string)
	OnVecSetDeleted(bkey, vkey string)
	OnRecAdded(bkey, vkeyFrom, vkeyTo string)
	OnRecDeleted(bkey, vkeyFrom, vkeyTo string)
}

// Basis is the per-basis numerical kernel instance. The dispatcher calls
// its vector writes, deletions and BSave from the basis's single writer
// goroutine, its BLoad/VMk/RMk from the management executor, and its
// read methods from the reader pool. Every method here corresponds 1:1 to an op in §4.3's table
// and §6's "kernel interface consumed" list.
type Basis interface {
	// BLoad restores this basis's state from the dump at path.
	BLoad(ctx context.Context, path string) error
	// BSave writes this basis's state to the dump at path.
	BSave(ctx context.Context, path string) error
	// BRev reorders/renames the basis's coordinate labels.
	BRev(base []string) error
	// BGet returns the basis's coordinate labels, in order.
	BGet() []string

	VMk(vkey string) error
	VDel(vkey string) error
	VIds(vkey string) ([]int, error)

	VGet(vkey string, vecid int) ([]float64, error)
	VAdd(vkey string, vecid int, vals []float64) error
	VSet(vkey string, vecid int, vals []float64) error
	VAcc(vkey string, vecid int, vals []float64) error
	VRem(vkey string, vecid int) error

	IGet(vkey string, vecid int) ([]int, error)
	IAdd(vkey string, vecid int, pairs []int) error
	ISet(vkey string, vecid int, pairs []int) error
	IAcc(vkey string, vecid int, pairs []int) error

	RMk(src, tgt, funcscore string) error
	RDel(rkey string) error
	RGet(src string, vecid int, tgt string) ([]ScoredID, error)
	RRec(src string, vecid int, tgt string) ([]int, error)

	// AddListener registers l to receive this basis's kernel events.
	// The engine calls it once per basis, with a fan-out listener; the
	// three dispatcher overloads described in §6 (per-basis,
	// per-vectorset, per-recommendation listen calls) add scoped client
	// listeners to that fan-out rather than calling this method; see
	// engine.Engine.ListenBasis/ListenVectorSet/ListenRecommendation.
	AddListener(l Listener)
}

// Factory constructs a fresh kernel Basis instance for a newly created
// or newly loaded basis. cfg carries the opaque "basis.<bkey>.*"
// configuration sub-section (§6).
type Factory interface {
	New(bkey string, cfg map[string]string) Basis
}

package engine

import (
	"context"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/turbo/snapshotsync"
	"github.com/simbase-engine/simbase/validator"

	"golang.org/x/sync/errgroup"
)

// Del deletes key, cascading per §4.3: deleting a Basis deletes every
// VectorSet under it (and, transitively, every Recommendation touching
// one); deleting a VectorSet deletes every Recommendation it
// participates in, as either source or target; deleting a
// Recommendation deletes only itself.
func (e *Engine) Del(key string, cb Callback[struct{}]) {
	if err := validator.Exists(e.cat, key); err != nil {
		cb(struct{}{}, err)
		return
	}
	switch e.cat.Kind(key) {
	case catalog.KindBasis:
		e.mgmt.Submit(replyTask(e.mgmtLog(key), struct{}{}, cb, func() (struct{}, error) {
			if !e.cat.Exists(key) {
				return struct{}{}, errs.New(errs.UnknownEntry, key, nil)
			}
			e.cascadeDeleteBasis(key)
			return struct{}{}, nil
		}))
	case catalog.KindVectorSet:
		bkey, _ := e.cat.BasisOf(key)
		w := e.writers.Get(bkey)
		if w == nil {
			cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
			return
		}
		w.Submit(replyTask(e.writerLog(key), struct{}{}, cb, func() (struct{}, error) {
			if e.cat.Kind(key) != catalog.KindVectorSet {
				return struct{}{}, errs.New(errs.UnknownEntry, key, nil)
			}
			return struct{}{}, e.cascadeDeleteVectorSet(bkey, key)
		}))
	case catalog.KindRecommendation:
		bkey, _ := e.cat.BasisOf(key)
		w := e.writers.Get(bkey)
		if w == nil {
			cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
			return
		}
		w.Submit(replyTask(e.writerLog(key), struct{}{}, cb, func() (struct{}, error) {
			return struct{}{}, e.deleteRecommendation(bkey, key)
		}))
	default:
		cb(struct{}{}, errs.New(errs.UnknownEntry, key, nil))
	}
}

// cascadeDeleteVectorSet removes vkey's recommendation edges, asks the
// kernel to drop the vector set, and removes its catalog entries. Must
// run on bkey's writer goroutine (single-writer rule, §5).
func (e *Engine) cascadeDeleteVectorSet(bkey, vkey string) error {
	// Snapshot both index sides before mutating — iterating a live set
	// while deleting from it is the unsafe pattern §9's design notes
	// call out in the source.
	for _, tgt := range e.cat.TargetsOf(vkey) {
		if err := e.deleteRecommendation(bkey, catalog.RKey(vkey, tgt)); err != nil {
			return err
		}
	}
	for _, src := range e.cat.SourcesOf(vkey) {
		if src == vkey {
			continue
		}
		if err := e.deleteRecommendation(bkey, catalog.RKey(src, vkey)); err != nil {
			return err
		}
	}
	k, ok := e.kernelOf(bkey)
	if !ok {
		return errs.New(errs.UnknownEntry, bkey, nil)
	}
	if err := k.VDel(vkey); err != nil {
		return wrapKernelErr(vkey, err)
	}
	e.cat.RemoveVectorSet(vkey)
	return nil
}

// deleteRecommendation asks the kernel to drop rkey and removes its
// catalog entries. Must run on bkey's writer goroutine.
func (e *Engine) deleteRecommendation(bkey, rkey string) error {
	k, ok := e.kernelOf(bkey)
	if !ok {
		return errs.New(errs.UnknownEntry, bkey, nil)
	}
	if err := k.RDel(rkey); err != nil {
		return wrapKernelErr(rkey, err)
	}
	e.cat.RemoveRecommendation(rkey)
	return nil
}

// cascadeDeleteBasis tears down every VectorSet under bkey (which in
// turn cascades their Recommendations), then the Basis itself and its
// writer executor. Must run on the management executor: the single
// cascade pass for this basis's VectorSets happens on bkey's OWN writer
// goroutine (one Submit, blocking until it drains — §5 allows executor
// workers to block on another executor's queue), so each VectorSet's
// kernel calls and catalog removal stay ordered with the basis's other
// writer tasks. Only after that task drains is the WriterPool entry
// removed and the writer closed; the kernel instance and the Basis
// catalog entry are then dropped here on the management goroutine.
func (e *Engine) cascadeDeleteBasis(bkey string) {
	w := e.writers.Get(bkey)
	if w == nil {
		e.cat.RemoveBasis(bkey)
		return
	}
	done := make(chan struct{})
	w.Submit(func() {
		defer close(done)
		for _, vkey := range e.cat.VectorSetsOf(bkey) {
			if err := e.cascadeDeleteVectorSet(bkey, vkey); err != nil {
				e.writerLog(bkey).Warn("cascade delete failed", "vkey", vkey, "err", err)
			}
		}
	})
	<-done
	e.writers.Remove(bkey)
	w.Close()
	e.dropKernel(bkey)
	e.cat.RemoveBasis(bkey)
}

// Load scans the dump directory for "*.dmp" files and bloads each one,
// concurrently: every basis gets its own writer, so loading bases A and
// B has no ordering requirement between them (§5) — turbo/snapshotsync
// fans the scan out one goroutine per file found, the same shape it
// uses to fetch independent snapshot segments in the teacher codebase.
//
// This runs off the calling goroutine, never on the management
// executor: each per-basis BLoad already does its own e.mgmt.Submit and
// blocks on that task's reply, so wrapping the whole scan+fan-out+wait
// in one outer e.mgmt.Submit would be the single mgmt worker blocking
// on a reply to a task queued behind itself on its own queue — a
// re-entrant submission that deadlocks mgmt permanently for the rest of
// the process (§9's warning about re-entrant submission, here as
// mgmt-to-mgmt rather than the cascade delete's mgmt-to-writer, which
// is safe because it crosses queues).
func (e *Engine) Load(ctx context.Context, cb Callback[struct{}]) {
	task := replyTask(e.mgmtLog(""), struct{}{}, cb, func() (struct{}, error) {
		reqs, err := snapshotsync.ScanDumpDir(e.cfg.SavePath)
		if err != nil {
			return struct{}{}, err
		}
		err = snapshotsync.LoadAll(ctx, "load", reqs, func(gctx context.Context, bkey, path string) error {
			done := make(chan error, 1)
			e.BLoad(gctx, bkey, func(_ struct{}, err error) { done <- err })
			return <-done
		})
		return struct{}{}, err
	})
	go task()
}

// Save bsaves every live Basis, concurrently (one goroutine per basis,
// §5's "a write on basis A and a write on basis B are unordered"). A
// basis whose previous save hasn't drained is skipped (§4.5's
// in-flight guard), not queued, so Cron's cooperative overlap rule
// holds even under a slow dump write.
func (e *Engine) Save(ctx context.Context, cb func(error)) {
	e.mgmt.Submit(func() {
		bkeys := e.writers.Bases()
		g, gctx := errgroup.WithContext(ctx)
		for _, bkey := range bkeys {
			bkey := bkey
			w := e.writers.Get(bkey)
			if w == nil || !w.TryBeginSave() {
				continue
			}
			g.Go(func() error {
				defer w.EndSave()
				done := make(chan error, 1)
				e.BSave(gctx, bkey, func(_ struct{}, err error) { done <- err })
				return <-done
			})
		}
		cb(g.Wait())
	})
}

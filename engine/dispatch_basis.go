package engine

import (
	"context"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/validator"
)

// BMk creates a Basis named bkey with coordinate labels base, on the
// management executor (§4.3).
func (e *Engine) BMk(bkey string, base []string, cb Callback[struct{}]) {
	if err := validator.ValidKeyFormat(bkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.NotExists(e.cat, bkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(bkey), struct{}{}, cb, func() (struct{}, error) {
		if err := validator.NotExists(e.cat, bkey); err != nil {
			return struct{}{}, err
		}
		e.newBasis(bkey, base)
		return struct{}{}, nil
	}))
}

// BLoad restores a Basis named bkey from its dump file. If bkey already
// exists it is cascade-deleted first (§4.3) — synchronously, within the
// same mgmt-executor task, so no half-built state is ever observed
// between the old basis's teardown and the new one's creation (§9
// flags the source's async del-then-recreate race; this resolves it by
// keeping both steps in one management-executor task).
func (e *Engine) BLoad(ctx context.Context, bkey string, cb Callback[struct{}]) {
	if err := validator.ValidKeyFormat(bkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(bkey), struct{}{}, cb, func() (struct{}, error) {
		if e.cat.Exists(bkey) {
			e.cascadeDeleteBasis(bkey)
		}
		k := e.newBasis(bkey, nil)
		if err := k.BLoad(ctx, e.dumpPath(bkey)); err != nil {
			return struct{}{}, wrapKernelErr(bkey, err)
		}
		return struct{}{}, nil
	}))
}

// BSave writes bkey's dump file, on bkey's writer executor (§4.3).
func (e *Engine) BSave(ctx context.Context, bkey string, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
		cb(struct{}{}, err)
		return
	}
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	w.Submit(replyTask(e.writerLog(bkey), struct{}{}, cb, func() (struct{}, error) {
		k, ok := e.kernelOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		return struct{}{}, wrapKernelErr(bkey, k.BSave(ctx, e.dumpPath(bkey)))
	}))
}

// BList returns all live Basis keys, sorted (§4.3).
func (e *Engine) BList(cb Callback[[]string]) {
	e.mgmt.Submit(replyTask(e.mgmtLog(""), []string(nil), cb, func() ([]string, error) {
		return e.cat.Bases(), nil
	}))
}

// BRev reorders/renames bkey's coordinate labels, on bkey's writer.
func (e *Engine) BRev(bkey string, base []string, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidKeyFormat(bkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	w.Submit(replyTask(e.writerLog(bkey), struct{}{}, cb, func() (struct{}, error) {
		k, ok := e.kernelOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		return struct{}{}, wrapKernelErr(bkey, k.BRev(base))
	}))
}

// BGet returns bkey's coordinate labels, via the reader pool.
func (e *Engine) BGet(bkey string, cb Callback[[]string]) {
	if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(bkey), []string(nil), cb, func() ([]string, error) {
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, bkey, nil)
		}
		return k.BGet(), nil
	}))
	if err != nil {
		cb(nil, err)
	}
}

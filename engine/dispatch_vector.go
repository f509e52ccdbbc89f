package engine

import (
	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/validator"
)

// VList returns the VectorSet keys under bkey, sorted (§4.3).
func (e *Engine) VList(bkey string, cb Callback[[]string]) {
	if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
		cb(nil, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(bkey), []string(nil), cb, func() ([]string, error) {
		return e.cat.VectorSetsOf(bkey), nil
	}))
}

// VMk creates a VectorSet named vkey under bkey (§4.3).
func (e *Engine) VMk(bkey, vkey string, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidKeyFormat(vkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.NotExists(e.cat, vkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(vkey), struct{}{}, cb, func() (struct{}, error) {
		if err := validator.KindIs(e.cat, bkey, catalog.KindBasis); err != nil {
			return struct{}{}, err
		}
		if err := validator.NotExists(e.cat, vkey); err != nil {
			return struct{}{}, err
		}
		k, ok := e.kernelOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		if err := k.VMk(vkey); err != nil {
			return struct{}{}, wrapKernelErr(vkey, err)
		}
		e.cat.PutVectorSet(bkey, vkey)
		return struct{}{}, nil
	}))
}

// VIds returns the live vecids of vkey, via the reader pool.
func (e *Engine) VIds(vkey string, cb Callback[[]int]) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(vkey), []int(nil), cb, func() ([]int, error) {
		bkey, _ := e.cat.BasisOf(vkey)
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, vkey, nil)
		}
		ids, err := k.VIds(vkey)
		return ids, wrapKernelErr(vkey, err)
	}))
	if err != nil {
		cb(nil, err)
	}
}

// VGet returns vkey's dense vector at vecid, via the reader pool.
func (e *Engine) VGet(vkey string, vecid int, cb Callback[[]float64]) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(vkey), []float64(nil), cb, func() ([]float64, error) {
		bkey, _ := e.cat.BasisOf(vkey)
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, vkey, nil)
		}
		v, err := k.VGet(vkey, vecid)
		return v, wrapKernelErr(vkey, err)
	}))
	if err != nil {
		cb(nil, err)
	}
}

// denseVecWriter is the slice of kernel.Basis this file's three dense
// write ops (vadd/vset/vacc) share.
type denseVecWriter interface {
	VAdd(vkey string, vecid int, vals []float64) error
	VSet(vkey string, vecid int, vals []float64) error
	VAcc(vkey string, vecid int, vals []float64) error
}

func (e *Engine) denseWrite(vkey string, vecid int, vals []float64, cb Callback[struct{}], apply func(k denseVecWriter) error) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidId(vecid); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidProbs(vals); err != nil {
		cb(struct{}{}, err)
		return
	}
	bkey, ok := e.cat.BasisOf(vkey)
	if !ok {
		cb(struct{}{}, errs.New(errs.UnknownEntry, vkey, nil))
		return
	}
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	// Fire-and-forget (§7): the client gets "ok" now; a failure inside
	// the writer task is only visible via logs and the next read.
	cb(struct{}{}, nil)
	l := e.writerLog(vkey)
	w.Submit(ackOnlyTask(l, func() error {
		k, ok := e.kernelOf(bkey)
		if !ok {
			return errs.New(errs.UnknownEntry, bkey, nil)
		}
		if err := apply(k); err != nil {
			return wrapKernelErr(vkey, err)
		}
		if n := e.cat.IncrCounter(vkey); e.cfg.ByCount > 0 && n%e.cfg.ByCount == 0 {
			l.Info("bulk write progress", "count", n)
		}
		return nil
	}))
}

// VAdd appends/overwrites vkey's dense vector at vecid (§4.3).
func (e *Engine) VAdd(vkey string, vecid int, vals []float64, cb Callback[struct{}]) {
	e.denseWrite(vkey, vecid, vals, cb, func(k denseVecWriter) error {
		return k.VAdd(vkey, vecid, vals)
	})
}

// VSet overwrites vkey's dense vector at vecid (§4.3).
func (e *Engine) VSet(vkey string, vecid int, vals []float64, cb Callback[struct{}]) {
	e.denseWrite(vkey, vecid, vals, cb, func(k denseVecWriter) error {
		return k.VSet(vkey, vecid, vals)
	})
}

// VAcc accumulates into vkey's dense vector at vecid (§4.3).
func (e *Engine) VAcc(vkey string, vecid int, vals []float64, cb Callback[struct{}]) {
	e.denseWrite(vkey, vecid, vals, cb, func(k denseVecWriter) error {
		return k.VAcc(vkey, vecid, vals)
	})
}

// VRem removes vkey's vector at vecid (§4.3), fire-and-forget.
func (e *Engine) VRem(vkey string, vecid int, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	bkey, ok := e.cat.BasisOf(vkey)
	if !ok {
		cb(struct{}{}, errs.New(errs.UnknownEntry, vkey, nil))
		return
	}
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	cb(struct{}{}, nil)
	w.Submit(ackOnlyTask(e.writerLog(vkey), func() error {
		k, ok := e.kernelOf(bkey)
		if !ok {
			return errs.New(errs.UnknownEntry, bkey, nil)
		}
		return wrapKernelErr(vkey, k.VRem(vkey, vecid))
	}))
}

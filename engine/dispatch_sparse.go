package engine

import (
	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/validator"
)

// IGet returns vkey's sparse (index, weight) pairs at vecid, via the
// reader pool. §4.3 only requires Exists(k), not KindIs — iget accepts
// any key kind that the kernel happens to hold sparse data for.
func (e *Engine) IGet(vkey string, vecid int, cb Callback[[]int]) {
	if err := validator.Exists(e.cat, vkey); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(vkey), []int(nil), cb, func() ([]int, error) {
		bkey, _ := e.cat.BasisOf(vkey)
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, vkey, nil)
		}
		v, err := k.IGet(vkey, vecid)
		return v, wrapKernelErr(vkey, err)
	}))
	if err != nil {
		cb(nil, err)
	}
}

// sparseVecWriter is the slice of kernel.Basis this file's three sparse
// write ops (iadd/iset/iacc) share.
type sparseVecWriter interface {
	IAdd(vkey string, vecid int, pairs []int) error
	ISet(vkey string, vecid int, pairs []int) error
	IAcc(vkey string, vecid int, pairs []int) error
}

// basisDimension returns the number of coordinates of vkey's basis, the
// maxIndex bound sparse pairs validate against.
func (e *Engine) basisDimension(vkey string) (int, error) {
	bkey, ok := e.cat.BasisOf(vkey)
	if !ok {
		return 0, errs.New(errs.UnknownEntry, vkey, nil)
	}
	k, ok := e.kernelOf(bkey)
	if !ok {
		return 0, errs.New(errs.UnknownEntry, bkey, nil)
	}
	return len(k.BGet()), nil
}

func (e *Engine) sparseWrite(vkey string, vecid int, pairs []int, cb Callback[struct{}], apply func(k sparseVecWriter) error) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidId(vecid); err != nil {
		cb(struct{}{}, err)
		return
	}
	maxIndex, err := e.basisDimension(vkey)
	if err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.ValidSparsePairs(maxIndex, pairs); err != nil {
		cb(struct{}{}, err)
		return
	}
	bkey, _ := e.cat.BasisOf(vkey)
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
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

// IAdd appends a sparse vector at vecid (§4.3).
func (e *Engine) IAdd(vkey string, vecid int, pairs []int, cb Callback[struct{}]) {
	e.sparseWrite(vkey, vecid, pairs, cb, func(k sparseVecWriter) error {
		return k.IAdd(vkey, vecid, pairs)
	})
}

// ISet overwrites a sparse vector at vecid (§4.3).
func (e *Engine) ISet(vkey string, vecid int, pairs []int, cb Callback[struct{}]) {
	e.sparseWrite(vkey, vecid, pairs, cb, func(k sparseVecWriter) error {
		return k.ISet(vkey, vecid, pairs)
	})
}

// IAcc accumulates into a sparse vector at vecid (§4.3).
func (e *Engine) IAcc(vkey string, vecid int, pairs []int, cb Callback[struct{}]) {
	e.sparseWrite(vkey, vecid, pairs, cb, func(k sparseVecWriter) error {
		return k.IAcc(vkey, vecid, pairs)
	})
}

package engine

import (
	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/kernel"
	"github.com/simbase-engine/simbase/validator"
)

// RList returns vkey's sorted outgoing recommendation targets (§4.3).
func (e *Engine) RList(vkey string, cb Callback[[]string]) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(nil, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(vkey), []string(nil), cb, func() ([]string, error) {
		return e.cat.TargetsOf(vkey), nil
	}))
}

// RMk creates the recommendation relation rkey(src, tgt) with scoring
// function funcscore (§4.3). Runs on the management executor since it
// touches the cross-VectorSet targetsOf/sourcesOf indices.
func (e *Engine) RMk(src, tgt, funcscore string, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, src, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.KindIs(e.cat, tgt, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	if err := validator.SameBasis(e.cat, src, tgt); err != nil {
		cb(struct{}{}, err)
		return
	}
	rkey := catalog.RKey(src, tgt)
	if err := validator.NotExists(e.cat, rkey); err != nil {
		cb(struct{}{}, err)
		return
	}
	e.mgmt.Submit(replyTask(e.mgmtLog(rkey), struct{}{}, cb, func() (struct{}, error) {
		if err := validator.NotExists(e.cat, rkey); err != nil {
			return struct{}{}, err
		}
		bkey, ok := e.cat.BasisOf(src)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, src, nil)
		}
		k, ok := e.kernelOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		if err := k.RMk(src, tgt, funcscore); err != nil {
			return struct{}{}, wrapKernelErr(rkey, err)
		}
		e.cat.PutRecommendation(bkey, src, tgt)
		return struct{}{}, nil
	}))
}

// RGet returns the scored top-K target ids recommended for src's
// vecid, via the reader pool.
func (e *Engine) RGet(src string, vecid int, tgt string, cb Callback[[]kernel.ScoredID]) {
	if err := e.checkRecEndpoints(src, tgt); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(catalog.RKey(src, tgt)), []kernel.ScoredID(nil), cb, func() ([]kernel.ScoredID, error) {
		bkey, _ := e.cat.BasisOf(src)
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, bkey, nil)
		}
		v, err := k.RGet(src, vecid, tgt)
		return v, wrapKernelErr(catalog.RKey(src, tgt), err)
	}))
	if err != nil {
		cb(nil, err)
	}
}

// RRec returns the top-K target ids recommended for src's vecid
// (without scores), via the reader pool.
func (e *Engine) RRec(src string, vecid int, tgt string, cb Callback[[]int]) {
	if err := e.checkRecEndpoints(src, tgt); err != nil {
		cb(nil, err)
		return
	}
	err := e.readers.Submit(replyTask(e.readerLog(catalog.RKey(src, tgt)), []int(nil), cb, func() ([]int, error) {
		bkey, _ := e.cat.BasisOf(src)
		k, ok := e.kernelOf(bkey)
		if !ok {
			return nil, errs.New(errs.UnknownEntry, bkey, nil)
		}
		v, err := k.RRec(src, vecid, tgt)
		return v, wrapKernelErr(catalog.RKey(src, tgt), err)
	}))
	if err != nil {
		cb(nil, err)
	}
}

func (e *Engine) checkRecEndpoints(src, tgt string) error {
	if err := validator.KindIs(e.cat, src, catalog.KindVectorSet); err != nil {
		return err
	}
	if err := validator.KindIs(e.cat, tgt, catalog.KindVectorSet); err != nil {
		return err
	}
	return validator.Exists(e.cat, catalog.RKey(src, tgt))
}

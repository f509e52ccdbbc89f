package engine

import (
	"sync"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/kernel"
	"github.com/simbase-engine/simbase/validator"
)

// multiListener fans a basis's kernel events out to every listener
// registered against it — the Listener Bridge (always present, added
// in newBasis) plus whatever client listeners ListenBasis/
// ListenVectorSet/ListenRecommendation have registered. A kernel.Basis
// only ever holds one Listener (AddListener is called once, in
// newBasis); this is what lets §6's three listen() overloads all
// resolve to that single call.
type multiListener struct {
	mu        sync.Mutex
	listeners []kernel.Listener
}

func (m *multiListener) add(l kernel.Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func (m *multiListener) snapshot() []kernel.Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kernel.Listener(nil), m.listeners...)
}

func (m *multiListener) OnVecSetAdded(bkey, vkey string) {
	for _, l := range m.snapshot() {
		l.OnVecSetAdded(bkey, vkey)
	}
}

func (m *multiListener) OnVecSetDeleted(bkey, vkey string) {
	for _, l := range m.snapshot() {
		l.OnVecSetDeleted(bkey, vkey)
	}
}

func (m *multiListener) OnRecAdded(bkey, vkeyFrom, vkeyTo string) {
	for _, l := range m.snapshot() {
		l.OnRecAdded(bkey, vkeyFrom, vkeyTo)
	}
}

func (m *multiListener) OnRecDeleted(bkey, vkeyFrom, vkeyTo string) {
	for _, l := range m.snapshot() {
		l.OnRecDeleted(bkey, vkeyFrom, vkeyTo)
	}
}

// vectorSetScope narrows a client listener to events touching one
// VectorSet, either as the set itself or as either end of a
// Recommendation.
type vectorSetScope struct {
	vkey  string
	inner kernel.Listener
}

func (s *vectorSetScope) OnVecSetAdded(bkey, vkey string) {
	if vkey == s.vkey {
		s.inner.OnVecSetAdded(bkey, vkey)
	}
}

func (s *vectorSetScope) OnVecSetDeleted(bkey, vkey string) {
	if vkey == s.vkey {
		s.inner.OnVecSetDeleted(bkey, vkey)
	}
}

func (s *vectorSetScope) OnRecAdded(bkey, vkeyFrom, vkeyTo string) {
	if vkeyFrom == s.vkey || vkeyTo == s.vkey {
		s.inner.OnRecAdded(bkey, vkeyFrom, vkeyTo)
	}
}

func (s *vectorSetScope) OnRecDeleted(bkey, vkeyFrom, vkeyTo string) {
	if vkeyFrom == s.vkey || vkeyTo == s.vkey {
		s.inner.OnRecDeleted(bkey, vkeyFrom, vkeyTo)
	}
}

// recommendationScope narrows a client listener to one src/tgt
// Recommendation relation; it never fires for VectorSet events.
type recommendationScope struct {
	src, tgt string
	inner    kernel.Listener
}

func (recommendationScope) OnVecSetAdded(bkey, vkey string)   {}
func (recommendationScope) OnVecSetDeleted(bkey, vkey string) {}

func (s *recommendationScope) OnRecAdded(bkey, vkeyFrom, vkeyTo string) {
	if vkeyFrom == s.src && vkeyTo == s.tgt {
		s.inner.OnRecAdded(bkey, vkeyFrom, vkeyTo)
	}
}

func (s *recommendationScope) OnRecDeleted(bkey, vkeyFrom, vkeyTo string) {
	if vkeyFrom == s.src && vkeyTo == s.tgt {
		s.inner.OnRecDeleted(bkey, vkeyFrom, vkeyTo)
	}
}

// ListenBasis registers l to receive every kernel event for bkey — the
// first of §6's three listen() overloads. Runs on bkey's writer (§4.3's
// dispatch table: "listen(...) | writer(basis)").
func (e *Engine) ListenBasis(bkey string, l kernel.Listener, cb Callback[struct{}]) {
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
		ml, ok := e.listenerOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		ml.add(l)
		return struct{}{}, nil
	}))
}

// ListenVectorSet registers l to receive events touching vkey only.
func (e *Engine) ListenVectorSet(vkey string, l kernel.Listener, cb Callback[struct{}]) {
	if err := validator.KindIs(e.cat, vkey, catalog.KindVectorSet); err != nil {
		cb(struct{}{}, err)
		return
	}
	bkey, _ := e.cat.BasisOf(vkey)
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	w.Submit(replyTask(e.writerLog(vkey), struct{}{}, cb, func() (struct{}, error) {
		ml, ok := e.listenerOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		ml.add(&vectorSetScope{vkey: vkey, inner: l})
		return struct{}{}, nil
	}))
}

// ListenRecommendation registers l to receive events for the rkey(src,
// tgt) relation only.
func (e *Engine) ListenRecommendation(src, tgt string, l kernel.Listener, cb Callback[struct{}]) {
	if err := e.checkRecEndpoints(src, tgt); err != nil {
		cb(struct{}{}, err)
		return
	}
	bkey, _ := e.cat.BasisOf(src)
	w := e.writers.Get(bkey)
	if w == nil {
		cb(struct{}{}, errs.New(errs.UnknownEntry, bkey, nil))
		return
	}
	w.Submit(replyTask(e.writerLog(catalog.RKey(src, tgt)), struct{}{}, cb, func() (struct{}, error) {
		ml, ok := e.listenerOf(bkey)
		if !ok {
			return struct{}{}, errs.New(errs.UnknownEntry, bkey, nil)
		}
		ml.add(&recommendationScope{src: src, tgt: tgt, inner: l})
		return struct{}{}, nil
	}))
}

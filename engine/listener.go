package engine

import "github.com/simbase-engine/simbase/catalog"

// listenerBridge implements kernel.Listener (§4.4): the sole mutator of
// catalog entries for kernel-initiated changes. The kernel invokes
// these callbacks synchronously from inside the kernel call that
// triggers them (in practice BLoad, which the dispatcher runs inside the
// bload task on the management executor), so they run on that
// executor's goroutine; no additional submission is made here.
type listenerBridge struct {
	e    *Engine
	bkey string
}

func (l *listenerBridge) OnVecSetAdded(bkey, vkey string) {
	l.e.cat.PutVectorSet(bkey, vkey)
}

func (l *listenerBridge) OnVecSetDeleted(bkey, vkey string) {
	l.e.cat.RemoveVectorSet(vkey)
}

func (l *listenerBridge) OnRecAdded(bkey, vkeyFrom, vkeyTo string) {
	l.e.cat.PutRecommendation(bkey, vkeyFrom, vkeyTo)
}

func (l *listenerBridge) OnRecDeleted(bkey, vkeyFrom, vkeyTo string) {
	l.e.cat.RemoveRecommendation(catalog.RKey(vkeyFrom, vkeyTo))
}

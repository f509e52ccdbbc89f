// Package executor implements the Executor Pool of §4.3/§5: one
// single-threaded management executor for global catalog mutations, one
// single-threaded writer executor per basis, and a bounded reader pool.
package executor

import "sync"

// Mgmt is the single-threaded management executor. All global catalog
// mutations (basis creation, recommendation creation, enumerations, and
// deletion of a Basis itself) are serialized through it, giving the
// engine a consistent view of the global namespace at the point each
// piece of cross-basis work is enqueued (§5).
type Mgmt struct {
	queue chan func()
	wg    sync.WaitGroup
}

// NewMgmt starts the management executor's single worker goroutine.
func NewMgmt() *Mgmt {
	m := &Mgmt{queue: make(chan func(), 256)}
	m.wg.Add(1)
	go m.run()
	return m
}

func (m *Mgmt) run() {
	defer m.wg.Done()
	for task := range m.queue {
		task()
	}
}

// Submit enqueues task to run on the management goroutine, in
// submission order relative to every other Submit call.
func (m *Mgmt) Submit(task func()) {
	m.queue <- task
}

// Close drains and stops the management executor. Only used at process
// shutdown; the engine itself never tears down its own mgmt executor.
func (m *Mgmt) Close() {
	close(m.queue)
	m.wg.Wait()
}

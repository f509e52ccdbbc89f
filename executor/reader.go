package executor

import (
	"sync"

	"github.com/simbase-engine/simbase/errs"
)

// DefaultReaderWorkers is the worker count used when none is
// configured; within the spec's [53, 83] range (§5).
const DefaultReaderWorkers = 64

// ReaderQueueCapacity is the reader pool's work queue capacity (§5).
const ReaderQueueCapacity = 100

// ReaderPool is the bounded thread pool handling read-only ops (vget,
// vids, iget, rget, rrec, bget). Submissions beyond the queue's
// capacity are rejected immediately rather than left to dangle — the
// spec's design notes (§9) call out the source's silent-drop behavior
// as a bug; this implementation always replies, with errs.Rejected.
type ReaderPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewReaderPool starts workers goroutines consuming a queue of
// ReaderQueueCapacity. workers must be in [53, 83]; callers outside
// that range get it clamped.
func NewReaderPool(workers int) *ReaderPool {
	if workers < 53 {
		workers = 53
	}
	if workers > 83 {
		workers = 83
	}
	p := &ReaderPool{tasks: make(chan func(), ReaderQueueCapacity)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *ReaderPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues task if the queue has room, otherwise returns
// errs.Rejected without running task.
func (p *ReaderPool) Submit(task func()) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		return errs.New(errs.Rejected, "", nil)
	}
}

// Close stops all workers once the queue drains. Only used at process
// shutdown.
func (p *ReaderPool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

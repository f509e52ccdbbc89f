package executor

import (
	"sync"
	"sync/atomic"
)

// Writer is the single-threaded writer executor owned by one basis
// (§5). The basis's vector writes, bsave, brev and deletions of its
// vector sets and recommendations run here (vmk, rmk and bload run on
// the management executor), so those writes reach the kernel one at a
// time without any fine-grained locking in the numerical code. Two writes submitted here
// complete in submission order (§8 property 3); a write on this basis
// and a write on another basis's Writer are entirely unordered.
type Writer struct {
	queue  chan func()
	wg     sync.WaitGroup
	saving atomic.Bool // in-flight guard for Cron's "no overlapping save" rule (§4.5)
}

// NewWriter starts a basis's writer goroutine.
func NewWriter() *Writer {
	w := &Writer{queue: make(chan func(), 256)}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Writer) run() {
	defer w.wg.Done()
	for task := range w.queue {
		task()
	}
}

// Submit enqueues task on this basis's writer queue.
func (w *Writer) Submit(task func()) {
	w.queue <- task
}

// TryBeginSave reports whether a save may start now, marking the
// writer busy if so. Returns false if a previous save is still
// draining, in which case Cron's fire is a documented no-op (§4.5).
func (w *Writer) TryBeginSave() bool {
	return w.saving.CompareAndSwap(false, true)
}

// EndSave clears the in-flight save guard.
func (w *Writer) EndSave() { w.saving.Store(false) }

// Close drains and stops the writer goroutine. Called once, by the
// management executor, while cascading a Basis delete, after the
// basis's final cascade task has drained.
func (w *Writer) Close() {
	close(w.queue)
	w.wg.Wait()
}

// WriterPool owns the map from basis key to its Writer. Only the
// management executor mutates this map (creating a Writer when a basis
// is created/loaded, removing one when a basis is deleted), so it is
// guarded by a plain mutex rather than anything fancier.
type WriterPool struct {
	mu      sync.RWMutex
	writers map[string]*Writer
}

// NewWriterPool returns an empty WriterPool.
func NewWriterPool() *WriterPool {
	return &WriterPool{writers: make(map[string]*Writer)}
}

// Create installs a fresh Writer for bkey, replacing any existing one
// without closing it (callers must close the old one themselves first
// if replacing a live basis).
func (p *WriterPool) Create(bkey string) *Writer {
	w := NewWriter()
	p.mu.Lock()
	p.writers[bkey] = w
	p.mu.Unlock()
	return w
}

// Get returns bkey's Writer, or nil if the basis has no writer.
func (p *WriterPool) Get(bkey string) *Writer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writers[bkey]
}

// Remove deletes bkey's Writer from the pool without closing it; the
// caller closes it explicitly once its final cascade task has drained.
func (p *WriterPool) Remove(bkey string) {
	p.mu.Lock()
	delete(p.writers, bkey)
	p.mu.Unlock()
}

// Bases returns all basis keys that currently have a writer.
func (p *WriterPool) Bases() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.writers))
	for k := range p.writers {
		out = append(out, k)
	}
	return out
}

// Package engine implements the Dispatcher (§4.3), Listener Bridge
// (§4.4), Cron wiring (§4.5) and Lifecycle Manager (§4.7) of the engine
// spec: the public operation surface clients call, built on top of the
// catalog, validator and executor packages.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/config"
	"github.com/simbase-engine/simbase/cron"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/executor"
	"github.com/simbase-engine/simbase/kernel"
	"github.com/simbase-engine/simbase/logging"

	"github.com/erigontech/erigon-lib/log/v3"
)

// Callback is the reply contract every dispatcher op uses (§4.3):
// "every op takes a callback; on synchronous validation failure the
// callback receives an error ... on success it is enqueued". T is
// struct{} for ack-only ops.
type Callback[T any] func(result T, err error)

// Engine is the Dispatcher. Construct with New.
type Engine struct {
	cat     *catalog.Catalog
	mgmt    *executor.Mgmt
	writers *executor.WriterPool
	readers *executor.ReaderPool
	factory kernel.Factory
	cfg     config.Config
	log     log.Logger
	cron    *cron.Cron

	basesMu sync.RWMutex
	bases   map[string]kernel.Basis
	listens map[string]*multiListener
}

// New builds an Engine. It does not start Cron or load any dumps;
// callers drive that explicitly (via StartCron and Load) so tests can
// construct an Engine without touching the filesystem or a timer.
func New(cfg config.Config, factory kernel.Factory) *Engine {
	e := &Engine{
		cat:     catalog.New(),
		mgmt:    executor.NewMgmt(),
		writers: executor.NewWriterPool(),
		readers: executor.NewReaderPool(cfg.ReaderWorkers),
		factory: factory,
		cfg:     cfg,
		log:     logging.Scoped("engine"),
		bases:   make(map[string]kernel.Basis),
		listens: make(map[string]*multiListener),
	}
	e.cron = cron.New(cfg.SaveInterval(), func(ctx context.Context) {
		e.Save(ctx, func(err error) {
			if err != nil {
				e.log.Warn("periodic save failed", "err", err)
			}
		})
	})
	return e
}

// StartCron starts the periodic snapshot scheduler (§4.5).
func (e *Engine) StartCron(ctx context.Context) { e.cron.Start(ctx) }

// StopCron stops the periodic snapshot scheduler.
func (e *Engine) StopCron() { e.cron.Stop() }

func (e *Engine) dumpPath(bkey string) string {
	return filepath.Join(e.cfg.SavePath, bkey+".dmp")
}

func (e *Engine) kernelOf(bkey string) (kernel.Basis, bool) {
	e.basesMu.RLock()
	defer e.basesMu.RUnlock()
	k, ok := e.bases[bkey]
	return k, ok
}

func (e *Engine) setKernel(bkey string, k kernel.Basis) {
	e.basesMu.Lock()
	e.bases[bkey] = k
	e.basesMu.Unlock()
}

func (e *Engine) dropKernel(bkey string) {
	e.basesMu.Lock()
	delete(e.bases, bkey)
	delete(e.listens, bkey)
	e.basesMu.Unlock()
}

func (e *Engine) listenerOf(bkey string) (*multiListener, bool) {
	e.basesMu.RLock()
	defer e.basesMu.RUnlock()
	ml, ok := e.listens[bkey]
	return ml, ok
}

// statPath is a thin os.Stat wrapper with the signature
// validator.ValidDumpPath takes for its statFn; nothing in the engine
// calls it at present.
func statPath(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// newBasis creates the catalog entry, writer executor and kernel
// instance for bkey, and wires the Listener Bridge. Callers must run
// this on the management executor.
func (e *Engine) newBasis(bkey string, coords []string) kernel.Basis {
	e.cat.PutBasis(bkey)
	w := e.writers.Create(bkey)
	k := e.factory.New(bkey, e.basisConfig(bkey))
	if coords != nil {
		_ = k.BRev(coords)
	}
	ml := &multiListener{}
	ml.add(&listenerBridge{e: e, bkey: bkey})
	k.AddListener(ml)
	e.setKernel(bkey, k)
	e.basesMu.Lock()
	e.listens[bkey] = ml
	e.basesMu.Unlock()
	_ = w
	return k
}

func (e *Engine) basisConfig(bkey string) map[string]string {
	if bc, ok := e.cfg.Basis[bkey]; ok {
		out := make(map[string]string, len(bc))
		for k, v := range bc {
			out[k] = v
		}
		return out
	}
	return nil
}

func wrapKernelErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return errs.New(errs.KernelError, key, err)
}

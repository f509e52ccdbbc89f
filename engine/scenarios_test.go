package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/config"
	"github.com/simbase-engine/simbase/errs"
	"github.com/simbase-engine/simbase/kernel/memkernel"
	"github.com/simbase-engine/simbase/tests"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.SavePath = t.TempDir()
	return New(cfg, memkernel.Factory{})
}

// S1: bmk("b1", [...]) -> blist() => ["b1"]; bget("b1") => [...]
func TestScenarioS1BasisCreateAndList(t *testing.T) {
	e := newTestEngine(t)

	var bases []string
	var coords []string
	tests.Run(t, tests.Scenario{
		Name: "S1",
		Steps: []tests.Step{
			{
				Name: "bmk",
				Submit: func(done func(err error)) {
					e.BMk("b1", []string{"a", "b", "c"}, func(_ struct{}, err error) { done(err) })
				},
				Check: func(t *testing.T) {},
			},
			{
				Name: "blist",
				Submit: func(done func(err error)) {
					e.BList(func(res []string, err error) { bases = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Equal(t, []string{"b1"}, bases) },
			},
			{
				Name: "bget",
				Submit: func(done func(err error)) {
					e.BGet("b1", func(res []string, err error) { coords = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Equal(t, []string{"a", "b", "c"}, coords) },
			},
		},
	})
}

// S2: vmk/vadd/vget/vids under b1.
func TestScenarioS2VectorWriteAndRead(t *testing.T) {
	e := newTestEngine(t)
	mustBMk(t, e, "b1", []string{"a", "b", "c"})

	var vec []float64
	var ids []int
	tests.Run(t, tests.Scenario{
		Name: "S2",
		Steps: []tests.Step{
			{Name: "vmk", Submit: func(done func(err error)) {
				e.VMk("b1", "vs", func(_ struct{}, err error) { done(err) })
			}},
			{Name: "vadd", Submit: func(done func(err error)) {
				e.VAdd("vs", 1, []float64{0.2, 0.3, 0.5}, func(_ struct{}, err error) { done(err) })
			}},
			{
				Name: "vget",
				Submit: func(done func(err error)) {
					waitForWriter(e, "b1")
					e.VGet("vs", 1, func(res []float64, err error) { vec = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Equal(t, []float64{0.2, 0.3, 0.5}, vec) },
			},
			{
				Name: "vids",
				Submit: func(done func(err error)) {
					e.VIds("vs", func(res []int, err error) { ids = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Equal(t, []int{1}, ids) },
			},
		},
	})
}

// S3: invalid probability and invalid id are rejected synchronously.
func TestScenarioS3ValidationRejections(t *testing.T) {
	e := newTestEngine(t)
	mustBMk(t, e, "b1", []string{"a", "b", "c"})
	mustVMk(t, e, "b1", "vs")

	errCh := make(chan error, 1)
	e.VAdd("vs", 1, []float64{1.1, 0, 0}, func(_ struct{}, err error) { errCh <- err })
	require.True(t, errs.Is(<-errCh, errs.InvalidProbability))

	e.VAdd("vs", 0, []float64{0.5, 0.5, 0}, func(_ struct{}, err error) { errCh <- err })
	require.True(t, errs.Is(<-errCh, errs.InvalidId))
}

// S4: rmk + rlist + del(target) clears the recommendation.
func TestScenarioS4RecommendationAndDeleteCascade(t *testing.T) {
	e := newTestEngine(t)
	mustBMk(t, e, "b1", []string{"a", "b", "c"})
	mustVMk(t, e, "b1", "src")
	mustVMk(t, e, "b1", "tgt")

	var targets []string
	tests.Run(t, tests.Scenario{
		Name: "S4",
		Steps: []tests.Step{
			{Name: "rmk", Submit: func(done func(err error)) {
				e.RMk("src", "tgt", "cosine", func(_ struct{}, err error) { done(err) })
			}},
			{
				Name: "rlist-before-del",
				Submit: func(done func(err error)) {
					e.RList("src", func(res []string, err error) { targets = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Equal(t, []string{"tgt"}, targets) },
			},
			{Name: "del-tgt", Submit: func(done func(err error)) {
				e.Del("tgt", func(_ struct{}, err error) { done(err) })
			}},
			{
				Name: "rlist-after-del",
				Submit: func(done func(err error)) {
					e.RList("src", func(res []string, err error) { targets = res; done(err) })
				},
				Check: func(t *testing.T) { assert.Empty(t, targets) },
			},
		},
	})
}

// S5: rmk across two different bases is rejected with BasisMismatch.
func TestScenarioS5CrossBasisRecommendationRejected(t *testing.T) {
	e := newTestEngine(t)
	mustBMk(t, e, "b1", []string{"a", "b", "c"})
	mustVMk(t, e, "b1", "vs")
	mustBMk(t, e, "b2", []string{"a", "b", "c"})
	mustVMk(t, e, "b2", "u")

	errCh := make(chan error, 1)
	e.RMk("vs", "u", "cosine", func(_ struct{}, err error) { errCh <- err })
	require.True(t, errs.Is(<-errCh, errs.BasisMismatch))
}

// S6: bsave, then a fresh engine pointed at the same savepath loads b1
// on startup and reproduces S2's vget result.
func TestScenarioS6SaveThenLoadOnFreshEngine(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SavePath = dir
	e := New(cfg, memkernel.Factory{})

	mustBMk(t, e, "b1", []string{"a", "b", "c"})
	mustVMk(t, e, "b1", "vs")

	doneCh := make(chan error, 1)
	e.VAdd("vs", 1, []float64{0.2, 0.3, 0.5}, func(_ struct{}, err error) { doneCh <- err })
	require.NoError(t, <-doneCh)
	waitForWriter(e, "b1")

	saveDone := make(chan error, 1)
	e.BSave(context.Background(), "b1", func(_ struct{}, err error) { saveDone <- err })
	require.NoError(t, <-saveDone)

	fresh := New(cfg, memkernel.Factory{})
	loadDone := make(chan error, 1)
	fresh.Load(context.Background(), func(_ struct{}, err error) { loadDone <- err })
	require.NoError(t, <-loadDone)

	getDone := make(chan []float64, 1)
	getErr := make(chan error, 1)
	fresh.VGet("vs", 1, func(res []float64, err error) {
		getDone <- res
		getErr <- err
	})
	require.NoError(t, <-getErr)
	assert.Equal(t, []float64{0.2, 0.3, 0.5}, <-getDone)
}

// §8 property 4: load() on an empty dump directory leaves the catalog
// empty and does not error.
func TestLoadIsIdempotentOnEmptyDumpDir(t *testing.T) {
	e := newTestEngine(t)
	doneCh := make(chan error, 1)
	e.Load(context.Background(), func(_ struct{}, err error) { doneCh <- err })
	require.NoError(t, <-doneCh)

	listDone := make(chan []string, 1)
	e.BList(func(res []string, err error) { require.NoError(t, err); listDone <- res })
	assert.Empty(t, <-listDone)
}

// §8 property 6: "_" is rejected in user-chosen keys.
func TestUnderscoreRejectedInUserKeys(t *testing.T) {
	e := newTestEngine(t)
	errCh := make(chan error, 1)
	e.BMk("a_b", []string{"x"}, func(_ struct{}, err error) { errCh <- err })
	require.True(t, errs.Is(<-errCh, errs.InvalidKeyFormat))

	mustBMk(t, e, "b1", []string{"x"})
	e.VMk("b1", "x_y", func(_ struct{}, err error) { errCh <- err })
	require.True(t, errs.Is(<-errCh, errs.InvalidKeyFormat))
}

// §8 property 2: del(bkey) removes every key under it, including
// recommendations touching its vector sets, and tears down its writer.
func TestCascadeDeleteBasisRemovesEverything(t *testing.T) {
	e := newTestEngine(t)
	mustBMk(t, e, "b1", []string{"a"})
	mustVMk(t, e, "b1", "src")
	mustVMk(t, e, "b1", "tgt")
	mustRMk(t, e, "src", "tgt", "cosine")

	delDone := make(chan error, 1)
	e.Del("b1", func(_ struct{}, err error) { delDone <- err })
	require.NoError(t, <-delDone)

	assertUnknown(t, func(cb func(err error)) {
		e.VList("b1", func(_ []string, err error) { cb(err) })
	})
	assertUnknown(t, func(cb func(err error)) {
		e.RList("src", func(_ []string, err error) { cb(err) })
	})
	assert.False(t, e.cat.Exists(catalog.RKey("src", "tgt")))
	assert.Nil(t, e.writers.Get("b1"))
}

func mustBMk(t *testing.T, e *Engine, bkey string, base []string) {
	t.Helper()
	doneCh := make(chan error, 1)
	e.BMk(bkey, base, func(_ struct{}, err error) { doneCh <- err })
	require.NoError(t, <-doneCh)
}

func mustVMk(t *testing.T, e *Engine, bkey, vkey string) {
	t.Helper()
	doneCh := make(chan error, 1)
	e.VMk(bkey, vkey, func(_ struct{}, err error) { doneCh <- err })
	require.NoError(t, <-doneCh)
}

func mustRMk(t *testing.T, e *Engine, src, tgt, funcscore string) {
	t.Helper()
	doneCh := make(chan error, 1)
	e.RMk(src, tgt, funcscore, func(_ struct{}, err error) { doneCh <- err })
	require.NoError(t, <-doneCh)
}

func assertUnknown(t *testing.T, submit func(cb func(err error))) {
	t.Helper()
	doneCh := make(chan error, 1)
	submit(func(err error) { doneCh <- err })
	require.True(t, errs.Is(<-doneCh, errs.UnknownEntry))
}

// waitForWriter blocks until every task already queued on bkey's writer
// has drained, by submitting and awaiting one more no-op task. Used
// after fire-and-forget writes (§7) when a test needs the write to be
// visible before it reads.
func waitForWriter(e *Engine, bkey string) {
	w := e.writers.Get(bkey)
	if w == nil {
		return
	}
	done := make(chan struct{})
	w.Submit(func() { close(done) })
	<-done
}

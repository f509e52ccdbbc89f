// Package validator implements the pure predicate functions of §4.2:
// synchronous, advisory checks run on the caller's goroutine before a
// Dispatcher op is enqueued. They read a consistent snapshot per key
// lookup but not across lookups (§4.1). The bmk, vmk and rmk ops
// re-apply their existence checks inside the management-executor task
// that performs the mutation, so two such requests racing to pass
// validation cannot both succeed: the later one fails there and is
// logged and reported to its callback. Fire-and-forget vector writes
// are not re-validated on their writer.
package validator

import (
	"strings"

	"github.com/simbase-engine/simbase/catalog"
	"github.com/simbase-engine/simbase/errs"
)

// ValidKeyFormat fails if k contains "_". User-chosen keys (bkey, vkey)
// may never contain it so that a recommendation key's one underscore
// is unambiguous (§3).
func ValidKeyFormat(k string) error {
	if strings.Contains(k, "_") {
		return errs.New(errs.InvalidKeyFormat, k, nil)
	}
	return nil
}

// Exists fails unless k is present in the catalog.
func Exists(c *catalog.Catalog, k string) error {
	if !c.Exists(k) {
		return errs.New(errs.UnknownEntry, k, nil)
	}
	return nil
}

// NotExists fails if k is already present in the catalog.
func NotExists(c *catalog.Catalog, k string) error {
	if c.Exists(k) {
		return errs.New(errs.DuplicateEntry, k, nil)
	}
	return nil
}

// KindIs fails unless k is present and of the expected kind.
func KindIs(c *catalog.Catalog, k string, expected catalog.Kind) error {
	got := c.Kind(k)
	if got == catalog.KindNone {
		return errs.New(errs.UnknownEntry, k, nil)
	}
	if got != expected {
		return errs.New(errs.KindMismatch, k, nil)
	}
	return nil
}

// ValidId fails unless v >= 1 (vecids are positive integers, §3).
func ValidId(v int) error {
	if v < 1 {
		return errs.New(errs.InvalidId, "", nil)
	}
	return nil
}

// ValidProbs fails unless every x is in [0, 1].
func ValidProbs(xs []float64) error {
	for _, x := range xs {
		if x < 0 || x > 1 {
			return errs.New(errs.InvalidProbability, "", nil)
		}
	}
	return nil
}

// ValidSparsePairs fails unless pairs has even length and every
// (index, weight) pair satisfies 0 <= index <= maxIndex, weight >= 0
// (§4.2). Repeated indices in the same list are not rejected here —
// the spec states no uniqueness constraint, and the kernel's sparse
// write ops (iset/iadd/iacc) define their own merge semantics for
// whatever pairs arrive.
func ValidSparsePairs(maxIndex int, pairs []int) error {
	if len(pairs)%2 != 0 {
		return errs.New(errs.InvalidSparsePair, "", nil)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		idx, weight := pairs[i], pairs[i+1]
		if idx < 0 || idx > maxIndex {
			return errs.New(errs.InvalidSparsePair, "", nil)
		}
		if weight < 0 {
			return errs.New(errs.InvalidSparsePair, "", nil)
		}
	}
	return nil
}

// SameBasis fails unless src and tgt belong to the same basis.
func SameBasis(c *catalog.Catalog, src, tgt string) error {
	bs, ok1 := c.BasisOf(src)
	bt, ok2 := c.BasisOf(tgt)
	if !ok1 || !ok2 || bs != bt {
		return errs.New(errs.BasisMismatch, src+"_"+tgt, nil)
	}
	return nil
}

// ValidDumpPath fails unless path names an existing file. statFn is
// injected for testability (os.Stat in production).
func ValidDumpPath(path string, statFn func(string) (bool, error)) error {
	ok, err := statFn(path)
	if err != nil {
		return errs.New(errs.DumpMissing, path, err)
	}
	if !ok {
		return errs.New(errs.DumpMissing, path, nil)
	}
	return nil
}

package catalog

import "github.com/google/btree"

// orderedSet is a small sorted string set backed by a generic B-tree.
// The catalog uses it for vectorsOf/targetsOf/sourcesOf so that vlist
// and rlist can hand back a sorted slice by simply walking the tree in
// order, instead of sorting a map's keys on every read. blist is not
// backed by one: Catalog.Bases sorts the Basis keys on each call.
type orderedSet struct {
	t *btree.BTreeG[string]
}

func newOrderedSet() *orderedSet {
	return &orderedSet{t: btree.NewG(32, func(a, b string) bool { return a < b })}
}

func (s *orderedSet) add(k string) {
	s.t.ReplaceOrInsert(k)
}

func (s *orderedSet) remove(k string) {
	s.t.Delete(k)
}

func (s *orderedSet) has(k string) bool {
	_, ok := s.t.Get(k)
	return ok
}

func (s *orderedSet) len() int { return s.t.Len() }

// items returns the set contents in ascending order.
func (s *orderedSet) items() []string {
	out := make([]string, 0, s.t.Len())
	s.t.Ascend(func(k string) bool {
		out = append(out, k)
		return true
	})
	return out
}

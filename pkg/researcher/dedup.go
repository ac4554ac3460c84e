package researcher

import "sync"

// visitedSet records every URL admitted during one research run. Concurrent
// sub-query gathers share a single instance; the check-and-mark is one
// critical section so no two gathers can claim the same URL.
type visitedSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// AdmitNew returns the URLs not previously admitted, marking them admitted
// in the same step. Duplicates inside one call are admitted once.
func (v *visitedSet) AdmitNew(urls []string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var admitted []string
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := v.seen[u]; ok {
			continue
		}
		v.seen[u] = struct{}{}
		v.order = append(v.order, u)
		admitted = append(admitted, u)
	}
	return admitted
}

// URLs returns every admitted URL in admission order.
func (v *visitedSet) URLs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

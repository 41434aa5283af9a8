package analytics

import (
	"container/heap"
	"sort"
)

// IPCount pairs a client identifier with its request count.
type IPCount struct {
	IP          string `json:"ip"`
	Repetitions int    `json:"repetitions"`
}

// TopIPs returns up to Thresholds.TopIPCount of the most frequent client
// identifiers from the IPCounter histogram, sorted by repetitions
// descending.
//
// Selection is an exact bounded top-K: a min-heap of size K over the
// histogram, O(K) auxiliary memory regardless of how many distinct clients
// appear. Equal counts are broken by key so the result is deterministic,
// but callers should not rely on any particular tie order.
func (c *Commands) TopIPs() []IPCount {
	k := c.thresholds.TopIPCount
	if k <= 0 {
		return nil
	}

	candidates := &ipCountHeap{}
	heap.Init(candidates)

	for ip, repetitions := range c.IPCounter() {
		heap.Push(candidates, IPCount{IP: ip, Repetitions: repetitions})
		if candidates.Len() > k {
			heap.Pop(candidates)
		}
	}

	result := make([]IPCount, candidates.Len())
	copy(result, *candidates)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Repetitions != result[j].Repetitions {
			return result[i].Repetitions > result[j].Repetitions
		}
		return result[i].IP < result[j].IP
	})

	return result
}

// ipCountHeap is a min-heap of candidate IP counts; the root is the
// weakest candidate and is evicted when the heap grows past K.
type ipCountHeap []IPCount

func (h ipCountHeap) Len() int { return len(h) }

func (h ipCountHeap) Less(i, j int) bool {
	if h[i].Repetitions != h[j].Repetitions {
		return h[i].Repetitions < h[j].Repetitions
	}
	// On equal counts evict the lexicographically larger key first.
	return h[i].IP > h[j].IP
}

func (h ipCountHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *ipCountHeap) Push(x interface{}) {
	*h = append(*h, x.(IPCount))
}

func (h *ipCountHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

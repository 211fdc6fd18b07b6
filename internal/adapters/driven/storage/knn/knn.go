// Package knn provides exact nearest-neighbour selection shared by the
// brute-force vector stores.
package knn

import (
	"container/heap"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Collector keeps the k nearest candidates offered so far.
// Equal distances keep the earlier offer.
type Collector struct {
	k    int
	seq  int
	heap candidateHeap
}

// NewCollector creates a collector for the k nearest candidates.
func NewCollector(k int) *Collector {
	if k < 0 {
		k = 0
	}
	return &Collector{k: k, heap: make(candidateHeap, 0, k)}
}

// Offer considers a fragment at the given distance.
func (c *Collector) Offer(fragment domain.Fragment, distance float64) {
	if c.k == 0 {
		return
	}
	cand := candidate{fragment: fragment, distance: distance, seq: c.seq}
	c.seq++

	if c.heap.Len() < c.k {
		heap.Push(&c.heap, cand)
		return
	}
	// Replace the farthest candidate with this closer one
	if distance < c.heap[0].distance {
		c.heap[0] = cand
		heap.Fix(&c.heap, 0)
	}
}

// Len returns the number of candidates held.
func (c *Collector) Len() int {
	return c.heap.Len()
}

// Results drains the collector, nearest first.
func (c *Collector) Results() []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, c.heap.Len())
	for i := len(results) - 1; i >= 0; i-- {
		cand := heap.Pop(&c.heap).(candidate)
		results[i] = domain.RetrievalResult{Fragment: cand.fragment, Distance: cand.distance}
	}
	return results
}

type candidate struct {
	fragment domain.Fragment
	distance float64
	seq      int
}

// candidateHeap is a max-heap on distance so the farthest candidate is evicted first.
// Among equal distances the later offer sits on top.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance > h[j].distance
	}
	return h[i].seq > h[j].seq
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

package constellation

import "container/heap"

// MergeFeed combines every summary's recent activity with the letter
// activity and returns the newest n entries.
func MergeFeed(summaries []GardenSummary, letterActs []Activity, n int) []Activity {
	size := len(letterActs)
	for _, s := range summaries {
		size += len(s.RecentActivity)
	}

	all := make([]Activity, 0, size)
	for _, s := range summaries {
		all = append(all, s.RecentActivity...)
	}
	all = append(all, letterActs...)

	sortNewestFirst(all)
	return limit(all, n)
}

// MergeSorted merges lists that are each already ordered newest first and
// returns the newest n entries. It keeps one cursor per list in a heap, so
// only the entries that make it into the result are visited.
//
// The result equals sorting the concatenation of lists with a stable sort:
// ties go to the earlier list, then the earlier position.
func MergeSorted(lists [][]Activity, n int) []Activity {
	if n <= 0 {
		return []Activity{}
	}

	h := make(cursorHeap, 0, len(lists))
	for i, l := range lists {
		if len(l) > 0 {
			h = append(h, cursor{list: l, source: i})
		}
	}
	heap.Init(&h)

	out := make([]Activity, 0, n)
	for h.Len() > 0 && len(out) < n {
		c := &h[0]
		out = append(out, c.list[c.pos])
		c.pos++
		if c.pos == len(c.list) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return out
}

type cursor struct {
	list   []Activity
	source int
	pos    int
}

func (c cursor) head() Activity { return c.list[c.pos] }

type cursorHeap []cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	a, b := h[i].head().At.Time(), h[j].head().At.Time()
	if !a.Equal(b) {
		return a.After(b)
	}
	return h[i].source < h[j].source
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

package worker

import "container/heap"

// Queue holds sequence-numbered items that arrive out of order and releases
// them strictly in ascending sequence order, starting at zero. It is not safe
// for concurrent use.
type Queue[T any] struct {
	items itemHeap[T]
	next  int
}

// Push adds the item with sequence number seq.
func (q *Queue[T]) Push(seq int, v T) {
	heap.Push(&q.items, item[T]{seq: seq, value: v})
}

// Pop returns the next item in sequence. The bool result is false while that
// item has not arrived yet, even if later ones are waiting.
func (q *Queue[T]) Pop() (T, bool) {
	if q.items.Len() == 0 || q.items[0].seq != q.next {
		var zero T
		return zero, false
	}
	it, _ := heap.Pop(&q.items).(item[T])
	q.next++
	return it.value, true
}

// Len returns the number of items held back.
func (q *Queue[T]) Len() int { return q.items.Len() }

// Next returns the sequence number Pop is waiting for.
func (q *Queue[T]) Next() int { return q.next }

type item[T any] struct {
	seq   int
	value T
}

// itemHeap implements heap.Interface ordered by ascending sequence number.
type itemHeap[T any] []item[T]

func (h itemHeap[T]) Len() int           { return len(h) }
func (h itemHeap[T]) Less(i, j int) bool { return h[i].seq < h[j].seq }
func (h itemHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *itemHeap[T]) Push(x any) {
	it, _ := x.(item[T])
	*h = append(*h, it)
}

func (h *itemHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

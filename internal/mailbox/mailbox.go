// Package mailbox implements the lock-free FIFO queue backing an actor mailbox.
//
// The queue is a Michael-Scott linked queue built on sync/atomic pointers. Any
// number of goroutines may push and pop concurrently; order is the order in
// which pushes linked their node. The length counter is reserved before the
// node is linked, so Len never under-reports what is queued and a bounded
// push can reject without touching the list.
package mailbox

import "sync/atomic"

type node[T any] struct {
	v    T
	next atomic.Pointer[node[T]]
}

// Queue is a multi-producer FIFO queue. The zero value is not usable, use New.
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
	size atomic.Int64
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	stub := &node[T]{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Len returns the number of queued items. Items being pushed concurrently may
// already be counted.
func (q *Queue[T]) Len() int {
	n := q.size.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Push appends v unconditionally.
func (q *Queue[T]) Push(v T) {
	q.size.Add(1)
	q.link(&node[T]{v: v})
}

// TryPush appends v unless limit > 0 and limit items are already queued.
// A rejected push leaves the queue untouched.
func (q *Queue[T]) TryPush(v T, limit int) bool {
	if limit <= 0 {
		q.Push(v)
		return true
	}
	for {
		n := q.size.Load()
		if n >= int64(limit) {
			return false
		}
		if q.size.CompareAndSwap(n, n+1) {
			break
		}
	}
	q.link(&node[T]{v: v})
	return true
}

func (q *Queue[T]) link(n *node[T]) {
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// tail is lagging, help it along
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

// Pop removes and returns the oldest item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return v, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		v = next.v
		if q.head.CompareAndSwap(head, next) {
			q.size.Add(-1)
			return v, true
		}
	}
}

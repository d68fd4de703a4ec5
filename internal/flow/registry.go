package flow

import (
	"container/heap"
	"fmt"
	"math"
)

// Handle is the opaque resumption token of one suspended flow.
type Handle struct {
	task TaskID
	seq  uint64
}

// Bucket returns the registry key for a release time: its integer floor.
func Bucket(release float64) int64 {
	return int64(math.Floor(release))
}

// WakeupRegistry maps integer time buckets to the handles waiting in them.
//
// Drain releases a bucket only once the clock's floor has moved past it, so a
// handle scheduled for bucket b fires on the first drain with floor(now) > b.
// That is one-bucket granularity: a flow asking to wake at exactly 1000.0 does
// not run on the step that lands on 1000.0 but on the first step that reaches
// 1001.0.
// Within a bucket handles keep insertion order.
type WakeupRegistry struct {
	buckets map[int64][]Handle
	keys    bucketHeap
	where   map[Handle]int64
}

func NewWakeupRegistry() *WakeupRegistry {
	return &WakeupRegistry{
		buckets: make(map[int64][]Handle),
		where:   make(map[Handle]int64),
	}
}

// Schedule files h under floor(release). Scheduling a handle that is already
// pending is a caller bug.
func (r *WakeupRegistry) Schedule(h Handle, release float64) {
	if math.IsNaN(release) || math.IsInf(release, 0) {
		panic(fmt.Sprintf("flow: invalid release time %v", release))
	}
	if _, dup := r.where[h]; dup {
		panic("flow: handle scheduled twice")
	}
	b := Bucket(release)
	list, ok := r.buckets[b]
	if !ok {
		heap.Push(&r.keys, b)
	}
	r.buckets[b] = append(list, h)
	r.where[h] = b
}

// Drain removes and returns every handle whose bucket is strictly below
// floor(now), oldest bucket first.
func (r *WakeupRegistry) Drain(now float64) []Handle {
	limit := Bucket(now)
	var out []Handle
	for r.keys.Len() > 0 && r.keys[0] < limit {
		b := heap.Pop(&r.keys).(int64)
		list, ok := r.buckets[b]
		if !ok {
			continue // emptied by Remove, or a duplicate key
		}
		delete(r.buckets, b)
		for _, h := range list {
			delete(r.where, h)
		}
		out = append(out, list...)
	}
	return out
}

// Remove drops a pending handle. It reports whether h was pending.
func (r *WakeupRegistry) Remove(h Handle) bool {
	b, ok := r.where[h]
	if !ok {
		return false
	}
	delete(r.where, h)
	list := r.buckets[b]
	for i, x := range list {
		if x == h {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.buckets, b)
	} else {
		r.buckets[b] = list
	}
	return true
}

// Len returns the number of pending handles.
func (r *WakeupRegistry) Len() int { return len(r.where) }

// Next returns the lowest non-empty bucket.
func (r *WakeupRegistry) Next() (int64, bool) {
	for r.keys.Len() > 0 {
		b := r.keys[0]
		if _, ok := r.buckets[b]; ok {
			return b, true
		}
		heap.Pop(&r.keys)
	}
	return 0, false
}

// bucketHeap is a min-heap of bucket keys.
type bucketHeap []int64

func (h bucketHeap) Len() int           { return len(h) }
func (h bucketHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h bucketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *bucketHeap) Push(x any) {
	*h = append(*h, x.(int64))
}

func (h *bucketHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

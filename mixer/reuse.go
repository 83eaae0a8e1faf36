package mixer

import (
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultReuseCap is the number of event-mixing pairs a single hadron may
// contribute to.
const DefaultReuseCap = 10

// ReuseCounter counts how often each hadron has been drawn for event mixing.
// It is safe for concurrent use.
type ReuseCounter struct {
	counts []atomic.Int32
	limit  int32
}

// NewReuseCounter returns a counter for n hadrons.
func NewReuseCounter(n, limit int) *ReuseCounter {
	return &ReuseCounter{counts: make([]atomic.Int32, n), limit: int32(limit)}
}

// Acquire records one more use of hadron i and reports whether the use is
// within the cap. Rejected uses are still counted.
func (r *ReuseCounter) Acquire(i int) bool {
	return r.counts[i].Add(1) <= r.limit
}

// Count returns the number of recorded uses of hadron i.
func (r *ReuseCounter) Count(i int) int {
	return int(r.counts[i].Load())
}

// Saturated returns the hadrons whose uses reached the cap.
func (r *ReuseCounter) Saturated() *roaring.Bitmap {
	bm := roaring.New()
	for i := range r.counts {
		if r.counts[i].Load() >= r.limit {
			bm.Add(uint32(i))
		}
	}
	return bm
}

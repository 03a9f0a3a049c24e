package progress

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"
)

// Reporter prints batch progress without spamming the terminal: intermediate
// updates are rate-limited, the final count always goes out. A nil Reporter
// is silent, so callers can pass one through unconditionally.
type Reporter struct {
	w       io.Writer
	total   int
	limiter *rate.Limiter

	mu   sync.Mutex
	done int
}

// NewReporter creates a reporter for total steps writing to w, printing at
// most perSecond intermediate updates.
func NewReporter(w io.Writer, total int, perSecond float64) *Reporter {
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Reporter{
		w:       w,
		total:   total,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Step records one finished item
func (r *Reporter) Step() {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.done++
	if r.done == r.total {
		fmt.Fprintf(r.w, "\rprocessed %d/%d\n", r.done, r.total)
		return
	}
	if r.limiter.Allow() {
		fmt.Fprintf(r.w, "\rprocessed %d/%d", r.done, r.total)
	}
}

package service

import "time"

// IntervalHeightSource implements ports.HeightSource as a deterministic
// interval clock: height = elapsed-since-genesis / block-interval. Every
// process configured with the same genesis and interval observes the same
// height at the same wall-clock time.
type IntervalHeightSource struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
}

// defaultBlockInterval is used when the configured interval is missing or
// non-positive; Current divides by the interval.
const defaultBlockInterval = 10 * time.Second

// NewIntervalHeightSource creates a height source from the configured genesis
// timestamp and block interval.
func NewIntervalHeightSource(genesis time.Time, interval time.Duration) *IntervalHeightSource {
	if interval <= 0 {
		interval = defaultBlockInterval
	}
	return &IntervalHeightSource{
		genesis:  genesis,
		interval: interval,
		now:      time.Now,
	}
}

// Current returns the block height at this instant. Before genesis the
// height is zero.
func (h *IntervalHeightSource) Current() uint64 {
	elapsed := h.now().Sub(h.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / h.interval)
}

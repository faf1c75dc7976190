// Package ratelimit caps the read throughput of content comparison.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const minBurst = 65536

// Limiter is a byte budget shared by every reader it wraps
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing bytesPerSecond across all readers.
// It returns nil, meaning no limit, when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second worth of data, at least 64KB
	burst := max(bytesPerSecond, minBurst)
	burst = min(burst, math.MaxInt32)

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// BytesPerSecond returns the sustained rate
func (l *Limiter) BytesPerSecond() int64 {
	return int64(l.limiter.Limit())
}

// Burst returns the most bytes a single Wait may ask for
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}

// Wait blocks until n bytes may be read or ctx is done.
// n must not exceed Burst.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.limiter.WaitN(ctx, n)
}

// readCloser throttles reads from an io.ReadCloser
type readCloser struct {
	ctx     context.Context
	rc      io.ReadCloser
	limiter *Limiter
}

// NewReadCloser wraps rc so reads draw from limiter. A nil limiter
// returns rc unchanged.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &readCloser{ctx: ctx, rc: rc, limiter: limiter}
}

// Read reads at most one burst, then pays for what was actually read
func (r *readCloser) Read(p []byte) (int, error) {
	if len(p) > r.limiter.Burst() {
		p = p[:r.limiter.Burst()]
	}

	n, err := r.rc.Read(p)
	if n > 0 {
		if werr := r.limiter.Wait(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (r *readCloser) Close() error {
	return r.rc.Close()
}

// ParseRate parses a byte rate such as "512K", "10M" or "1G" (powers of
// 1024). A bare number is bytes per second; "" and "0" mean unlimited.
func ParseRate(rate string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(rate))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/S"), "B")
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid rate %q (examples: 512K, 10M, 1G)", rate)
	}

	bytes := value * float64(multiplier)
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("rate %q is too large", rate)
	}
	return int64(bytes), nil
}

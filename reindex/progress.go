package reindex

import (
	"log/slog"
	"sync"
	"time"
)

// ProgressTracker logs throughput every reportInterval documents.
type ProgressTracker struct {
	logger         *slog.Logger
	total          int
	current        int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total documents.
func NewProgressTracker(logger *slog.Logger, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		logger:         logger,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.failed = 0
	p.lastReported = 0
}

// Done records one document as handled. failed marks it as not published.
func (p *ProgressTracker) Done(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.current >= p.total {
		return
	}
	p.current++
	if failed {
		p.failed++
	}
	if p.current-p.lastReported >= p.reportInterval {
		p.report("reindex progress")
		p.lastReported = p.current
	}
}

// Finish logs the final totals.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report("reindex complete")
}

// Counts returns handled and failed document counts.
func (p *ProgressTracker) Counts() (handled, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.failed
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report(msg string) {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	p.logger.Info(msg,
		"done", p.current,
		"total", p.total,
		"failed", p.failed,
		"percent", percentage,
		"docs_per_sec", rate)
}
